package pipeline

import (
	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
)

// CodecStatus is a snapshot of the codec context taken after a slice has
// been encoded and before the access counter moves on.
type CodecStatus struct {
	Width     uint32
	Height    uint32
	AccessIdx int
	FifoIdx   int
	// FifoIOVA is the instruction FIFO slot the slice is submitted to.
	FifoIOVA uint64
	// Generation increments every time the buffer layout is rebuilt.
	Generation int
	LastIntra  bool
}

// SliceResult is the output of decoding one slice.
type SliceResult struct {
	Index  int
	Stream *inst.Stream
	Params inst.Params
	Status CodecStatus
	Intra  bool
}

// StreamInfo describes an opened stream.
type StreamInfo struct {
	Path       string
	Codec      string
	NumSlices  int
	Width      uint32
	Height     uint32
	// Generation of the buffer layout Ranges describes.
	Generation int
	Ranges     []allocator.Range
}
