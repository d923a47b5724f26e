package hal

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
)

// Instruction FIFO ring.
const (
	FifoCount = 7
	FifoSize  = 0x100000
	FifoPad   = 0x4000
)

// Frame buffer layout.
const (
	BufferBase   = 0x734000
	SPSTileCount = 16
	PPSTileCount = 5
	PPSTileSize  = 0x8000
)

// AllocateFifos lays out the instruction FIFO ring from base.
func AllocateFifos(a *allocator.Allocator, base uint64) ([]uint64, error) {
	if err := a.MoveUp(base); err != nil {
		return nil, err
	}
	addrs := make([]uint64, FifoCount)
	for n := range addrs {
		addrs[n] = a.Allocate(FifoSize, fmt.Sprintf("inst_fifo%d", n), allocator.WithPad(FifoPad))
	}
	return addrs, nil
}

// FrameLayout holds the per-resolution buffers shared by the block based codecs.
type FrameLayout struct {
	RVRA      RVRALayout
	RVRABase  []uint64
	YAddr     uint64
	UVAddr    uint64
	SliceData uint64
	SPSTiles  []uint64
	PPSTiles  []uint64
}

// FrameParams describes the picture a FrameLayout is built for.
type FrameParams struct {
	Width  uint32
	Height uint32
	// ChromaHalf halves the chroma display plane (4:2:0).
	ChromaHalf bool
	Is422      bool
	// Refs is the number of reference buffers.
	Refs int
}

// AllocateFrameBuffers lays out reference, display, slice data and tile
// buffers from BufferBase. The first reference buffer precedes the display
// planes; the remaining ones follow the tiles.
func AllocateFrameBuffers(a *allocator.Allocator, p FrameParams) (FrameLayout, error) {
	var l FrameLayout
	if p.Refs < 1 {
		return l, fmt.Errorf("frame layout needs at least one reference buffer, got %d", p.Refs)
	}
	l.RVRA = NewRVRALayout(p.Width, p.Height, p.Is422)
	rvraSize := l.RVRA.Total()

	if err := a.MoveUp(BufferBase); err != nil {
		return l, err
	}
	l.RVRABase = make([]uint64, p.Refs)
	l.RVRABase[0] = a.Allocate(rvraSize, "rvra0", allocator.WithPad(0x100))

	wr := uint64(p.Width)
	if p.Width%32 != 0 {
		wr = allocator.RoundUp(wr, 64)
	}
	luma := wr * uint64(p.Height)
	l.YAddr = a.Allocate(luma, "disp_y")
	chroma := luma
	if p.ChromaHalf {
		chroma /= 2
	}
	l.UVAddr = a.Allocate(chroma, "disp_uv")

	l.SliceData = a.Allocate(SliceDataSize(p.Width, p.Height), "slice_data",
		allocator.WithAlign(0x4000), allocator.WithPadBefore(0x4000))

	tileSize := uint64(0x8000)
	if p.Height == 512 {
		tileSize = 0xc000
	}
	l.SPSTiles = make([]uint64, SPSTileCount)
	for n := range l.SPSTiles {
		l.SPSTiles[n] = a.Allocate(tileSize, fmt.Sprintf("sps_tile%d", n))
	}
	l.PPSTiles = make([]uint64, PPSTileCount)
	for n := range l.PPSTiles {
		l.PPSTiles[n] = a.Allocate(PPSTileSize, fmt.Sprintf("pps_tile%d", n))
	}
	for n := 1; n < p.Refs; n++ {
		l.RVRABase[n] = a.Allocate(rvraSize, fmt.Sprintf("rvra1_%d", n-1))
	}
	return l, nil
}

// SliceDataSize is the bitstream staging area: one 0x4000 page per 0x8000
// aligned pixels plus two, capped at 0xff pages.
func SliceDataSize(width, height uint32) uint64 {
	w := allocator.RoundUp(uint64(width), 32) - 1
	h := allocator.RoundUp(uint64(height), 32) - 1
	pages := w*h/0x8000 + 2
	if pages > 0xff {
		pages = 0xff
	}
	return pages * 0x4000
}
