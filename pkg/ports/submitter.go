package ports

import (
	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
)

// Submitter hands finished command buffers to the firmware transport.
type Submitter interface {
	// PublishRanges announces the device address layout. It is called after
	// setup and again whenever the layout is rebuilt.
	PublishRanges(ranges []allocator.Range) error

	// Submit queues the instruction stream of one slice together with its
	// folded parameter view. iova is the FIFO slot the stream belongs in.
	Submit(index int, iova uint64, stream *inst.Stream, params inst.Params) error

	// Close flushes anything pending.
	Close() error
}
