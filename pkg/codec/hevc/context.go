package hevc

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// Buffer layout constants.
const (
	FifoCount     = hal.FifoCount
	FifoBase      = 0x18000
	BufferBase    = hal.BufferBase
	PoolSize      = 6
	MinDimension  = 64
	MaxDimension  = 4096
	DimensionUnit = 16
)

// Context is the per-stream decoder state. Fields are set by the codec and
// read by the encoder; nothing else writes them.
type Context struct {
	Width      uint32
	Height     uint32
	OrigWidth  uint32
	OrigHeight uint32
	Chroma     uint8

	FifoIdx   int
	FifoAddrs []uint64

	hal.FrameLayout

	Pool      *Pool
	AccessIdx int
	LastIntra bool

	// Generation counts buffer layouts; it changes whenever Refresh reallocates.
	Generation int

	headers *syntax.HEVCHeaders
	alloc   *allocator.Allocator
	poc     pocState
	log     ports.Logger
}

func newContext(headers *syntax.HEVCHeaders, log ports.Logger) *Context {
	return &Context{
		headers: headers,
		alloc:   allocator.New(),
		log:     log,
	}
}

// Ranges returns the published address ranges of the current layout.
func (c *Context) Ranges() []allocator.Range {
	return c.alloc.Ranges()
}

// FifoAddr returns the instruction FIFO slot the next slice is written to.
func (c *Context) FifoAddr() uint64 {
	return c.FifoAddrs[c.FifoIdx]
}

// MVAddr returns the motion vector (SPS tile) buffer of a DPB slot.
func (c *Context) MVAddr(pic *Picture) uint64 {
	return c.SPSTiles[pic.Index%len(c.SPSTiles)]
}

func (c *Context) parameterSets(sl *syntax.HEVCSlice) (*syntax.HEVCSPS, *syntax.HEVCPPS, error) {
	pps, ok := c.headers.FindPPS(sl.PPSID)
	if !ok {
		return nil, nil, fmt.Errorf("pps %d: %w", sl.PPSID, ErrMissingParameterSet)
	}
	sps, ok := c.headers.FindSPS(pps.SPSID)
	if !ok {
		return nil, nil, fmt.Errorf("sps %d: %w", pps.SPSID, ErrMissingParameterSet)
	}
	return sps, pps, nil
}

// refresh establishes the buffer layout for the slice's SPS. Unchanged
// geometry is a no-op.
func (c *Context) refresh(sl *syntax.HEVCSlice) error {
	sps, _, err := c.parameterSets(sl)
	if err != nil {
		return err
	}

	width := uint32(allocator.RoundUp(uint64(sps.PicWidthInLumaSamples), DimensionUnit))
	height := uint32(allocator.RoundUp(uint64(sps.PicHeightInLumaSamples), DimensionUnit))
	if width == c.Width && height == c.Height && sps.ChromaFormatIDC == c.Chroma && c.Pool != nil {
		return nil
	}
	if width < MinDimension || width > MaxDimension || height < MinDimension || height > MaxDimension {
		return fmt.Errorf("%dx%d outside %d..%d: %w", width, height, MinDimension, MaxDimension, ErrUnsupported)
	}
	if sps.ChromaFormatIDC == syntax.HEVCChroma444 {
		return fmt.Errorf("chroma_format_idc %d: %w", sps.ChromaFormatIDC, ErrUnsupported)
	}

	c.log.Debug("dimensions changed from %dx%d -> %dx%d", c.Width, c.Height, width, height)
	c.OrigWidth = sps.PicWidthInLumaSamples
	c.OrigHeight = sps.PicHeightInLumaSamples
	c.Width = width
	c.Height = height
	c.Chroma = sps.ChromaFormatIDC

	if err := c.allocateFifo(); err != nil {
		return err
	}
	if err := c.allocateBuffers(); err != nil {
		return err
	}
	c.Generation++
	return nil
}

func (c *Context) allocateFifo() error {
	c.alloc.Reset()
	addrs, err := hal.AllocateFifos(c.alloc, FifoBase)
	if err != nil {
		return err
	}
	c.FifoAddrs = addrs
	return nil
}

func (c *Context) allocateBuffers() error {
	layout, err := hal.AllocateFrameBuffers(c.alloc, hal.FrameParams{
		Width:      c.Width,
		Height:     c.Height,
		ChromaHalf: c.Chroma == syntax.HEVCChroma420,
		Is422:      c.Chroma == syntax.HEVCChroma422,
		Refs:       PoolSize,
	})
	if err != nil {
		return err
	}
	c.FrameLayout = layout
	for _, line := range c.alloc.Dump() {
		c.log.Debug("%s", line)
	}

	c.Pool = NewPool(c.RVRABase)
	for _, pic := range c.Pool.Pictures() {
		c.log.Debug("DPB Pool: %s", pic)
	}
	return nil
}
