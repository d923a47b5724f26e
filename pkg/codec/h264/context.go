package h264

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

const (
	fifoBase     = 0x18000
	minDimension = 64
	maxDimension = 4096
)

// Context is the per-stream decoder state.
type Context struct {
	Width  uint32
	Height uint32
	Chroma uint8

	FifoIdx   int
	FifoAddrs []uint64

	hal.FrameLayout

	Pool            *Pool
	AccessIdx       int
	LastIntra       bool
	LastPSPSTileIdx int
	Generation      int

	headers *syntax.H264Headers
	alloc   *allocator.Allocator
	poc     pocState
	log     ports.Logger
}

func newContext(headers *syntax.H264Headers, log ports.Logger) *Context {
	return &Context{headers: headers, alloc: allocator.New(), log: log}
}

// Ranges returns the published address ranges of the current layout.
func (c *Context) Ranges() []allocator.Range {
	return c.alloc.Ranges()
}

// FifoAddr returns the instruction FIFO slot the next slice is written to.
func (c *Context) FifoAddr() uint64 {
	return c.FifoAddrs[c.FifoIdx]
}

// SPSTile returns the n-th SPS tile, wrapping around the tile ring.
func (c *Context) SPSTile(n int) uint64 {
	return c.SPSTiles[n%len(c.SPSTiles)]
}

func (c *Context) parameterSets(sl *syntax.H264Slice) (*syntax.H264SPS, *syntax.H264PPS, error) {
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

func poolSize(sps *syntax.H264SPS) int {
	n := int(sps.MaxNumRefFrames)
	if n < 1 {
		n = 1
	}
	return n + 1
}

func (c *Context) refresh(sl *syntax.H264Slice) error {
	sps, _, err := c.parameterSets(sl)
	if err != nil {
		return err
	}
	if !sps.FrameMbsOnly {
		return fmt.Errorf("interlaced coding: %w", ErrUnsupported)
	}

	width, height := sps.Width(), sps.Height()
	refs := poolSize(sps)
	if width == c.Width && height == c.Height && sps.ChromaFormatIDC == c.Chroma &&
		c.Pool != nil && c.Pool.Size() == refs {
		return nil
	}
	if width < minDimension || width > maxDimension || height < minDimension || height > maxDimension {
		return fmt.Errorf("%dx%d outside %d..%d: %w", width, height, minDimension, maxDimension, ErrUnsupported)
	}
	if sps.ChromaFormatIDC > 2 {
		return fmt.Errorf("chroma_format_idc %d: %w", sps.ChromaFormatIDC, ErrUnsupported)
	}

	c.log.Debug("dimensions changed from %dx%d -> %dx%d", c.Width, c.Height, width, height)
	c.Width, c.Height, c.Chroma = width, height, sps.ChromaFormatIDC

	c.alloc.Reset()
	if c.FifoAddrs, err = hal.AllocateFifos(c.alloc, fifoBase); err != nil {
		return err
	}
	layout, err := hal.AllocateFrameBuffers(c.alloc, hal.FrameParams{
		Width:      width,
		Height:     height,
		ChromaHalf: c.Chroma == 1,
		Is422:      c.Chroma == 2,
		Refs:       refs,
	})
	if err != nil {
		return err
	}
	c.FrameLayout = layout
	for _, line := range c.alloc.Dump() {
		c.log.Debug("%s", line)
	}

	c.Pool = NewPool(c.RVRABase)
	c.Generation++
	return nil
}
