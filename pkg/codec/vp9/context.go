package vp9

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// Probability table ring.
const (
	ProbsBase  = 0x4000
	ProbsSize  = 0x774
	ProbsCount = 4
	FifoBase   = 0x2c000
)

// Context is the per-stream decoder state. Reference resolution happens in
// firmware from the preset slot tables, so there is no DPB here.
type Context struct {
	Width  uint32
	Height uint32
	Preset *Preset

	FifoIdx    int
	FifoAddrs  []uint64
	ProbsAddrs []uint64
	ProbsAddr  uint64

	AccessIdx  int
	LastIntra  bool
	Generation int

	alloc *allocator.Allocator
	log   ports.Logger
}

func newContext(log ports.Logger) *Context {
	return &Context{alloc: allocator.New(), log: log}
}

// Ranges returns the published address ranges.
func (c *Context) Ranges() []allocator.Range {
	return c.alloc.Ranges()
}

// FifoAddr returns the instruction FIFO slot the next frame is written to.
func (c *Context) FifoAddr() uint64 {
	return c.FifoAddrs[c.FifoIdx]
}

// ProbsSlot is the probability slot of the next frame.
func (c *Context) ProbsSlot() int {
	return c.AccessIdx % ProbsCount
}

func checkFrame(f *syntax.VP9Frame) error {
	switch {
	case f.Profile != 0:
		return fmt.Errorf("profile %d: %w", f.Profile, ErrUnsupported)
	case f.ShowExistingFrame:
		return fmt.Errorf("show_existing_frame: %w", ErrUnsupported)
	}
	return nil
}

func (c *Context) refresh(f *syntax.VP9Frame) error {
	if err := checkFrame(f); err != nil {
		return err
	}
	if f.FrameWidth != c.Width || f.FrameHeight != c.Height || c.Preset == nil {
		preset, err := LookupPreset(f.FrameWidth, f.FrameHeight)
		if err != nil {
			return err
		}
		c.log.Debug("dimensions changed from %dx%d -> %dx%d", c.Width, c.Height, f.FrameWidth, f.FrameHeight)
		c.Width, c.Height, c.Preset = f.FrameWidth, f.FrameHeight, preset
		if err := c.allocate(); err != nil {
			return err
		}
		c.Generation++
	}
	c.ProbsAddr = c.ProbsAddrs[c.ProbsSlot()]
	return nil
}

func (c *Context) allocate() error {
	c.alloc.Reset()
	if err := c.alloc.MoveUp(ProbsBase); err != nil {
		return err
	}
	// Each slot is followed by a spare page.
	size := allocator.RoundUp(ProbsSize, 0x4000)
	c.ProbsAddrs = make([]uint64, ProbsCount)
	for n := range c.ProbsAddrs {
		c.ProbsAddrs[n] = c.alloc.Allocate(size, fmt.Sprintf("probs%d", n), allocator.WithPad(0x4000))
	}
	var err error
	if c.FifoAddrs, err = hal.AllocateFifos(c.alloc, FifoBase); err != nil {
		return err
	}
	for _, line := range c.alloc.Dump() {
		c.log.Debug("%s", line)
	}
	return nil
}
