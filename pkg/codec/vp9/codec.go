// Package vp9 implements the VP9 decoder variant. Buffer addresses come from
// fixed per-resolution presets; only the probability and instruction FIFO
// rings are laid out at run time.
package vp9

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/pipeline"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// FrameState is what InitSlice resolved for one frame.
type FrameState struct {
	Preset    *Preset
	ProbsAddr uint64
	ProbsSlot int
}

// Codec is the VP9 decoder variant.
type Codec struct {
	log ports.Logger
	ctx *Context
}

// New creates a VP9 codec. Call Setup before decoding.
func New(log ports.Logger) *Codec {
	return &Codec{log: log.WithComponent("vp9")}
}

// Name implements decoder.Codec.
func (c *Codec) Name() string {
	return string(syntax.CodecVP9)
}

// Context exposes the decoder state for diagnostics.
func (c *Codec) Context() *Context {
	return c.ctx
}

// Setup builds a fresh context and resolves the preset of the first frame.
func (c *Codec) Setup(stream *syntax.Stream) ([]*syntax.VP9Frame, error) {
	c.ctx = newContext(c.log)
	if len(stream.VP9Frames) == 0 {
		return nil, nil
	}
	if err := c.ctx.refresh(stream.VP9Frames[0]); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return stream.VP9Frames, nil
}

// Refresh switches presets on a resolution change and selects the
// probability slot for the next frame.
func (c *Codec) Refresh(f *syntax.VP9Frame) error {
	if c.ctx == nil {
		return ErrNoContext
	}
	return c.ctx.refresh(f)
}

// InitSlice captures the addresses the frame is encoded against.
func (c *Codec) InitSlice(f *syntax.VP9Frame) (*FrameState, error) {
	if c.ctx == nil || c.ctx.Preset == nil {
		return nil, ErrNoContext
	}
	if err := checkFrame(f); err != nil {
		return nil, err
	}
	return &FrameState{
		Preset:    c.ctx.Preset,
		ProbsAddr: c.ctx.ProbsAddr,
		ProbsSlot: c.ctx.ProbsSlot(),
	}, nil
}

// EncodeSlice translates the frame header into its instruction stream.
func (c *Codec) EncodeSlice(f *syntax.VP9Frame, st *FrameState) (*inst.Stream, error) {
	return encode(c.ctx, f, st)
}

// FinishSlice advances the access counter, which rotates the probability slot.
func (c *Codec) FinishSlice(f *syntax.VP9Frame, _ *FrameState) {
	c.ctx.LastIntra = f.IsIntra()
	c.ctx.AccessIdx++
	c.ctx.FifoIdx = c.ctx.AccessIdx % len(c.ctx.FifoAddrs)
}

// Status implements decoder.Codec.
func (c *Codec) Status() pipeline.CodecStatus {
	if c.ctx == nil || c.ctx.FifoAddrs == nil {
		return pipeline.CodecStatus{}
	}
	return pipeline.CodecStatus{
		Width:      c.ctx.Width,
		Height:     c.ctx.Height,
		AccessIdx:  c.ctx.AccessIdx,
		FifoIdx:    c.ctx.FifoIdx,
		FifoIOVA:   c.ctx.FifoAddr(),
		Generation: c.ctx.Generation,
		LastIntra:  c.ctx.LastIntra,
	}
}

// Ranges implements decoder.Codec.
func (c *Codec) Ranges() []allocator.Range {
	if c.ctx == nil {
		return nil
	}
	return c.ctx.Ranges()
}
