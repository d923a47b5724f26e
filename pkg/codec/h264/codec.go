// Package h264 implements the H.264 decoder variant.
package h264

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/pipeline"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// SliceState is what InitSlice resolved for one slice.
type SliceState struct {
	SPS   *syntax.H264SPS
	PPS   *syntax.H264PPS
	Pic   *Picture
	Lists *RefLists
}

// Codec is the H.264 decoder variant.
type Codec struct {
	log ports.Logger
	ctx *Context
	cur *Picture
}

// New creates an H.264 codec. Call Setup before decoding.
func New(log ports.Logger) *Codec {
	return &Codec{log: log.WithComponent("h264")}
}

// Name implements decoder.Codec.
func (c *Codec) Name() string {
	return string(syntax.CodecH264)
}

// Context exposes the decoder state for diagnostics.
func (c *Codec) Context() *Context {
	return c.ctx
}

// Setup builds a fresh context and lays out buffers for the first slice.
func (c *Codec) Setup(stream *syntax.Stream) ([]*syntax.H264Slice, error) {
	if stream.H264 == nil {
		return nil, fmt.Errorf("no parameter sets: %w", ErrMissingParameterSet)
	}
	c.ctx = newContext(stream.H264, c.log)
	c.cur = nil
	if len(stream.H264Slices) == 0 {
		return nil, nil
	}
	if err := c.ctx.refresh(stream.H264Slices[0]); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return stream.H264Slices, nil
}

// Refresh reallocates the buffer layout if the geometry changed.
func (c *Codec) Refresh(sl *syntax.H264Slice) error {
	if c.ctx == nil {
		return ErrNoContext
	}
	gen := c.ctx.Generation
	if err := c.ctx.refresh(sl); err != nil {
		return err
	}
	if c.ctx.Generation != gen {
		c.cur = nil
	}
	return nil
}

func checkSlice(sl *syntax.H264Slice) error {
	switch {
	case sl.Type() > syntax.H264SliceI:
		return fmt.Errorf("slice_type %d: %w", sl.SliceType, ErrUnsupported)
	case sl.FieldPic:
		return fmt.Errorf("field picture: %w", ErrUnsupported)
	case sl.RefPicListModificationL0 || sl.RefPicListModificationL1:
		return fmt.Errorf("reference list modification: %w", ErrUnsupported)
	case sl.AdaptiveRefPicMarking:
		return fmt.Errorf("adaptive reference marking: %w", ErrUnsupported)
	case sl.IsIDR() && sl.LongTermReference:
		return fmt.Errorf("long-term IDR: %w", ErrUnsupported)
	}
	return nil
}

// InitSlice performs reference bookkeeping. The first slice of a picture
// (first_mb_in_slice == 0) acquires a DPB slot.
func (c *Codec) InitSlice(sl *syntax.H264Slice) (*SliceState, error) {
	if c.ctx == nil {
		return nil, ErrNoContext
	}
	if sl.SliceType > 9 {
		return nil, fmt.Errorf("slice_type %d: %w", sl.SliceType, ErrUnknownSliceType)
	}
	if err := checkSlice(sl); err != nil {
		return nil, err
	}
	sps, pps, err := c.ctx.parameterSets(sl)
	if err != nil {
		return nil, err
	}

	if sl.FirstMbInSlice == 0 || c.cur == nil {
		if err := c.startPicture(sl, sps); err != nil {
			return nil, err
		}
	}

	st := &SliceState{SPS: sps, PPS: pps, Pic: c.cur}
	if sl.Type() == syntax.H264SliceI {
		return st, nil
	}

	numL0 := int(pps.NumRefIdxL0DefaultActiveMinus1) + 1
	numL1 := int(pps.NumRefIdxL1DefaultActiveMinus1) + 1
	if sl.NumRefIdxActiveOverride {
		numL0 = int(sl.NumRefIdxL0ActiveMinus1) + 1
		numL1 = int(sl.NumRefIdxL1ActiveMinus1) + 1
	}
	var refs []*Picture
	for _, pic := range c.ctx.Pool.References() {
		if pic != c.cur {
			refs = append(refs, pic)
		}
	}
	lists, err := initLists(refs, c.cur, sl, numL0, numL1)
	if err != nil {
		return nil, err
	}
	for i, pic := range lists.L0 {
		c.log.Debug("List0[%d]: %s", i, pic)
	}
	for i, pic := range lists.L1 {
		c.log.Debug("List1[%d]: %s", i, pic)
	}
	st.Lists = lists
	return st, nil
}

func (c *Codec) startPicture(sl *syntax.H264Slice, sps *syntax.H264SPS) error {
	pool := c.ctx.Pool
	if err := c.ctx.poc.checkFrameNum(sl, sps); err != nil {
		return err
	}
	poc, err := c.ctx.poc.derive(sl, sps)
	if err != nil {
		return err
	}

	if sl.IsIDR() {
		pool.Flush()
	} else {
		pool.updatePicNums(sl.FrameNum, sps.MaxFrameNum())
		pool.slidingWindow(pool.Size() - 1)
	}

	pic, err := pool.Acquire()
	if err != nil {
		return fmt.Errorf("current picture poc %d: %w", poc, err)
	}
	pic.POC = poc
	pic.FrameNum = sl.FrameNum
	pic.PicNum = int32(sl.FrameNum)
	pic.refFrame = sl.IsReference()
	c.cur = pic
	c.ctx.poc.markDecoded(sl)

	for _, p := range pool.Pictures() {
		c.log.Debug("DPB Pool: %s", p)
	}
	return nil
}

// EncodeSlice translates the slice into its instruction stream.
func (c *Codec) EncodeSlice(sl *syntax.H264Slice, st *SliceState) (*inst.Stream, error) {
	return encode(c.ctx, sl, st)
}

// FinishSlice advances the access counter and the instruction FIFO slot.
func (c *Codec) FinishSlice(sl *syntax.H264Slice, _ *SliceState) {
	if sl.Type() != syntax.H264SliceB {
		c.ctx.LastPSPSTileIdx = c.ctx.AccessIdx
	}
	c.ctx.LastIntra = sl.Type() == syntax.H264SliceI
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

// DumpDPB formats the DPB pool.
func (c *Codec) DumpDPB() []string {
	if c.ctx == nil || c.ctx.Pool == nil {
		return nil
	}
	var lines []string
	for _, pic := range c.ctx.Pool.Pictures() {
		lines = append(lines, pic.String())
	}
	return lines
}
