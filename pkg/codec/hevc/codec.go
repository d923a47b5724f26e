// Package hevc implements the H.265 decoder variant: buffer layout, DPB and
// RPS bookkeeping, reference list construction and the command encoder.
package hevc

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/pipeline"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// SliceState is what InitSlice resolved for one slice segment.
type SliceState struct {
	SPS   *syntax.HEVCSPS
	PPS   *syntax.HEVCPPS
	Pic   *Picture
	Lists *RefLists
}

// picture is the state shared by all slice segments of one coded picture.
type picture struct {
	pic   *Picture
	refs  *RefSet
	lists *RefLists
}

// Codec is the H.265 decoder variant.
type Codec struct {
	log ports.Logger
	ctx *Context
	cur *picture
}

// New creates an HEVC codec. Call Setup before decoding.
func New(log ports.Logger) *Codec {
	return &Codec{log: log.WithComponent("hevc")}
}

// Name implements decoder.Codec.
func (c *Codec) Name() string {
	return string(syntax.CodecHEVC)
}

// Context exposes the decoder state for diagnostics.
func (c *Codec) Context() *Context {
	return c.ctx
}

// Setup builds a fresh context for the stream and lays out buffers for the
// first slice.
func (c *Codec) Setup(stream *syntax.Stream) ([]*syntax.HEVCSlice, error) {
	if stream.HEVC == nil {
		return nil, fmt.Errorf("no parameter sets: %w", ErrMissingParameterSet)
	}
	c.ctx = newContext(stream.HEVC, c.log)
	c.cur = nil
	if len(stream.HEVCSlices) == 0 {
		return nil, nil
	}
	if err := c.ctx.refresh(stream.HEVCSlices[0]); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return stream.HEVCSlices, nil
}

// Refresh reallocates the buffer layout if the slice's geometry changed.
func (c *Codec) Refresh(sl *syntax.HEVCSlice) error {
	if c.ctx == nil {
		return ErrNoContext
	}
	if err := c.ctx.refresh(sl); err != nil {
		return err
	}
	if c.cur != nil && c.cur.pic != nil && !c.ownsPicture(c.cur.pic) {
		c.cur = nil
	}
	return nil
}

func (c *Codec) ownsPicture(pic *Picture) bool {
	for _, p := range c.ctx.Pool.Pictures() {
		if p == pic {
			return true
		}
	}
	return false
}

// InitSlice performs reference bookkeeping. The first segment of a picture
// acquires a DPB slot and applies the RPS; later segments reuse both.
func (c *Codec) InitSlice(sl *syntax.HEVCSlice) (*SliceState, error) {
	if c.ctx == nil {
		return nil, ErrNoContext
	}
	if sl.SliceType > syntax.HEVCSliceI {
		return nil, fmt.Errorf("slice_type %d: %w", sl.SliceType, ErrUnknownSliceType)
	}
	sps, pps, err := c.ctx.parameterSets(sl)
	if err != nil {
		return nil, err
	}

	if sl.FirstSliceSegmentInPic || c.cur == nil {
		if err := c.startPicture(sl, sps); err != nil {
			return nil, err
		}
	}

	st := &SliceState{SPS: sps, PPS: pps, Pic: c.cur.pic}
	switch {
	case sl.DependentSliceSegment:
		st.Lists = c.cur.lists
	case sl.IsIntra():
		c.cur.lists = nil
	default:
		lists, err := buildLists(c.cur.refs, sl)
		if err != nil {
			return nil, err
		}
		for i, pic := range lists.L0 {
			c.log.Debug("List0[%d]: %s", i, pic)
		}
		for i, pic := range lists.L1 {
			c.log.Debug("List1[%d]: %s", i, pic)
		}
		c.cur.lists = lists
		st.Lists = lists
	}
	return st, nil
}

func (c *Codec) startPicture(sl *syntax.HEVCSlice, sps *syntax.HEVCSPS) error {
	pool := c.ctx.Pool
	first := c.cur == nil && c.ctx.AccessIdx == 0
	noRaslOutput := sl.IsIDR() || sl.IsBLA() || first
	maxLsb := sps.MaxPicOrderCntLsb()
	poc := c.ctx.poc.derive(sl, maxLsb, noRaslOutput)

	if sl.IsIRAP() && noRaslOutput {
		pool.Flush()
	}
	for _, pic := range pool.Pictures() {
		c.log.Debug("DPB Pool: %s", pic)
	}

	pic, err := pool.Acquire()
	if err != nil {
		return fmt.Errorf("current picture poc %d: %w", poc, err)
	}
	pic.POC = poc
	pic.Type = RefShortTerm
	pic.Flags = FlagShortRef
	if sl.PicOutputFlag {
		pic.Flags |= FlagOutput
	}
	c.log.Debug("INDEX: %d POC: %d", pic.Index, poc)

	refs := &RefSet{}
	if !sl.IsIDR() && !sl.IsBLA() {
		refs, err = applyRPS(pool, pic, sl, maxLsb)
		if err != nil {
			return err
		}
	}
	if !sl.IsIRAP() && pool.Full() {
		return fmt.Errorf("poc %d with %d pictures marked: %w", poc, pool.Marked(), ErrBumpingNotImplemented)
	}

	c.cur = &picture{pic: pic, refs: refs}
	return nil
}

// EncodeSlice translates the slice into its instruction stream.
func (c *Codec) EncodeSlice(sl *syntax.HEVCSlice, st *SliceState) (*inst.Stream, error) {
	return encode(c.ctx, sl, st)
}

// FinishSlice advances the access counter and the instruction FIFO slot.
func (c *Codec) FinishSlice(sl *syntax.HEVCSlice, _ *SliceState) {
	c.ctx.LastIntra = sl.IsIntra()
	c.ctx.AccessIdx++
	c.ctx.FifoIdx = c.ctx.AccessIdx % FifoCount
}

// Status implements decoder.Codec.
func (c *Codec) Status() pipeline.CodecStatus {
	if c.ctx == nil {
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
