package vp9

import (
	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/syntax"
)

const (
	opStartHdr   uint32 = 0x2db00000
	opSliceD8    uint32 = 0x2d800000
	opQIdx       uint32 = 0x2d900000
	opDeltaQ     uint32 = 0x2da00000
	opLoopFilter uint32 = 0x2d700000
	opTiles      uint32 = 0x2d400000
	opRefType    uint32 = 0x2d000000
	modeVP9      uint32 = 0x3000000
	refHdrBase   uint32 = 0x1000000
	deltaQMod           = 0x20
)

func encode(ctx *Context, f *syntax.VP9Frame, st *FrameState) (*inst.Stream, error) {
	if ctx == nil || st == nil {
		return nil, ErrNoContext
	}
	w := hal.NewWriter()
	if err := setHeader(w, ctx, f, st); err != nil {
		return nil, err
	}
	setFrame(w, ctx, f)
	return w.Stream(), nil
}

func frameParam(f *syntax.VP9Frame) uint32 {
	x := uint32(f.FrameContextIdx&3) << 12
	x |= uint32(f.InterpolationFilter&7) << 8
	x |= inst.Flag(f.AllowHighPrecisionMv, 7)
	x |= inst.Flag(f.FrameParallelDecoding, 6)
	x |= inst.Flag(f.RefreshFrameContext, 5)
	x |= inst.Flag(f.SegmentationEnabled, 4)
	x |= inst.Flag(f.ShowFrame, 3)
	x |= inst.Flag(f.ErrorResilientMode, 2)
	x |= inst.Flag(f.IntraOnly, 1)
	x |= inst.Flag(f.IsKeyFrame(), 0)
	return x
}

func setHeader(w *hal.Writer, ctx *Context, f *syntax.VP9Frame, st *FrameState) error {
	if err := w.FifoStart(ctx.FifoIdx, len(ctx.FifoAddrs)); err != nil {
		return err
	}
	p := st.Preset

	x := uint32(0x1000 | 0x2e0)
	if f.IsKeyFrame() {
		x |= 0x2000
	}
	w.Push(opStartHdr|x, "hdr_34_cmd_start_hdr")
	w.Push(modeVP9, "hdr_38_mode")
	w.Push(hal.HeightWidth(ctx.Width, ctx.Height), "hdr_3c_height_width")
	w.Push(0x0, "hdr_40_zero")
	w.Push(hal.HeightWidthShift3(ctx.Width, ctx.Height), "hdr_28_height_width_shift3")
	w.Push(frameParam(f), "hdr_2c_frame_param")

	x = 0x100000
	if !f.IsKeyFrame() {
		x |= 0x200000
	}
	w.Push(x, "hdr_44_is_key_mask")
	w.Push(hal.Addr8(st.ProbsAddr), "hdr_4c_probs_addr_lsb8")
	w.Push(hal.DMATile, "cm3_dma_config_1")
	w.Push(hal.DMAPlane, "cm3_dma_config_2")
	w.MarkEndSection()

	w.PushIndexed(p.PPSTiles[0], "hdr_9c_pps_tile_addr_lsb8", 0)
	w.Push(hal.DMATile, "cm3_dma_config_3")
	w.Push(hal.DMATile, "cm3_dma_config_4")
	w.Raw(0x0)
	for n := 1; n < 4; n++ {
		w.PushIndexed(p.PPSTiles[n], "hdr_9c_pps_tile_addr_lsb8", n)
	}
	w.Push(hal.DMARef, "cm3_dma_config_5")

	for g, addr := range p.Current() {
		w.PushIndexed(addr, "hdr_c0_curr_ref_addr_lsb7", g)
	}
	w.Push(p.SPSTile(ctx.AccessIdx), "hdr_bc_sps_tile_addr_lsb8")

	w.Push(hal.Addr8(YAddr), "hdr_210_y_addr_lsb8")
	w.Push(hal.WidthAlign(ctx.Width), "hdr_218_width_align")
	w.Push(hal.Addr8(UVAddr), "hdr_214_uv_addr_lsb8")
	w.Push(hal.WidthAlign(ctx.Width), "hdr_21c_width_align")
	w.Raw(0x0)
	w.Push(hal.HeightWidth(ctx.Width, ctx.Height), "hdr_54_height_width")

	if !f.IsIntra() {
		setRefs(w, f, p)
	}
	w.MarkEndSection()
	return nil
}

// setRefs writes LAST, GOLDEN and ALTREF in that order.
func setRefs(w *hal.Writer, f *syntax.VP9Frame, p *Preset) {
	w.Push(hal.DMARef, "cm3_dma_config_7")
	w.Push(hal.DMARef, "cm3_dma_config_8")
	w.Push(hal.DMARef, "cm3_dma_config_9")
	w.Push(hal.DMARef, "cm3_dma_config_a")

	for n, slot := range f.RefFrameIdx {
		x := uint32(len(f.RefFrameIdx)-1)<<28 | refHdrBase | uint32(slot&7)
		x |= inst.Flag(f.RefFrameSignBias[n], 20)
		w.PushIndexed(x, "hdr_d0_ref_hdr", n)

		addrs := p.Reference(slot)
		w.PushIndexed(addrs[0], "hdr_110_ref0_addr_lsb7", n)
		w.PushIndexed(addrs[1], "hdr_150_ref1_addr_lsb7", n)
		w.PushIndexed(addrs[2], "hdr_190_ref2_addr_lsb7", n)
		w.PushIndexed(addrs[3], "hdr_1d0_ref3_addr_lsb7", n)
	}
}

func setFrame(w *hal.Writer, ctx *Context, f *syntax.VP9Frame) {
	w.Push(opSliceD8, "slc_a7c_cmd_d8")
	w.Push(uint32(SliceDataAddr+uint64(f.PayloadOffset)), "inp_8b4d4_slice_addr_low")
	w.Push(f.PayloadSize, "inp_8b4d8_slice_hdr_size")
	w.Raw(hal.OpSliceData)

	w.Push(opQIdx|uint32(f.BaseQIdx)<<2, "slc_a70_cmd_base_q_idx")
	x := inst.Wrap(int64(f.DeltaQYDc), deltaQMod) << 10
	x |= inst.Wrap(int64(f.DeltaQUVDc), deltaQMod) << 5
	x |= inst.Wrap(int64(f.DeltaQUVAc), deltaQMod)
	w.Push(opDeltaQ|x, "slc_a74_cmd_delta_q")
	w.Push(opLoopFilter|uint32(f.LoopFilterLevel&0x3f)<<3|uint32(f.LoopFilterSharpness&7), "slc_a78_cmd_loop_filter")
	w.Push(opTiles|uint32(f.TileColsLog2&7)<<4|uint32(f.TileRowsLog2&3), "slc_a80_cmd_tiles")

	w.Push(hal.OpSetMbDims, "cm3_cmd_set_mb_dims")
	w.Push(hal.MbDims(ctx.Width, ctx.Height), "cm3_set_mb_dims")

	x = opRefType
	switch {
	case f.IsKeyFrame():
		x |= 0x20000
	case f.IntraOnly:
		x |= 0x80000
	default:
		x |= 0x10000 | uint32(f.InterpolationFilter&7)<<8
	}
	w.Push(x, "slc_6e4_cmd_ref_type")

	w.FifoEnd()
}
