package h264

import (
	"fmt"

	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/syntax"
)

const (
	opStartHdr uint32 = 0x2db00000
	opSliceD8  uint32 = 0x2d800000
	opSliceQpy uint32 = 0x2d900000
	opFlags    uint32 = 0x2da00000
	opRefList  uint32 = 0x2dc00000
	opRefType  uint32 = 0x2d000000
	modeH264   uint32 = 0x1000000
	refHdrBase uint32 = 0x1000000
	pocModulus        = 0x20000
)

func encode(ctx *Context, sl *syntax.H264Slice, st *SliceState) (*inst.Stream, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	w := hal.NewWriter()
	if err := setHeader(w, ctx, sl, st); err != nil {
		return nil, err
	}
	if err := setSlice(w, ctx, sl, st); err != nil {
		return nil, err
	}
	return w.Stream(), nil
}

func setHeader(w *hal.Writer, ctx *Context, sl *syntax.H264Slice, st *SliceState) error {
	if err := w.FifoStart(ctx.FifoIdx, len(ctx.FifoAddrs)); err != nil {
		return err
	}

	x := uint32(0x1000 | 0x2e0)
	if sl.IsIDR() {
		x |= 0x2000
	}
	w.Push(opStartHdr|x, "hdr_34_cmd_start_hdr")
	w.Push(modeH264, "hdr_38_mode")
	w.Push(hal.HeightWidth(ctx.Width, ctx.Height), "hdr_3c_height_width")
	w.Push(0x0, "hdr_40_zero")
	w.Push(hal.HeightWidthShift3(ctx.Width, ctx.Height), "hdr_28_height_width_shift3")

	// 8x8 transform is always allowed and signalled per block.
	x = uint32(st.SPS.ChromaFormatIDC)<<24 | 0x2000 | 0x800 | inst.Bit(7) | inst.Bit(0)
	w.Push(x, "hdr_2c_sps_param")

	x = 0x100000
	if !sl.IsIDR() {
		x |= 0x200000
	}
	w.Push(x, "hdr_44_is_idr_mask")
	w.Push(0x3de, "hdr_48_3de")
	w.Push(0x30000a, "hdr_58_const_3a")
	w.Push(hal.DMATile, "cm3_dma_config_1")
	w.Push(hal.DMAPlane, "cm3_dma_config_2")
	w.MarkEndSection()

	w.PushIndexed(hal.Addr8(ctx.PPSTiles[0]), "hdr_9c_pps_tile_addr_lsb8", 0)
	w.Push(hal.DMATile, "cm3_dma_config_3")
	w.Push(hal.DMATile, "cm3_dma_config_4")
	w.Raw(0x0)
	for n := 1; n < 4; n++ {
		w.PushIndexed(hal.Addr8(ctx.PPSTiles[n]), "hdr_9c_pps_tile_addr_lsb8", n)
	}
	w.Push(hal.DMARef, "cm3_dma_config_5")

	for g, addr := range ctx.RVRA.Addrs(st.Pic.Addr) {
		w.PushIndexed(addr, "hdr_c0_curr_ref_addr_lsb7", g)
	}
	w.Push(hal.Addr8(ctx.YAddr), "hdr_210_y_addr_lsb8")
	w.Push(hal.WidthAlign(ctx.Width), "hdr_218_width_align")
	w.Push(hal.Addr8(ctx.UVAddr), "hdr_214_uv_addr_lsb8")
	w.Push(hal.WidthAlign(ctx.Width), "hdr_21c_width_align")
	w.Raw(0x0)
	w.Push(hal.HeightWidth(ctx.Width, ctx.Height), "hdr_54_height_width")

	if !sl.IsIDR() {
		setRefs(w, ctx, st)
	}
	w.MarkEndSection()
	return nil
}

// setRefs writes the reference headers. A non-IDR intra slice still gets the
// preamble, with an empty reference table.
func setRefs(w *hal.Writer, ctx *Context, st *SliceState) {
	w.Push(hal.DMATile, "cm3_dma_config_6")
	w.PushIndexed(hal.Addr8(ctx.PPSTiles[4]), "hdr_9c_pps_tile_addr_lsb8", 4)
	w.Push(hal.Addr8(ctx.SPSTile(ctx.AccessIdx)), "hdr_bc_sps_tile_addr_lsb8")
	w.Push(hal.DMARef, "cm3_dma_config_7")
	w.Push(hal.DMARef, "cm3_dma_config_8")
	w.Push(hal.DMARef, "cm3_dma_config_9")
	w.Push(hal.DMARef, "cm3_dma_config_a")

	if st.Lists == nil {
		return
	}
	count := uint32(len(st.Lists.DPB) - 1)
	for n := range st.Lists.DPB {
		ref := &st.Lists.DPB[n]
		x := count<<28 | refHdrBase | inst.Wrap(int64(st.Pic.POC)-int64(ref.POC), pocModulus)
		w.PushIndexed(x, "hdr_d0_ref_hdr", n)

		addrs := ctx.RVRA.Addrs(ref.Addr)
		w.PushIndexed(addrs[0], "hdr_110_ref0_addr_lsb7", n)
		w.PushIndexed(addrs[1], "hdr_150_ref1_addr_lsb7", n)
		w.PushIndexed(addrs[2], "hdr_190_ref2_addr_lsb7", n)
		w.PushIndexed(addrs[3], "hdr_1d0_ref3_addr_lsb7", n)
	}
}

func setSlice(w *hal.Writer, ctx *Context, sl *syntax.H264Slice, st *SliceState) error {
	w.Push(opSliceD8, "slc_a7c_cmd_d8")
	w.Push(uint32(ctx.SliceData+uint64(sl.PayloadOffset)), "inp_8b4d4_slice_addr_low")
	w.Push(sl.PayloadSize, "inp_8b4d8_slice_hdr_size")
	w.Raw(hal.OpSliceData)

	qp := 26 + int64(st.PPS.PicInitQpMinus26) + int64(sl.SliceQpDelta)
	w.Push(opSliceQpy|uint32(qp)*0x400, "slc_a70_cmd_slice_qpy")
	w.Push(opFlags|inst.Bit(16)|inst.Bit(17), "slc_a74_cmd_flags")

	typ := sl.Type()
	inter := typ == syntax.H264SliceP || typ == syntax.H264SliceB
	if inter {
		lists := st.Lists
		if lists == nil || len(lists.L0) == 0 {
			return fmt.Errorf("poc %d: %w", st.Pic.POC, ErrNoReferences)
		}
		for i, pic := range lists.L0 {
			w.PushIndexed(opRefList|uint32(i)<<4|uint32(lists.Position(pic)), "slc_6e8_cmd_ref_list_0", i)
		}
		if typ == syntax.H264SliceB {
			for i, pic := range lists.L1 {
				w.PushIndexed(opRefList|1<<8|uint32(i)<<4|uint32(lists.Position(pic)),
					"slc_6e8_cmd_ref_list_0", i+len(lists.L0))
			}
		}

		isP := typ == syntax.H264SliceP
		table := sl.PredWeight
		if (isP && !st.PPS.WeightedPred) || (!isP && st.PPS.WeightedBipredIDC != 1) {
			table = nil
		}
		w.Weights(isP, table, len(lists.L0), len(lists.L1))
	}

	w.Push(hal.OpSetMbDims, "cm3_cmd_set_mb_dims")
	w.Push(hal.MbDims(ctx.Width, ctx.Height), "cm3_set_mb_dims")

	x := opRefType
	switch typ {
	case syntax.H264SliceI:
		x |= 0x20000
	case syntax.H264SliceP:
		x |= 0x10000
	case syntax.H264SliceB:
		x |= 0x40000
	default:
		return fmt.Errorf("slice_type %d: %w", sl.SliceType, ErrUnknownSliceType)
	}
	if inter {
		if sl.NumRefIdxActiveOverride {
			x |= uint32(sl.NumRefIdxL0ActiveMinus1) << 11
			if typ == syntax.H264SliceB {
				x |= uint32(sl.NumRefIdxL1ActiveMinus1) << 7
			}
		} else {
			x |= 0x1000
		}
	}
	w.Push(x, "slc_6e4_cmd_ref_type")

	if typ == syntax.H264SliceB {
		n := ctx.LastPSPSTileIdx + int(sl.NumRefIdxL1ActiveMinus1)
		w.Push(hal.Addr8(ctx.SPSTile(n)), "sps_tile_addr_b")
	}

	w.FifoEnd()
	return nil
}
