package hevc

import (
	"fmt"

	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/syntax"
)

const (
	opStartHdr  uint32 = 0x2db00000
	opSliceD8   uint32 = 0x2d800000
	opSliceQpy  uint32 = 0x2d900000
	opFlags     uint32 = 0x2da00000
	opDeblock   uint32 = 0x2d700000
	opColRef    uint32 = 0x2d600000
	opRefList   uint32 = 0x2dc00000
	opRefType   uint32 = 0x2d000000
	modeHEVC    uint32 = 0x2000000
	refHdrBase  uint32 = 0x1000000
	pocModulus         = 0x20000
	qpOffsetMod        = 0x20
)

func encode(ctx *Context, sl *syntax.HEVCSlice, st *SliceState) (*inst.Stream, error) {
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

func spsParam(sps *syntax.HEVCSPS) uint32 {
	x := uint32(sps.ChromaFormatIDC) << 24
	x |= uint32(sps.Log2DiffMaxMinLumaCodingBlockSize&3) << 17
	x |= uint32(sps.Log2MinLumaCodingBlockSizeMinus3&3) << 15
	x |= uint32(sps.Log2DiffMaxMinTransformBlockSize&3) << 13
	x |= uint32(sps.Log2MinTransformBlockSizeMinus2&3) << 11
	x |= uint32(sps.MaxTransformHierarchyDepthIntra&7) << 8
	x |= uint32(sps.MaxTransformHierarchyDepthInter&7) << 5
	x |= inst.Flag(sps.TemporalMVPEnabled, 4)
	x |= inst.Flag(sps.StrongIntraSmoothingEnabled, 3)
	x |= inst.Flag(sps.PCMEnabled, 2)
	x |= inst.Flag(sps.AmpEnabled, 1)
	x |= inst.Flag(sps.SampleAdaptiveOffsetEnabled, 0)
	return x
}

func ppsParam(pps *syntax.HEVCPPS) uint32 {
	x := inst.Wrap(int64(pps.CrQpOffset), qpOffsetMod) << 21
	x |= inst.Wrap(int64(pps.CbQpOffset), qpOffsetMod) << 16
	x |= inst.Flag(pps.ListsModificationPresent, 15)
	x |= inst.Flag(pps.DependentSliceSegmentsEnabled, 14)
	x |= inst.Flag(pps.LoopFilterAcrossSlicesEnabled, 13)
	x |= inst.Flag(pps.EntropyCodingSyncEnabled, 12)
	x |= inst.Flag(pps.TilesEnabled, 11)
	x |= inst.Flag(pps.TransquantBypassEnabled, 10)
	x |= inst.Flag(pps.WeightedBipred, 9)
	x |= inst.Flag(pps.WeightedPred, 8)
	x |= uint32(pps.DiffCuQpDeltaDepth&7) << 5
	x |= inst.Flag(pps.CuQpDeltaEnabled, 4)
	x |= inst.Flag(pps.TransformSkipEnabled, 3)
	x |= inst.Flag(pps.ConstrainedIntraPred, 2)
	x |= inst.Flag(pps.CabacInitPresent, 1)
	x |= inst.Flag(pps.SignDataHidingEnabled, 0)
	return x
}

func setHeader(w *hal.Writer, ctx *Context, sl *syntax.HEVCSlice, st *SliceState) error {
	if err := w.FifoStart(ctx.FifoIdx, FifoCount); err != nil {
		return err
	}

	x := uint32(0x1000 | 0x2e0)
	if sl.IsIRAP() {
		x |= 0x2000
	}
	w.Push(opStartHdr|x, "hdr_34_cmd_start_hdr")
	w.Push(modeHEVC, "hdr_38_mode")
	w.Push(hal.HeightWidth(ctx.Width, ctx.Height), "hdr_3c_height_width")
	w.Push(0x0, "hdr_40_zero")
	w.Push(hal.HeightWidthShift3(ctx.Width, ctx.Height), "hdr_28_height_width_shift3")
	w.Push(spsParam(st.SPS), "hdr_2c_sps_param")
	w.Push(ppsParam(st.PPS), "hdr_30_pps_param")

	x = 0x100000
	if !sl.IsIDR() {
		x |= 0x200000
	}
	w.Push(x, "hdr_44_is_idr_mask")
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
	w.Push(hal.Addr8(ctx.MVAddr(st.Pic)), "hdr_bc_sps_tile_addr_lsb8")

	w.Push(hal.Addr8(ctx.YAddr), "hdr_210_y_addr_lsb8")
	w.Push(hal.WidthAlign(ctx.Width), "hdr_218_width_align")
	w.Push(hal.Addr8(ctx.UVAddr), "hdr_214_uv_addr_lsb8")
	w.Push(hal.WidthAlign(ctx.Width), "hdr_21c_width_align")
	w.Raw(0x0)
	w.Push(hal.HeightWidth(ctx.Width, ctx.Height), "hdr_54_height_width")

	if !sl.IsIntra() {
		if st.Lists == nil || st.Lists.Len() == 0 {
			return fmt.Errorf("poc %d: %w", st.Pic.POC, ErrNoReferences)
		}
		setRefs(w, ctx, st)
	}
	w.MarkEndSection()
	return nil
}

func setRefs(w *hal.Writer, ctx *Context, st *SliceState) {
	w.Push(hal.DMATile, "cm3_dma_config_6")
	w.PushIndexed(hal.Addr8(ctx.PPSTiles[4]), "hdr_9c_pps_tile_addr_lsb8", 4)
	w.Push(hal.DMARef, "cm3_dma_config_7")
	w.Push(hal.DMARef, "cm3_dma_config_8")
	w.Push(hal.DMARef, "cm3_dma_config_9")
	w.Push(hal.DMARef, "cm3_dma_config_a")

	count := uint32(st.Lists.Len() - 1)
	for n := range st.Lists.DPB {
		ref := &st.Lists.DPB[n]
		x := count<<28 | refHdrBase | inst.Wrap(int64(st.Pic.POC)-int64(ref.POC), pocModulus)
		x |= inst.Flag(ref.Flags&FlagLongRef != 0, 20)
		w.PushIndexed(x, "hdr_d0_ref_hdr", n)

		addrs := ctx.RVRA.Addrs(ref.Addr)
		w.PushIndexed(addrs[0], "hdr_110_ref0_addr_lsb7", n)
		w.PushIndexed(addrs[1], "hdr_150_ref1_addr_lsb7", n)
		w.PushIndexed(addrs[2], "hdr_190_ref2_addr_lsb7", n)
		w.PushIndexed(addrs[3], "hdr_1d0_ref3_addr_lsb7", n)
		w.PushIndexed(hal.Addr8(ctx.MVAddr(ref)), "hdr_230_ref_mv_addr_lsb8", n)
	}
}

func setSlice(w *hal.Writer, ctx *Context, sl *syntax.HEVCSlice, st *SliceState) error {
	w.Push(opSliceD8, "slc_a7c_cmd_d8")
	w.Push(uint32(ctx.SliceData+uint64(sl.PayloadOffset)), "inp_8b4d4_slice_addr_low")
	w.Push(sl.PayloadSize, "inp_8b4d8_slice_hdr_size")
	w.Raw(hal.OpSliceData)

	qp := 26 + int64(st.PPS.InitQpMinus26) + int64(sl.SliceQpDelta)
	x := opSliceQpy | uint32(qp)*0x400
	x |= inst.Wrap(int64(sl.SliceCbQpOffset), qpOffsetMod) << 5
	x |= inst.Wrap(int64(sl.SliceCrQpOffset), qpOffsetMod)
	w.Push(x, "slc_a70_cmd_slice_qpy")

	x = inst.Bit(16) | inst.Bit(17)
	x |= inst.Flag(sl.DependentSliceSegment, 8)
	x |= inst.Flag(sl.CollocatedFromL0, 7)
	x |= inst.Flag(sl.CabacInit, 6)
	x |= inst.Flag(sl.MvdL1Zero, 5)
	x |= inst.Flag(sl.TemporalMVPEnabled, 4)
	x |= inst.Flag(sl.LoopFilterAcrossSlicesEnabled, 3)
	x |= inst.Flag(sl.DeblockingFilterDisabled, 2)
	x |= inst.Flag(sl.SAOChroma, 1)
	x |= inst.Flag(sl.SAOLuma, 0)
	w.Push(opFlags|x, "slc_a74_cmd_flags")

	x = inst.Wrap(int64(sl.BetaOffsetDiv2), 0x10)<<4 | inst.Wrap(int64(sl.TcOffsetDiv2), 0x10)
	w.Push(opDeblock|x, "slc_a78_cmd_deblock")

	if !sl.IsIntra() {
		lists := st.Lists
		for i, pic := range lists.L0 {
			w.PushIndexed(opRefList|uint32(i)<<4|uint32(lists.Position(pic)), "slc_6e8_cmd_ref_list_0", i)
		}
		for i, pic := range lists.L1 {
			w.PushIndexed(opRefList|1<<8|uint32(i)<<4|uint32(lists.Position(pic)),
				"slc_6e8_cmd_ref_list_0", i+len(lists.L0))
		}

		isP := sl.SliceType == syntax.HEVCSliceP
		table := sl.PredWeight
		if (isP && !st.PPS.WeightedPred) || (!isP && !st.PPS.WeightedBipred) {
			table = nil
		}
		w.Weights(isP, table, len(lists.L0), len(lists.L1))

		if sl.TemporalMVPEnabled {
			col := lists.L0
			if !isP && !sl.CollocatedFromL0 {
				col = lists.L1
			}
			idx := int(sl.CollocatedRefIdx)
			if idx >= len(col) {
				return fmt.Errorf("collocated_ref_idx %d of %d: %w", idx, len(col), ErrUnsupported)
			}
			w.Push(opColRef|inst.Flag(sl.CollocatedFromL0, 8)|uint32(idx), "slc_b08_cmd_col_ref")
			w.Push(hal.Addr8(ctx.MVAddr(col[idx])), "slc_b0c_col_mv_addr_lsb8")
		}
	}

	w.Push(hal.OpSetMbDims, "cm3_cmd_set_mb_dims")
	w.Push(hal.MbDims(ctx.Width, ctx.Height), "cm3_set_mb_dims")

	x = opRefType
	switch sl.SliceType {
	case syntax.HEVCSliceI:
		x |= 0x20000
	case syntax.HEVCSliceP:
		x |= 0x10000 | uint32(sl.NumRefIdxL0ActiveMinus1)<<11
	case syntax.HEVCSliceB:
		x |= 0x40000 | uint32(sl.NumRefIdxL0ActiveMinus1)<<11 | uint32(sl.NumRefIdxL1ActiveMinus1)<<7
	default:
		return fmt.Errorf("slice_type %d: %w", sl.SliceType, ErrUnknownSliceType)
	}
	x |= uint32(5-sl.FiveMinusMaxNumMergeCand) & 7
	w.Push(x, "slc_6e4_cmd_ref_type")

	w.FifoEnd()
	return nil
}
