package h264

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/avdcmd/pkg/hal"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/syntax"
)

func encodeAll(t *testing.T, c *Codec, slices ...*syntax.H264Slice) []*inst.Stream {
	t.Helper()
	var out []*inst.Stream
	for i, sl := range slices {
		if err := c.Refresh(sl); err != nil {
			t.Fatalf("slice %d refresh: %v", i, err)
		}
		st, err := c.InitSlice(sl)
		if err != nil {
			t.Fatalf("slice %d init: %v", i, err)
		}
		s, err := c.EncodeSlice(sl, st)
		if err != nil {
			t.Fatalf("slice %d encode: %v", i, err)
		}
		c.FinishSlice(sl, st)
		out = append(out, s)
	}
	return out
}

func refListWords(s *inst.Stream) []uint32 {
	var out []uint32
	for _, in := range s.Instructions() {
		if in.Name == "slc_6e8_cmd_ref_list_0" {
			out = append(out, in.Value)
		}
	}
	return out
}

func TestEncode_IDRHeader(t *testing.T) {
	c := setup(t, testStream(128, 64))
	s := encodeAll(t, c, idrSlice())[0]
	p := inst.Fold(s)

	want := map[string]uint32{
		"hdr_34_cmd_start_hdr": 0x2db032e0,
		"hdr_38_mode":          0x1000000,
		"hdr_3c_height_width":  0x003f007f,
		"hdr_2c_sps_param":     0x1002881,
		"hdr_44_is_idr_mask":   0x100000,
		"hdr_48_3de":           0x3de,
		"slc_6e4_cmd_ref_type": 0x2d020000,
		"cm3_set_mb_dims":      0x3007,
	}
	for name, v := range want {
		if got, ok := p.Get(name); !ok || got != v {
			t.Errorf("%s: got 0x%x, want 0x%x", name, got, v)
		}
	}
	if len(s.Positions("hdr_d0_ref_hdr")) != 0 || len(s.Positions("hdr_bc_sps_tile_addr_lsb8")) != 0 {
		t.Error("IDR slices carry no reference section")
	}
	if first := s.At(0); first.Value != hal.OpFifoStart {
		t.Errorf("expected fifo slot 0, got %s", first)
	}
	if last := s.At(s.Len() - 1); last.Value != hal.OpFifoEnd {
		t.Errorf("expected terminator, got %s", last)
	}
}

func TestEncode_PReferences(t *testing.T) {
	c := setup(t, testStream(128, 64))
	streams := encodeAll(t, c, idrSlice(), pSlice(1, 2), pSlice(2, 4))
	ctx := c.Context()
	p := inst.Fold(streams[2])

	for n, want := range []uint32{0x11000002, 0x11000004} {
		if got, _ := p.At("hdr_d0_ref_hdr", n); got != want {
			t.Errorf("ref_hdr[%d]: got 0x%x, want 0x%x", n, got, want)
		}
	}
	if got, _ := p.Get("hdr_bc_sps_tile_addr_lsb8"); got != hal.Addr8(ctx.SPSTiles[2]) {
		t.Errorf("sps tile should follow the access index, got 0x%x", got)
	}
	if diff := cmp.Diff([]uint32{0x2dc00000, 0x2dc00011}, refListWords(streams[2])); diff != "" {
		t.Errorf("ref list words mismatch (-want +got):\n%s", diff)
	}
	if got, _ := p.Get("slc_6e4_cmd_ref_type"); got != 0x2d011000 {
		t.Errorf("default active count should set 0x1000, got 0x%x", got)
	}
	if got, _ := p.Get(hal.NameWeightsDenom); got != 0x2dd00040 {
		t.Errorf("expected bare P denominator, got 0x%x", got)
	}
}

func TestEncode_BSlice(t *testing.T) {
	c := setup(t, testStream(128, 64))
	streams := encodeAll(t, c, idrSlice(), pSlice(1, 8), bSlice(2, 4))
	ctx := c.Context()
	s := streams[2]

	want := []uint32{0x2dc00000, 0x2dc00011, 0x2dc00101, 0x2dc00110}
	if diff := cmp.Diff(want, refListWords(s)); diff != "" {
		t.Errorf("ref list words mismatch (-want +got):\n%s", diff)
	}
	p := inst.Fold(s)
	if got, _ := p.Get("sps_tile_addr_b"); got != hal.Addr8(ctx.SPSTiles[1]) {
		t.Errorf("B tile should follow the last P, got 0x%x", got)
	}
	if got, _ := p.Get("slc_6e4_cmd_ref_type"); got != 0x2d041000 {
		t.Errorf("unexpected B ref type 0x%x", got)
	}
	if s.At(s.Len()-2).Name != "sps_tile_addr_b" {
		t.Errorf("sps_tile_addr_b must precede the terminator, got %s", s.At(s.Len()-2))
	}
}

func TestEncode_ActiveOverride(t *testing.T) {
	c := setup(t, testStream(128, 64))
	sl := pSlice(2, 4)
	sl.NumRefIdxActiveOverride = true
	streams := encodeAll(t, c, idrSlice(), pSlice(1, 2), sl)

	p := inst.Fold(streams[2])
	if got, _ := p.Get("slc_6e4_cmd_ref_type"); got != 0x2d010000 {
		t.Errorf("override with one reference: got 0x%x", got)
	}
	if n := len(refListWords(streams[2])); n != 1 {
		t.Errorf("expected a single L0 entry, got %d", n)
	}
}

func TestEncode_WeightedPrediction(t *testing.T) {
	stream := testStream(128, 64)
	c := setup(t, stream)
	stream.H264.PPS[0].WeightedPred = true

	sl := pSlice(1, 2)
	sl.PredWeight = &syntax.PredWeightTable{
		LumaLog2WeightDenom: 5,
		L0:                  []syntax.WeightEntry{{LumaWeightFlag: true, LumaWeight: 40, LumaOffset: 3}},
	}
	p := inst.Fold(encodeAll(t, c, idrSlice(), sl)[1])

	if got, _ := p.Get(hal.NameWeightsDenom); got != 0x2dd00040|5<<3 {
		t.Errorf("denominator 0x%x", got)
	}
	if got, _ := p.At(hal.NameWeightsWeights, 0); got != 0x2de04000|40 {
		t.Errorf("weight 0x%x", got)
	}
	if got, _ := p.At(hal.NameWeightsOffsets, 0); got != 0x2df00003 {
		t.Errorf("offset 0x%x", got)
	}
}

func TestEncode_QP(t *testing.T) {
	stream := testStream(128, 64)
	c := setup(t, stream)
	stream.H264.PPS[0].PicInitQpMinus26 = -4
	sl := idrSlice()
	sl.SliceQpDelta = 2
	p := inst.Fold(encodeAll(t, c, sl)[0])
	if got, _ := p.Get("slc_a70_cmd_slice_qpy"); got != 0x2d900000|24*0x400 {
		t.Errorf("qp word 0x%x", got)
	}
}
