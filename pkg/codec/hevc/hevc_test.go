package hevc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/avdcmd/pkg/mocks"
	"github.com/user/avdcmd/pkg/syntax"
)

func testStream(width, height uint32, slices ...*syntax.HEVCSlice) *syntax.Stream {
	return &syntax.Stream{
		Codec: syntax.CodecHEVC,
		HEVC: &syntax.HEVCHeaders{
			SPS: []*syntax.HEVCSPS{{
				ID:                     0,
				ChromaFormatIDC:        syntax.HEVCChroma420,
				PicWidthInLumaSamples:  width,
				PicHeightInLumaSamples: height,
			}},
			PPS: []*syntax.HEVCPPS{{ID: 0, SPSID: 0}},
		},
		HEVCSlices: slices,
	}
}

func idrSlice(lsb uint32) *syntax.HEVCSlice {
	return &syntax.HEVCSlice{
		NalUnitType:            syntax.HEVCNalIDRWRADL,
		FirstSliceSegmentInPic: true,
		SliceType:              syntax.HEVCSliceI,
		PicOutputFlag:          true,
		PicOrderCntLsb:         lsb,
	}
}

// pSlice references every delta as a used, preceding short-term picture.
func pSlice(lsb uint32, deltas ...int32) *syntax.HEVCSlice {
	used := make([]bool, len(deltas))
	for i := range used {
		used[i] = true
	}
	active := uint8(0)
	if len(deltas) > 0 {
		active = uint8(len(deltas) - 1)
	}
	return &syntax.HEVCSlice{
		NalUnitType:            1,
		FirstSliceSegmentInPic: true,
		SliceType:              syntax.HEVCSliceP,
		PicOutputFlag:          true,
		PicOrderCntLsb:         lsb,
		ShortTermRPS: syntax.ShortTermRPS{
			NumNegativePics: len(deltas),
			DeltaPOC:        deltas,
			Used:            used,
		},
		NumRefIdxL0ActiveMinus1: active,
	}
}

func setup(t *testing.T, stream *syntax.Stream) *Codec {
	t.Helper()
	c := New(mocks.NewLogger())
	if _, err := c.Setup(stream); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return c
}

// decode runs one slice through the full per-slice sequence.
func decode(c *Codec, sl *syntax.HEVCSlice) (*SliceState, error) {
	if err := c.Refresh(sl); err != nil {
		return nil, err
	}
	st, err := c.InitSlice(sl)
	if err != nil {
		return nil, err
	}
	if _, err := c.EncodeSlice(sl, st); err != nil {
		return nil, err
	}
	c.FinishSlice(sl, st)
	return st, nil
}

func mustDecode(t *testing.T, c *Codec, slices ...*syntax.HEVCSlice) []*SliceState {
	t.Helper()
	var out []*SliceState
	for i, sl := range slices {
		st, err := decode(c, sl)
		if err != nil {
			t.Fatalf("slice %d: %v", i, err)
		}
		out = append(out, st)
	}
	return out
}

func pocs(pics []*Picture) []int32 {
	out := make([]int32, len(pics))
	for i, p := range pics {
		out[i] = p.POC
	}
	return out
}

func TestCodec_SetupLayout(t *testing.T) {
	c := setup(t, testStream(1920, 1080, idrSlice(0)))
	ctx := c.Context()

	if ctx.Width != 1920 || ctx.Height != 1088 {
		t.Errorf("expected 1920x1088 after alignment, got %dx%d", ctx.Width, ctx.Height)
	}
	if ctx.OrigHeight != 1080 {
		t.Errorf("expected original height 1080, got %d", ctx.OrigHeight)
	}

	ranges := c.Ranges()
	if len(ranges) != 37 {
		t.Fatalf("expected 37 ranges, got %d", len(ranges))
	}
	if ranges[0].Name != "inst_fifo0" || ranges[0].IOVA != FifoBase {
		t.Errorf("unexpected first range %v", ranges[0])
	}
	if ranges[7].Name != "rvra0" || ranges[7].IOVA != BufferBase {
		t.Errorf("expected rvra0 at 0x%x, got %v", BufferBase, ranges[7])
	}
	if ranges[36].Name != "rvra1_4" {
		t.Errorf("expected last range rvra1_4, got %s", ranges[36].Name)
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i].IOVA < ranges[i-1].End() {
			t.Errorf("range %v overlaps %v", ranges[i], ranges[i-1])
		}
	}
	if ctx.SliceData%0x4000 != 0 {
		t.Errorf("slice data 0x%x not page aligned", ctx.SliceData)
	}
	if ctx.Pool.Size() != PoolSize {
		t.Errorf("expected pool of %d, got %d", PoolSize, ctx.Pool.Size())
	}
}

func TestCodec_RefreshUnchangedKeepsLayout(t *testing.T) {
	sl := idrSlice(0)
	c := setup(t, testStream(1280, 720, sl))
	before := c.Ranges()
	gen := c.Context().Generation

	for i := 0; i < 2; i++ {
		if err := c.Refresh(sl); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
	}
	if diff := cmp.Diff(before, c.Ranges()); diff != "" {
		t.Errorf("ranges changed (-before +after):\n%s", diff)
	}
	if c.Context().Generation != gen {
		t.Errorf("generation moved from %d to %d", gen, c.Context().Generation)
	}
}

func TestCodec_RefreshReallocatesOnResize(t *testing.T) {
	stream := testStream(1280, 720, idrSlice(0))
	log := mocks.NewLogger()
	c := New(log)
	if _, err := c.Setup(stream); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	mustDecode(t, c, idrSlice(0), pSlice(1, -1), pSlice(2, -1))
	gen := c.Context().Generation

	stream.HEVC.SPS[0].PicWidthInLumaSamples = 640
	stream.HEVC.SPS[0].PicHeightInLumaSamples = 480
	if err := c.Refresh(stream.HEVCSlices[0]); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if c.Context().Generation != gen+1 {
		t.Errorf("expected a new layout generation")
	}
	if c.Ranges()[0].IOVA != FifoBase {
		t.Errorf("layout should restart from an empty allocator, got %v", c.Ranges()[0])
	}
	if !log.Contains("dimensions changed from 1280x720 -> 640x480") {
		t.Error("expected dimension change to be logged")
	}
	// The slot keeps rotating with the access counter across a relayout.
	if status := c.Status(); status.AccessIdx != 3 || status.FifoIdx != 3 {
		t.Errorf("expected access 3 on fifo 3, got %+v", status)
	}
}

func TestCodec_RefreshRejectsHardwareBounds(t *testing.T) {
	for _, dims := range [][2]uint32{{32, 64}, {64, 8192}} {
		c := New(mocks.NewLogger())
		_, err := c.Setup(testStream(dims[0], dims[1], idrSlice(0)))
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%dx%d: expected ErrUnsupported, got %v", dims[0], dims[1], err)
		}
	}
}

func TestCodec_IDRLeavesOnePictureMarked(t *testing.T) {
	c := setup(t, testStream(640, 480))
	mustDecode(t, c, idrSlice(0), pSlice(1, -1), pSlice(2, -1, -2))
	if c.Context().Pool.Marked() != 3 {
		t.Fatalf("expected 3 marked pictures before the IDR, got %d", c.Context().Pool.Marked())
	}

	st, err := c.InitSlice(idrSlice(0))
	if err != nil {
		t.Fatalf("InitSlice failed: %v", err)
	}
	if got := c.Context().Pool.Marked(); got != 1 {
		t.Errorf("expected exactly one marked picture after IDR, got %d", got)
	}
	if st.Lists != nil {
		t.Error("IDR slice must not build reference lists")
	}
	if st.Pic.Flags != FlagOutput|FlagShortRef {
		t.Errorf("expected output|short-ref flags, got %d", st.Pic.Flags)
	}
}

func TestCodec_PSliceListOrder(t *testing.T) {
	c := setup(t, testStream(640, 480))
	states := mustDecode(t, c, idrSlice(0), pSlice(1, -1), pSlice(2, -1, -2))

	lists := states[2].Lists
	if diff := cmp.Diff([]int32{1, 0}, pocs(lists.L0)); diff != "" {
		t.Errorf("L0 mismatch (-want +got):\n%s", diff)
	}
	if lists.L1 != nil {
		t.Error("P slice must not build L1")
	}
	if lists.Len() != 2 {
		t.Errorf("expected flattened list of 2, got %d", lists.Len())
	}
}

// The initial lists put preceding pictures first in L0 and following
// pictures first in L1, for P and B slices alike.
func TestCodec_ListOrderFollowsHEVCInit(t *testing.T) {
	// POC 2 references POC 0 (delta -2) and POC 4 (delta +2).
	around := func(typ uint8) *syntax.HEVCSlice {
		return &syntax.HEVCSlice{
			NalUnitType:            1,
			FirstSliceSegmentInPic: true,
			SliceType:              typ,
			PicOrderCntLsb:         2,
			ShortTermRPS: syntax.ShortTermRPS{
				NumNegativePics: 1,
				DeltaPOC:        []int32{-2, 2},
				Used:            []bool{true, true},
			},
			NumRefIdxL0ActiveMinus1: 1,
			NumRefIdxL1ActiveMinus1: 1,
		}
	}

	tests := []struct {
		name   string
		typ    uint8
		wantL0 []int32
		wantL1 []int32
	}{
		{"P slice", syntax.HEVCSliceP, []int32{0, 4}, nil},
		{"B slice", syntax.HEVCSliceB, []int32{0, 4}, []int32{4, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setup(t, testStream(640, 480))
			states := mustDecode(t, c, idrSlice(0), pSlice(4, -4), around(tt.typ))

			lists := states[2].Lists
			if diff := cmp.Diff(tt.wantL0, pocs(lists.L0)); diff != "" {
				t.Errorf("L0 mismatch (-want +got):\n%s", diff)
			}
			if tt.wantL1 == nil {
				if lists.L1 != nil {
					t.Errorf("P slice must not build L1, got %v", pocs(lists.L1))
				}
				return
			}
			if diff := cmp.Diff(tt.wantL1, pocs(lists.L1)); diff != "" {
				t.Errorf("L1 mismatch (-want +got):\n%s", diff)
			}
			if lists.Len() != 4 {
				t.Errorf("expected 4 entries in the flattened list, got %d", lists.Len())
			}
			if pos := lists.Position(lists.L1[0]); pos != 1 {
				t.Errorf("L1[0] should resolve to flattened position 1, got %d", pos)
			}
		})
	}
}

// withLongTerm adds long-term entries to a P slice and widens L0 to cover them.
func withLongTerm(sl *syntax.HEVCSlice, refs ...syntax.LongTermRef) *syntax.HEVCSlice {
	sl.LongTermRefs = refs
	sl.NumRefIdxL0ActiveMinus1 = uint8(len(sl.ShortTermRPS.DeltaPOC) + len(refs) - 1)
	return sl
}

func TestCodec_LongTermByLSB(t *testing.T) {
	c := setup(t, testStream(640, 480))
	cur := withLongTerm(pSlice(2, -1), syntax.LongTermRef{PocLsb: 0, UsedByCurr: true})
	states := mustDecode(t, c, idrSlice(0), pSlice(1, -1), cur)

	l0 := states[2].Lists.L0
	if diff := cmp.Diff([]int32{1, 0}, pocs(l0)); diff != "" {
		t.Fatalf("L0 mismatch (-want +got):\n%s", diff)
	}
	if l0[0].Type != RefShortTerm || l0[0].Flags&FlagShortRef == 0 {
		t.Errorf("L0[0] should stay short-term, got %s", l0[0])
	}
	if l0[1].Type != RefLongTerm || l0[1].Flags&FlagLongRef == 0 {
		t.Errorf("long-term entry should close L0, got %s", l0[1])
	}
	if l0[1].Flags&FlagShortRef != 0 {
		t.Errorf("long-term picture must drop its short-term flag, got %s", l0[1])
	}
}

func TestCodec_LongTermFollowStaysMarked(t *testing.T) {
	c := setup(t, testStream(640, 480))
	foll := pSlice(12, -6)
	foll.LongTermRefs = []syntax.LongTermRef{{PocLsb: 0}}
	states := mustDecode(t, c, idrSlice(0), pSlice(6, -6), foll)

	if diff := cmp.Diff([]int32{6}, pocs(states[2].Lists.L0)); diff != "" {
		t.Errorf("L0 mismatch (-want +got):\n%s", diff)
	}
	kept := c.Context().Pool.Pictures()[0]
	if kept.POC != 0 || !kept.Ref {
		t.Fatalf("poc 0 should stay marked, got %s", kept)
	}
	if kept.Type != RefLongTerm || kept.Flags&FlagLongRef == 0 {
		t.Errorf("poc 0 should be held as long-term, got %s", kept)
	}
	if got := c.Context().Pool.Marked(); got != 3 {
		t.Errorf("expected 3 marked pictures, got %d", got)
	}
}

// Pictures 0, 6 and 12 precede the current picture, whose lsb 2 wraps the
// 16-entry lsb range into poc 18.
func TestCodec_LongTermWithMSB(t *testing.T) {
	tests := []struct {
		name     string
		cycle    uint32
		wantPOC  int32
		wantType RefType
	}{
		{"one cycle back", 1, 0, RefLongTerm},
		{"same cycle", 0, 16, RefMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setup(t, testStream(640, 480))
			foll := pSlice(12, -6)
			foll.LongTermRefs = []syntax.LongTermRef{{PocLsb: 0}}
			cur := withLongTerm(pSlice(2, -6), syntax.LongTermRef{
				PocLsb:             0,
				UsedByCurr:         true,
				DeltaPocMsbPresent: true,
				DeltaPocMsbCycle:   tt.cycle,
			})
			states := mustDecode(t, c, idrSlice(0), pSlice(6, -6), foll, cur)

			if got := states[3].Pic.POC; got != 18 {
				t.Fatalf("expected current poc 18, got %d", got)
			}
			l0 := states[3].Lists.L0
			if diff := cmp.Diff([]int32{12, tt.wantPOC}, pocs(l0)); diff != "" {
				t.Fatalf("L0 mismatch (-want +got):\n%s", diff)
			}
			if l0[1].Type != tt.wantType {
				t.Errorf("expected %s entry, got %s", tt.wantType, l0[1])
			}
		})
	}
}

func TestCodec_DPBSnapshotIsNotAliased(t *testing.T) {
	c := setup(t, testStream(640, 480))
	states := mustDecode(t, c, idrSlice(0), pSlice(1, -1))
	snap := states[1].Lists.DPB[0]

	mustDecode(t, c, idrSlice(0))
	if states[1].Lists.DPB[0] != snap {
		t.Error("flattened reference list changed after the pool moved on")
	}
}

func TestCodec_MissingReferenceIsSynthesized(t *testing.T) {
	c := setup(t, testStream(640, 480))
	states := mustDecode(t, c, idrSlice(0), pSlice(1, -3))

	ref := states[1].Lists.L0[0]
	if ref.POC != -2 || ref.Type != RefMissing {
		t.Errorf("expected placeholder with poc -2, got %s", ref)
	}
	if ref.Flags&FlagOutput != 0 {
		t.Error("placeholder must not be pending output")
	}
}

func TestCodec_BumpingIsNotImplemented(t *testing.T) {
	c := setup(t, testStream(640, 480))
	mustDecode(t, c,
		idrSlice(0),
		pSlice(1, -1),
		pSlice(2, -1, -2),
		pSlice(3, -1, -2, -3),
		pSlice(4, -1, -2, -3, -4),
	)
	_, err := decode(c, pSlice(5, -1, -2, -3, -4, -5))
	if !errors.Is(err, ErrBumpingNotImplemented) {
		t.Errorf("expected ErrBumpingNotImplemented, got %v", err)
	}
	if got := c.Context().Pool.Marked(); got > PoolSize {
		t.Errorf("marked pictures %d exceed pool size", got)
	}
}

func TestPool_Exhaustion(t *testing.T) {
	pool := NewPool([]uint64{0x1000, 0x2000})
	for i := 0; i < 2; i++ {
		pic, err := pool.Acquire()
		if err != nil {
			t.Fatalf("acquire %d failed: %v", i, err)
		}
		if pic.Index != i {
			t.Errorf("expected first free slot %d, got %d", i, pic.Index)
		}
	}
	if _, err := pool.Acquire(); !errors.Is(err, ErrDPBExhausted) {
		t.Errorf("expected ErrDPBExhausted, got %v", err)
	}
	if !pool.Full() {
		t.Error("pool should report full")
	}
}

func TestCodec_DependentSegmentReusesLists(t *testing.T) {
	c := setup(t, testStream(640, 480))
	first := pSlice(1, -1)
	dep := pSlice(1, -1)
	dep.FirstSliceSegmentInPic = false
	dep.DependentSliceSegment = true

	states := mustDecode(t, c, idrSlice(0), first, dep)
	if states[2].Pic != states[1].Pic {
		t.Error("dependent segment must stay on the picture of its first segment")
	}
	if states[2].Lists != states[1].Lists {
		t.Error("dependent segment must reuse the lists of its independent segment")
	}
	if c.Context().Pool.Marked() != 2 {
		t.Errorf("expected 2 marked pictures, got %d", c.Context().Pool.Marked())
	}
}

func TestBuildList(t *testing.T) {
	set := &RefSet{}
	a := &Picture{Index: 0, POC: 1}
	b := &Picture{Index: 1, POC: 0}
	set.add(StCurrBefore, a)
	set.add(StCurrBefore, b)

	t.Run("cycles when active exceeds candidates", func(t *testing.T) {
		got, err := buildList(set, l0Order, 3, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int32{1, 0, 1}, pocs(got)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("list modification picks entries", func(t *testing.T) {
		got, err := buildList(set, l0Order, 2, true, []uint8{1, 0})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int32{0, 1}, pocs(got)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if _, err := buildList(&RefSet{}, l0Order, 1, false, nil); !errors.Is(err, ErrNoReferences) {
			t.Errorf("expected ErrNoReferences, got %v", err)
		}
	})
}

func TestPOCDerivation(t *testing.T) {
	tests := []struct {
		name string
		lsbs []uint32
		want []int32
	}{
		{"monotonic", []uint32{0, 1, 2}, []int32{0, 1, 2}},
		{"wraps forward", []uint32{0, 6, 12, 2}, []int32{0, 6, 12, 18}},
		{"wraps backward", []uint32{0, 14}, []int32{0, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s pocState
			var got []int32
			for i, lsb := range tt.lsbs {
				sl := &syntax.HEVCSlice{NalUnitType: 1, PicOrderCntLsb: lsb}
				if i == 0 {
					sl.NalUnitType = syntax.HEVCNalIDRWRADL
				}
				got = append(got, s.derive(sl, 16, i == 0))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodec_Errors(t *testing.T) {
	c := setup(t, testStream(640, 480, idrSlice(0)))

	bad := idrSlice(0)
	bad.SliceType = 7
	if _, err := c.InitSlice(bad); !errors.Is(err, ErrUnknownSliceType) {
		t.Errorf("expected ErrUnknownSliceType, got %v", err)
	}

	missing := idrSlice(0)
	missing.PPSID = 9
	if err := c.Refresh(missing); !errors.Is(err, ErrMissingParameterSet) {
		t.Errorf("expected ErrMissingParameterSet, got %v", err)
	}

	if _, err := New(mocks.NewLogger()).InitSlice(idrSlice(0)); !errors.Is(err, ErrNoContext) {
		t.Errorf("expected ErrNoContext, got %v", err)
	}
}

func TestCodec_FinishAdvancesCounters(t *testing.T) {
	c := setup(t, testStream(640, 480))
	mustDecode(t, c, idrSlice(0), pSlice(1, -1))

	status := c.Status()
	if status.AccessIdx != 2 || status.FifoIdx != 2 {
		t.Errorf("expected access 2 on fifo 2, got %+v", status)
	}
	if status.LastIntra {
		t.Error("last slice was a P slice")
	}
	if status.FifoIOVA != c.Context().FifoAddrs[2] {
		t.Errorf("fifo iova 0x%x does not match slot 2", status.FifoIOVA)
	}
}
