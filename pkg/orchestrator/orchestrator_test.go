package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/mocks"
	"github.com/user/avdcmd/pkg/syntax"
)

func vp9Frame(frameType uint8, width, height uint32) *syntax.VP9Frame {
	return &syntax.VP9Frame{
		FrameType:   frameType,
		ShowFrame:   true,
		FrameWidth:  width,
		FrameHeight: height,
	}
}

func vp9Stream(frames ...*syntax.VP9Frame) *syntax.Stream {
	return &syntax.Stream{Codec: syntax.CodecVP9, VP9Frames: frames}
}

func hevcStream() *syntax.Stream {
	idr := func() *syntax.HEVCSlice {
		return &syntax.HEVCSlice{
			NalUnitType:            syntax.HEVCNalIDRWRADL,
			FirstSliceSegmentInPic: true,
			SliceType:              syntax.HEVCSliceI,
			PicOutputFlag:          true,
		}
	}
	return &syntax.Stream{
		Codec: syntax.CodecHEVC,
		HEVC: &syntax.HEVCHeaders{
			SPS: []*syntax.HEVCSPS{{ChromaFormatIDC: 1, PicWidthInLumaSamples: 640, PicHeightInLumaSamples: 480}},
			PPS: []*syntax.HEVCPPS{{}},
		},
		HEVCSlices: []*syntax.HEVCSlice{idr(), idr()},
	}
}

type fixture struct {
	parser    *mocks.Parser
	submitter *mocks.Submitter
	renderer  *mocks.Renderer
	sink      *mocks.DebugSink
	logger    *mocks.Logger
	orch      *Orchestrator
}

func newFixture(stream *syntax.Stream, debug bool) *fixture {
	f := &fixture{
		parser:    mocks.NewParser(stream),
		submitter: mocks.NewSubmitter(),
		renderer:  &mocks.Renderer{},
		sink:      mocks.NewDebugSink(debug),
		logger:    mocks.NewLogger(),
	}
	f.orch = New(f.parser, f.parser, f.submitter, f.renderer, f.sink, f.logger)
	return f
}

func testConfig() Config {
	config := DefaultConfig()
	config.Input = "clip.yaml"
	return config
}

func iovaOf(t *testing.T, ranges []allocator.Range, name string) uint64 {
	t.Helper()
	for _, r := range ranges {
		if r.Name == name {
			return r.IOVA
		}
	}
	t.Fatalf("range %s not published", name)
	return 0
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture(vp9Stream(
		vp9Frame(syntax.VP9KeyFrame, 128, 64),
		vp9Frame(syntax.VP9NonKeyFrame, 128, 64),
		vp9Frame(syntax.VP9NonKeyFrame, 128, 64),
	), false)

	result, err := f.orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.submitter.Published) != 1 {
		t.Fatalf("expected one published layout, got %d", len(f.submitter.Published))
	}
	ranges := f.submitter.Published[0]

	var gotIdx []int
	for i, sub := range f.submitter.Submissions {
		gotIdx = append(gotIdx, sub.Index)
		if want := iovaOf(t, ranges, "inst_fifo"+string(rune('0'+i))); sub.IOVA != want {
			t.Errorf("slice %d submitted to 0x%x, want fifo %d at 0x%x", i, sub.IOVA, i, want)
		}
		if last := sub.Values[len(sub.Values)-1]; last != 0x2b000400 {
			t.Errorf("slice %d: expected terminated stream, last word 0x%x", i, last)
		}
	}
	if diff := cmp.Diff([]int{0, 1, 2}, gotIdx); diff != "" {
		t.Errorf("submission order mismatch (-want +got):\n%s", diff)
	}
	if !f.submitter.Closed {
		t.Error("submitter should be closed")
	}

	want := RunResult{
		Input:       "clip.yaml",
		OutputDir:   "out",
		Codec:       syntax.CodecVP9,
		CodecSource: SourceDump,
		Width:       128,
		Height:      64,
		Slices:      3,
		IntraSlices: 1,
		Layouts:     1,
	}
	got := result
	got.Instructions, got.Ranges = 0, nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if result.Instructions == 0 || len(result.Ranges) != len(ranges) {
		t.Errorf("expected instruction count and ranges, got %d / %d", result.Instructions, len(result.Ranges))
	}
	if !f.logger.Contains("Decoding finished: 3 slices") {
		t.Error("expected a completion log line")
	}
}

func TestOrchestrator_Run_LayoutRebuilt(t *testing.T) {
	f := newFixture(vp9Stream(
		vp9Frame(syntax.VP9KeyFrame, 128, 64),
		vp9Frame(syntax.VP9KeyFrame, 1024, 512),
	), false)

	result, err := f.orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.submitter.Published) != 2 || result.Layouts != 2 {
		t.Fatalf("expected the layout to be republished, got %d", len(f.submitter.Published))
	}
	if result.Width != 1024 || result.Height != 512 {
		t.Errorf("expected final dimensions 1024x512, got %dx%d", result.Width, result.Height)
	}
	if !f.logger.Contains("Address layout rebuilt (generation 2)") {
		t.Error("expected a layout rebuild log line")
	}
}

func TestOrchestrator_Run_DebugOutput(t *testing.T) {
	f := newFixture(hevcStream(), true)
	config := testConfig()
	config.MapWidth = 256

	if _, err := f.orch.Run(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.sink.Ranges) == 0 {
		t.Error("expected the range table to be saved")
	}
	if f.sink.RangeMap == nil || f.sink.RangeMap.Bounds().Dx() != 256 {
		t.Errorf("expected a 256px wide range map, got %v", f.sink.RangeMap)
	}
	if len(f.sink.Listings) != 2 {
		t.Errorf("expected a listing per slice, got %d", len(f.sink.Listings))
	}
	dpb := f.sink.DPB[1]
	if len(dpb) != 6 {
		t.Fatalf("expected the 6-slot pool after slice 1, got %d lines", len(dpb))
	}
	if dpb[0][:9] != "slice 1: " {
		t.Errorf("DPB lines should carry the slice index, got %q", dpb[0])
	}
}

func TestOrchestrator_Run_NoRenderMap(t *testing.T) {
	f := newFixture(vp9Stream(vp9Frame(syntax.VP9KeyFrame, 128, 64)), true)
	config := testConfig()
	config.RenderMap = false

	if _, err := f.orch.Run(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.sink.RangeMap != nil || len(f.renderer.Canvases()) != 0 {
		t.Error("range map should not be rendered")
	}
	if len(f.sink.DPB) != 0 {
		t.Error("VP9 keeps no DPB dump")
	}
}

func TestOrchestrator_Run_SubmitError(t *testing.T) {
	f := newFixture(vp9Stream(
		vp9Frame(syntax.VP9KeyFrame, 128, 64),
		vp9Frame(syntax.VP9NonKeyFrame, 128, 64),
	), false)
	errFull := errors.New("queue full")
	f.submitter.SubmitFunc = func(index int, iova uint64, stream *inst.Stream, params inst.Params) error {
		if index == 1 {
			return errFull
		}
		return nil
	}

	_, err := f.orch.Run(context.Background(), testConfig())
	if !errors.Is(err, errFull) {
		t.Fatalf("expected the submit error, got %v", err)
	}
	if len(f.submitter.Submissions) != 1 {
		t.Errorf("expected one successful submission, got %d", len(f.submitter.Submissions))
	}
	if !f.submitter.Closed {
		t.Error("submitter should be closed on failure")
	}
	if !f.logger.Contains("Slice 1 failed") {
		t.Error("expected the failure to be logged")
	}
}

func TestOrchestrator_Run_UnsupportedFrame(t *testing.T) {
	bad := vp9Frame(syntax.VP9NonKeyFrame, 128, 64)
	bad.ShowExistingFrame = true
	f := newFixture(vp9Stream(vp9Frame(syntax.VP9KeyFrame, 128, 64), bad), false)

	result, err := f.orch.Run(context.Background(), testConfig())
	if err == nil {
		t.Fatal("expected an error")
	}
	if result.Slices != 1 {
		t.Errorf("expected one decoded slice before the failure, got %d", result.Slices)
	}
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	f := newFixture(vp9Stream(vp9Frame(syntax.VP9KeyFrame, 128, 64)), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.Run(ctx, testConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.submitter.Submissions) != 0 {
		t.Error("nothing should be submitted after cancellation")
	}
}

func TestOrchestrator_Run_Limit(t *testing.T) {
	f := newFixture(vp9Stream(
		vp9Frame(syntax.VP9KeyFrame, 128, 64),
		vp9Frame(syntax.VP9NonKeyFrame, 128, 64),
		vp9Frame(syntax.VP9NonKeyFrame, 128, 64),
	), false)
	config := testConfig()
	config.Limit = 2

	result, err := f.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Slices != 2 {
		t.Errorf("expected 2 slices, got %d", result.Slices)
	}
}

func TestOrchestrator_Run_NoSlices(t *testing.T) {
	f := newFixture(vp9Stream(), false)
	if _, err := f.orch.Run(context.Background(), testConfig()); err == nil {
		t.Fatal("expected an error for an empty stream")
	}
	if !f.logger.Contains("No slices left after limit 0") {
		t.Error("expected a warning about the empty stream")
	}
}

func TestOrchestrator_ResolveCodec(t *testing.T) {
	errProbe := errors.New("probe failed")
	tests := []struct {
		name       string
		codec      string
		stream     *syntax.Stream
		probe      syntax.Codec
		probeErr   error
		want       syntax.Codec
		wantSource string
		wantErr    error
	}{
		{
			name:       "config wins",
			codec:      "h264",
			stream:     &syntax.Stream{Codec: syntax.CodecVP9},
			want:       syntax.CodecH264,
			wantSource: SourceConfig,
		},
		{
			name:       "dump header",
			codec:      "auto",
			stream:     &syntax.Stream{Codec: syntax.CodecHEVC},
			want:       syntax.CodecHEVC,
			wantSource: SourceDump,
		},
		{
			name:       "container probe",
			stream:     &syntax.Stream{Codec: syntax.CodecUnknown, Container: "/media/a.mp4"},
			probe:      syntax.CodecVP9,
			want:       syntax.CodecVP9,
			wantSource: SourceContainer,
		},
		{
			name:     "probe error",
			stream:   &syntax.Stream{Container: "/media/a.mp4"},
			probeErr: errProbe,
			want:     syntax.CodecUnknown,
			wantErr:  errProbe,
		},
		{
			name:    "nothing to go on",
			stream:  &syntax.Stream{},
			want:    syntax.CodecUnknown,
			wantErr: ErrNoCodec,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &mocks.Parser{
				ProbeFunc: func(path string) (syntax.Codec, error) {
					if tt.probeErr != nil {
						return syntax.CodecUnknown, tt.probeErr
					}
					return tt.probe, nil
				},
			}
			o := New(mocks.NewParser(tt.stream), prober, mocks.NewSubmitter(), nil, mocks.NewDebugSink(false), mocks.NewLogger())
			config := Config{Codec: tt.codec}

			got, source, err := o.resolveCodec(config, tt.stream)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want || source != tt.wantSource {
				t.Errorf("got %s from %q, want %s from %q", got, source, tt.want, tt.wantSource)
			}
		})
	}

	o := New(nil, nil, mocks.NewSubmitter(), nil, mocks.NewDebugSink(false), mocks.NewLogger())
	if _, _, err := o.resolveCodec(Config{Codec: "mpeg2"}, &syntax.Stream{}); err == nil {
		t.Error("expected an error for an unknown configured codec")
	}
}
