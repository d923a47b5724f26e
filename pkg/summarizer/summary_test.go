package summarizer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/user/avdcmd/pkg/allocator"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithInput(t *testing.T) {
	summary := NewBuilder().
		WithInput("clip.yaml", "h265", "dump").
		WithDimensions(1920, 1080).
		Build()

	want := InputInfo{Path: "clip.yaml", Codec: "h265", CodecSource: "dump", Width: 1920, Height: 1080}
	if diff := cmp.Diff(want, summary.Input); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_WithDecode(t *testing.T) {
	summary := NewBuilder().
		WithDecode(DecodeInfo{Slices: 10, IntraSlices: 1, Instructions: 900}).
		Build()

	if summary.Decode.Slices != 10 || summary.Decode.IntraSlices != 1 || summary.Decode.Instructions != 900 {
		t.Errorf("unexpected decode info %+v", summary.Decode)
	}
}

func TestBuilder_FullChain(t *testing.T) {
	ranges := []allocator.Range{{IOVA: 0x18000, Size: 0x100000, Name: "inst_fifo0"}}
	summary := NewBuilder().
		WithInput("clip.yaml", "vp9", "config").
		WithDimensions(128, 64).
		WithDecode(DecodeInfo{Slices: 3}).
		WithLayout(2, ranges).
		WithOutput("out").
		Build()

	if summary.Layout.Generations != 2 || len(summary.Layout.Ranges) != 1 {
		t.Errorf("unexpected layout %+v", summary.Layout)
	}
	if summary.Output.Dir != "out" {
		t.Errorf("expected output dir 'out', got %q", summary.Output.Dir)
	}
	if summary.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be set")
	}
}
