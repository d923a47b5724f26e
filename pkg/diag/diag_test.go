package diag

import (
	"image"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/mocks"
)

func testRanges() []allocator.Range {
	return []allocator.Range{
		{IOVA: 0x18000, Size: 0x100000, Name: "inst_fifo0"},
		{IOVA: 0x734000, Size: 0x10000, Name: "rvra0"},
		{IOVA: 0x744100, Size: 0x8000, Name: "sps_tile0"},
	}
}

func TestFormatRanges(t *testing.T) {
	out := string(FormatRanges(testRanges()))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 3 ranges and a total line, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "inst_fifo0") || !strings.Contains(lines[0], "0x18000") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines[3] != "3 ranges, end 0x74c100" {
		t.Errorf("unexpected total line %q", lines[3])
	}
}

func TestFormatRanges_Empty(t *testing.T) {
	if got := string(FormatRanges(nil)); got != "0 ranges, end 0x0\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestFormatDPB(t *testing.T) {
	got := FormatDPB(4, []string{"[0] poc 8", "[1] free"})
	want := []string{"slice 4: [0] poc 8", "slice 4: [1] free"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"inst_fifo6", CategoryFifo},
		{"probs2", CategoryFifo},
		{"rvra1_3", CategoryReference},
		{"pps_tile4", CategoryTile},
		{"disp_uv", CategoryFrame},
		{"slice_data", CategoryFrame},
		{"scratch", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%s) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestRenderRangeMap(t *testing.T) {
	r := &mocks.Renderer{}
	style := DefaultMapStyle()
	img := RenderRangeMap(r, testRanges(), style)

	wantHeight := style.Padding*2 + style.HeaderHeight + 3*style.RowHeight
	if b := img.Bounds(); b.Dx() != style.Width || b.Dy() != wantHeight {
		t.Errorf("expected %dx%d map, got %dx%d", style.Width, wantHeight, b.Dx(), b.Dy())
	}

	canvases := r.Canvases()
	if len(canvases) != 1 {
		t.Fatalf("expected one canvas, got %d", len(canvases))
	}
	c := canvases[0]
	if len(c.Rects) != 6 {
		t.Errorf("expected a track and a fill per range, got %d rects", len(c.Rects))
	}

	wantTexts := []string{"0x0", "0x74c100", "inst_fifo0", "0x100000", "rvra0", "0x10000", "sps_tile0", "0x8000"}
	if diff := cmp.Diff(wantTexts, c.Texts); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}

	// The first fill starts near the left edge of the track and the last one
	// ends at its right edge.
	track := c.Rects[0]
	first, last := c.Rects[1], c.Rects[5]
	if first.Min.X < track.Min.X || first.Min.X > track.Min.X+track.Dx()/10 {
		t.Errorf("first range drawn at x=%d, track starts at %d", first.Min.X, track.Min.X)
	}
	if d := track.Max.X - last.Max.X; d < 0 || d > 2 {
		t.Errorf("last range should end at the track end: fill %v track %v", last, track)
	}
}

func TestRenderRangeMap_WidensLabels(t *testing.T) {
	r := &mocks.Renderer{}
	style := DefaultMapStyle()
	long := strings.Repeat("x", 30)
	RenderRangeMap(r, []allocator.Range{{IOVA: 0, Size: 0x10, Name: long}}, style)

	c := r.Canvases()[0]
	// 30 glyphs at 7px plus the 12px gutter.
	if got := c.Rects[0].Min.X; got != style.Padding+30*7+12 {
		t.Errorf("track should start after the widened label column, got x=%d", got)
	}
}

func TestRenderRangeMap_Empty(t *testing.T) {
	r := &mocks.Renderer{}
	img := RenderRangeMap(r, nil, DefaultMapStyle())
	if img.Bounds().Dy() == 0 {
		t.Error("expected a header-only map")
	}
	if len(r.Canvases()[0].Rects) != 0 {
		t.Error("empty layout should draw no rows")
	}
}

func TestThumbnail(t *testing.T) {
	r := &mocks.Renderer{}
	img := image.NewRGBA(image.Rect(0, 0, 1024, 200))

	thumb := Thumbnail(r, img, 256)
	if b := thumb.Bounds(); b.Dx() != 256 || b.Dy() != 50 {
		t.Errorf("expected 256x50, got %dx%d", b.Dx(), b.Dy())
	}
	if Thumbnail(r, img, 2048) != image.Image(img) {
		t.Error("narrow images should be returned unchanged")
	}
}
