package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/mocks"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Input: InputInfo{
			Path:        "dumps/clip.yaml",
			Codec:       "h265",
			CodecSource: "dump",
			Width:       1920,
			Height:      1080,
		},
		Decode: DecodeInfo{
			Slices:       12,
			IntraSlices:  1,
			Instructions: 256,
		},
		Layout: LayoutInfo{
			Generations: 1,
			Ranges: []allocator.Range{
				{IOVA: 0x18000, Size: 0x100000, Name: "inst_fifo0"},
				{IOVA: 0x734000, Size: 0x4000, Name: "rvra0"},
			},
		},
		Output: OutputInfo{Dir: "out"},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# Decode Summary",
		"2024-01-15 10:30:00",
		"dumps/clip.yaml",
		"h265 (dump)",
		"1920x1080",
		"| Slices | 12 |",
		"| Intra Slices | 1 |",
		"| Instructions | 256 |",
		"1.00 KB", // command data
		"| inst_fifo0 | 0x18000 | 0x100000 (1.00 MB) |",
		"End of Layout: 0x738000",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_Format_NoRanges(t *testing.T) {
	summary := testSummary()
	summary.Layout = LayoutInfo{}
	summary.Input.Width = 0

	result := NewMarkdownFormatter().Format(summary)
	if !strings.Contains(result, "No ranges published") {
		t.Error("expected a note about the missing layout")
	}
	if !strings.Contains(result, "| Dimensions | N/A |") {
		t.Error("expected N/A dimensions")
	}
	if strings.Contains(result, "End of Layout") {
		t.Error("no layout end without ranges")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Decode Summary": "デコードサマリー",
			"Slices":         "スライス数",
			"dump":           "ダンプ",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(testSummary())

	for _, want := range []string{"デコードサマリー", "| スライス数 | 12 |", "h265 (ダンプ)"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(testSummary())
	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string { return "summary" }), fs)

	if err := w.Write("reports/run.md", testSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile("reports/run.md")
	if !ok || string(data) != "summary" {
		t.Errorf("unexpected written content %q", data)
	}
	if exists, _ := fs.Exists("reports"); !exists {
		t.Error("expected parent directory to be created")
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(path string, data []byte) error { return errors.New("read-only") }
	w := NewWriter(NewMarkdownFormatter(), fs)

	if err := w.Write("run.md", testSummary()); err == nil {
		t.Error("expected the write error to surface")
	}
}
