// Package summarizer provides summary generation for decode runs.
package summarizer

import (
	"time"

	"github.com/user/avdcmd/pkg/allocator"
)

// Summary contains all data collected during a decode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `yaml:"generated_at"`

	// Input stream
	Input InputInfo `yaml:"input"`

	// Decoding results
	Decode DecodeInfo `yaml:"decode"`

	// Device address layout
	Layout LayoutInfo `yaml:"layout"`

	// Output location
	Output OutputInfo `yaml:"output"`
}

// InputInfo describes the decoded stream.
type InputInfo struct {
	Path        string `yaml:"path"`
	Codec       string `yaml:"codec"`
	CodecSource string `yaml:"codec_source"`
	Width       uint32 `yaml:"width"`
	Height      uint32 `yaml:"height"`
}

// DecodeInfo contains the slice loop counters.
type DecodeInfo struct {
	Slices       int `yaml:"slices"`
	IntraSlices  int `yaml:"intra_slices"`
	Instructions int `yaml:"instructions"`
}

// LayoutInfo contains the last published address layout.
type LayoutInfo struct {
	// Generations counts how many layouts were published.
	Generations int               `yaml:"generations"`
	Ranges      []allocator.Range `yaml:"ranges"`
}

// OutputInfo describes where the command buffers went.
type OutputInfo struct {
	Dir string `yaml:"dir"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets the input path and the codec with where it was resolved from.
func (b *Builder) WithInput(path, codec, source string) *Builder {
	b.summary.Input.Path = path
	b.summary.Input.Codec = codec
	b.summary.Input.CodecSource = source
	return b
}

// WithDimensions sets the coded picture size.
func (b *Builder) WithDimensions(width, height uint32) *Builder {
	b.summary.Input.Width = width
	b.summary.Input.Height = height
	return b
}

// WithDecode sets the decode counters.
func (b *Builder) WithDecode(decode DecodeInfo) *Builder {
	b.summary.Decode = decode
	return b
}

// WithLayout sets the layout information.
func (b *Builder) WithLayout(generations int, ranges []allocator.Range) *Builder {
	b.summary.Layout = LayoutInfo{
		Generations: generations,
		Ranges:      ranges,
	}
	return b
}

// WithOutput sets the output directory.
func (b *Builder) WithOutput(dir string) *Builder {
	b.summary.Output = OutputInfo{Dir: dir}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
