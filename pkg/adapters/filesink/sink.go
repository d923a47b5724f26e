// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/avdcmd/pkg/ports"
)

// Sink saves debug output to files below baseDir:
//
//	ranges.txt
//	rangemap.png
//	listings/slice-0000.txt
//	dpb/slice-0000.txt
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRanges saves the textual range table.
func (s *Sink) SaveRanges(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "ranges.txt"), data)
}

// SaveRangeMap saves the rendered address map as PNG.
func (s *Sink) SaveRangeMap(img image.Image) error {
	data, err := s.renderer.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode range map: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "rangemap.png"), data)
}

// SaveListing saves the instruction listing of one slice.
func (s *Sink) SaveListing(index int, lines []string) error {
	return s.saveLines("listings", index, lines)
}

// SaveDPB saves the DPB state after one slice.
func (s *Sink) SaveDPB(index int, lines []string) error {
	return s.saveLines("dpb", index, lines)
}

func (s *Sink) saveLines(sub string, index int, lines []string) error {
	dir := filepath.Join(s.baseDir, sub)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("slice-%04d.txt", index))
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return s.fs.WriteFile(path, []byte(b.String()))
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
