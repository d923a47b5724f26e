// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/avdcmd/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

func (s *Sink) SaveRanges(data []byte) error { return nil }

func (s *Sink) SaveRangeMap(img image.Image) error { return nil }

func (s *Sink) SaveListing(index int, lines []string) error { return nil }

func (s *Sink) SaveDPB(index int, lines []string) error { return nil }

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
