package mocks

import (
	"image"
	"sync"

	"github.com/user/avdcmd/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Ranges   []byte
	RangeMap image.Image
	Listings map[int][]string
	DPB      map[int][]string
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:  enabled,
		Listings: make(map[int][]string),
		DPB:      make(map[int][]string),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRanges(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ranges = data
	return nil
}

func (m *DebugSink) SaveRangeMap(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RangeMap = img
	return nil
}

func (m *DebugSink) SaveListing(index int, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Listings[index] = lines
	return nil
}

func (m *DebugSink) SaveDPB(index int, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DPB[index] = lines
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
