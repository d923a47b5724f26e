package ports

import (
	"image"
)

// DebugSink receives human-readable diagnostics. Nothing written here
// affects decoding.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRanges saves the textual address range table.
	SaveRanges(data []byte) error

	// SaveRangeMap saves the rendered address space map.
	SaveRangeMap(img image.Image) error

	// SaveListing saves the instruction listing of one slice.
	SaveListing(index int, lines []string) error

	// SaveDPB saves the DPB state after one slice.
	SaveDPB(index int, lines []string) error
}
