// Package diag renders human-readable diagnostics of a decode run: the
// address range table, DPB dumps and a drawn map of the device address
// space. Nothing here feeds back into decoding.
package diag

import (
	"fmt"
	"strings"

	"github.com/user/avdcmd/pkg/allocator"
)

// FormatRanges renders the range table, one range per line, followed by the
// end of the layout.
func FormatRanges(ranges []allocator.Range) []byte {
	var b strings.Builder
	var end uint64
	for _, r := range ranges {
		b.WriteString(r.String())
		b.WriteByte('\n')
		if r.End() > end {
			end = r.End()
		}
	}
	fmt.Fprintf(&b, "%d ranges, end 0x%x\n", len(ranges), end)
	return []byte(b.String())
}

// FormatDPB prefixes each DPB line with the slice it was taken after.
func FormatDPB(index int, lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = fmt.Sprintf("slice %d: %s", index, line)
	}
	return out
}

// Category groups ranges by what they hold.
type Category int

const (
	CategoryOther Category = iota
	CategoryFifo
	CategoryReference
	CategoryTile
	CategoryFrame
)

// Classify returns the category of a range from its name.
func Classify(name string) Category {
	switch {
	case strings.HasPrefix(name, "inst_fifo"), strings.HasPrefix(name, "probs"):
		return CategoryFifo
	case strings.HasPrefix(name, "rvra"):
		return CategoryReference
	case strings.HasPrefix(name, "sps_tile"), strings.HasPrefix(name, "pps_tile"):
		return CategoryTile
	case name == "disp_y", name == "disp_uv", name == "slice_data":
		return CategoryFrame
	default:
		return CategoryOther
	}
}
