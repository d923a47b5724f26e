// Package allocator lays out the accelerator's device-visible address space.
//
// The allocator is a bump allocator: every call hands out the current cursor
// (optionally aligned and offset) and advances it past the new range. The
// cursor never moves backwards, so a fixed call sequence always produces the
// same collision-free layout.
package allocator

import (
	"fmt"
	"strings"
)

// Range is a named region of device address space.
type Range struct {
	IOVA uint64 `json:"iova"`
	Size uint64 `json:"size"`
	Name string `json:"name"`
}

// End returns the first address past the range.
func (r Range) End() uint64 {
	return r.IOVA + r.Size
}

// String formats the range for diagnostic dumps.
func (r Range) String() string {
	return fmt.Sprintf("[iova: %9s size: %9s name: %-11s]",
		fmt.Sprintf("0x%x", r.IOVA), fmt.Sprintf("0x%x", r.Size), r.Name)
}

// Option adjusts a single allocation.
type Option func(*request)

type request struct {
	pad   uint64
	padb4 uint64
	align uint64
}

// WithPad reserves pad bytes after the range.
func WithPad(pad uint64) Option {
	return func(r *request) { r.pad = pad }
}

// WithPadBefore skips padb4 bytes before the range (applied after alignment).
func WithPadBefore(padb4 uint64) Option {
	return func(r *request) { r.padb4 = padb4 }
}

// WithAlign rounds the start of the range up to a multiple of align.
func WithAlign(align uint64) Option {
	return func(r *request) { r.align = align }
}

// Allocator hands out non-overlapping address ranges.
type Allocator struct {
	last uint64
	used []Range
}

// New creates an empty allocator with the cursor at zero.
func New() *Allocator {
	return &Allocator{}
}

// Allocate returns the start address of a new range of size bytes and
// records it in the range log. An empty name is replaced by "range_<n>".
func (a *Allocator) Allocate(size uint64, name string, opts ...Option) uint64 {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	iova := a.last
	if req.align != 0 {
		iova = RoundUp(iova, req.align)
	}
	iova += req.padb4

	if name == "" {
		name = fmt.Sprintf("range_%d", len(a.used))
	}
	a.used = append(a.used, Range{IOVA: iova, Size: size, Name: name})
	a.last = iova + size + req.pad
	return iova
}

// MoveUp forces the cursor forward to start.
func (a *Allocator) MoveUp(start uint64) error {
	if start < a.last {
		return fmt.Errorf("%w: 0x%x is behind cursor 0x%x", ErrRegression, start, a.last)
	}
	a.last = start
	return nil
}

// Reset clears the cursor and the range log.
func (a *Allocator) Reset() {
	a.last = 0
	a.used = nil
}

// Cursor returns the next free address.
func (a *Allocator) Cursor() uint64 {
	return a.last
}

// Ranges returns a copy of the range log in allocation order.
func (a *Allocator) Ranges() []Range {
	out := make([]Range, len(a.used))
	copy(out, a.used)
	return out
}

// Dump formats the range log, one line per range. Reference buffers (names
// containing "rvra") also show their address in 128-byte units, which is how
// the firmware addresses them.
func (a *Allocator) Dump() []string {
	lines := make([]string, 0, len(a.used)+1)
	for i, r := range a.used {
		s := fmt.Sprintf("[%2d] %s", i, r)
		if strings.Contains(r.Name, "rvra") {
			s += fmt.Sprintf(" %7s", fmt.Sprintf("0x%x", r.IOVA>>7))
		}
		lines = append(lines, s)
	}
	lines = append(lines, fmt.Sprintf("last iova: 0x%08x", a.last))
	return lines
}

// RoundUp rounds x up to the next multiple of align.
func RoundUp(x, align uint64) uint64 {
	if align == 0 {
		return x
	}
	return (x + align - 1) / align * align
}
