// Package hal holds the parts of the accelerator command protocol shared by
// every codec encoder: FIFO framing, section markers, geometry words, DMA
// configuration constants, reference buffer layout and weighted prediction.
package hal

import (
	"fmt"

	"github.com/user/avdcmd/pkg/inst"
)

// Protocol opcodes.
const (
	OpFifoStart  uint32 = 0x2b000100
	OpFifoEnd    uint32 = 0x2b000400
	OpSliceData  uint32 = 0x2c000000
	OpSetMbDims  uint32 = 0x2a000000
	FifoSlotSize uint32 = 0x10
)

// DMA configuration words.
const (
	DMATile  uint32 = 0x4020002
	DMAPlane uint32 = 0x20002
	DMARef   uint32 = 0x70007
)

// Instruction names shared across codecs.
const (
	NameFifoStart  = "cm3_cmd_inst_fifo_start"
	NameFifoEnd    = "cm3_cmd_inst_fifo_end"
	NameEndSection = "cm3_mark_end_section"
)

// Writer appends protocol words to one slice's instruction stream.
type Writer struct {
	s *inst.Stream
}

// NewWriter starts an empty stream.
func NewWriter() *Writer {
	return &Writer{s: inst.NewStream()}
}

// Stream returns the stream written so far.
func (w *Writer) Stream() *inst.Stream {
	return w.s
}

// Push appends a named word.
func (w *Writer) Push(v uint32, name string) {
	w.s.Push(v, name)
}

// PushIndexed appends one field of an indexed record.
func (w *Writer) PushIndexed(v uint32, name string, index int) {
	w.s.PushIndexed(v, name, index)
}

// Raw appends an anonymous word.
func (w *Writer) Raw(v uint32) {
	w.s.Push(v, "")
}

// FifoStart opens the stream at instruction FIFO slot idx of count.
func (w *Writer) FifoStart(idx, count int) error {
	if idx < 0 || idx >= count {
		return fmt.Errorf("slot %d of %d: %w", idx, count, ErrFifoIndex)
	}
	w.Push(OpFifoStart|uint32(idx)*FifoSlotSize, NameFifoStart)
	return nil
}

// FifoEnd terminates the stream.
func (w *Writer) FifoEnd() {
	w.Push(OpFifoEnd, NameFifoEnd)
}

// MarkEndSection closes a firmware section.
func (w *Writer) MarkEndSection() {
	w.Push(0, NameEndSection)
}
