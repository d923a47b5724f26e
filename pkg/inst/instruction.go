// Package inst models the accelerator's per-slice command stream.
//
// A Stream is an append-only, ordered list of 32-bit instruction words. Each
// word carries a diagnostic name (and optionally an index for repeated
// fields); the name is metadata only and never changes the emitted value.
package inst

import "fmt"

// NoIndex marks an instruction that is not part of an indexed record.
const NoIndex = -1

// Instruction is one ordered unit of the hardware command stream.
type Instruction struct {
	Value uint32 `json:"value"`
	Name  string `json:"name,omitempty"`
	Index int    `json:"index"`
}

// Indexed reports whether the instruction belongs to an indexed record.
func (i Instruction) Indexed() bool {
	return i.Index != NoIndex
}

// String formats the instruction for listings.
func (i Instruction) String() string {
	name := i.Name
	if name == "" {
		name = "-"
	}
	if i.Indexed() {
		return fmt.Sprintf("[0x%08x] %s[%d]", i.Value, name, i.Index)
	}
	return fmt.Sprintf("[0x%08x] %s", i.Value, name)
}

// Stream is the ordered instruction sequence for one slice.
type Stream struct {
	insts []Instruction
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// Push appends an unindexed instruction.
func (s *Stream) Push(value uint32, name string) {
	s.insts = append(s.insts, Instruction{Value: value, Name: name, Index: NoIndex})
}

// PushIndexed appends one field of an indexed record.
func (s *Stream) PushIndexed(value uint32, name string, index int) {
	s.insts = append(s.insts, Instruction{Value: value, Name: name, Index: index})
}

// Len returns the number of instructions.
func (s *Stream) Len() int {
	return len(s.insts)
}

// At returns the instruction at position i.
func (s *Stream) At(i int) Instruction {
	return s.insts[i]
}

// Instructions returns a copy of the ordered instructions.
func (s *Stream) Instructions() []Instruction {
	out := make([]Instruction, len(s.insts))
	copy(out, s.insts)
	return out
}

// Values returns the raw instruction words in order.
func (s *Stream) Values() []uint32 {
	out := make([]uint32, len(s.insts))
	for i, in := range s.insts {
		out[i] = in.Value
	}
	return out
}

// Positions returns the ordinal positions of every instruction with the given name.
func (s *Stream) Positions(name string) []int {
	var out []int
	for i, in := range s.insts {
		if in.Name == name {
			out = append(out, i)
		}
	}
	return out
}

// Listing formats the stream one instruction per line.
func (s *Stream) Listing() []string {
	lines := make([]string, len(s.insts))
	for i, in := range s.insts {
		lines[i] = fmt.Sprintf("[%3d] %s", i, in)
	}
	return lines
}
