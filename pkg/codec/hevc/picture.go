package hevc

import (
	"fmt"
)

// Flags is the marking bitmask of a DPB picture.
type Flags uint8

const (
	FlagOutput   Flags = 1 << 0
	FlagShortRef Flags = 1 << 1
	FlagLongRef  Flags = 1 << 2
)

// RefType records how a slot was last filled.
type RefType int

const (
	RefNone RefType = iota
	RefShortTerm
	RefLongTerm
	// RefMissing is a placeholder synthesized for a reference absent from the DPB.
	RefMissing
)

func (t RefType) String() string {
	switch t {
	case RefShortTerm:
		return "st"
	case RefLongTerm:
		return "lt"
	case RefMissing:
		return "missing"
	default:
		return "none"
	}
}

// Picture is one DPB slot.
type Picture struct {
	Addr  uint64
	Index int
	POC   int32
	Flags Flags
	Ref   bool
	Type  RefType
}

func (p *Picture) String() string {
	return fmt.Sprintf("[addr: 0x%-5x poc: %-3d idx: %d flags: %d ref: %t type: %s]",
		p.Addr>>7, p.POC, p.Index, p.Flags, p.Ref, p.Type)
}

// Pool is the fixed set of DPB slots for one buffer layout.
type Pool struct {
	pics []*Picture
}

// NewPool creates one slot per buffer address.
func NewPool(addrs []uint64) *Pool {
	p := &Pool{pics: make([]*Picture, len(addrs))}
	for i, addr := range addrs {
		p.pics[i] = &Picture{Addr: addr, Index: i, POC: -1}
	}
	return p
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return len(p.pics)
}

// Pictures returns the live slots in index order.
func (p *Pool) Pictures() []*Picture {
	out := make([]*Picture, len(p.pics))
	copy(out, p.pics)
	return out
}

// Acquire marks and returns the first slot not in use.
func (p *Pool) Acquire() (*Picture, error) {
	for _, pic := range p.pics {
		if !pic.Ref {
			pic.Ref = true
			return pic, nil
		}
	}
	return nil, fmt.Errorf("all %d slots referenced: %w", len(p.pics), ErrDPBExhausted)
}

// Marked counts the slots in use.
func (p *Pool) Marked() int {
	n := 0
	for _, pic := range p.pics {
		if pic.Ref {
			n++
		}
	}
	return n
}

// Full reports whether no slot is free.
func (p *Pool) Full() bool {
	return p.Marked() == len(p.pics)
}

// Flush drops every mark and forgets the slot contents.
func (p *Pool) Flush() {
	for _, pic := range p.pics {
		pic.Ref = false
		pic.Flags = 0
		pic.Type = RefNone
	}
}

// UnrefExcept clears the in-use marker and reference flags of every slot but keep.
func (p *Pool) UnrefExcept(keep *Picture) {
	for _, pic := range p.pics {
		if pic != keep {
			pic.Ref = false
			pic.Flags &^= FlagShortRef | FlagLongRef
		}
	}
}

// find returns the slot holding a decoded picture that matches.
func (p *Pool) find(exclude *Picture, match func(*Picture) bool) *Picture {
	for _, pic := range p.pics {
		if pic == exclude || pic.Type == RefNone {
			continue
		}
		if match(pic) {
			return pic
		}
	}
	return nil
}
