package h264

import (
	"fmt"
	"sort"
)

// Picture is one DPB slot.
type Picture struct {
	Addr     uint64
	Index    int
	POC      int32
	FrameNum uint32
	// PicNum is FrameNumWrap relative to the picture currently being decoded.
	PicNum int32
	// Ref marks a slot holding a short-term reference or the current picture.
	Ref      bool
	refFrame bool
}

func (p *Picture) String() string {
	return fmt.Sprintf("[addr: 0x%-5x poc: %-3d idx: %d frame_num: %-3d pic_num: %-3d ref: %t]",
		p.Addr>>7, p.POC, p.Index, p.FrameNum, p.PicNum, p.Ref)
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

// Pictures returns the slots in index order.
func (p *Pool) Pictures() []*Picture {
	out := make([]*Picture, len(p.pics))
	copy(out, p.pics)
	return out
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

// Acquire marks and returns the first free slot.
func (p *Pool) Acquire() (*Picture, error) {
	for _, pic := range p.pics {
		if !pic.Ref {
			pic.Ref = true
			return pic, nil
		}
	}
	return nil, fmt.Errorf("all %d slots referenced: %w", len(p.pics), ErrDPBExhausted)
}

// Flush unmarks every slot.
func (p *Pool) Flush() {
	for _, pic := range p.pics {
		pic.Ref = false
		pic.refFrame = false
	}
}

// References returns the short-term reference frames.
func (p *Pool) References() []*Picture {
	var out []*Picture
	for _, pic := range p.pics {
		if pic.Ref && pic.refFrame {
			out = append(out, pic)
		}
	}
	return out
}

// slidingWindow drops non-reference pictures and then the oldest reference
// frames until at most maxRefs remain.
func (p *Pool) slidingWindow(maxRefs int) {
	for _, pic := range p.pics {
		if pic.Ref && !pic.refFrame {
			pic.Ref = false
		}
	}
	refs := p.References()
	if len(refs) <= maxRefs {
		return
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].PicNum < refs[j].PicNum })
	for _, pic := range refs[:len(refs)-maxRefs] {
		pic.Ref = false
		pic.refFrame = false
	}
}

// updatePicNums derives PicNum for every reference relative to frameNum.
func (p *Pool) updatePicNums(frameNum uint32, maxFrameNum int32) {
	for _, pic := range p.References() {
		pic.PicNum = int32(pic.FrameNum)
		if pic.FrameNum > frameNum {
			pic.PicNum -= maxFrameNum
		}
	}
}
