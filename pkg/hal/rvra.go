package hal

import (
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
)

// RVRALayout describes the four sub-buffers of one reconstructed reference
// buffer. The groups are not stored in index order: group 1 sits at the
// start, followed by groups 0, 3 and 2.
type RVRALayout struct {
	Sizes [4]uint64
}

// NewRVRALayout sizes the reference buffer groups for a picture of the given
// (hardware aligned) dimensions. Groups 1 and 3 carry compression metadata
// for the luma (0) and chroma (2) planes.
func NewRVRALayout(width, height uint32, is422 bool) RVRALayout {
	ws := allocator.RoundUp(uint64(width), 32)
	hs := allocator.RoundUp(uint64(height), 32)

	luma := ws * hs
	chroma := luma / 2
	if is422 {
		chroma = luma
	}
	return RVRALayout{Sizes: [4]uint64{
		allocator.RoundUp(luma, 0x80),
		allocator.RoundUp(luma>>6, 0x100),
		allocator.RoundUp(chroma, 0x80),
		allocator.RoundUp(chroma>>6, 0x100),
	}}
}

// Total is the size of one reference buffer.
func (l RVRALayout) Total() uint64 {
	return l.Sizes[0] + l.Sizes[1] + l.Sizes[2] + l.Sizes[3]
}

// Offset returns the byte offset of a group inside a reference buffer.
func (l RVRALayout) Offset(group int) (uint64, error) {
	switch group {
	case 0:
		return l.Sizes[0], nil
	case 1:
		return 0, nil
	case 2:
		return l.Sizes[0] + l.Sizes[1] + l.Sizes[2], nil
	case 3:
		return l.Sizes[0] + l.Sizes[1], nil
	default:
		return 0, fmt.Errorf("group %d: %w", group, ErrInvalidGroup)
	}
}

// Addrs returns the four group addresses of the buffer at base, shifted by 7.
func (l RVRALayout) Addrs(base uint64) [4]uint32 {
	var out [4]uint32
	for g := range out {
		off, _ := l.Offset(g)
		out[g] = Addr7(base + off)
	}
	return out
}
