package h264

import (
	"sort"

	"github.com/user/avdcmd/pkg/syntax"
)

// RefLists are the reference picture lists of one slice. DPB holds the
// distinct pictures of L0 and L1 in first-use order, copied when the lists
// were built.
type RefLists struct {
	L0  []*Picture
	L1  []*Picture
	DPB []Picture
}

// Position returns the DPB list position of a slot, or -1.
func (r *RefLists) Position(pic *Picture) int {
	for i := range r.DPB {
		if r.DPB[i].Index == pic.Index {
			return i
		}
	}
	return -1
}

// initLists builds the default (unmodified) lists for a P or B slice.
func initLists(refs []*Picture, cur *Picture, sl *syntax.H264Slice, numL0, numL1 int) (*RefLists, error) {
	if len(refs) == 0 {
		return nil, ErrNoReferences
	}
	out := &RefLists{}

	if sl.Type() == syntax.H264SliceP {
		l0 := append([]*Picture(nil), refs...)
		sort.SliceStable(l0, func(i, j int) bool { return l0[i].PicNum > l0[j].PicNum })
		out.L0 = truncate(l0, numL0)
	} else {
		var before, after []*Picture
		for _, pic := range refs {
			if pic.POC < cur.POC {
				before = append(before, pic)
			} else {
				after = append(after, pic)
			}
		}
		sort.SliceStable(before, func(i, j int) bool { return before[i].POC > before[j].POC })
		sort.SliceStable(after, func(i, j int) bool { return after[i].POC < after[j].POC })

		l0 := append(append([]*Picture(nil), before...), after...)
		l1 := append(append([]*Picture(nil), after...), before...)
		if len(l1) > 1 && samePictures(l0, l1) {
			l1[0], l1[1] = l1[1], l1[0]
		}
		out.L0 = truncate(l0, numL0)
		out.L1 = truncate(l1, numL1)
	}

	seen := make(map[int]bool)
	for _, list := range [][]*Picture{out.L0, out.L1} {
		for _, pic := range list {
			if !seen[pic.Index] {
				seen[pic.Index] = true
				out.DPB = append(out.DPB, *pic)
			}
		}
	}
	return out, nil
}

func truncate(list []*Picture, n int) []*Picture {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func samePictures(a, b []*Picture) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
