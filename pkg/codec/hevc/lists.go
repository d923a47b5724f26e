package hevc

import (
	"fmt"

	"github.com/user/avdcmd/pkg/syntax"
)

// RefLists are the reference picture lists of one slice. DPB is a value
// snapshot of L0 followed by L1 taken when the lists were built; it does not
// follow later changes to the pool.
type RefLists struct {
	L0  []*Picture
	L1  []*Picture
	DPB []Picture
}

// Len returns the number of entries in the flattened list.
func (r *RefLists) Len() int {
	return len(r.DPB)
}

// Position returns the first flattened-list position of a DPB slot.
func (r *RefLists) Position(pic *Picture) int {
	for i := range r.DPB {
		if r.DPB[i].Index == pic.Index {
			return i
		}
	}
	return -1
}

// Initial list order of HEVC 8.3.4: L0 prefers pictures preceding the
// current one, L1 pictures following it.
var (
	l0Order = [...]Category{StCurrBefore, StCurrAfter, LtCurr}
	l1Order = [...]Category{StCurrAfter, StCurrBefore, LtCurr}
)

// buildLists constructs L0 (and L1 for B slices) from the classified RPS.
func buildLists(set *RefSet, sl *syntax.HEVCSlice) (*RefLists, error) {
	out := &RefLists{}

	l0, err := buildList(set, l0Order, int(sl.NumRefIdxL0ActiveMinus1)+1,
		sl.RefPicListModificationL0, sl.ListEntryL0)
	if err != nil {
		return nil, fmt.Errorf("list0: %w", err)
	}
	out.L0 = l0

	if sl.SliceType == syntax.HEVCSliceB {
		l1, err := buildList(set, l1Order, int(sl.NumRefIdxL1ActiveMinus1)+1,
			sl.RefPicListModificationL1, sl.ListEntryL1)
		if err != nil {
			return nil, fmt.Errorf("list1: %w", err)
		}
		out.L1 = l1
	}

	out.DPB = make([]Picture, 0, len(out.L0)+len(out.L1))
	for _, pic := range out.L0 {
		out.DPB = append(out.DPB, *pic)
	}
	for _, pic := range out.L1 {
		out.DPB = append(out.DPB, *pic)
	}
	return out, nil
}

// buildList drains the categories in order, cycling through them again until
// the temporary list holds max(active, total) entries, then applies the list
// modification.
func buildList(set *RefSet, order [3]Category, active int, modified bool, entries []uint8) ([]*Picture, error) {
	total := 0
	for _, c := range order {
		total += set.Count(c)
	}
	if total == 0 {
		return nil, ErrNoReferences
	}

	n := active
	if total > n {
		n = total
	}
	tmp := make([]*Picture, 0, n)
	for len(tmp) < n {
		for _, c := range order {
			for _, pic := range set.Get(c) {
				if len(tmp) >= n {
					break
				}
				tmp = append(tmp, pic)
			}
		}
	}

	list := make([]*Picture, active)
	for i := range list {
		idx := i
		if modified {
			if i >= len(entries) || int(entries[i]) >= len(tmp) {
				return nil, fmt.Errorf("list_entry[%d] outside %d candidates: %w", i, len(tmp), ErrUnsupported)
			}
			idx = int(entries[i])
		}
		list[i] = tmp[idx]
	}
	return list, nil
}
