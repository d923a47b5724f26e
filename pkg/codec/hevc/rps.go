package hevc

import (
	"fmt"

	"github.com/user/avdcmd/pkg/syntax"
)

// Category classifies an RPS entry.
type Category int

const (
	StCurrBefore Category = iota
	StCurrAfter
	StFoll
	LtCurr
	LtFoll
	numCategories
)

func (c Category) String() string {
	switch c {
	case StCurrBefore:
		return "st_curr_before"
	case StCurrAfter:
		return "st_curr_after"
	case StFoll:
		return "st_foll"
	case LtCurr:
		return "lt_curr"
	case LtFoll:
		return "lt_foll"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// RefSet is the classified RPS of one picture.
type RefSet struct {
	lists [numCategories][]*Picture
}

// Get returns the pictures registered under a category, in RPS order.
func (r *RefSet) Get(c Category) []*Picture {
	return r.lists[c]
}

// Count returns the number of pictures registered under a category.
func (r *RefSet) Count(c Category) int {
	return len(r.lists[c])
}

func (r *RefSet) add(c Category, pic *Picture) {
	r.lists[c] = append(r.lists[c], pic)
}

type rpsEntry struct {
	cat   Category
	poc   int32
	flags Flags
	// lsbOnly matches on POC LSBs (long-term entries without MSB).
	lsbOnly bool
	pic     *Picture
}

// rpsEntries expands the slice RPS into absolute POCs.
func rpsEntries(sl *syntax.HEVCSlice, poc, maxLsb int32) []rpsEntry {
	rps := sl.ShortTermRPS
	entries := make([]rpsEntry, 0, rps.NumDeltaPOCs()+len(sl.LongTermRefs))
	for i, delta := range rps.DeltaPOC {
		cat := StCurrAfter
		switch {
		case i >= len(rps.Used) || !rps.Used[i]:
			cat = StFoll
		case i < rps.NumNegativePics:
			cat = StCurrBefore
		}
		entries = append(entries, rpsEntry{cat: cat, poc: poc + delta, flags: FlagShortRef})
	}

	for _, lt := range sl.LongTermRefs {
		cat := LtFoll
		if lt.UsedByCurr {
			cat = LtCurr
		}
		e := rpsEntry{cat: cat, flags: FlagLongRef, poc: int32(lt.PocLsb), lsbOnly: true}
		if lt.DeltaPocMsbPresent {
			e.poc = poc - int32(lt.DeltaPocMsbCycle)*maxLsb - (poc & (maxLsb - 1)) + int32(lt.PocLsb)
			e.lsbOnly = false
		}
		entries = append(entries, e)
	}
	return entries
}

// applyRPS re-marks the DPB for the current picture and classifies every
// RPS entry. Pictures still in the DPB are resolved first; placeholders for
// missing ones are synthesized afterwards so they cannot take a slot that a
// later entry still refers to.
func applyRPS(pool *Pool, cur *Picture, sl *syntax.HEVCSlice, maxLsb int32) (*RefSet, error) {
	pool.UnrefExcept(cur)

	entries := rpsEntries(sl, cur.POC, maxLsb)
	for i := range entries {
		e := &entries[i]
		e.pic = pool.find(cur, func(p *Picture) bool {
			if e.lsbOnly {
				return p.POC&(maxLsb-1) == e.poc
			}
			return p.POC == e.poc
		})
		if e.pic != nil {
			e.pic.Ref = true
		}
	}

	for i := range entries {
		e := &entries[i]
		if e.pic != nil {
			continue
		}
		pic, err := pool.Acquire()
		if err != nil {
			return nil, fmt.Errorf("missing reference poc %d: %w", e.poc, err)
		}
		pic.POC = e.poc
		pic.Flags = 0
		pic.Type = RefMissing
		e.pic = pic
	}

	set := &RefSet{}
	for _, e := range entries {
		e.pic.Flags &^= FlagShortRef | FlagLongRef
		e.pic.Flags |= e.flags
		if e.flags == FlagLongRef && e.pic.Type == RefShortTerm {
			e.pic.Type = RefLongTerm
		}
		set.add(e.cat, e.pic)
	}
	return set, nil
}
