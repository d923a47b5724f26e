package hal

import (
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/syntax"
)

const (
	opWeightsDenom   uint32 = 0x2dd00000
	opWeightsWeight  uint32 = 0x2de00000
	opWeightsOffset  uint32 = 0x2df00000
	denomP           uint32 = 0x40
	denomB           uint32 = 0xad
	weightModulus           = 0x200
	weightOffsetWrap        = 0x10000
)

// Weight instruction names.
const (
	NameWeightsDenom   = "slc_76c_cmd_weights_denom"
	NameWeightsWeights = "slc_770_cmd_weights_weights"
	NameWeightsOffsets = "slc_8f0_cmd_weights_offsets"
)

// Weights emits the weighted prediction table of a P or B slice. The
// denominator word is always written; a weight/offset pair follows for every
// active reference component whose flag is set, numbered across L0 then L1.
// A nil table writes the denominator only.
func (w *Writer) Weights(isP bool, t *syntax.PredWeightTable, numL0, numL1 int) {
	x := opWeightsDenom
	if isP {
		x |= denomP
	} else {
		x |= denomB
	}
	if t == nil {
		w.Push(x, NameWeightsDenom)
		return
	}
	x |= uint32(t.LumaLog2WeightDenom)<<3 | uint32(t.ChromaLog2WeightDenom)
	w.Push(x, NameWeightsDenom)

	num := 0
	num = w.weightList(t.L0, numL0, num)
	if !isP {
		w.weightList(t.L1, numL1, num)
	}
}

func (w *Writer) weightList(entries []syntax.WeightEntry, active, num int) int {
	for i := 0; i < active && i < len(entries); i++ {
		e := entries[i]
		if e.LumaWeightFlag {
			w.weightPair(i, 0, e.LumaWeight, e.LumaOffset, num)
			num++
		}
		if e.ChromaWeightFlag {
			for c := 0; c < 2; c++ {
				w.weightPair(i, c+1, e.ChromaWeight[c], e.ChromaOffset[c], num)
				num++
			}
		}
	}
	return num
}

func (w *Writer) weightPair(ref, component int, weight, offset int32, num int) {
	base := opWeightsWeight | uint32(component+1)*0x4000 | uint32(ref)*0x200
	w.PushIndexed(base|inst.Wrap(int64(weight), weightModulus), NameWeightsWeights, num)
	w.PushIndexed(opWeightsOffset|inst.Wrap(int64(offset), weightOffsetWrap), NameWeightsOffsets, num)
}
