package hevc

import "github.com/user/avdcmd/pkg/syntax"

// pocState tracks prevTid0Pic across pictures.
type pocState struct {
	prevTid0 int32
}

// derive computes PicOrderCntVal from the slice LSBs. noRaslOutput resets
// the MSB for IRAP pictures that start a new coded video sequence.
func (s *pocState) derive(sl *syntax.HEVCSlice, maxLsb int32, noRaslOutput bool) int32 {
	lsb := int32(sl.PicOrderCntLsb)

	var msb int32
	if !(sl.IsIRAP() && noRaslOutput) {
		prevLsb := s.prevTid0 & (maxLsb - 1)
		prevMsb := s.prevTid0 - prevLsb
		switch {
		case lsb < prevLsb && prevLsb-lsb >= maxLsb/2:
			msb = prevMsb + maxLsb
		case lsb > prevLsb && lsb-prevLsb > maxLsb/2:
			msb = prevMsb - maxLsb
		default:
			msb = prevMsb
		}
	}
	// BLA pictures restart with MSB zero.
	if sl.IsBLA() {
		msb = 0
	}
	poc := msb + lsb

	if sl.TemporalID == 0 && !sl.IsRASL() && !sl.IsRADL() && !sl.IsSubLayerNonReference() {
		s.prevTid0 = poc
	}
	return poc
}
