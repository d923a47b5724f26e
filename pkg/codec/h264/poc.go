package h264

import (
	"fmt"

	"github.com/user/avdcmd/pkg/syntax"
)

// pocState carries the previous-picture values POC derivation depends on.
type pocState struct {
	prevMsb         int32
	prevLsb         int32
	prevFrameNum    uint32
	prevFrameOffset int32
	prevRefFrameNum uint32
	started         bool
}

// derive computes the frame POC for pic_order_cnt_type 0 and 2.
func (s *pocState) derive(sl *syntax.H264Slice, sps *syntax.H264SPS) (int32, error) {
	var poc int32
	switch sps.PicOrderCntType {
	case 0:
		if sl.IsIDR() {
			s.prevMsb, s.prevLsb = 0, 0
		}
		maxLsb := sps.MaxPicOrderCntLsb()
		lsb := int32(sl.PicOrderCntLsb)
		msb := s.prevMsb
		switch {
		case lsb < s.prevLsb && s.prevLsb-lsb >= maxLsb/2:
			msb += maxLsb
		case lsb > s.prevLsb && lsb-s.prevLsb > maxLsb/2:
			msb -= maxLsb
		}
		top := msb + lsb
		bottom := top + sl.DeltaPicOrderCntBottom
		poc = top
		if bottom < top {
			poc = bottom
		}
		if sl.IsReference() {
			s.prevMsb, s.prevLsb = msb, lsb
		}
	case 2:
		var offset int32
		switch {
		case sl.IsIDR():
			offset = 0
		case s.prevFrameNum > sl.FrameNum:
			offset = s.prevFrameOffset + sps.MaxFrameNum()
		default:
			offset = s.prevFrameOffset
		}
		if !sl.IsIDR() {
			abs := offset + int32(sl.FrameNum)
			poc = 2 * abs
			if !sl.IsReference() {
				poc--
			}
		}
		s.prevFrameOffset = offset
	default:
		return 0, fmt.Errorf("pic_order_cnt_type %d: %w", sps.PicOrderCntType, ErrUnsupported)
	}
	s.prevFrameNum = sl.FrameNum
	return poc, nil
}

// checkFrameNum rejects gaps in frame_num.
func (s *pocState) checkFrameNum(sl *syntax.H264Slice, sps *syntax.H264SPS) error {
	if sl.IsIDR() || !s.started {
		return nil
	}
	next := (s.prevRefFrameNum + 1) % uint32(sps.MaxFrameNum())
	if sl.FrameNum != s.prevRefFrameNum && sl.FrameNum != next {
		return fmt.Errorf("frame_num %d after %d: %w", sl.FrameNum, s.prevRefFrameNum, ErrUnsupported)
	}
	return nil
}

// markDecoded records a decoded picture as the frame_num reference point.
func (s *pocState) markDecoded(sl *syntax.H264Slice) {
	s.started = true
	if sl.IsReference() {
		s.prevRefFrameNum = sl.FrameNum
	}
}
