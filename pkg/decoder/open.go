package decoder

import (
	"fmt"

	"github.com/user/avdcmd/pkg/codec/h264"
	"github.com/user/avdcmd/pkg/codec/hevc"
	"github.com/user/avdcmd/pkg/codec/vp9"
	"github.com/user/avdcmd/pkg/pipeline"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// Open returns a Runner for the codec variant selected at stream open.
func Open(codec syntax.Codec, parser ports.Parser, log ports.Logger) (Runner, error) {
	switch codec {
	case syntax.CodecHEVC:
		return New[*syntax.HEVCSlice, *hevc.SliceState](hevc.New(log), parser, log), nil
	case syntax.CodecH264:
		return New[*syntax.H264Slice, *h264.SliceState](h264.New(log), parser, log), nil
	case syntax.CodecVP9:
		return New[*syntax.VP9Frame, *vp9.FrameState](vp9.New(log), parser, log), nil
	}
	return nil, fmt.Errorf("%q: %w", codec, ErrUnknownCodec)
}

var (
	_ Runner                                                  = (*Decoder[*syntax.HEVCSlice, *hevc.SliceState])(nil)
	_ Codec[*syntax.HEVCSlice, *hevc.SliceState]              = (*hevc.Codec)(nil)
	_ Codec[*syntax.H264Slice, *h264.SliceState]              = (*h264.Codec)(nil)
	_ Codec[*syntax.VP9Frame, *vp9.FrameState]                = (*vp9.Codec)(nil)
	_ pipeline.Stage[*syntax.VP9Frame, *pipeline.SliceResult] = (*Decoder[*syntax.VP9Frame, *vp9.FrameState])(nil)
)
