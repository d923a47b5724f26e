// Package syntax holds the parsed bitstream syntax handed over by the parser
// collaborator. Everything here is read-only input to the decoders: no
// decoder writes back into these records.
package syntax

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec identifies a bitstream format.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "h265"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// ParseCodec accepts the usual spellings of a codec name.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h264", "avc", "h.264":
		return CodecH264, nil
	case "h265", "hevc", "h.265":
		return CodecHEVC, nil
	case "vp9", "vp09":
		return CodecVP9, nil
	default:
		return CodecUnknown, fmt.Errorf("unknown codec %q", s)
	}
}

// UnmarshalYAML accepts every spelling ParseCodec does. An empty value
// leaves the codec unknown so it can be resolved from the container.
func (c *Codec) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*c = CodecUnknown
		return nil
	}
	parsed, err := ParseCodec(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Known reports whether c names a supported codec.
func (c Codec) Known() bool {
	switch c {
	case CodecH264, CodecHEVC, CodecVP9:
		return true
	default:
		return false
	}
}

// Stream is everything the parser extracted from one input.
type Stream struct {
	Codec Codec `yaml:"codec"`

	// Container is the path of the bitstream the syntax was extracted from.
	// Payload offsets of slices refer to this file.
	Container string `yaml:"container,omitempty"`

	H264       *H264Headers `yaml:"h264,omitempty"`
	H264Slices []*H264Slice `yaml:"h264_slices,omitempty"`
	HEVC       *HEVCHeaders `yaml:"hevc,omitempty"`
	HEVCSlices []*HEVCSlice `yaml:"hevc_slices,omitempty"`
	VP9Frames  []*VP9Frame  `yaml:"vp9_frames,omitempty"`
}

// NumSlices returns the number of decodable units for the stream's codec.
func (s *Stream) NumSlices() int {
	switch s.Codec {
	case CodecH264:
		return len(s.H264Slices)
	case CodecHEVC:
		return len(s.HEVCSlices)
	case CodecVP9:
		return len(s.VP9Frames)
	default:
		return 0
	}
}

// Truncate keeps at most n decodable units. n <= 0 keeps everything.
func (s *Stream) Truncate(n int) {
	if n <= 0 {
		return
	}
	if len(s.H264Slices) > n {
		s.H264Slices = s.H264Slices[:n]
	}
	if len(s.HEVCSlices) > n {
		s.HEVCSlices = s.HEVCSlices[:n]
	}
	if len(s.VP9Frames) > n {
		s.VP9Frames = s.VP9Frames[:n]
	}
}

// PredWeightTable is an explicit weighted-prediction table shared by H.264
// and HEVC slice headers. Chroma denominators are already resolved (HEVC
// codes them as a delta).
type PredWeightTable struct {
	LumaLog2WeightDenom   uint8         `yaml:"luma_log2_weight_denom"`
	ChromaLog2WeightDenom uint8         `yaml:"chroma_log2_weight_denom"`
	L0                    []WeightEntry `yaml:"l0"`
	L1                    []WeightEntry `yaml:"l1"`
}

// WeightEntry holds the weights of one active reference.
type WeightEntry struct {
	LumaWeightFlag   bool     `yaml:"luma_weight_flag"`
	LumaWeight       int32    `yaml:"luma_weight"`
	LumaOffset       int32    `yaml:"luma_offset"`
	ChromaWeightFlag bool     `yaml:"chroma_weight_flag"`
	ChromaWeight     [2]int32 `yaml:"chroma_weight,flow"`
	ChromaOffset     [2]int32 `yaml:"chroma_offset,flow"`
}
