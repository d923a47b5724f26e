package syntax

// VP9 frame types.
const (
	VP9KeyFrame    = 0
	VP9NonKeyFrame = 1
)

// VP9 reference slots.
const (
	VP9RefLast   = 0
	VP9RefGolden = 1
	VP9RefAltRef = 2
)

// VP9Frame is one parsed uncompressed frame header. Probability tables are
// not part of it; their arithmetic lives with the parser.
type VP9Frame struct {
	Profile               uint8    `yaml:"profile"`
	ShowExistingFrame     bool     `yaml:"show_existing_frame"`
	FrameToShowMapIdx     uint8    `yaml:"frame_to_show_map_idx"`
	FrameType             uint8    `yaml:"frame_type"`
	ShowFrame             bool     `yaml:"show_frame"`
	ErrorResilientMode    bool     `yaml:"error_resilient_mode"`
	IntraOnly             bool     `yaml:"intra_only"`
	ResetFrameContext     uint8    `yaml:"reset_frame_context"`
	RefreshFrameFlags     uint8    `yaml:"refresh_frame_flags"`
	RefFrameIdx           [3]uint8 `yaml:"ref_frame_idx,flow"`
	RefFrameSignBias      [3]bool  `yaml:"ref_frame_sign_bias,flow"`
	AllowHighPrecisionMv  bool     `yaml:"allow_high_precision_mv"`
	InterpolationFilter   uint8    `yaml:"interpolation_filter"`
	FrameWidth            uint32   `yaml:"frame_width"`
	FrameHeight           uint32   `yaml:"frame_height"`
	RefreshFrameContext   bool     `yaml:"refresh_frame_context"`
	FrameParallelDecoding bool     `yaml:"frame_parallel_decoding_mode"`
	FrameContextIdx       uint8    `yaml:"frame_context_idx"`
	LoopFilterLevel       uint8    `yaml:"loop_filter_level"`
	LoopFilterSharpness   uint8    `yaml:"loop_filter_sharpness"`
	BaseQIdx              uint8    `yaml:"base_q_idx"`
	DeltaQYDc             int8     `yaml:"delta_q_y_dc"`
	DeltaQUVDc            int8     `yaml:"delta_q_uv_dc"`
	DeltaQUVAc            int8     `yaml:"delta_q_uv_ac"`
	SegmentationEnabled   bool     `yaml:"segmentation_enabled"`
	TileColsLog2          uint8    `yaml:"tile_cols_log2"`
	TileRowsLog2          uint8    `yaml:"tile_rows_log2"`
	HeaderSizeInBytes     uint32   `yaml:"header_size_in_bytes"`
	PayloadOffset         uint32   `yaml:"payload_offset"`
	PayloadSize           uint32   `yaml:"payload_size"`
}

// IsKeyFrame reports whether the frame is a key frame.
func (f *VP9Frame) IsKeyFrame() bool {
	return f.FrameType == VP9KeyFrame
}

// IsIntra reports whether the frame uses no inter prediction.
func (f *VP9Frame) IsIntra() bool {
	return f.IsKeyFrame() || f.IntraOnly
}
