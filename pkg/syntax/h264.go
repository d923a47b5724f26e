package syntax

// H.264 NAL unit types carrying slice data.
const (
	H264NalSlice    = 1
	H264NalSliceIDR = 5
)

// H.264 slice types after folding the "all slices same type" range (5-9).
const (
	H264SliceP  = 0
	H264SliceB  = 1
	H264SliceI  = 2
	H264SliceSP = 3
	H264SliceSI = 4
)

// H264Headers are the parameter sets of a stream.
type H264Headers struct {
	SPS []*H264SPS `yaml:"sps"`
	PPS []*H264PPS `yaml:"pps"`
}

// FindSPS returns the SPS with the given id.
func (h *H264Headers) FindSPS(id uint8) (*H264SPS, bool) {
	for _, sps := range h.SPS {
		if sps.ID == id {
			return sps, true
		}
	}
	return nil, false
}

// FindPPS returns the PPS with the given id.
func (h *H264Headers) FindPPS(id uint8) (*H264PPS, bool) {
	for _, pps := range h.PPS {
		if pps.ID == id {
			return pps, true
		}
	}
	return nil, false
}

// H264SPS is a sequence parameter set.
type H264SPS struct {
	ID                          uint8  `yaml:"seq_parameter_set_id"`
	ProfileIDC                  uint8  `yaml:"profile_idc"`
	LevelIDC                    uint8  `yaml:"level_idc"`
	ChromaFormatIDC             uint8  `yaml:"chroma_format_idc"`
	BitDepthLumaMinus8          uint8  `yaml:"bit_depth_luma_minus8"`
	BitDepthChromaMinus8        uint8  `yaml:"bit_depth_chroma_minus8"`
	Log2MaxFrameNumMinus4       uint8  `yaml:"log2_max_frame_num_minus4"`
	PicOrderCntType             uint8  `yaml:"pic_order_cnt_type"`
	Log2MaxPicOrderCntLsbMinus4 uint8  `yaml:"log2_max_pic_order_cnt_lsb_minus4"`
	MaxNumRefFrames             uint8  `yaml:"max_num_ref_frames"`
	GapsInFrameNumAllowed       bool   `yaml:"gaps_in_frame_num_value_allowed_flag"`
	PicWidthInMbsMinus1         uint32 `yaml:"pic_width_in_mbs_minus1"`
	PicHeightInMapUnitsMinus1   uint32 `yaml:"pic_height_in_map_units_minus1"`
	FrameMbsOnly                bool   `yaml:"frame_mbs_only_flag"`
	MbAdaptiveFrameField        bool   `yaml:"mb_adaptive_frame_field_flag"`
	Direct8x8Inference          bool   `yaml:"direct_8x8_inference_flag"`
}

// MaxFrameNum is the frame_num wrap modulus.
func (s *H264SPS) MaxFrameNum() int32 {
	return 1 << (uint(s.Log2MaxFrameNumMinus4) + 4)
}

// MaxPicOrderCntLsb is the POC LSB wrap modulus.
func (s *H264SPS) MaxPicOrderCntLsb() int32 {
	return 1 << (uint(s.Log2MaxPicOrderCntLsbMinus4) + 4)
}

// Width returns the coded width in luma samples.
func (s *H264SPS) Width() uint32 {
	return (s.PicWidthInMbsMinus1 + 1) * 16
}

// Height returns the coded frame height in luma samples.
func (s *H264SPS) Height() uint32 {
	units := s.PicHeightInMapUnitsMinus1 + 1
	if !s.FrameMbsOnly {
		units *= 2
	}
	return units * 16
}

// H264PPS is a picture parameter set.
type H264PPS struct {
	ID                             uint8 `yaml:"pic_parameter_set_id"`
	SPSID                          uint8 `yaml:"seq_parameter_set_id"`
	EntropyCodingMode              bool  `yaml:"entropy_coding_mode_flag"`
	BottomFieldPicOrderInFrame     bool  `yaml:"bottom_field_pic_order_in_frame_present_flag"`
	NumRefIdxL0DefaultActiveMinus1 uint8 `yaml:"num_ref_idx_l0_default_active_minus1"`
	NumRefIdxL1DefaultActiveMinus1 uint8 `yaml:"num_ref_idx_l1_default_active_minus1"`
	WeightedPred                   bool  `yaml:"weighted_pred_flag"`
	WeightedBipredIDC              uint8 `yaml:"weighted_bipred_idc"`
	PicInitQpMinus26               int32 `yaml:"pic_init_qp_minus26"`
	ChromaQpIndexOffset            int32 `yaml:"chroma_qp_index_offset"`
	DeblockingFilterControlPresent bool  `yaml:"deblocking_filter_control_present_flag"`
	ConstrainedIntraPred           bool  `yaml:"constrained_intra_pred_flag"`
	Transform8x8Mode               bool  `yaml:"transform_8x8_mode_flag"`
}

// H264Slice is one parsed slice header.
type H264Slice struct {
	NalUnitType                uint8            `yaml:"nal_unit_type"`
	NalRefIdc                  uint8            `yaml:"nal_ref_idc"`
	FirstMbInSlice             uint32           `yaml:"first_mb_in_slice"`
	SliceType                  uint8            `yaml:"slice_type"`
	PPSID                      uint8            `yaml:"pic_parameter_set_id"`
	FrameNum                   uint32           `yaml:"frame_num"`
	FieldPic                   bool             `yaml:"field_pic_flag"`
	IDRPicID                   uint32           `yaml:"idr_pic_id"`
	PicOrderCntLsb             uint32           `yaml:"pic_order_cnt_lsb"`
	DeltaPicOrderCntBottom     int32            `yaml:"delta_pic_order_cnt_bottom"`
	DirectSpatialMvPred        bool             `yaml:"direct_spatial_mv_pred_flag"`
	NumRefIdxActiveOverride    bool             `yaml:"num_ref_idx_active_override_flag"`
	NumRefIdxL0ActiveMinus1    uint8            `yaml:"num_ref_idx_l0_active_minus1"`
	NumRefIdxL1ActiveMinus1    uint8            `yaml:"num_ref_idx_l1_active_minus1"`
	RefPicListModificationL0   bool             `yaml:"ref_pic_list_modification_flag_l0"`
	RefPicListModificationL1   bool             `yaml:"ref_pic_list_modification_flag_l1"`
	NoOutputOfPriorPics        bool             `yaml:"no_output_of_prior_pics_flag"`
	LongTermReference          bool             `yaml:"long_term_reference_flag"`
	AdaptiveRefPicMarking      bool             `yaml:"adaptive_ref_pic_marking_mode_flag"`
	CabacInitIDC               uint8            `yaml:"cabac_init_idc"`
	SliceQpDelta               int32            `yaml:"slice_qp_delta"`
	DisableDeblockingFilterIDC uint8            `yaml:"disable_deblocking_filter_idc"`
	SliceAlphaC0OffsetDiv2     int32            `yaml:"slice_alpha_c0_offset_div2"`
	SliceBetaOffsetDiv2        int32            `yaml:"slice_beta_offset_div2"`
	PredWeight                 *PredWeightTable `yaml:"pred_weight_table,omitempty"`
	PayloadOffset              uint32           `yaml:"payload_offset"`
	PayloadSize                uint32           `yaml:"payload_size"`
}

// Type returns the slice type folded into 0..4.
func (s *H264Slice) Type() uint8 {
	return s.SliceType % 5
}

// IsIDR reports whether the slice belongs to an IDR picture.
func (s *H264Slice) IsIDR() bool {
	return s.NalUnitType == H264NalSliceIDR
}

// IsReference reports whether the picture is used for reference.
func (s *H264Slice) IsReference() bool {
	return s.NalRefIdc != 0
}
