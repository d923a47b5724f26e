package syntax

// HEVC NAL unit types used by reference management.
const (
	HEVCNalTrailN   = 0
	HEVCNalRADLN    = 6
	HEVCNalRADLR    = 7
	HEVCNalRASLN    = 8
	HEVCNalRASLR    = 9
	HEVCNalBLAWLP   = 16
	HEVCNalBLAWRADL = 17
	HEVCNalBLANLP   = 18
	HEVCNalIDRWRADL = 19
	HEVCNalIDRNLP   = 20
	HEVCNalCRA      = 21
)

// HEVC slice types.
const (
	HEVCSliceB = 0
	HEVCSliceP = 1
	HEVCSliceI = 2
)

// HEVC chroma_format_idc values.
const (
	HEVCChroma400 = 0
	HEVCChroma420 = 1
	HEVCChroma422 = 2
	HEVCChroma444 = 3
)

// HEVCHeaders are the parameter sets of a stream.
type HEVCHeaders struct {
	VPS []*HEVCVPS `yaml:"vps"`
	SPS []*HEVCSPS `yaml:"sps"`
	PPS []*HEVCPPS `yaml:"pps"`
}

// FindSPS returns the SPS with the given id.
func (h *HEVCHeaders) FindSPS(id uint8) (*HEVCSPS, bool) {
	for _, sps := range h.SPS {
		if sps.ID == id {
			return sps, true
		}
	}
	return nil, false
}

// FindPPS returns the PPS with the given id.
func (h *HEVCHeaders) FindPPS(id uint8) (*HEVCPPS, bool) {
	for _, pps := range h.PPS {
		if pps.ID == id {
			return pps, true
		}
	}
	return nil, false
}

// HEVCVPS is a video parameter set.
type HEVCVPS struct {
	ID                 uint8 `yaml:"vps_video_parameter_set_id"`
	MaxSubLayersMinus1 uint8 `yaml:"vps_max_sub_layers_minus1"`
}

// HEVCSPS is a sequence parameter set.
type HEVCSPS struct {
	ID                                uint8    `yaml:"sps_seq_parameter_set_id"`
	VPSID                             uint8    `yaml:"sps_video_parameter_set_id"`
	ChromaFormatIDC                   uint8    `yaml:"chroma_format_idc"`
	PicWidthInLumaSamples             uint32   `yaml:"pic_width_in_luma_samples"`
	PicHeightInLumaSamples            uint32   `yaml:"pic_height_in_luma_samples"`
	BitDepthLumaMinus8                uint8    `yaml:"bit_depth_luma_minus8"`
	BitDepthChromaMinus8              uint8    `yaml:"bit_depth_chroma_minus8"`
	Log2MaxPicOrderCntLsbMinus4       uint8    `yaml:"log2_max_pic_order_cnt_lsb_minus4"`
	MaxDecPicBufferingMinus1          uint8    `yaml:"sps_max_dec_pic_buffering_minus1"`
	Log2MinLumaCodingBlockSizeMinus3  uint8    `yaml:"log2_min_luma_coding_block_size_minus3"`
	Log2DiffMaxMinLumaCodingBlockSize uint8    `yaml:"log2_diff_max_min_luma_coding_block_size"`
	Log2MinTransformBlockSizeMinus2   uint8    `yaml:"log2_min_luma_transform_block_size_minus2"`
	Log2DiffMaxMinTransformBlockSize  uint8    `yaml:"log2_diff_max_min_luma_transform_block_size"`
	MaxTransformHierarchyDepthInter   uint8    `yaml:"max_transform_hierarchy_depth_inter"`
	MaxTransformHierarchyDepthIntra   uint8    `yaml:"max_transform_hierarchy_depth_intra"`
	AmpEnabled                        bool     `yaml:"amp_enabled_flag"`
	SampleAdaptiveOffsetEnabled       bool     `yaml:"sample_adaptive_offset_enabled_flag"`
	PCMEnabled                        bool     `yaml:"pcm_enabled_flag"`
	LongTermRefPicsPresent            bool     `yaml:"long_term_ref_pics_present_flag"`
	TemporalMVPEnabled                bool     `yaml:"sps_temporal_mvp_enabled_flag"`
	StrongIntraSmoothingEnabled       bool     `yaml:"strong_intra_smoothing_enabled_flag"`
	LtRefPicPocLsbSps                 []uint32 `yaml:"lt_ref_pic_poc_lsb_sps,flow"`
	UsedByCurrPicLtSps                []bool   `yaml:"used_by_curr_pic_lt_sps_flag,flow"`
}

// MaxPicOrderCntLsb is the POC LSB wrap modulus.
func (s *HEVCSPS) MaxPicOrderCntLsb() int32 {
	return 1 << (uint(s.Log2MaxPicOrderCntLsbMinus4) + 4)
}

// HEVCPPS is a picture parameter set.
type HEVCPPS struct {
	ID                             uint8 `yaml:"pps_pic_parameter_set_id"`
	SPSID                          uint8 `yaml:"pps_seq_parameter_set_id"`
	DependentSliceSegmentsEnabled  bool  `yaml:"dependent_slice_segments_enabled_flag"`
	SignDataHidingEnabled          bool  `yaml:"sign_data_hiding_enabled_flag"`
	CabacInitPresent               bool  `yaml:"cabac_init_present_flag"`
	NumRefIdxL0DefaultActiveMinus1 uint8 `yaml:"num_ref_idx_l0_default_active_minus1"`
	NumRefIdxL1DefaultActiveMinus1 uint8 `yaml:"num_ref_idx_l1_default_active_minus1"`
	InitQpMinus26                  int32 `yaml:"init_qp_minus26"`
	ConstrainedIntraPred           bool  `yaml:"constrained_intra_pred_flag"`
	TransformSkipEnabled           bool  `yaml:"transform_skip_enabled_flag"`
	CuQpDeltaEnabled               bool  `yaml:"cu_qp_delta_enabled_flag"`
	DiffCuQpDeltaDepth             uint8 `yaml:"diff_cu_qp_delta_depth"`
	CbQpOffset                     int32 `yaml:"pps_cb_qp_offset"`
	CrQpOffset                     int32 `yaml:"pps_cr_qp_offset"`
	WeightedPred                   bool  `yaml:"weighted_pred_flag"`
	WeightedBipred                 bool  `yaml:"weighted_bipred_flag"`
	TransquantBypassEnabled        bool  `yaml:"transquant_bypass_enabled_flag"`
	TilesEnabled                   bool  `yaml:"tiles_enabled_flag"`
	EntropyCodingSyncEnabled       bool  `yaml:"entropy_coding_sync_enabled_flag"`
	LoopFilterAcrossSlicesEnabled  bool  `yaml:"pps_loop_filter_across_slices_enabled_flag"`
	ListsModificationPresent       bool  `yaml:"lists_modification_present_flag"`
}

// ShortTermRPS is the short-term reference picture set of a slice with
// delta POCs relative to the current picture. The first NumNegativePics
// entries precede the current picture.
type ShortTermRPS struct {
	NumNegativePics int     `yaml:"st_rps_num_negative_pics"`
	DeltaPOC        []int32 `yaml:"st_rps_poc,flow"`
	Used            []bool  `yaml:"st_rps_used,flow"`
}

// NumDeltaPOCs returns the number of entries in the set.
func (r ShortTermRPS) NumDeltaPOCs() int {
	return len(r.DeltaPOC)
}

// LongTermRef is one long-term RPS entry, already resolved from either the
// SPS candidate list or the slice header.
type LongTermRef struct {
	PocLsb             uint32 `yaml:"poc_lsb_lt"`
	UsedByCurr         bool   `yaml:"used_by_curr_pic_lt_flag"`
	DeltaPocMsbPresent bool   `yaml:"delta_poc_msb_present_flag"`
	DeltaPocMsbCycle   uint32 `yaml:"delta_poc_msb_cycle_lt"`
}

// HEVCSlice is one parsed slice segment header.
type HEVCSlice struct {
	NalUnitType                   uint8            `yaml:"nal_unit_type"`
	TemporalID                    uint8            `yaml:"temporal_id"`
	FirstSliceSegmentInPic        bool             `yaml:"first_slice_segment_in_pic_flag"`
	NoOutputOfPriorPics           bool             `yaml:"no_output_of_prior_pics_flag"`
	PPSID                         uint8            `yaml:"slice_pic_parameter_set_id"`
	DependentSliceSegment         bool             `yaml:"dependent_slice_segment_flag"`
	SliceSegmentAddress           uint32           `yaml:"slice_segment_address"`
	SliceType                     uint8            `yaml:"slice_type"`
	PicOutputFlag                 bool             `yaml:"pic_output_flag"`
	PicOrderCntLsb                uint32           `yaml:"slice_pic_order_cnt_lsb"`
	ShortTermRPS                  ShortTermRPS     `yaml:"short_term_ref_pic_set"`
	LongTermRefs                  []LongTermRef    `yaml:"long_term_refs"`
	TemporalMVPEnabled            bool             `yaml:"slice_temporal_mvp_enabled_flag"`
	SAOLuma                       bool             `yaml:"slice_sao_luma_flag"`
	SAOChroma                     bool             `yaml:"slice_sao_chroma_flag"`
	NumRefIdxActiveOverride       bool             `yaml:"num_ref_idx_active_override_flag"`
	NumRefIdxL0ActiveMinus1       uint8            `yaml:"num_ref_idx_l0_active_minus1"`
	NumRefIdxL1ActiveMinus1       uint8            `yaml:"num_ref_idx_l1_active_minus1"`
	RefPicListModificationL0      bool             `yaml:"ref_pic_list_modification_flag_l0"`
	ListEntryL0                   []uint8          `yaml:"list_entry_l0,flow"`
	RefPicListModificationL1      bool             `yaml:"ref_pic_list_modification_flag_l1"`
	ListEntryL1                   []uint8          `yaml:"list_entry_l1,flow"`
	MvdL1Zero                     bool             `yaml:"mvd_l1_zero_flag"`
	CabacInit                     bool             `yaml:"cabac_init_flag"`
	CollocatedFromL0              bool             `yaml:"collocated_from_l0_flag"`
	CollocatedRefIdx              uint8            `yaml:"collocated_ref_idx"`
	FiveMinusMaxNumMergeCand      uint8            `yaml:"five_minus_max_num_merge_cand"`
	SliceQpDelta                  int32            `yaml:"slice_qp_delta"`
	SliceCbQpOffset               int32            `yaml:"slice_cb_qp_offset"`
	SliceCrQpOffset               int32            `yaml:"slice_cr_qp_offset"`
	DeblockingFilterDisabled      bool             `yaml:"slice_deblocking_filter_disabled_flag"`
	BetaOffsetDiv2                int32            `yaml:"slice_beta_offset_div2"`
	TcOffsetDiv2                  int32            `yaml:"slice_tc_offset_div2"`
	LoopFilterAcrossSlicesEnabled bool             `yaml:"slice_loop_filter_across_slices_enabled_flag"`
	PredWeight                    *PredWeightTable `yaml:"pred_weight_table,omitempty"`
	PayloadOffset                 uint32           `yaml:"payload_offset"`
	PayloadSize                   uint32           `yaml:"payload_size"`
}

// IsIDR reports whether the slice belongs to an IDR picture.
func (s *HEVCSlice) IsIDR() bool {
	return s.NalUnitType == HEVCNalIDRWRADL || s.NalUnitType == HEVCNalIDRNLP
}

// IsIRAP reports whether the slice belongs to an intra random access point.
func (s *HEVCSlice) IsIRAP() bool {
	return s.NalUnitType >= HEVCNalBLAWLP && s.NalUnitType <= 23
}

// IsBLA reports whether the slice belongs to a broken link access picture.
func (s *HEVCSlice) IsBLA() bool {
	return s.NalUnitType >= HEVCNalBLAWLP && s.NalUnitType <= HEVCNalBLANLP
}

// IsRASL reports whether the slice belongs to a random access skipped leading picture.
func (s *HEVCSlice) IsRASL() bool {
	return s.NalUnitType == HEVCNalRASLN || s.NalUnitType == HEVCNalRASLR
}

// IsRADL reports whether the slice belongs to a random access decodable leading picture.
func (s *HEVCSlice) IsRADL() bool {
	return s.NalUnitType == HEVCNalRADLN || s.NalUnitType == HEVCNalRADLR
}

// IsSubLayerNonReference reports whether the picture is a sub-layer
// non-reference picture (even NAL types up to RSV_VCL_N14).
func (s *HEVCSlice) IsSubLayerNonReference() bool {
	return s.NalUnitType <= 14 && s.NalUnitType%2 == 0
}

// IsIntra reports whether the slice is an I slice.
func (s *HEVCSlice) IsIntra() bool {
	return s.SliceType == HEVCSliceI
}

// NumPicTotalCurr counts the references usable by the current picture.
func (s *HEVCSlice) NumPicTotalCurr() int {
	n := 0
	for _, used := range s.ShortTermRPS.Used {
		if used {
			n++
		}
	}
	for _, lt := range s.LongTermRefs {
		if lt.UsedByCurr {
			n++
		}
	}
	return n
}
