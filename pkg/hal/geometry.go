package hal

// HeightWidth packs (height-1) and (width-1) into the high and low halves.
func HeightWidth(width, height uint32) uint32 {
	return ((height-1)&0xffff)<<16 | ((width - 1) & 0xffff)
}

// HeightWidthShift3 is HeightWidth with both fields shifted right by 3.
func HeightWidthShift3(width, height uint32) uint32 {
	return ((height-1)>>3)<<16 | ((width - 1) >> 3)
}

// MbDims packs the macroblock grid as used by cm3_set_mb_dims.
func MbDims(width, height uint32) uint32 {
	return ((height-1)>>4)<<12 | ((width - 1) >> 4)
}

// WidthAlign is the plane stride word: width in 64-byte units, times 4.
func WidthAlign(width uint32) uint32 {
	return (((width + 63) &^ 63) >> 6) << 2
}

// Addr7 truncates a DPB buffer address to the hardware's 128-byte granularity.
func Addr7(addr uint64) uint32 {
	return uint32(addr >> 7)
}

// Addr8 truncates a tile or plane address to 256-byte granularity.
func Addr8(addr uint64) uint32 {
	return uint32(addr >> 8)
}
