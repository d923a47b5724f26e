package vp9

import "fmt"

// Preset holds the fixed buffer addresses for one resolution. Tile addresses
// are stored shifted right by 8, reference buffer groups by 7.
type Preset struct {
	Width       uint32
	Height      uint32
	SPSTileBase uint32
	PPSTileBase uint32
	PPSTiles    [4]uint32
	// RVRA lists the four group addresses of each reference buffer. The
	// first entry receives the frame being decoded.
	RVRA [][4]uint32
}

// spsTileOffsets are relative to SPSTileBase and shared by every preset.
var spsTileOffsets = [...]uint32{0x0, 0x80, 0x180, 0x200, 0x280, 0x300}

// Fixed addresses outside the preset table.
const (
	YAddr         = 0x768100
	UVAddr        = 0x76c900
	SliceDataAddr = 0x774000
)

var presets = []Preset{
	{
		Width:       128,
		Height:      64,
		SPSTileBase: 0x8cc000 >> 8,
		PPSTileBase: 0x87c000 >> 8,
		PPSTiles: [4]uint32{
			0x87c0 + 0x80 + 0x100 + 0x480,
			0x87c0 + 0x80 + 0x100,
			0x87c0,
			0x87c0 + 0x80,
		},
		RVRA: [][4]uint32{
			{0x0ef80, 0x0eb82, 0x0f080, 0x0ec12},
			{0x0f180, 0x12082, 0x0f280, 0x12112},
			{0x0f380, 0x12382, 0x0f480, 0x12412},
			{0x0f580, 0x12682, 0x0f680, 0x12712},
			{0x0f380, 0x12202, 0x0f480, 0x12292},
			{0x0f580, 0x12382, 0x0f680, 0x12412},
			{0x0f380, 0x12682, 0x0f480, 0x12712},
		},
	},
	{
		Width:       1024,
		Height:      512,
		SPSTileBase: 0x9d4000 >> 8,
		PPSTileBase: 0x964000 >> 8,
		PPSTiles: [4]uint32{
			0x9640 + 0x180 + 0x200 + 0x480,
			0x9640 + 0x180 + 0x200,
			0x9640,
			0x9640 + 0x180,
		},
		RVRA: [][4]uint32{
			{0x0ff80, 0x0eb80, 0x10a00, 0x10000},
			{0x15780, 0x14380, 0x16200, 0x15800},
			{0x19000, 0x17c00, 0x19a80, 0x19080},
			{0x1c880, 0x1b480, 0x1d300, 0x1c900},
			{0x19000, 0x17c00, 0x19a80, 0x19080},
		},
	},
}

// LookupPreset returns the preset for an exact resolution match.
func LookupPreset(width, height uint32) (*Preset, error) {
	for i := range presets {
		if presets[i].Width == width && presets[i].Height == height {
			return &presets[i], nil
		}
	}
	return nil, fmt.Errorf("%dx%d has no address preset: %w", width, height, ErrUnsupported)
}

// SPSTile returns the n-th SPS tile address, wrapping around the tile set.
func (p *Preset) SPSTile(n int) uint32 {
	return p.SPSTileBase + spsTileOffsets[n%len(spsTileOffsets)]
}

// Current returns the group addresses of the buffer being decoded into.
func (p *Preset) Current() [4]uint32 {
	return p.RVRA[0]
}

// Reference returns the group addresses for a reference frame slot.
func (p *Preset) Reference(slot uint8) [4]uint32 {
	return p.RVRA[1+int(slot)%(len(p.RVRA)-1)]
}
