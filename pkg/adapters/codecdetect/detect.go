// Package codecdetect identifies the bitstream codec of an MP4 container from
// its video sample entry, so a syntax dump can be matched to a decoder when
// its codec field is missing.
package codecdetect

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// ErrNoVideoTrack is returned when the container has no supported video track.
var ErrNoVideoTrack = errors.New("no supported video track found")

// Info describes the first supported video track.
type Info struct {
	Codec      syntax.Codec
	SampleType string
	Width      uint32
	Height     uint32
}

// Prober implements ports.Prober over MP4 containers.
type Prober struct {
	fs ports.FileSystem
}

// NewProber creates a Prober reading containers through fs.
func NewProber(fs ports.FileSystem) *Prober {
	return &Prober{fs: fs}
}

// Probe returns the codec of the container at path.
func (p *Prober) Probe(path string) (syntax.Codec, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return syntax.CodecUnknown, fmt.Errorf("read %s: %w", path, err)
	}
	info, err := DetectFromBytes(data)
	if err != nil {
		return syntax.CodecUnknown, err
	}
	return info.Codec, nil
}

// DetectFromBytes detects the video codec from MP4 data bytes.
func DetectFromBytes(data []byte) (Info, error) {
	return DetectFromReader(bytes.NewReader(data))
}

// DetectFromReader detects the video codec from an io.ReadSeeker and leaves
// the reader rewound.
func DetectFromReader(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Info{Codec: syntax.CodecUnknown}, fmt.Errorf("decode mp4: %w", err)
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return Info{Codec: syntax.CodecUnknown}, fmt.Errorf("seek: %w", err)
	}
	return detectFromMP4File(mp4File)
}

func detectFromMP4File(mp4File *mp4.File) (Info, error) {
	var traks []*mp4.TrakBox
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		traks = append(traks, mp4File.Init.Moov.Traks...)
	}
	if mp4File.Moov != nil {
		traks = append(traks, mp4File.Moov.Traks...)
	}

	for _, trak := range traks {
		if info, ok := detectFromTrack(trak); ok {
			return info, nil
		}
	}
	return Info{Codec: syntax.CodecUnknown}, ErrNoVideoTrack
}

func detectFromTrack(trak *mp4.TrakBox) (Info, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return Info{}, false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return Info{}, false
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		codec := codecForSampleType(child.Type())
		if codec == syntax.CodecUnknown {
			continue
		}
		info := Info{Codec: codec, SampleType: child.Type()}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = uint32(vse.Width)
			info.Height = uint32(vse.Height)
		}
		return info, true
	}
	return Info{}, false
}

func codecForSampleType(sampleType string) syntax.Codec {
	switch sampleType {
	case "avc1", "avc3":
		return syntax.CodecH264
	case "hvc1", "hev1":
		return syntax.CodecHEVC
	case "vp09":
		return syntax.CodecVP9
	default:
		return syntax.CodecUnknown
	}
}

var _ ports.Prober = (*Prober)(nil)
