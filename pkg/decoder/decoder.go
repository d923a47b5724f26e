// Package decoder is the façade that drives one codec variant through a
// stream, slice by slice.
package decoder

import (
	"context"
	"fmt"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/pipeline"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// Codec is the capability set of one codec variant. S is the slice (or
// frame) syntax record and St the per-slice state InitSlice resolves.
type Codec[S, St any] interface {
	Name() string
	// Setup builds a fresh context from the stream's parameter sets and
	// returns the slices to decode.
	Setup(stream *syntax.Stream) ([]S, error)
	// Refresh rebuilds the buffer layout when the slice changes geometry.
	Refresh(sl S) error
	// InitSlice performs reference bookkeeping for the slice.
	InitSlice(sl S) (St, error)
	// EncodeSlice produces the slice's instruction stream.
	EncodeSlice(sl S, st St) (*inst.Stream, error)
	// FinishSlice advances per-stream counters.
	FinishSlice(sl S, st St)
	Status() pipeline.CodecStatus
	Ranges() []allocator.Range
}

// dpbDumper is implemented by codecs that keep a DPB.
type dpbDumper interface {
	DumpDPB() []string
}

// Runner is the codec independent view of a Decoder.
type Runner interface {
	Name() string
	Setup(path string, num int) (pipeline.StreamInfo, error)
	SetupStream(stream *syntax.Stream, num int) (pipeline.StreamInfo, error)
	NumSlices() int
	DecodeAt(index int) (*pipeline.SliceResult, error)
	Ranges() []allocator.Range
	DumpDPB() []string
}

// Decoder drives a codec variant. One Decoder handles one stream; it is not
// safe for concurrent use.
type Decoder[S, St any] struct {
	codec  Codec[S, St]
	parser ports.Parser
	log    ports.Logger
	slices []S
	path   string
	err    error
}

// New creates a Decoder. parser may be nil when only SetupStream is used.
func New[S, St any](codec Codec[S, St], parser ports.Parser, log ports.Logger) *Decoder[S, St] {
	return &Decoder[S, St]{codec: codec, parser: parser, log: log}
}

// Name returns the codec name.
func (d *Decoder[S, St]) Name() string {
	return d.codec.Name()
}

// Setup parses path, keeping at most num slices (0 keeps all), and prepares
// the codec context for the first slice.
func (d *Decoder[S, St]) Setup(path string, num int) (pipeline.StreamInfo, error) {
	if d.parser == nil {
		return pipeline.StreamInfo{}, fmt.Errorf("%s: no parser configured", path)
	}
	stream, err := d.parser.Parse(path, num)
	if err != nil {
		return pipeline.StreamInfo{}, fmt.Errorf("parse %s: %w", path, err)
	}
	d.path = path
	return d.SetupStream(stream, num)
}

// SetupStream prepares the codec context from an already parsed stream.
func (d *Decoder[S, St]) SetupStream(stream *syntax.Stream, num int) (pipeline.StreamInfo, error) {
	d.err = nil
	d.slices = nil
	stream.Truncate(num)

	slices, err := d.codec.Setup(stream)
	if err != nil {
		return pipeline.StreamInfo{}, err
	}
	if len(slices) == 0 {
		return pipeline.StreamInfo{}, ErrNoSlices
	}
	d.slices = slices

	st := d.codec.Status()
	return pipeline.StreamInfo{
		Path:       d.path,
		Codec:      d.codec.Name(),
		NumSlices:  len(slices),
		Width:      st.Width,
		Height:     st.Height,
		Generation: st.Generation,
		Ranges:     d.codec.Ranges(),
	}, nil
}

// NumSlices returns the number of slices set up for decoding.
func (d *Decoder[S, St]) NumSlices() int {
	return len(d.slices)
}

// Slices returns the slices set up for decoding.
func (d *Decoder[S, St]) Slices() []S {
	return d.slices
}

// DecodeAt decodes the slice at index.
func (d *Decoder[S, St]) DecodeAt(index int) (*pipeline.SliceResult, error) {
	if index < 0 || index >= len(d.slices) {
		return nil, fmt.Errorf("slice %d of %d: %w", index, len(d.slices), ErrNotSetup)
	}
	res, err := d.Decode(d.slices[index])
	if res != nil {
		res.Index = index
	}
	return res, err
}

// Decode runs one slice through refresh, reference bookkeeping, encoding and
// the finishing step. The first failure aborts the stream.
func (d *Decoder[S, St]) Decode(sl S) (*pipeline.SliceResult, error) {
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, d.err)
	}
	if d.slices == nil {
		return nil, ErrNotSetup
	}
	res, err := d.decode(sl)
	if err != nil {
		d.err = err
		return nil, err
	}
	return res, nil
}

func (d *Decoder[S, St]) decode(sl S) (*pipeline.SliceResult, error) {
	if err := d.codec.Refresh(sl); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	st, err := d.codec.InitSlice(sl)
	if err != nil {
		return nil, fmt.Errorf("init slice: %w", err)
	}
	stream, err := d.codec.EncodeSlice(sl, st)
	if err != nil {
		return nil, fmt.Errorf("encode slice: %w", err)
	}
	res := &pipeline.SliceResult{
		Stream: stream,
		Params: inst.Fold(stream),
		Status: d.codec.Status(),
	}
	d.codec.FinishSlice(sl, st)
	res.Intra = d.codec.Status().LastIntra
	return res, nil
}

// Execute implements pipeline.Stage so a Decoder can be chained with a
// submission stage.
func (d *Decoder[S, St]) Execute(ctx context.Context, sl S) (*pipeline.SliceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Decode(sl)
}

// Ranges returns the codec's published address ranges.
func (d *Decoder[S, St]) Ranges() []allocator.Range {
	return d.codec.Ranges()
}

// DumpDPB returns the codec's DPB dump, or nil for codecs without one.
func (d *Decoder[S, St]) DumpDPB() []string {
	if dd, ok := d.codec.(dpbDumper); ok {
		return dd.DumpDPB()
	}
	return nil
}
