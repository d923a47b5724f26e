// Package orchestrator runs a whole stream: codec selection, setup, the
// slice loop, submission of every command buffer and the debug output.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/decoder"
	"github.com/user/avdcmd/pkg/diag"
	"github.com/user/avdcmd/pkg/pipeline"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// ErrNoCodec is returned when no source names a usable codec.
var ErrNoCodec = errors.New("orchestrator: codec could not be determined")

// Codec sources reported in RunResult.CodecSource.
const (
	SourceConfig    = "config"
	SourceDump      = "dump"
	SourceContainer = "container"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input is the syntax dump to decode.
	Input string
	// Codec forces a codec; "" or "auto" resolves it from the dump header
	// and then from the container.
	Codec string
	// Limit keeps at most this many slices; 0 keeps all.
	Limit int
	// OutputDir is where the submitter writes; reported in the result only.
	OutputDir string
	// DebugDir is where the debug sink writes; reported in the log only.
	DebugDir string

	// RenderMap draws the address map into the debug sink.
	RenderMap bool
	// MapWidth scales the rendered map down to this width; 0 keeps it.
	MapWidth int
	// MapStyle controls the drawn map; a zero style uses the default.
	MapStyle diag.MapStyle
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Codec:     "auto",
		OutputDir: "out",
		RenderMap: true,
		MapStyle:  diag.DefaultMapStyle(),
	}
}

// Orchestrator coordinates parsing, decoding and submission.
type Orchestrator struct {
	parser    ports.Parser
	prober    ports.Prober
	submitter ports.Submitter
	renderer  ports.Renderer
	sink      ports.DebugSink
	logger    ports.Logger
}

// New creates a new Orchestrator. prober identifies the container named by a
// dump that carries no codec; it may be nil.
func New(
	parser ports.Parser,
	prober ports.Prober,
	submitter ports.Submitter,
	renderer ports.Renderer,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		parser:    parser,
		prober:    prober,
		submitter: submitter,
		renderer:  renderer,
		sink:      sink,
		logger:    logger,
	}
}

// Run decodes config.Input and submits every slice. The submitter is closed
// when Run returns, also on failure.
func (o *Orchestrator) Run(ctx context.Context, config Config) (result RunResult, err error) {
	defer func() {
		if cerr := o.submitter.Close(); cerr != nil && err == nil {
			o.logger.Error("Failed to write output: %s", cerr)
			err = fmt.Errorf("close submitter: %w", cerr)
		}
	}()

	o.logger.Info("Opening %s", config.Input)
	stream, err := o.parser.Parse(config.Input, config.Limit)
	if err != nil {
		return RunResult{}, fmt.Errorf("parse: %w", err)
	}

	codec, source, err := o.resolveCodec(config, stream)
	if err != nil {
		return RunResult{}, err
	}
	stream.Codec = codec
	o.logger.Info("Codec %s selected from %s", codec, source)

	runner, err := decoder.Open(codec, o.parser, o.logger)
	if err != nil {
		return RunResult{}, err
	}
	info, err := runner.SetupStream(stream, config.Limit)
	if errors.Is(err, decoder.ErrNoSlices) {
		o.logger.Warn("No slices left after limit %d", config.Limit)
	}
	if err != nil {
		return RunResult{}, fmt.Errorf("setup: %w", err)
	}
	info.Path = config.Input
	o.logger.Info("Stream ready: %s %dx%d, %d slices", info.Codec, info.Width, info.Height, info.NumSlices)

	if o.sink.Enabled() && config.DebugDir != "" {
		o.logger.Info("Debug output enabled: %s", config.DebugDir)
	}

	result = RunResult{
		Input:       config.Input,
		OutputDir:   config.OutputDir,
		Codec:       codec,
		CodecSource: source,
		Width:       info.Width,
		Height:      info.Height,
	}

	generation := info.Generation
	if err := o.publish(config, info.Ranges, &result); err != nil {
		return result, err
	}

	slices := pipeline.Chain[int, *pipeline.SliceResult, *pipeline.SliceResult](
		decodeStage(runner),
		pipeline.StageFunc[*pipeline.SliceResult, *pipeline.SliceResult](o.submit),
	)

	for i := 0; i < info.NumSlices; i++ {
		res, err := slices.Execute(ctx, i)
		if err != nil {
			if ctx.Err() != nil {
				o.logger.Warn("Interrupted, shutting down...")
				return result, err
			}
			o.logger.Error("Slice %d failed: %s", i, err)
			return result, fmt.Errorf("slice %d: %w", i, err)
		}

		if res.Status.Generation != generation {
			generation = res.Status.Generation
			o.logger.Info("Address layout rebuilt (generation %d)", generation)
			result.Width, result.Height = res.Status.Width, res.Status.Height
			if err := o.publish(config, runner.Ranges(), &result); err != nil {
				return result, err
			}
		}

		result.Slices++
		result.Instructions += res.Stream.Len()
		if res.Intra {
			result.IntraSlices++
		}
		o.logger.Debug("Decoded slice %d/%d (%d instructions)", i+1, info.NumSlices, res.Stream.Len())

		o.saveSliceDebug(i, res, runner.DumpDPB())
	}

	o.logger.Info("Decoding finished: %d slices, %d instructions", result.Slices, result.Instructions)
	return result, nil
}

func decodeStage(runner decoder.Runner) pipeline.Stage[int, *pipeline.SliceResult] {
	return pipeline.StageFunc[int, *pipeline.SliceResult](func(ctx context.Context, index int) (*pipeline.SliceResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return runner.DecodeAt(index)
	})
}

func (o *Orchestrator) submit(ctx context.Context, res *pipeline.SliceResult) (*pipeline.SliceResult, error) {
	if err := o.submitter.Submit(res.Index, res.Status.FifoIOVA, res.Stream, res.Params); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return res, nil
}

// resolveCodec picks the codec from the config, then the dump header, then
// the container the dump refers to.
func (o *Orchestrator) resolveCodec(config Config, stream *syntax.Stream) (syntax.Codec, string, error) {
	if config.Codec != "" && config.Codec != "auto" {
		codec, err := syntax.ParseCodec(config.Codec)
		if err != nil {
			return syntax.CodecUnknown, "", fmt.Errorf("config: %w", err)
		}
		return codec, SourceConfig, nil
	}
	if stream.Codec.Known() {
		return stream.Codec, SourceDump, nil
	}
	if stream.Container != "" && o.prober != nil {
		codec, err := o.prober.Probe(stream.Container)
		if err != nil {
			o.logger.Error("Failed to probe %s: %s", stream.Container, err)
			return syntax.CodecUnknown, "", fmt.Errorf("probe: %w", err)
		}
		if codec.Known() {
			return codec, SourceContainer, nil
		}
	}
	return syntax.CodecUnknown, "", ErrNoCodec
}

// publish hands a layout to the submitter and, when enabled, to the debug sink.
func (o *Orchestrator) publish(config Config, ranges []allocator.Range, result *RunResult) error {
	if err := o.submitter.PublishRanges(ranges); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return fmt.Errorf("publish ranges: %w", err)
	}
	result.Layouts++
	result.Ranges = ranges

	if !o.sink.Enabled() {
		return nil
	}
	if err := o.sink.SaveRanges(diag.FormatRanges(ranges)); err != nil {
		o.logger.Warn("Range map not rendered: %s", err)
	}
	if !config.RenderMap || o.renderer == nil {
		return nil
	}
	style := config.MapStyle
	if style.Width == 0 {
		style = diag.DefaultMapStyle()
	}
	var img image.Image = diag.RenderRangeMap(o.renderer, ranges, style)
	if config.MapWidth > 0 {
		img = diag.Thumbnail(o.renderer, img, config.MapWidth)
	}
	if err := o.sink.SaveRangeMap(img); err != nil {
		o.logger.Warn("Range map not rendered: %s", err)
	}
	return nil
}

// saveSliceDebug writes the listing and DPB of one slice. Failures are
// logged and never stop the run.
func (o *Orchestrator) saveSliceDebug(index int, res *pipeline.SliceResult, dpb []string) {
	if !o.sink.Enabled() {
		return
	}
	if err := o.sink.SaveListing(index, res.Stream.Listing()); err != nil {
		o.logger.Warn("Debug output for slice %d not saved: %s", index, err)
	}
	if dpb == nil {
		return
	}
	if err := o.sink.SaveDPB(index, diag.FormatDPB(index, dpb)); err != nil {
		o.logger.Warn("Debug output for slice %d not saved: %s", index, err)
	}
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	Input       string
	OutputDir   string
	Codec       syntax.Codec
	CodecSource string

	// Dimensions of the last layout.
	Width  uint32
	Height uint32

	Slices       int
	IntraSlices  int
	Instructions int

	// Layouts counts published layouts; Ranges is the last one.
	Layouts int
	Ranges  []allocator.Range
}
