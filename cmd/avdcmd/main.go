// Package main provides the CLI entry point for avdcmd.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/avdcmd/pkg/adapters/codecdetect"
	"github.com/user/avdcmd/pkg/adapters/fifowriter"
	"github.com/user/avdcmd/pkg/adapters/filesink"
	"github.com/user/avdcmd/pkg/adapters/ggrenderer"
	"github.com/user/avdcmd/pkg/adapters/logger"
	"github.com/user/avdcmd/pkg/adapters/nullsink"
	"github.com/user/avdcmd/pkg/adapters/osfilesystem"
	"github.com/user/avdcmd/pkg/adapters/syntaxdump"
	"github.com/user/avdcmd/pkg/config"
	"github.com/user/avdcmd/pkg/orchestrator"
	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/summarizer"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, l10n.F("avdcmd (Go) version %s", c.App.Version))
	}

	return &cli.App{
		Name:    "avdcmd",
		Usage:   l10n.T("Build hardware decoder command buffers from parsed bitstreams"),
		Version: version,
		Description: l10n.T("avdcmd replays a syntax dump through the decoder model and writes " +
			"the instruction FIFOs the accelerator would consume."),
		Commands: []*cli.Command{
			decodeCommand(),
			probeCommand(),
		},
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     l10n.T("Decode a syntax dump into command buffers"),
		ArgsUsage: "<dump.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Input")},
			&cli.StringFlag{Name: "codec", Usage: l10n.T("Codec (auto, h264, h265, vp9)"), Category: l10n.T("Input")},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: l10n.T("Decode at most this many slices (0 = all)"), Category: l10n.T("Input")},

			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Directory for command buffers"), Category: l10n.T("Output")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown, or YAML for .yaml)"), Category: l10n.T("Output")},

			&cli.BoolFlag{Name: "no-map", Usage: l10n.T("Do not render the address map"), Category: l10n.T("Debug")},
			&cli.IntFlag{Name: "map-width", Usage: l10n.T("Scale the address map down to this width"), Category: l10n.T("Debug")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},

			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		},
		Action: runDecode,
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Identify the codec of a syntax dump or MP4 file"),
		ArgsUsage: "<file>",
		Action:    runProbe,
	}
}

// buildConfig merges the config file with the flags that were set.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.Args().Len() > 0 {
		cfg.Input = c.Args().First()
	}
	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}
	if c.IsSet("limit") {
		cfg.Limit = c.Int("limit")
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("summary") {
		cfg.Summary = c.String("summary")
	}
	if c.Bool("no-map") {
		cfg.RenderMap = false
	}
	if c.IsSet("map-width") {
		cfg.MapWidth = c.Int("map-width")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.Bool("quiet") {
		cfg.Quiet = true
	}
	if c.String("log-level") == "debug" {
		cfg.Verbose = true
	}

	if cfg.Input == "" {
		return cfg, errors.New(l10n.T("Input dump argument is required"))
	}
	return cfg, cfg.Validate()
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if cfg.Quiet {
		return logger.NewNoop()
	}
	level := ports.ParseLogLevel(c.String("log-level"))
	if cfg.Verbose {
		level = ports.LevelDebug
	}
	return logger.NewConsole(level)
}

func runDecode(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	parser := syntaxdump.New(fs, log.WithComponent("syntaxdump"))
	prober := codecdetect.NewProber(fs)
	writer := fifowriter.New(fs, cfg.OutputDir)

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(parser, prober, writer, renderer, sink, log)

	log.Info("Decoding %s...", cfg.Input)
	result, err := orch.Run(ctx, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}
	log.Info("Output saved to %s", cfg.OutputDir)

	if cfg.Summary != "" {
		summary := summarizer.NewBuilder().
			WithInput(result.Input, string(result.Codec), result.CodecSource).
			WithDimensions(result.Width, result.Height).
			WithDecode(summarizer.DecodeInfo{
				Slices:       result.Slices,
				IntraSlices:  result.IntraSlices,
				Instructions: result.Instructions,
			}).
			WithLayout(result.Layouts, result.Ranges).
			WithOutput(result.OutputDir).
			Build()

		formatter := summarizer.ForPath(cfg.Summary,
			summarizer.WithTranslator(func(key string) string { return l10n.T(key) }),
			summarizer.WithVersion(version),
		)
		if err := summarizer.NewWriter(formatter, fs).Write(cfg.Summary, summary); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", cfg.Summary)
		}
	}
	return nil
}

func runProbe(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return errors.New(l10n.T("File argument is required"))
	}
	path := c.Args().First()
	fs := osfilesystem.New()

	var prober ports.Prober
	source := orchestrator.SourceContainer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		prober = syntaxdump.New(fs, logger.NewNoop())
		source = orchestrator.SourceDump
	default:
		prober = codecdetect.NewProber(fs)
	}

	codec, err := prober.Probe(path)
	if err != nil {
		return err
	}
	if !codec.Known() {
		return fmt.Errorf("%w: %s", orchestrator.ErrNoCodec, path)
	}
	fmt.Fprintln(c.App.Writer, l10n.F("%s: %s (from %s)", path, codec, l10n.T(source)))
	return nil
}
