// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/user/avdcmd/pkg/diag"
	"github.com/user/avdcmd/pkg/orchestrator"
	"github.com/user/avdcmd/pkg/syntax"
	"gopkg.in/yaml.v3"
)

// ErrInvalidColor is returned for colors that are not #rrggbb.
var ErrInvalidColor = errors.New("invalid color")

// Config represents the full configuration for avdcmd.
type Config struct {
	// Input/Output
	Input     string `yaml:"input"`
	Codec     string `yaml:"codec"`
	Limit     int    `yaml:"limit"`
	OutputDir string `yaml:"output_dir"`
	Summary   string `yaml:"summary"`

	// Range map
	RenderMap bool     `yaml:"render_map"`
	MapWidth  int      `yaml:"map_width"`
	MapTheme  MapTheme `yaml:"map_theme"`

	// Logging
	Verbose bool `yaml:"verbose"`
	Quiet   bool `yaml:"quiet"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// MapTheme overrides the colors of the rendered range map.
type MapTheme struct {
	BackgroundColor string `yaml:"background_color"`
	TrackColor      string `yaml:"track_color"`
	BorderColor     string `yaml:"border_color"`
	TextColor       string `yaml:"text_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Codec:     "auto",
		OutputDir: "./out",
		RenderMap: true,
		DebugDir:  "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks values the CLI cannot reject on its own.
func (c Config) Validate() error {
	if c.Codec != "" && !strings.EqualFold(c.Codec, "auto") {
		if _, err := syntax.ParseCodec(c.Codec); err != nil {
			return err
		}
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", c.Limit)
	}
	if c.MapWidth < 0 {
		return fmt.Errorf("map width must not be negative: %d", c.MapWidth)
	}
	if c.Verbose && c.Quiet {
		return errors.New("verbose and quiet are mutually exclusive")
	}
	for _, hex := range []string{c.MapTheme.BackgroundColor, c.MapTheme.TrackColor, c.MapTheme.BorderColor, c.MapTheme.TextColor} {
		if hex == "" {
			continue
		}
		if _, err := ParseColor(hex); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor parses a #rrggbb string.
func ParseColor(hex string) (color.Color, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MapStyle applies the theme on top of the default map style. Invalid
// colors keep the default.
func (t MapTheme) MapStyle() diag.MapStyle {
	style := diag.DefaultMapStyle()
	for _, o := range []struct {
		hex string
		dst *color.Color
	}{
		{t.BackgroundColor, &style.Background},
		{t.TrackColor, &style.Track},
		{t.BorderColor, &style.Border},
		{t.TextColor, &style.Text},
	} {
		if o.hex == "" {
			continue
		}
		if c, err := ParseColor(o.hex); err == nil {
			*o.dst = c
		}
	}
	return style
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.Config{
		Input:     c.Input,
		Codec:     c.Codec,
		Limit:     c.Limit,
		OutputDir: c.OutputDir,
		RenderMap: c.RenderMap,
		MapWidth:  c.MapWidth,
		MapStyle:  c.MapTheme.MapStyle(),
	}
	if c.Debug {
		cfg.DebugDir = c.DebugDir
	}
	return cfg
}
