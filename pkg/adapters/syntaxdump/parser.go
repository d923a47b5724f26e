// Package syntaxdump reads parsed bitstream syntax from YAML dumps. The dump
// format mirrors the field names of the H.264, HEVC and VP9 syntax records in
// package syntax, so a dump produced by any bitstream parser can be decoded
// into hardware command streams without re-parsing the bitstream.
package syntaxdump

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDump is returned for a dump without any document.
var ErrEmptyDump = errors.New("syntaxdump: empty dump")

// Parser implements ports.Parser and ports.Prober over YAML syntax dumps.
type Parser struct {
	fs  ports.FileSystem
	log ports.Logger
}

// New creates a Parser reading dumps through fs.
func New(fs ports.FileSystem, log ports.Logger) *Parser {
	return &Parser{fs: fs, log: log}
}

// Parse decodes the dump at path and keeps at most num slices (0 keeps all).
// A relative container path is resolved against the dump's directory.
func (p *Parser) Parse(path string, num int) (*syntax.Stream, error) {
	var stream syntax.Stream
	if err := p.decode(path, &stream); err != nil {
		return nil, err
	}
	if stream.Codec == "" {
		stream.Codec = syntax.CodecUnknown
	}
	if stream.Container != "" && !filepath.IsAbs(stream.Container) {
		stream.Container = filepath.Join(filepath.Dir(path), stream.Container)
	}

	total := stream.NumSlices()
	stream.Truncate(num)
	p.log.Debug("parsed %s: codec %s, %d of %d slices", path, stream.Codec, stream.NumSlices(), total)
	return &stream, nil
}

// Probe returns the codec named in the dump header without decoding slices.
// A dump without a codec field yields CodecUnknown and no error.
func (p *Parser) Probe(path string) (syntax.Codec, error) {
	var header struct {
		Codec syntax.Codec `yaml:"codec"`
	}
	if err := p.decode(path, &header); err != nil {
		return syntax.CodecUnknown, err
	}
	if header.Codec == "" {
		return syntax.CodecUnknown, nil
	}
	return header.Codec, nil
}

func (p *Parser) decode(path string, out interface{}) error {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyDump)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

var (
	_ ports.Parser = (*Parser)(nil)
	_ ports.Prober = (*Parser)(nil)
)
