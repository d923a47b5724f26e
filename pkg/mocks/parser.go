package mocks

import (
	"sync"

	"github.com/user/avdcmd/pkg/ports"
	"github.com/user/avdcmd/pkg/syntax"
)

// Parser is a mock implementation of ports.Parser and ports.Prober.
type Parser struct {
	mu    sync.Mutex
	calls []string

	Stream     *syntax.Stream
	ProbeCodec syntax.Codec

	ParseFunc func(path string, num int) (*syntax.Stream, error)
	ProbeFunc func(path string) (syntax.Codec, error)
}

// NewParser creates a Parser that returns stream for every path.
func NewParser(stream *syntax.Stream) *Parser {
	return &Parser{Stream: stream}
}

func (m *Parser) Parse(path string, num int) (*syntax.Stream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()
	if m.ParseFunc != nil {
		return m.ParseFunc(path, num)
	}
	return m.Stream, nil
}

func (m *Parser) Probe(path string) (syntax.Codec, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(path)
	}
	if m.ProbeCodec != "" {
		return m.ProbeCodec, nil
	}
	if m.Stream != nil {
		return m.Stream.Codec, nil
	}
	return syntax.CodecUnknown, nil
}

// Calls returns the parsed paths.
func (m *Parser) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

var (
	_ ports.Parser = (*Parser)(nil)
	_ ports.Prober = (*Parser)(nil)
)
