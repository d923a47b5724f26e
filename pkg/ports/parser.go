package ports

import "github.com/user/avdcmd/pkg/syntax"

// Parser turns a bitstream (or a dump of its parsed syntax) into parameter
// sets and ordered slices. num limits the number of slices; 0 means all.
type Parser interface {
	Parse(path string, num int) (*syntax.Stream, error)
}

// Prober identifies the codec of a container without parsing slices.
type Prober interface {
	Probe(path string) (syntax.Codec, error)
}
