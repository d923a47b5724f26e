// Package fifowriter implements ports.Submitter by writing command buffers to
// disk: one little-endian word file and one FFP JSON file per slice, the range
// table of every published layout, and a manifest on Close.
package fifowriter

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/ports"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("fifowriter: writer closed")

// Entry describes one submitted slice in the manifest.
type Entry struct {
	Index  int    `json:"index"`
	IOVA   uint64 `json:"iova"`
	Words  int    `json:"words"`
	Binary string `json:"binary"`
	Params string `json:"params"`
	Layout int    `json:"layout"`
}

// Manifest is written on Close.
type Manifest struct {
	Layouts []string `json:"layouts"`
	Slices  []Entry  `json:"slices"`
}

// Writer writes submissions below a directory.
type Writer struct {
	fs  ports.FileSystem
	dir string

	mu       sync.Mutex
	manifest Manifest
	closed   bool
}

// New creates a Writer rooted at dir.
func New(fs ports.FileSystem, dir string) *Writer {
	return &Writer{fs: fs, dir: dir}
}

// PublishRanges writes ranges.json for the first layout and
// ranges_NNN.json for every rebuilt one.
func (w *Writer) PublishRanges(ranges []allocator.Range) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	name := "ranges.json"
	if n := len(w.manifest.Layouts); n > 0 {
		name = fmt.Sprintf("ranges_%03d.json", n)
	}
	if ranges == nil {
		ranges = []allocator.Range{}
	}
	if err := w.writeJSON(name, ranges); err != nil {
		return err
	}
	w.manifest.Layouts = append(w.manifest.Layouts, name)
	return nil
}

// Submit writes the stream words and the folded parameters of one slice.
func (w *Writer) Submit(index int, iova uint64, stream *inst.Stream, params inst.Params) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	entry := Entry{
		Index:  index,
		IOVA:   iova,
		Words:  stream.Len(),
		Binary: fmt.Sprintf("slice_%03d.bin", index),
		Params: fmt.Sprintf("slice_%03d.json", index),
		Layout: len(w.manifest.Layouts) - 1,
	}

	if err := w.fs.WriteFile(w.path(entry.Binary), Encode(stream)); err != nil {
		return fmt.Errorf("write %s: %w", entry.Binary, err)
	}
	if err := w.writeJSON(entry.Params, params); err != nil {
		return err
	}
	w.manifest.Slices = append(w.manifest.Slices, entry)
	return nil
}

// Close writes manifest.json. Further calls fail with ErrClosed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.writeJSON("manifest.json", w.manifest)
}

// Encode packs the stream values as little-endian 32-bit words.
func Encode(stream *inst.Stream) []byte {
	values := stream.Values()
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}
	return out
}

// Decode unpacks little-endian 32-bit words.
func Decode(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("fifowriter: %d bytes is not a whole number of words", len(data))
	}
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return out, nil
}

func (w *Writer) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := w.fs.WriteFile(w.path(name), data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.dir, name)
}

var _ ports.Submitter = (*Writer)(nil)
