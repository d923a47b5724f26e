package mocks

import (
	"sync"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/inst"
	"github.com/user/avdcmd/pkg/ports"
)

// Submission is one recorded Submit call.
type Submission struct {
	Index  int
	IOVA   uint64
	Values []uint32
	Params inst.Params
}

// Submitter is a mock implementation of ports.Submitter.
type Submitter struct {
	mu sync.Mutex

	Published   [][]allocator.Range
	Submissions []Submission
	Closed      bool

	SubmitFunc func(index int, iova uint64, stream *inst.Stream, params inst.Params) error
}

// NewSubmitter creates a new mock Submitter.
func NewSubmitter() *Submitter {
	return &Submitter{}
}

func (m *Submitter) PublishRanges(ranges []allocator.Range) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, append([]allocator.Range(nil), ranges...))
	return nil
}

func (m *Submitter) Submit(index int, iova uint64, stream *inst.Stream, params inst.Params) error {
	if m.SubmitFunc != nil {
		if err := m.SubmitFunc(index, iova, stream, params); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submissions = append(m.Submissions, Submission{
		Index:  index,
		IOVA:   iova,
		Values: stream.Values(),
		Params: params,
	})
	return nil
}

func (m *Submitter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

var _ ports.Submitter = (*Submitter)(nil)
