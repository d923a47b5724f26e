package h264

import "errors"

var (
	// ErrUnsupported is returned for stream features this path does not handle.
	ErrUnsupported = errors.New("h264: unsupported stream")

	// ErrDPBExhausted is returned when no DPB slot is free for a new picture.
	ErrDPBExhausted = errors.New("h264: dpb exhausted")

	// ErrNoReferences is returned when an inter slice has no usable reference.
	ErrNoReferences = errors.New("h264: no reference pictures for inter slice")

	// ErrMissingParameterSet is returned when a slice refers to an unknown PPS or SPS.
	ErrMissingParameterSet = errors.New("h264: missing parameter set")

	// ErrUnknownSliceType is returned for slice types outside P/B/I.
	ErrUnknownSliceType = errors.New("h264: unknown slice type")

	// ErrNoContext is returned when a slice is processed before Setup.
	ErrNoContext = errors.New("h264: decoder context not set up")
)
