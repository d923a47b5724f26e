package hevc

import "errors"

var (
	// ErrUnsupported is returned for streams the accelerator path does not handle.
	ErrUnsupported = errors.New("hevc: unsupported stream")

	// ErrDPBExhausted is returned when no DPB slot is free for a new picture.
	ErrDPBExhausted = errors.New("hevc: dpb exhausted")

	// ErrBumpingNotImplemented is returned when a non-IRAP picture leaves the
	// DPB full and a picture would have to be bumped out.
	ErrBumpingNotImplemented = errors.New("hevc: dpb bumping not implemented")

	// ErrNoReferences is returned when an inter slice has no usable reference.
	ErrNoReferences = errors.New("hevc: no reference pictures for inter slice")

	// ErrMissingParameterSet is returned when a slice refers to an unknown PPS or SPS.
	ErrMissingParameterSet = errors.New("hevc: missing parameter set")

	// ErrUnknownSliceType is returned for slice_type values outside B/P/I.
	ErrUnknownSliceType = errors.New("hevc: unknown slice type")

	// ErrNoContext is returned when a slice is processed before Setup.
	ErrNoContext = errors.New("hevc: decoder context not set up")
)
