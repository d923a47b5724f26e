package vp9

import "errors"

var (
	// ErrUnsupported is returned for resolutions without a preset and for
	// profiles or frame kinds the accelerator path does not handle.
	ErrUnsupported = errors.New("vp9: unsupported")

	// ErrNoContext is returned when a frame is processed before Setup.
	ErrNoContext = errors.New("vp9: no decoder context")
)
