package decoder

import "errors"

var (
	// ErrAborted is returned by every Decode after a slice has failed.
	ErrAborted = errors.New("decoder: stream aborted")

	// ErrNoSlices is returned when the parser yields no slices.
	ErrNoSlices = errors.New("decoder: no slices")

	// ErrNotSetup is returned when decoding before Setup.
	ErrNotSetup = errors.New("decoder: not set up")

	// ErrUnknownCodec is returned by Open for codecs without a variant.
	ErrUnknownCodec = errors.New("decoder: unknown codec")
)
