package hal

import "errors"

var (
	// ErrFifoIndex is returned when an instruction FIFO slot lies outside the FIFO ring.
	ErrFifoIndex = errors.New("hal: instruction fifo index out of range")

	// ErrInvalidGroup is returned for a reference buffer group outside 0..3.
	ErrInvalidGroup = errors.New("hal: invalid reference buffer group")
)
