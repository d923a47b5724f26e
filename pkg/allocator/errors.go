package allocator

import "errors"

var (
	// ErrRegression is returned when MoveUp is asked to move the cursor backwards.
	ErrRegression = errors.New("allocator: cursor regression")
)
