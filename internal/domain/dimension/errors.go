package dimension

import "errors"

var (
	// ErrDimensionNotFound indicates the dimension doesn't exist.
	ErrDimensionNotFound = errors.New("dimension not found")
	// ErrInvalidInput indicates invalid dimension input.
	ErrInvalidInput = errors.New("invalid dimension input")
)
