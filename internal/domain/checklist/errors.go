package checklist

import "errors"

var (
	// ErrListNotFound indicates the list doesn't exist.
	ErrListNotFound = errors.New("list not found")
	// ErrEntryNotFound indicates the entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidInput indicates invalid list or entry input.
	ErrInvalidInput = errors.New("invalid checklist input")
)
