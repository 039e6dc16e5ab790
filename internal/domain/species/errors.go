package species

import "errors"

var (
	// ErrSpeciesNotFound indicates the species doesn't exist in the catalog.
	ErrSpeciesNotFound = errors.New("species not found")
	// ErrInvalidClass indicates an unknown species class.
	ErrInvalidClass = errors.New("invalid species class")
)
