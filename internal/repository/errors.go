package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrSchemaDrift is returned when a stored collection's primary key does not
	// match the expected schema and no automatic recovery is allowed
	ErrSchemaDrift = errors.New("schema drift: collection key does not match expected schema")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
