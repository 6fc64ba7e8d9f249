package sentinel

import "errors"

// Store errors. Stores return these, possibly wrapped, and services map them
// to domain errors once.
var (
	// ErrNotFound means no row matched the lookup key.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the store rejected a write, e.g. a dangling
	// foreign key or an empty required column.
	ErrInvalidInput = errors.New("invalid input")
)
