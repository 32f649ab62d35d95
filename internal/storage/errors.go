package storage

import "errors"

// Storage errors shared by all graph store backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when the backing store cannot be reached
	// or the connection is no longer usable. Callers may retry after reconnecting.
	ErrUnavailable = errors.New("store unavailable")
)
