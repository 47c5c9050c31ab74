package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails,
	// e.g. an empty coin id after normalization.
	ErrInvalidInput = errors.New("invalid input")
)
