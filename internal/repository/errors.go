package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent writer changed a watched key
	// before the transaction committed
	ErrConflict = errors.New("conflict: entity was modified concurrently")

	// ErrCorrupt is returned when a stored value cannot be decoded
	ErrCorrupt = errors.New("corrupt stored value")
)
