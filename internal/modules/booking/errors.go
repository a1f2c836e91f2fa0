package booking

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("booking not found")

	// ErrInvalidTransition: the requested edge is not part of the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict: the compare-and-set precondition failed because another
	// terminal transitioned the booking first. Refetch and retry if sensible.
	ErrConflict = errors.New("booking was modified concurrently")
)
