package inventory

import "errors"

var (
	ErrValidation = errors.New("validation error")

	// ErrInsufficientStock: the pool cannot cover the requested quantity. The
	// depleting transaction is rolled back in full.
	ErrInsufficientStock = errors.New("insufficient stock")
)
