package arrival

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("arrival not found")
	ErrAlreadyCheckedIn = errors.New("booking already has an active arrival")
	ErrConflict         = errors.New("arrival was modified concurrently")
)
