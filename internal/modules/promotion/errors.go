package promotion

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("promotion not found")
	ErrInactive     = errors.New("promotion is inactive")
	ErrNotYetValid  = errors.New("promotion is not yet valid")
	ErrExpired      = errors.New("promotion has expired")
	ErrAlreadyUsed  = errors.New("promotion already used by this client")
	ErrLimitReached = errors.New("promotion usage limit reached")
)
