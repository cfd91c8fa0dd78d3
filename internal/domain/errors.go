package domain

import "errors"

// Sentinel errors for the application. Mutating store operations never
// panic; they return one of these (possibly wrapped) and leave the
// collection untouched. Callers decide whether a given failure is worth
// surfacing; ignoring ErrInvalidState makes an operation fail silently.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrUnauthorized = errors.New("not allowed")
	ErrInvalidState = errors.New("operation not applicable in current state")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")
)
