package domain

import "errors"

// Domain errors (no external dependencies). The HTTP layer maps these to
// typed error codes; VALIDATION-class errors mean the caller must fix its
// input, the rest describe state the caller cannot change by retrying.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict with current state")
	ErrInsufficientStock = errors.New("insufficient stock")
)
