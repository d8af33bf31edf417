package services

import "errors"

// Sentinel errors for the workflow layer. Handlers map these onto HTTP status
// codes with errors.Is; anything else is an upstream failure (500).
var (
	// ErrValidation marks missing or malformed input, rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks missing credentials or insufficient role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks a dependent-record precondition violation.
	ErrConflict = errors.New("conflict")
)
