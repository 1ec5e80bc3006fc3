package domain

import "errors"

// Error kinds surfaced to callers. Wrap them with fmt.Errorf("...: %w", ...)
// so the message carries the offending identifier and handlers can still map
// the kind with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal marks a broken invariant (e.g. a negative computed total).
	// It indicates a bug, not a user error.
	ErrInternal = errors.New("internal invariant violation")
)
