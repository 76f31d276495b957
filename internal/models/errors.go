package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across layers. Services return errors wrapping one of
// these sentinels; the HTTP layer maps them to status codes with errors.Is.
var (
	// ErrValidation marks a missing or malformed required field (400).
	ErrValidation = errors.New("invalid request")

	// ErrNotFound marks a referenced group, user, or post that is absent (404).
	ErrNotFound = errors.New("not found")

	// ErrConflict marks identifier-collision exhaustion or a duplicate
	// resource such as an already-registered email (409).
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks an operation on a resource the caller does not own (403).
	ErrForbidden = errors.New("forbidden")

	// ErrStoreUnavailable marks an unreachable or timed-out backing store
	// (500, safe to retry at the caller).
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validationf returns a formatted error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf returns a formatted error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Conflictf returns a formatted error wrapping ErrConflict.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// Forbiddenf returns a formatted error wrapping ErrForbidden.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrForbidden}, args...)...)
}
