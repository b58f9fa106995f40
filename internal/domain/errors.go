// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrDataCorruption is returned when persisted progress data violates a
	// structural invariant, such as an over-length concept name or an
	// impossible attempt tally. Corrupted records are never repaired in
	// place; only a full progress reset clears them.
	ErrDataCorruption = errors.New("data corruption detected")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// NewValidationError builds a field-specific validation error. The cause is
// preserved for errors.Is checks; when nil, ErrValidation is used so the
// result still maps to a validation failure.
func NewValidationError(field, message string, cause error) error {
	if cause == nil {
		cause = ErrValidation
	}
	if field == "" {
		return fmt.Errorf("%w: %s", cause, message)
	}
	return fmt.Errorf("%w: %s %s", cause, field, message)
}
