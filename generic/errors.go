/*
errors.go - Centralized error types for the settlement engine

PURPOSE:
  All domain-agnostic error types in one place. The settlement package wraps
  these with its own sentinels so callers can match with errors.Is at either
  level.

ERROR CATEGORIES:
  1. Lookup errors - a referenced record does not exist
  2. Validation errors - malformed input from the caller
  3. Store errors - uniqueness violations surfaced by the database

USAGE:
  if generic.IsNotFound(err) {
      // 404
  }
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is the root of every lookup failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPeriod is returned when a window is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidInput is returned for malformed caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate is returned when a unique key already exists in the store.
	ErrDuplicate = errors.New("duplicate key")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the kind and id of the missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidPeriod)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
