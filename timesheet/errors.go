/*
errors.go - Centralized error types for the timesheet engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is against the sentinels or errors.As against
  the structured types when they need the carried context.

ERROR CATEGORIES:
  1. Validation errors - malformed input (non-positive hours, hours > 24)
  2. Lock errors       - mutation against a day whose status forbids it
  3. Transition errors - status transition from a state that does not permit it
  4. Not-found errors  - referenced day or entry does not exist

PROPAGATION POLICY:
  Every error is returned synchronously; nothing is retried internally. A
  failed mutation leaves state unchanged.

SEE ALSO:
  - status.go:  Produces InvalidTransitionError
  - service.go: Produces all four categories
*/
package timesheet

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed input. Recoverable by the
	// caller correcting the input; never retried automatically.
	ErrValidation = errors.New("validation failed")

	// ErrDayLocked is returned when a mutation targets a day whose status
	// forbids it (approved or rejected until released).
	ErrDayLocked = errors.New("day is locked")

	// ErrInvalidTransition is returned when a status transition is attempted
	// from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a referenced day or entry does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes why an input was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DayLockedError carries the status that caused the lock so the caller can
// explain why the day is frozen (and, if authorized, offer a release).
type DayLockedError struct {
	DayID  DayID
	Status DayStatus
}

func (e *DayLockedError) Error() string {
	return fmt.Sprintf("day %s is locked in status %s", e.DayID, e.Status)
}

func (e *DayLockedError) Unwrap() error { return ErrDayLocked }

// InvalidTransitionError carries the current and attempted statuses.
type InvalidTransitionError struct {
	DayID     DayID
	From      DayStatus
	Attempted DayStatus
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot transition day %s from %s to %s", e.DayID, e.From, e.Attempted)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // "day" or "entry"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// state the client can observe and correct.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDayLocked) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotFound)
}
