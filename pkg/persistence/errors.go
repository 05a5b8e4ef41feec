// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrInterventionNotFound indicates an intervention was not found by the given identifier.
	ErrInterventionNotFound = errors.New("intervention not found")

	// ErrStatusNotFound indicates a reference status row was not found by the given code.
	ErrStatusNotFound = errors.New("status not found")

	// ErrInvalidUsageEvent indicates a usage event with a zero delta was submitted.
	ErrInvalidUsageEvent = errors.New("invalid usage event")
)

// InterventionError wraps intervention-related errors with additional context.
type InterventionError struct {
	Op             string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	InterventionID string // Intervention ID if applicable
	Err            error  // Underlying error
	Message        string // Additional context message
}

func (e *InterventionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for intervention %s: %s (%v)", e.Op, e.InterventionID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for intervention %s: %v", e.Op, e.InterventionID, e.Err)
}

func (e *InterventionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for intervention errors.
func (e *InterventionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewInterventionError creates a new intervention error with context.
func NewInterventionError(op, interventionID string, err error) *InterventionError {
	return &InterventionError{
		Op:             op,
		InterventionID: interventionID,
		Err:            err,
	}
}

// StatusError wraps reference-status errors with additional context.
type StatusError struct {
	Op   string // Operation being performed
	Code string // Status code
	Err  error  // Underlying error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s operation failed for status %s: %v", e.Op, e.Code, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStatusError creates a new status error with context.
func NewStatusError(op, code string, err error) *StatusError {
	return &StatusError{
		Op:   op,
		Code: code,
		Err:  err,
	}
}

// IsInterventionNotFound checks if an error indicates an intervention was not found.
func IsInterventionNotFound(err error) bool {
	return errors.Is(err, ErrInterventionNotFound)
}

// IsStatusNotFound checks if an error indicates a status was not found.
func IsStatusNotFound(err error) bool {
	return errors.Is(err, ErrStatusNotFound)
}
