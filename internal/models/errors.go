package models

import (
	"errors"
	"fmt"
	"strings"
)

// FieldViolation is one failed validation rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every failing field, not just the first.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation and returns the error for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
	return e
}

// OrNil returns nil when no violations were collected.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// TransitionError is an illegal status jump. It always names both statuses
// so the caller can render an actionable message.
type TransitionError struct {
	Current   string
	Requested string
	Reason    string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("illegal transition from %q to %q: %s", e.Current, e.Requested, e.Reason)
	}
	return fmt.Sprintf("illegal transition from %q to %q", e.Current, e.Requested)
}

// ConflictError signals a concurrent write detected by the version check.
type ConflictError struct {
	Entity   string
	ID       string
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: version %d, stored %d", e.Entity, e.ID, e.Expected, e.Actual)
}

// StorageError wraps an underlying store failure. Fatal to the operation,
// not to the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransition reports whether err is a TransitionError.
func IsTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
