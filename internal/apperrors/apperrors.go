// Package apperrors defines the error taxonomy of the persistence layer.
// Callers distinguish failure classes with errors.Is against the sentinels.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that an update, delete or lookup targeted an
	// identifier with no matching row.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signals that an entity failed its validity check
	// before any write was attempted.
	ErrValidation = errors.New("entity validation failed")

	// ErrAlreadyExists signals a unique-constraint violation on insert.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrPersistence signals that the underlying store rejected an
	// operation for a reason other than a missing row.
	ErrPersistence = errors.New("persistence failure")

	// ErrCascadeAborted signals that a multi-step cascade delete failed and
	// the whole unit of work was rolled back.
	ErrCascadeAborted = errors.New("cascade delete aborted")
)

// ValidationError carries the field-level messages of a failed entity check.
type ValidationError struct {
	Entity   string
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is invalid: %v", e.Entity, e.Messages)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PersistenceError wraps a store failure with the operation and entity kind
// it occurred in, so the cause can be diagnosed without losing errors.Is.
type PersistenceError struct {
	Op     string
	Entity string
	Cause  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s store operation failed: %v", e.Op, e.Entity, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// AlreadyExistsError reports a duplicate identifier or unique column value.
type AlreadyExistsError struct {
	Entity string
	ID     string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Entity, e.ID)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
