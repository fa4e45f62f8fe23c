package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced task, category or achievement does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input rejected before any state mutation
	ErrValidation = errors.New("validation failed")
	// ErrPersistence indicates the underlying storage call failed
	ErrPersistence = errors.New("persistence failure")
	// ErrComputation indicates a broken invariant; it is a programming error
	ErrComputation = errors.New("computation error")
)

// NotFoundError names the missing entity
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError names the offending field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError wraps a failed storage call
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure (%s %s): %v", e.Op, e.Collection, e.Err)
}

// Unwrap exposes both the taxonomy sentinel and the storage cause
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// ComputationError reports an impossible state under valid invariants
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error: %s", e.Reason)
}

func (e *ComputationError) Unwrap() error { return ErrComputation }

// NotFound builds a NotFoundError
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Invalid builds a ValidationError
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Persistence builds a PersistenceError; a nil err yields nil
func Persistence(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Collection: collection, Err: err}
}

// Computation builds a ComputationError
func Computation(format string, args ...any) error {
	return &ComputationError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsPersistence checks if an error is a persistence failure
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }

// IsComputation checks if an error is a computation error
func IsComputation(err error) bool { return errors.Is(err, ErrComputation) }
