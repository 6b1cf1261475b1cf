package vars

import (
	"errors"
	"fmt"
)

// ErrorClass classifies store errors for callers that branch on failure
// mode rather than message text.
type ErrorClass string

const (
	// ErrorClassConflict indicates a write against a name that already
	// holds a value of a different kind. The original row is untouched.
	ErrorClassConflict ErrorClass = "conflict"

	// ErrorClassUnsupported indicates a request for a kind the store
	// does not recognize.
	ErrorClassUnsupported ErrorClass = "unsupported"

	// ErrorClassInternal wraps failures of the underlying database.
	ErrorClassInternal ErrorClass = "internal"
)

// Sentinels for errors.Is checks.
var (
	ErrTypeConflict    = &StoreError{Class: ErrorClassConflict}
	ErrUnsupportedKind = &StoreError{Class: ErrorClassUnsupported}
)

// StoreError is a classified store error with variable context.
type StoreError struct {
	// Class is the error classification.
	Class ErrorClass

	// Name is the variable name involved, if applicable.
	Name string

	// Requested is the kind the caller asked for.
	Requested Kind

	// Existing is the kind already held by the variable, for conflicts.
	Existing Kind

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	switch e.Class {
	case ErrorClassConflict:
		return fmt.Sprintf("[%s] variable %q already holds a %s value, cannot write %s",
			e.Class, e.Name, e.Existing, e.Requested)
	case ErrorClassUnsupported:
		return fmt.Sprintf("[%s] unsupported variable kind %q", e.Class, e.Requested)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %v", e.Class, e.Err)
	}
	return fmt.Sprintf("[%s] store error", e.Class)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches on class only, so errors.Is(err, ErrTypeConflict) works
// regardless of which variable produced the error.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// newConflictError creates a type-conflict error for a write.
func newConflictError(name string, requested, existing Kind) *StoreError {
	return &StoreError{
		Class:     ErrorClassConflict,
		Name:      name,
		Requested: requested,
		Existing:  existing,
	}
}

// newUnsupportedKindError creates an unsupported-kind error.
func newUnsupportedKindError(kind Kind) *StoreError {
	return &StoreError{
		Class:     ErrorClassUnsupported,
		Requested: kind,
	}
}

// newInternalError wraps a database failure.
func newInternalError(err error) *StoreError {
	return &StoreError{
		Class: ErrorClassInternal,
		Err:   err,
	}
}

// ClassOf returns the class of err if it is a StoreError, or
// ErrorClassInternal otherwise.
func ClassOf(err error) ErrorClass {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Class
	}
	return ErrorClassInternal
}
