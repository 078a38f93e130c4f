// Package apperror defines the application's error taxonomy.
//
// Every failure the service layer can produce is classified under one of the
// sentinel errors below. Handlers translate the classification to an HTTP
// status with errors.Is, and extract the human-readable message (and, for
// validation failures, the per-field violations) with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInternal        = errors.New("internal error")
)

// Violation describes a single unmet field constraint.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// AppError carries the classification sentinel, a human-readable message,
// and (for validation errors) the full list of violated fields.
type AppError struct {
	Err        error
	Message    string
	Violations []Violation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a referenced resource does not exist.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports one or more unmet field constraints. Callers are
// expected to collect every violation before constructing the error, not
// fail on the first.
func ValidationFailed(violations ...Violation) *AppError {
	msg := "validation failed"
	if len(violations) == 1 {
		msg = violations[0].Reason
	}
	return &AppError{
		Err:        ErrValidation,
		Message:    msg,
		Violations: violations,
	}
}

// Conflict reports that a resource already exists (e.g. duplicate email).
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden reports that the caller is authenticated but does not own the
// resource. Handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated reports that a protected operation was attempted without
// a valid identity. Handlers map this to 401.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Internal wraps an unexpected infrastructure failure. The wrapped cause is
// preserved for logs; the message is what a client may see.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Message: message,
	}
}
