// Package apperror defines the domain error taxonomy shared by every layer.
//
// Services and repositories return *AppError values wrapping one of the
// sentinel errors below. HTTP handlers translate the sentinel into a status
// code with errors.Is, so no layer below the handler knows about HTTP:
//
//	ErrValidation      → 400
//	ErrUnauthenticated → 401
//	ErrNotFound        → 404
//	anything else      → 500
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type AppError struct {
	Err     error  // sentinel, one of the Err* values above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound is returned for a missing record. Owner-scoped operations also
// return it when the record exists but belongs to someone else.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a uniqueness violation on field. It is a validation
// failure from the caller's point of view.
func Duplicate(field string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("%s is already taken", field),
		Field:   field,
	}
}

// Unauthenticated covers bad credentials and missing, malformed or expired
// tokens alike.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}
