// Package apperr defines the error taxonomy shared by the repository,
// service and handler layers.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error.
type Code string

const (
	CodeConflict          Code = "CONFLICT"
	CodeDuplicateIdentity Code = "DUPLICATE_IDENTITY"
	CodeCapacityExceeded  Code = "CAPACITY_EXCEEDED"
	CodeScheduleConflict  Code = "SCHEDULE_CONFLICT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeStore             Code = "STORE_ERROR"
)

// HTTPStatus maps a code to the status the HTTP adapter responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeConflict, CodeDuplicateIdentity, CodeCapacityExceeded, CodeScheduleConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the text shown to end users for a code.
func (c Code) UserMessage() string {
	switch c {
	case CodeConflict:
		return "this event has already been reviewed by another admin"
	case CodeDuplicateIdentity:
		return "an account with these details already exists"
	case CodeCapacityExceeded:
		return "event is at capacity"
	case CodeScheduleConflict:
		return "venue is already booked for that time"
	case CodeNotFound:
		return "not found"
	case CodeValidation:
		return "invalid request"
	default:
		return "something went wrong, please try again later"
	}
}

// Error is a classified error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks. Callers match on code, never on message.
var (
	ErrConflict          = &Error{Code: CodeConflict, Message: "event is no longer pending"}
	ErrDuplicateIdentity = &Error{Code: CodeDuplicateIdentity, Message: "email already registered"}
	ErrCapacityExceeded  = &Error{Code: CodeCapacityExceeded, Message: "event capacity reached"}
	ErrScheduleConflict  = &Error{Code: CodeScheduleConflict, Message: "venue booking overlaps an existing event"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrStore             = &Error{Code: CodeStore, Message: "store error"}
)

// Validation returns a ValidationError with the given message.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a store failure. The outcome of the operation is unknown;
// deadline and cancellation errors stay reachable through Unwrap.
func Store(op string, cause error) *Error {
	return &Error{Code: CodeStore, Message: op, Cause: cause}
}

// CodeOf returns the code carried by err, or CodeStore for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStore
}

// IsTimeout reports whether err was caused by the caller's deadline or cancellation.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
