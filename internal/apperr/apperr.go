// Package apperr defines the user-visible failure kinds reported by the service.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable failure classification.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindAuthentication  Kind = "AUTHENTICATION_ERROR"
	KindUserNotFound    Kind = "USER_NOT_FOUND"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindRequestNotFound Kind = "REQUEST_NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindStorage         Kind = "STORAGE_ERROR"
)

// Error carries a Kind plus a human-readable message. Err, when set, is the
// underlying cause and is never shown to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error of the given kind that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Storage wraps an unclassified backend failure.
func Storage(cause error) *Error {
	return Wrap(KindStorage, "storage unavailable, try again later", cause)
}

// KindOf classifies err. Anything that is not an *Error is a storage failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
