package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input. It is a client error and is never retried.
	ErrValidation = errors.New("invalid input")
	// ErrStorageUnavailable marks a failure of the backing store or its configuration.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Unavailable wraps a driver or IO error as ErrStorageUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
