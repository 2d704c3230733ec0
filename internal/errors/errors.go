// Package errors provides the standard errors shared by the token vault domains.
// Domain packages wrap one of them so handlers can map any error to a status
// code without knowing which domain produced it.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates a stored provider credential can not be used and
	// the user has to authenticate with the provider again.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnauthenticated indicates the API request lacks valid client credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the authenticated client may not use the API.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates the service is misconfigured or a dependency is
	// down, e.g. no token encryption key can be resolved.
	ErrUnavailable = errors.New("unavailable")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
