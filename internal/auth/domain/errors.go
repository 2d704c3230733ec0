package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

// Authentication errors.
var (
	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrTokenNotFound indicates no token matches the given hash.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials covers unknown clients, wrong secrets and expired,
	// revoked or unknown tokens alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthenticated, "invalid credentials")

	// ErrClientInactive indicates the client exists but was disabled.
	ErrClientInactive = errors.Wrap(errors.ErrForbidden, "client is inactive")
)
