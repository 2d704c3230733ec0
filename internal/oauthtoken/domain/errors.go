package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

// OAuth token error definitions.
var (
	// ErrOAuthTokenNotFound indicates no token matches the given id, slug or provider user.
	ErrOAuthTokenNotFound = errors.Wrap(errors.ErrNotFound, "oauth token not found")

	// ErrOAuthTokenExpired indicates the access token is past its expiry and must be refreshed.
	ErrOAuthTokenExpired = errors.Wrap(errors.ErrUnauthorized, "oauth token expired")

	// ErrCredentialMissing indicates the stored access token is empty or could not be
	// decrypted. The user has to re-authenticate with the provider.
	ErrCredentialMissing = errors.Wrap(errors.ErrUnauthorized, "oauth credential missing, re-authentication required")

	// ErrInvalidBatchSize indicates a rotation or migration batch size lower than one.
	ErrInvalidBatchSize = errors.Wrap(errors.ErrInvalidInput, "batch size must be greater than zero")
)
