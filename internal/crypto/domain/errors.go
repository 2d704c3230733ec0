package domain

import (
	"github.com/allisson/tokenvault/internal/errors"
)

// Token encryption error definitions.
//
// Each error wraps one of the standard errors from internal/errors so the HTTP
// layer can map it to a status code without knowing about cryptography.
var (
	// ErrKeyConfiguration indicates no usable encryption key could be resolved:
	// neither a dedicated key nor a master secret is configured, or the dedicated
	// key is malformed. It is fatal at startup and aborts rotation.
	ErrKeyConfiguration = errors.Wrap(errors.ErrUnavailable, "key configuration error")

	// ErrFormat indicates a stored value is not a valid envelope encoding.
	ErrFormat = errors.Wrap(errors.ErrInvalidInput, "invalid envelope format")

	// ErrAuthentication indicates the envelope tag did not verify. The key is wrong
	// or the stored data was truncated, corrupted or tampered with.
	//
	// The specific cause is never disclosed.
	ErrAuthentication = errors.Wrap(errors.ErrInvalidInput, "envelope authentication failed")

	// ErrFieldSizing is a warning: the encoded value is longer than the configured
	// column width. The value is still accepted in full.
	ErrFieldSizing = errors.New("encoded value exceeds field max length")

	// ErrUnsupportedAlgorithm indicates the configured algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a cipher was created with a key that is not KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEncryptionDisabled indicates an operation that needs encryption was requested
	// while TOKEN_ENCRYPTION_ENABLED is false.
	ErrEncryptionDisabled = errors.Wrap(errors.ErrInvalidInput, "token encryption is disabled")

	// ErrSameKey indicates a rotation was requested towards the key already in use.
	ErrSameKey = errors.Wrap(errors.ErrInvalidInput, "new key must differ from the current key")
)
