// Package service implements token field encryption: AEAD ciphers, key resolution,
// the storage codec and the transparent field wrapper applied at the storage boundary.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyProvider resolves the encryption key used by token fields.
type KeyProvider interface {
	// Resolve returns the active key. Repeated calls return the same key.
	// Returns ErrKeyConfiguration when no usable key is configured.
	Resolve(ctx context.Context) (*cryptoDomain.EncryptionKey, error)
}

// TokenCodec seals token values with one key and renders them for storage.
// Empty values pass through Encode and Decode unchanged.
type TokenCodec interface {
	// Seal encrypts plaintext under a fresh nonce.
	Seal(plaintext []byte) (cryptoDomain.CipherEnvelope, error)

	// Open verifies and decrypts an envelope. Returns ErrFormat for a malformed
	// envelope and ErrAuthentication when the tag does not verify.
	Open(env cryptoDomain.CipherEnvelope) ([]byte, error)

	// Encode seals plaintext and returns its storage text.
	Encode(plaintext string) (string, error)

	// Decode parses storage text and opens it.
	Decode(stored string) (string, error)

	// KeyDigest returns the fingerprint of the codec key.
	KeyDigest() string
}
