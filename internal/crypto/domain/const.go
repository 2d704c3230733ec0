// Package domain defines the value types and invariants of token field encryption:
// keys, cipher envelopes, stored value classification and per-field policy.
package domain

import "strings"

// Algorithm represents the AEAD algorithm used to seal token values.
//
// Both supported algorithms use a 256-bit key, a 12-byte nonce and a 16-byte
// authentication tag, so envelopes produced by either one share the same layout
// and the same storage heuristic applies to both.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. It is the default algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305, useful on hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm maps a configured algorithm name to an Algorithm. Names are
// case-insensitive and surrounding whitespace is ignored.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(strings.ToLower(strings.TrimSpace(name))); alg {
	case AESGCM, ChaCha20:
		return alg, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

const (
	// KeySize is the length in bytes of every encryption key.
	KeySize = 32

	// NonceSize is the length in bytes of the per-encryption nonce.
	NonceSize = 12

	// TagSize is the length in bytes of the authentication tag appended to the ciphertext.
	TagSize = 16

	// MinEnvelopeSize is the smallest envelope that can carry a non-empty secret:
	// nonce, one byte of ciphertext and the tag.
	MinEnvelopeSize = NonceSize + 1 + TagSize

	// MinEncodedEnvelopeLength is the length of MinEnvelopeSize bytes after the inner
	// standard base64 encoding. A stored value whose outer decoding is shorter than
	// this can not be ciphertext.
	MinEncodedEnvelopeLength = ((MinEnvelopeSize + 2) / 3) * 4

	// PBKDF2Iterations is the iteration count used to derive keys from the master secret.
	PBKDF2Iterations = 100000

	// SaltPrefix is combined with the configured salt version to build the derivation salt.
	SaltPrefix = "token_salt_"

	// DefaultSaltVersion produces the "token_salt_v1" salt.
	DefaultSaltVersion = "v1"
)

// Salt returns the key derivation salt for the given version. An empty version
// falls back to DefaultSaltVersion.
func Salt(version string) []byte {
	if version == "" {
		version = DefaultSaltVersion
	}
	return []byte(SaltPrefix + version)
}
