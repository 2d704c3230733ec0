package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// KeySource records where an EncryptionKey came from.
type KeySource string

const (
	// KeySourceDedicated is a key configured directly in TOKEN_ENCRYPTION_KEY.
	KeySourceDedicated KeySource = "dedicated"

	// KeySourceKMS is a dedicated key unwrapped through an external secret store.
	KeySourceKMS KeySource = "kms"

	// KeySourceDerived is a key derived from SECRET_KEY with PBKDF2.
	KeySourceDerived KeySource = "derived"
)

// EncryptionKey holds the 32 bytes of symmetric key material shared by every
// encrypted token field. It is resolved once and never mutated afterwards.
//
// String and LogValue are redacted so the key can not leak through fmt or slog.
type EncryptionKey struct {
	Key    []byte
	Source KeySource
}

// NewEncryptionKey copies key into a new EncryptionKey. It returns ErrInvalidKeySize
// unless key is exactly KeySize bytes.
func NewEncryptionKey(key []byte, source KeySource) (*EncryptionKey, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &EncryptionKey{Key: k, Source: source}, nil
}

// Digest returns a hex SHA-256 fingerprint of the key. It identifies a key in logs
// and reports without exposing it.
func (k *EncryptionKey) Digest() string {
	sum := sha256.Sum256(k.Key)
	return hex.EncodeToString(sum[:])
}

// ShortDigest returns the first 12 hex characters of Digest.
func (k *EncryptionKey) ShortDigest() string {
	return ShortDigest(k.Digest())
}

// ShortDigest truncates a key digest to the 12 characters shown in logs and
// command output. Shorter digests are returned unchanged.
func ShortDigest(digest string) string {
	const shortDigestLength = 12
	if len(digest) > shortDigestLength {
		return digest[:shortDigestLength]
	}
	return digest
}

// Zero wipes the key material.
func (k *EncryptionKey) Zero() {
	Zero(k.Key)
}

// Zero overwrites b in place. Buffers holding raw or wrapped key bytes are wiped
// once they have been copied into an EncryptionKey.
func Zero(b []byte) {
	clear(b)
}

func (k *EncryptionKey) String() string {
	return "EncryptionKey(" + string(k.Source) + ", REDACTED)"
}

// LogValue implements slog.LogValuer.
func (k *EncryptionKey) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", string(k.Source)),
		slog.String("digest", k.ShortDigest()),
	)
}
