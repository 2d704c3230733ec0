package domain

import (
	"encoding/base64"
	"fmt"
)

// CipherEnvelope is the self-contained unit stored in place of a secret: a unique
// nonce and the ciphertext with its authentication tag appended.
//
// Two envelopes of the same plaintext under the same key are never equal, so
// envelopes must not be compared to compare secrets.
type CipherEnvelope struct {
	Nonce      []byte
	Ciphertext []byte
}

// Bytes returns nonce || ciphertext || tag.
func (e CipherEnvelope) Bytes() []byte {
	out := make([]byte, 0, len(e.Nonce)+len(e.Ciphertext))
	out = append(out, e.Nonce...)
	return append(out, e.Ciphertext...)
}

// ParseEnvelope splits raw envelope bytes into nonce and ciphertext.
// Returns ErrFormat when raw is too short to hold a nonce and a tag.
func ParseEnvelope(raw []byte) (CipherEnvelope, error) {
	if len(raw) < NonceSize+TagSize {
		return CipherEnvelope{}, fmt.Errorf("%w: envelope is %d bytes", ErrFormat, len(raw))
	}
	nonce := make([]byte, NonceSize)
	copy(nonce, raw[:NonceSize])
	ciphertext := make([]byte, len(raw)-NonceSize)
	copy(ciphertext, raw[NonceSize:])
	return CipherEnvelope{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// EncodeForStorage renders an envelope as text for a text column. The envelope
// bytes are base64 encoded with the standard alphabet and the result is encoded
// again with the URL-safe alphabet.
func EncodeForStorage(env CipherEnvelope) string {
	inner := base64.StdEncoding.EncodeToString(env.Bytes())
	return base64.URLEncoding.EncodeToString([]byte(inner))
}

// DecodeFromStorage reverses EncodeForStorage. Any decoding failure is ErrFormat.
func DecodeFromStorage(text string) (CipherEnvelope, error) {
	inner, err := base64.URLEncoding.DecodeString(text)
	if err != nil {
		return CipherEnvelope{}, fmt.Errorf("%w: outer encoding: %v", ErrFormat, err)
	}
	raw, err := base64.StdEncoding.DecodeString(string(inner))
	if err != nil {
		return CipherEnvelope{}, fmt.Errorf("%w: inner encoding: %v", ErrFormat, err)
	}
	return ParseEnvelope(raw)
}

// LooksLikeCiphertext reports whether text is probably an encoded envelope: it must
// decode under the URL-safe alphabet and the decoded text must be at least
// MinEncodedEnvelopeLength long.
//
// This is a heuristic. A long plaintext that happens to be valid URL-safe base64
// is classified as ciphertext. Stored data depends on this exact rule, so it must
// not change without a migration.
func LooksLikeCiphertext(text string) bool {
	if text == "" {
		return false
	}
	inner, err := base64.URLEncoding.DecodeString(text)
	if err != nil {
		return false
	}
	return len(inner) >= MinEncodedEnvelopeLength
}

// StoredValueState is the classification of a raw stored value.
type StoredValueState string

const (
	StoredValueEmpty      StoredValueState = "empty"
	StoredValuePlaintext  StoredValueState = "plaintext"
	StoredValueCiphertext StoredValueState = "ciphertext"
)

// Classify returns the state of a raw stored value.
func Classify(text string) StoredValueState {
	switch {
	case text == "":
		return StoredValueEmpty
	case LooksLikeCiphertext(text):
		return StoredValueCiphertext
	default:
		return StoredValuePlaintext
	}
}
