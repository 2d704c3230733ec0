package service

import (
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

type cipherFactory func(key []byte) (cipher.AEAD, error)

// AEADManagerService builds ciphers from a fixed table of supported algorithms.
type AEADManagerService struct {
	factories map[cryptoDomain.Algorithm]cipherFactory
}

// NewAEADManager creates an AEADManagerService for AES-256-GCM and ChaCha20-Poly1305.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{
		factories: map[cryptoDomain.Algorithm]cipherFactory{
			cryptoDomain.AESGCM:   newAESGCM,
			cryptoDomain.ChaCha20: newChaCha20Poly1305,
		},
	}
}

// CreateCipher binds key to a cipher for alg. The key must be KeySize bytes.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	factory, ok := am.factories[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, alg)
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	aead, err := factory(key)
	if err != nil {
		return nil, err
	}
	return &aeadCipher{alg: alg, aead: aead}, nil
}
