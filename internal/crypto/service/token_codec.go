package service

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

type tokenCodec struct {
	aead   AEAD
	digest string
}

// NewTokenCodec resolves the key from provider and binds it to a cipher for alg.
func NewTokenCodec(
	ctx context.Context,
	provider KeyProvider,
	aeadManager AEADManager,
	alg cryptoDomain.Algorithm,
) (TokenCodec, error) {
	key, err := provider.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return NewTokenCodecWithKey(key, aeadManager, alg)
}

// NewTokenCodecWithKey binds an already resolved key to a cipher for alg.
func NewTokenCodecWithKey(
	key *cryptoDomain.EncryptionKey,
	aeadManager AEADManager,
	alg cryptoDomain.Algorithm,
) (TokenCodec, error) {
	aead, err := aeadManager.CreateCipher(key.Key, alg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyConfiguration, err)
	}
	return &tokenCodec{aead: aead, digest: key.Digest()}, nil
}

func (c *tokenCodec) Seal(plaintext []byte) (cryptoDomain.CipherEnvelope, error) {
	ciphertext, nonce, err := c.aead.Encrypt(plaintext, nil)
	if err != nil {
		return cryptoDomain.CipherEnvelope{}, err
	}
	return cryptoDomain.CipherEnvelope{Nonce: nonce, Ciphertext: ciphertext}, nil
}

func (c *tokenCodec) Open(env cryptoDomain.CipherEnvelope) ([]byte, error) {
	if len(env.Nonce) != cryptoDomain.NonceSize || len(env.Ciphertext) < cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrFormat
	}
	plaintext, err := c.aead.Decrypt(env.Ciphertext, env.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrAuthentication
	}
	return plaintext, nil
}

func (c *tokenCodec) Encode(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	env, err := c.Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return cryptoDomain.EncodeForStorage(env), nil
}

func (c *tokenCodec) Decode(stored string) (string, error) {
	if stored == "" {
		return "", nil
	}
	env, err := cryptoDomain.DecodeFromStorage(stored)
	if err != nil {
		return "", err
	}
	plaintext, err := c.Open(env)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (c *tokenCodec) KeyDigest() string {
	return c.digest
}
