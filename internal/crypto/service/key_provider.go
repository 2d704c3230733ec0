package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// KeyProviderConfig holds the key sources in priority order: a dedicated key
// (optionally KMS-wrapped) wins over the master secret.
type KeyProviderConfig struct {
	// DedicatedKey is base64 of 32 bytes, or base64 of a KMS-wrapped key when KMSKeyURI is set.
	DedicatedKey string

	// Strict rejects dedicated keys that do not decode to exactly 32 bytes instead
	// of padding or truncating them.
	Strict bool

	// KMSKeyURI is the gocloud.dev secrets URI used to unwrap DedicatedKey.
	KMSKeyURI string

	// MasterSecret is the fallback source. The key is derived with PBKDF2.
	MasterSecret string

	// SaltVersion selects the derivation salt ("v1" gives "token_salt_v1").
	SaltVersion string
}

// keyProvider resolves the key once and caches the result, including a failure.
type keyProvider struct {
	cfg        KeyProviderConfig
	kmsService KMSService
	logger     *slog.Logger

	once sync.Once
	key  *cryptoDomain.EncryptionKey
	err  error
}

// NewKeyProvider creates a KeyProvider for cfg. kmsService may be nil when
// cfg.KMSKeyURI is empty.
func NewKeyProvider(cfg KeyProviderConfig, kmsService KMSService, logger *slog.Logger) KeyProvider {
	return &keyProvider{
		cfg:        cfg,
		kmsService: kmsService,
		logger:     logger,
	}
}

func (p *keyProvider) Resolve(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	p.once.Do(func() {
		p.key, p.err = p.resolve(ctx)
		if p.err == nil {
			p.logger.Info("token encryption key resolved", slog.Any("key", p.key))
		}
	})
	return p.key, p.err
}

func (p *keyProvider) resolve(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	if p.cfg.DedicatedKey != "" {
		raw, err := decodeKeyString(p.cfg.DedicatedKey)
		if err != nil {
			return nil, err
		}

		source := cryptoDomain.KeySourceDedicated
		if p.cfg.KMSKeyURI != "" {
			if p.kmsService == nil {
				return nil, fmt.Errorf("%w: KMS_KEY_URI is set but no KMS service is available", cryptoDomain.ErrKeyConfiguration)
			}
			unwrapped, err := UnwrapKey(ctx, p.kmsService, p.cfg.KMSKeyURI, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyConfiguration, err)
			}
			cryptoDomain.Zero(raw)
			raw = unwrapped
			source = cryptoDomain.KeySourceKMS
		}
		defer cryptoDomain.Zero(raw)

		normalized, err := normalizeKey(raw, p.cfg.Strict, p.logger)
		if err != nil {
			return nil, err
		}
		defer cryptoDomain.Zero(normalized)

		return cryptoDomain.NewEncryptionKey(normalized, source)
	}

	if p.cfg.MasterSecret != "" {
		return DeriveKey(p.cfg.MasterSecret, p.cfg.SaltVersion), nil
	}

	return nil, fmt.Errorf(
		"%w: set TOKEN_ENCRYPTION_KEY or SECRET_KEY",
		cryptoDomain.ErrKeyConfiguration,
	)
}

// DeriveKey derives a key from masterSecret with PBKDF2-HMAC-SHA256, the versioned
// salt and 100000 iterations. The result is deterministic for a given secret and version.
func DeriveKey(masterSecret, saltVersion string) *cryptoDomain.EncryptionKey {
	key := pbkdf2.Key(
		[]byte(masterSecret),
		cryptoDomain.Salt(saltVersion),
		cryptoDomain.PBKDF2Iterations,
		cryptoDomain.KeySize,
		sha256.New,
	)
	return &cryptoDomain.EncryptionKey{Key: key, Source: cryptoDomain.KeySourceDerived}
}

// decodeKeyString accepts standard and URL-safe base64, padded or not.
func decodeKeyString(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if raw, err := enc.DecodeString(value); err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: dedicated key is not valid base64", cryptoDomain.ErrKeyConfiguration)
}

// normalizeKey returns a KeySize copy of raw. Outside strict mode a key of the wrong
// length is zero padded or truncated. This keeps old deployments working but the
// result is weaker than a properly generated key, so it is logged.
func normalizeKey(raw []byte, strict bool, logger *slog.Logger) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: dedicated key is empty", cryptoDomain.ErrKeyConfiguration)
	}

	if len(raw) != cryptoDomain.KeySize {
		if strict {
			return nil, fmt.Errorf(
				"%w: dedicated key must be %d bytes, got %d",
				cryptoDomain.ErrKeyConfiguration,
				cryptoDomain.KeySize,
				len(raw),
			)
		}
		logger.Warn("dedicated key has the wrong length, normalizing to 32 bytes",
			slog.Int("length", len(raw)),
		)
	}

	out := make([]byte, cryptoDomain.KeySize)
	copy(out, raw)
	return out, nil
}

// fixedKeyProvider returns a key that is already resolved.
type fixedKeyProvider struct {
	key *cryptoDomain.EncryptionKey
}

// NewFixedKeyProvider creates a KeyProvider that always returns key.
func NewFixedKeyProvider(key *cryptoDomain.EncryptionKey) KeyProvider {
	return &fixedKeyProvider{key: key}
}

func (p *fixedKeyProvider) Resolve(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	if p.key == nil {
		return nil, cryptoDomain.ErrKeyConfiguration
	}
	return p.key, nil
}
