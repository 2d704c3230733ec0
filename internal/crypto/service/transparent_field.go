package service

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	"github.com/allisson/tokenvault/internal/metrics"
)

// TransparentField encrypts one stored attribute at the storage boundary.
//
// Repositories call Persist on every value they are about to write and Load (or
// LoadOrEmpty) on every value they just read. Application code only ever sees
// plaintext.
type TransparentField struct {
	config  cryptoDomain.FieldConfig
	codec   TokenCodec
	metrics metrics.FieldMetrics
	logger  *slog.Logger
}

// NewTransparentField creates a field wrapper. codec may be nil only when the
// field is disabled.
func NewTransparentField(
	config cryptoDomain.FieldConfig,
	codec TokenCodec,
	fieldMetrics metrics.FieldMetrics,
	logger *slog.Logger,
) (*TransparentField, error) {
	if config.Enabled && codec == nil {
		return nil, fmt.Errorf("%w: field %s is enabled without a codec", cryptoDomain.ErrKeyConfiguration, config.Name)
	}
	if fieldMetrics == nil {
		fieldMetrics = metrics.NewNoOpFieldMetrics()
	}
	return &TransparentField{
		config:  config,
		codec:   codec,
		metrics: fieldMetrics,
		logger:  logger.With(slog.String("field", config.Name)),
	}, nil
}

// Config returns the field policy.
func (f *TransparentField) Config() cryptoDomain.FieldConfig {
	return f.config
}

// Persist returns the text to store for plaintext.
//
// Values are stored verbatim when the field is disabled, when they are empty, or
// when they already look like ciphertext, so a value that was never decrypted is
// not encrypted twice. An encoded value longer than MaxLength is logged and
// counted but returned in full.
func (f *TransparentField) Persist(ctx context.Context, plaintext string) (string, error) {
	if !f.config.Enabled || plaintext == "" {
		return plaintext, nil
	}
	if cryptoDomain.LooksLikeCiphertext(plaintext) {
		return plaintext, nil
	}

	encoded, err := f.codec.Encode(plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encrypt %s: %v", apperrors.ErrInvalidInput, f.config.Name, err)
	}

	if f.config.MaxLength > 0 && len(encoded) > f.config.MaxLength {
		f.logger.WarnContext(ctx, "encrypted value exceeds field max length",
			slog.Int("length", len(encoded)),
			slog.Int("max_length", f.config.MaxLength),
			slog.Any("error", cryptoDomain.ErrFieldSizing),
		)
		f.metrics.RecordSizingWarning(ctx, f.config.Name)
	}

	return encoded, nil
}

// Load returns the plaintext for a stored value.
//
// In migration mode, or with the field disabled, the stored value is returned
// verbatim. Values that do not look like ciphertext are legacy plaintext and are
// returned verbatim too. A value that fails to decode returns "" together with
// ErrFormat or ErrAuthentication; the failure is always logged and counted.
func (f *TransparentField) Load(ctx context.Context, stored string) (string, error) {
	if f.config.MigrationMode || !f.config.Enabled {
		return stored, nil
	}
	if !cryptoDomain.LooksLikeCiphertext(stored) {
		return stored, nil
	}

	plaintext, err := f.codec.Decode(stored)
	if err != nil {
		reason := cryptoDomain.ReasonAuthentication
		if apperrors.Is(err, cryptoDomain.ErrFormat) {
			reason = cryptoDomain.ReasonFormat
		}
		f.logger.ErrorContext(ctx, "failed to decrypt stored value",
			slog.String("reason", reason),
			slog.String("key_digest", cryptoDomain.ShortDigest(f.codec.KeyDigest())),
		)
		f.metrics.RecordDecryptFailure(ctx, f.config.Name, reason)
		return "", err
	}
	return plaintext, nil
}

// LoadOrEmpty is Load with the error discarded. Callers get an empty credential,
// which the OAuth workflow treats as missing.
func (f *TransparentField) LoadOrEmpty(ctx context.Context, stored string) string {
	plaintext, _ := f.Load(ctx, stored)
	return plaintext
}

// TokenFields bundles the transparent fields of an OAuth token row.
type TokenFields struct {
	AccessToken  *TransparentField
	RefreshToken *TransparentField
}
