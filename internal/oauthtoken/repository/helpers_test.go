package repository

import (
	"database/sql"
	"database/sql/driver"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

var tokenColumnNames = []string{
	"id", "provider", "slug", "access_token", "expires_at", "refresh_token", "refresh_token_expires_at",
	"token_type", "scope", "user_id", "owner_id", "name", "profile_json", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func newTestFields(t *testing.T) (*cryptoService.TokenFields, cryptoService.TokenCodec) {
	t.Helper()

	key, err := cryptoDomain.NewEncryptionKey(make([]byte, cryptoDomain.KeySize), cryptoDomain.KeySourceDedicated)
	require.NoError(t, err)
	codec, err := cryptoService.NewTokenCodecWithKey(key, cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	access, err := cryptoService.NewTransparentField(
		cryptoDomain.FieldConfig{Name: cryptoDomain.FieldAccessToken, Enabled: true},
		codec, nil, logger,
	)
	require.NoError(t, err)
	refresh, err := cryptoService.NewTransparentField(
		cryptoDomain.FieldConfig{Name: cryptoDomain.FieldRefreshToken, Enabled: true, MaxLength: 1024},
		codec, nil, logger,
	)
	require.NoError(t, err)

	return &cryptoService.TokenFields{AccessToken: access, RefreshToken: refresh}, codec
}

func newTestToken() *oauthDomain.OAuthToken {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	expiresAt := now.Add(time.Hour)
	return &oauthDomain.OAuthToken{
		ID:           uuid.Must(uuid.NewV7()),
		Provider:     "github",
		Slug:         "c2x1Zy1mb3ItdGVzdGluZw",
		AccessToken:  "gho_access",
		ExpiresAt:    &expiresAt,
		RefreshToken: "ghr_refresh",
		TokenType:    "bearer",
		Scope:        "repo",
		UserID:       "42",
		OwnerID:      "owner-1",
		Name:         "octocat",
		ProfileJSON:  []byte(`{"login":"octocat"}`),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func otherKeyCodec(t *testing.T) cryptoService.TokenCodec {
	t.Helper()

	raw := make([]byte, cryptoDomain.KeySize)
	for i := range raw {
		raw[i] = 0x5a
	}
	key, err := cryptoDomain.NewEncryptionKey(raw, cryptoDomain.KeySourceDedicated)
	require.NoError(t, err)
	codec, err := cryptoService.NewTokenCodecWithKey(key, cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	require.NoError(t, err)
	return codec
}

// ciphertextOf matches a driver value that decodes to plaintext under codec.
type ciphertextOf struct {
	codec     cryptoService.TokenCodec
	plaintext string
}

func (c ciphertextOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok || !cryptoDomain.LooksLikeCiphertext(s) {
		return false
	}
	plaintext, err := c.codec.Decode(s)
	return err == nil && plaintext == c.plaintext
}
