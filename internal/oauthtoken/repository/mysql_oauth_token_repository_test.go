package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenvault/internal/errors"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

func mustBinary(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestMySQLOAuthTokenRepository_Create(t *testing.T) {
	t.Run("binary id and encrypted secrets", func(t *testing.T) {
		db, mock := newMockDB(t)
		fields, codec := newTestFields(t)
		repo := NewMySQLOAuthTokenRepository(db, fields)
		token := newTestToken()

		mock.ExpectExec("INSERT INTO oauth_tokens").
			WithArgs(
				mustBinary(t, token.ID),
				token.Provider,
				token.Slug,
				ciphertextOf{codec: codec, plaintext: "gho_access"},
				token.ExpiresAt,
				ciphertextOf{codec: codec, plaintext: "ghr_refresh"},
				nil,
				token.TokenType,
				token.Scope,
				token.UserID,
				token.OwnerID,
				token.Name,
				`{"login":"octocat"}`,
				token.CreatedAt,
				token.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate entry", func(t *testing.T) {
		db, mock := newMockDB(t)
		fields, _ := newTestFields(t)
		repo := NewMySQLOAuthTokenRepository(db, fields)

		mock.ExpectExec("INSERT INTO oauth_tokens").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), newTestToken())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestMySQLOAuthTokenRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	fields, codec := newTestFields(t)
	repo := NewMySQLOAuthTokenRepository(db, fields)
	token := newTestToken()

	refresh, err := codec.Encode("ghr_refresh")
	require.NoError(t, err)

	rows := sqlmock.NewRows(tokenColumnNames).AddRow(
		mustBinary(t, token.ID), token.Provider, token.Slug, "legacy_access", *token.ExpiresAt,
		refresh, nil, token.TokenType, token.Scope, token.UserID,
		token.OwnerID, token.Name, nil, token.CreatedAt, token.UpdatedAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM oauth_tokens WHERE id").
		WithArgs(mustBinary(t, token.ID)).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), token.ID)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, "legacy_access", got.AccessToken)
	assert.Equal(t, "ghr_refresh", got.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOAuthTokenRepository_ListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	fields, _ := newTestFields(t)
	repo := NewMySQLOAuthTokenRepository(db, fields)
	token := newTestToken()

	rows := sqlmock.NewRows(tokenColumnNames).AddRow(
		mustBinary(t, token.ID), token.Provider, token.Slug, "", nil, "", nil, token.TokenType, token.Scope,
		token.UserID, token.OwnerID, token.Name, nil, token.CreatedAt, token.UpdatedAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM oauth_tokens WHERE owner_id").
		WithArgs("owner-1", 50, 0).
		WillReturnRows(rows)

	tokens, err := repo.ListByOwner(context.Background(), "owner-1", 0, 50)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, token.ID, tokens[0].ID)
	assert.Equal(t, "owner-1", tokens[0].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOAuthTokenRepository_GetByProviderUserID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	fields, _ := newTestFields(t)
	repo := NewMySQLOAuthTokenRepository(db, fields)

	mock.ExpectQuery("SELECT (.+) FROM oauth_tokens WHERE provider").
		WithArgs("github", "42").
		WillReturnRows(sqlmock.NewRows(tokenColumnNames))

	_, err := repo.GetByProviderUserID(context.Background(), "github", "42")
	assert.ErrorIs(t, err, oauthDomain.ErrOAuthTokenNotFound)
}

func TestMySQLOAuthTokenRepository_Secrets(t *testing.T) {
	t.Run("list batch", func(t *testing.T) {
		db, mock := newMockDB(t)
		fields, _ := newTestFields(t)
		repo := NewMySQLOAuthTokenRepository(db, fields)
		after := uuid.Must(uuid.NewV7())
		id := uuid.Must(uuid.NewV7())

		rows := sqlmock.NewRows([]string{"id", "access_token", "refresh_token"}).
			AddRow(mustBinary(t, id), "plain", "")
		mock.ExpectQuery("SELECT id, access_token, refresh_token FROM oauth_tokens").
			WithArgs(mustBinary(t, after), 10).
			WillReturnRows(rows)

		batch, err := repo.ListSecretsBatch(context.Background(), after, 10)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, id, batch[0].ID)
		assert.Equal(t, "plain", batch[0].AccessToken)
	})

	t.Run("update tolerates unchanged row", func(t *testing.T) {
		db, mock := newMockDB(t)
		fields, _ := newTestFields(t)
		repo := NewMySQLOAuthTokenRepository(db, fields)
		secrets := &oauthDomain.StoredSecrets{ID: uuid.Must(uuid.NewV7()), AccessToken: "a"}

		mock.ExpectExec("UPDATE oauth_tokens SET access_token").
			WithArgs("a", "", mustBinary(t, secrets.ID)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.UpdateSecrets(context.Background(), secrets))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
