package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
)

var (
	clientColumns = []string{"id", "secret", "name", "is_active", "created_at"}
	tokenColumns  = []string{"id", "token_hash", "client_id", "expires_at", "revoked_at", "created_at"}
	fixedNow      = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func mustBinary(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func newTestClient() *authDomain.Client {
	return &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Secret:    "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		Name:      "billing-service",
		IsActive:  true,
		CreatedAt: fixedNow,
	}
}

func newTestToken(clientID uuid.UUID) *authDomain.Token {
	return &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		ClientID:  clientID,
		ExpiresAt: fixedNow.Add(4 * time.Hour),
		CreatedAt: fixedNow,
	}
}

func TestPostgreSQLClientRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLClientRepository(db)
		client := newTestClient()

		mock.ExpectExec("INSERT INTO clients").
			WithArgs(client.ID, client.Secret, client.Name, true, client.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, client))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLClientRepository(db)
		client := newTestClient()

		mock.ExpectQuery("SELECT (.+) FROM clients WHERE id").
			WithArgs(client.ID).
			WillReturnRows(sqlmock.NewRows(clientColumns).
				AddRow(client.ID.String(), client.Secret, client.Name, true, client.CreatedAt))

		got, err := repo.Get(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, client, got)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLClientRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM clients WHERE id").WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
	})
}

func TestPostgreSQLTokenRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)
		token := newTestToken(uuid.Must(uuid.NewV7()))

		mock.ExpectExec("INSERT INTO auth_tokens").
			WithArgs(token.ID, token.TokenHash, token.ClientID, token.ExpiresAt, nil, token.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Create_DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec("INSERT INTO auth_tokens").WillReturnError(errors.New("foreign key violation"))

		assert.Error(t, repo.Create(ctx, newTestToken(uuid.Must(uuid.NewV7()))))
	})

	t.Run("GetByTokenHash", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)
		token := newTestToken(uuid.Must(uuid.NewV7()))

		mock.ExpectQuery("SELECT (.+) FROM auth_tokens WHERE token_hash").
			WithArgs(token.TokenHash).
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow(
				token.ID.String(), token.TokenHash, token.ClientID.String(), token.ExpiresAt, nil, token.CreatedAt,
			))

		got, err := repo.GetByTokenHash(ctx, token.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, token, got)
	})

	t.Run("GetByTokenHash_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM auth_tokens WHERE token_hash").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByTokenHash(ctx, "unknown")
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})
}

func TestMySQLClientRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLClientRepository(db)
		client := newTestClient()

		mock.ExpectExec("INSERT INTO clients").
			WithArgs(mustBinary(t, client.ID), client.Secret, client.Name, true, client.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, client))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLClientRepository(db)
		client := newTestClient()

		mock.ExpectQuery("SELECT (.+) FROM clients WHERE id").
			WithArgs(mustBinary(t, client.ID)).
			WillReturnRows(sqlmock.NewRows(clientColumns).
				AddRow(mustBinary(t, client.ID), client.Secret, client.Name, true, client.CreatedAt))

		got, err := repo.Get(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, client, got)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLClientRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM clients WHERE id").WillReturnRows(sqlmock.NewRows(clientColumns))

		_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
	})
}

func TestMySQLTokenRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)
		token := newTestToken(uuid.Must(uuid.NewV7()))

		mock.ExpectExec("INSERT INTO auth_tokens").
			WithArgs(
				mustBinary(t, token.ID),
				token.TokenHash,
				mustBinary(t, token.ClientID),
				token.ExpiresAt,
				nil,
				token.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByTokenHash", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)
		token := newTestToken(uuid.Must(uuid.NewV7()))
		revokedAt := fixedNow.Add(time.Hour)
		token.RevokedAt = &revokedAt

		mock.ExpectQuery("SELECT (.+) FROM auth_tokens WHERE token_hash").
			WithArgs(token.TokenHash).
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow(
				mustBinary(t, token.ID), token.TokenHash, mustBinary(t, token.ClientID),
				token.ExpiresAt, revokedAt, token.CreatedAt,
			))

		got, err := repo.GetByTokenHash(ctx, token.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, token, got)
	})

	t.Run("GetByTokenHash_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM auth_tokens WHERE token_hash").WillReturnRows(sqlmock.NewRows(tokenColumns))

		_, err := repo.GetByTokenHash(ctx, "unknown")
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})
}
