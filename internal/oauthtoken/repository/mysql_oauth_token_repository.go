package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

// MySQLOAuthTokenRepository implements OAuthToken persistence for MySQL databases.
// IDs are stored as BINARY(16).
type MySQLOAuthTokenRepository struct {
	db     *sql.DB
	fields *cryptoService.TokenFields
}

// NewMySQLOAuthTokenRepository creates a new MySQL OAuthToken repository instance.
func NewMySQLOAuthTokenRepository(
	db *sql.DB,
	fields *cryptoService.TokenFields,
) *MySQLOAuthTokenRepository {
	return &MySQLOAuthTokenRepository{db: db, fields: fields}
}

// Create inserts a new token. Returns ErrConflict when (provider, user_id) or slug already exists.
func (m *MySQLOAuthTokenRepository) Create(ctx context.Context, token *oauthDomain.OAuthToken) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal oauth token id")
	}

	accessToken, refreshToken, err := sealSecrets(ctx, m.fields, token)
	if err != nil {
		return err
	}

	query := `INSERT INTO oauth_tokens (` + oauthTokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.Provider,
		token.Slug,
		accessToken,
		token.ExpiresAt,
		refreshToken,
		token.RefreshTokenExpiresAt,
		token.TokenType,
		token.Scope,
		token.UserID,
		token.OwnerID,
		token.Name,
		profileValue(token.ProfileJSON),
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "oauth token already exists")
		}
		return apperrors.Wrap(err, "failed to create oauth token")
	}
	return nil
}

// Update overwrites the mutable columns of an existing token.
func (m *MySQLOAuthTokenRepository) Update(ctx context.Context, token *oauthDomain.OAuthToken) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal oauth token id")
	}

	accessToken, refreshToken, err := sealSecrets(ctx, m.fields, token)
	if err != nil {
		return err
	}

	query := `UPDATE oauth_tokens
			  SET access_token = ?, expires_at = ?, refresh_token = ?, refresh_token_expires_at = ?,
			      token_type = ?, scope = ?, owner_id = ?, name = ?, profile_json = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		accessToken,
		token.ExpiresAt,
		refreshToken,
		token.RefreshTokenExpiresAt,
		token.TokenType,
		token.Scope,
		token.OwnerID,
		token.Name,
		profileValue(token.ProfileJSON),
		token.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update oauth token")
	}
	return requireAffected(result, "failed to update oauth token")
}

// Get retrieves a token by its ID.
func (m *MySQLOAuthTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*oauthDomain.OAuthToken, error) {
	id, err := tokenID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal oauth token id")
	}
	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens WHERE id = ?`
	return m.getOne(ctx, "failed to get oauth token", query, id)
}

// GetBySlug retrieves a token by its public slug.
func (m *MySQLOAuthTokenRepository) GetBySlug(ctx context.Context, slug string) (*oauthDomain.OAuthToken, error) {
	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens WHERE slug = ?`
	return m.getOne(ctx, "failed to get oauth token by slug", query, slug)
}

// GetByProviderUserID retrieves the token of a provider user.
func (m *MySQLOAuthTokenRepository) GetByProviderUserID(
	ctx context.Context,
	provider, userID string,
) (*oauthDomain.OAuthToken, error) {
	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens WHERE provider = ? AND user_id = ?`
	return m.getOne(ctx, "failed to get oauth token by provider user", query, provider, userID)
}

// ListByOwner retrieves the tokens of ownerID ordered by ID with pagination.
func (m *MySQLOAuthTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*oauthDomain.OAuthToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens
			  WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list oauth tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*oauthDomain.OAuthToken, 0)
	for rows.Next() {
		token, err := m.scan(ctx, rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan oauth token")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate oauth tokens")
	}
	return tokens, nil
}

// Delete removes a token permanently.
func (m *MySQLOAuthTokenRepository) Delete(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := tokenID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal oauth token id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete oauth token")
	}
	return requireAffected(result, "failed to delete oauth token")
}

// ListSecretsBatch returns up to limit raw secret rows with an ID greater than afterID.
func (m *MySQLOAuthTokenRepository) ListSecretsBatch(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	query := `SELECT id, access_token, refresh_token FROM oauth_tokens
			  WHERE id > ? ORDER BY id LIMIT ?`
	return m.querySecrets(ctx, query, afterID, limit)
}

// LockSecretsBatch is ListSecretsBatch with the rows locked until the surrounding
// transaction ends.
func (m *MySQLOAuthTokenRepository) LockSecretsBatch(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	query := `SELECT id, access_token, refresh_token FROM oauth_tokens
			  WHERE id > ? ORDER BY id LIMIT ? FOR UPDATE`
	return m.querySecrets(ctx, query, afterID, limit)
}

// UpdateSecrets writes raw secret column values without going through the fields.
func (m *MySQLOAuthTokenRepository) UpdateSecrets(
	ctx context.Context,
	secrets *oauthDomain.StoredSecrets,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := secrets.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal oauth token id")
	}

	query := `UPDATE oauth_tokens SET access_token = ?, refresh_token = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, secrets.AccessToken, secrets.RefreshToken, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update oauth token secrets")
	}

	// MySQL reports zero affected rows when the new values equal the old ones.
	if _, err := result.RowsAffected(); err != nil {
		return apperrors.Wrap(err, "failed to update oauth token secrets")
	}
	return nil
}

func (m *MySQLOAuthTokenRepository) getOne(
	ctx context.Context,
	errMsg, query string,
	args ...any,
) (*oauthDomain.OAuthToken, error) {
	querier := database.GetTx(ctx, m.db)

	token, err := m.scan(ctx, querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrOAuthTokenNotFound
		}
		return nil, apperrors.Wrap(err, errMsg)
	}
	return token, nil
}

func (m *MySQLOAuthTokenRepository) scan(ctx context.Context, row rowScanner) (*oauthDomain.OAuthToken, error) {
	var token oauthDomain.OAuthToken
	var id, profile []byte

	err := row.Scan(
		&id,
		&token.Provider,
		&token.Slug,
		&token.AccessToken,
		&token.ExpiresAt,
		&token.RefreshToken,
		&token.RefreshTokenExpiresAt,
		&token.TokenType,
		&token.Scope,
		&token.UserID,
		&token.OwnerID,
		&token.Name,
		&profile,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal oauth token id")
	}

	token.ProfileJSON = profileFromBytes(profile)
	openSecrets(ctx, m.fields, &token)
	return &token, nil
}

func (m *MySQLOAuthTokenRepository) querySecrets(
	ctx context.Context,
	query string,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	querier := database.GetTx(ctx, m.db)

	after, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal oauth token id")
	}

	rows, err := querier.QueryContext(ctx, query, after, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list oauth token secrets")
	}
	defer func() {
		_ = rows.Close()
	}()

	batch := make([]*oauthDomain.StoredSecrets, 0)
	for rows.Next() {
		var s oauthDomain.StoredSecrets
		var id []byte
		if err := rows.Scan(&id, &s.AccessToken, &s.RefreshToken); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan oauth token secrets")
		}
		if err := s.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal oauth token id")
		}
		batch = append(batch, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate oauth token secrets")
	}
	return batch, nil
}

// isMySQLUniqueViolation checks for error 1062 (ER_DUP_ENTRY).
func isMySQLUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
