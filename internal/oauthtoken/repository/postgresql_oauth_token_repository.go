package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

// PostgreSQLOAuthTokenRepository implements OAuthToken persistence for PostgreSQL databases.
type PostgreSQLOAuthTokenRepository struct {
	db     *sql.DB
	fields *cryptoService.TokenFields
}

// NewPostgreSQLOAuthTokenRepository creates a new PostgreSQL OAuthToken repository instance.
func NewPostgreSQLOAuthTokenRepository(
	db *sql.DB,
	fields *cryptoService.TokenFields,
) *PostgreSQLOAuthTokenRepository {
	return &PostgreSQLOAuthTokenRepository{db: db, fields: fields}
}

// Create inserts a new token. Returns ErrConflict when (provider, user_id) or slug already exists.
func (p *PostgreSQLOAuthTokenRepository) Create(ctx context.Context, token *oauthDomain.OAuthToken) error {
	querier := database.GetTx(ctx, p.db)

	accessToken, refreshToken, err := sealSecrets(ctx, p.fields, token)
	if err != nil {
		return err
	}

	query := `INSERT INTO oauth_tokens (` + oauthTokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID,
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
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "oauth token already exists")
		}
		return apperrors.Wrap(err, "failed to create oauth token")
	}
	return nil
}

// Update overwrites the mutable columns of an existing token.
func (p *PostgreSQLOAuthTokenRepository) Update(ctx context.Context, token *oauthDomain.OAuthToken) error {
	querier := database.GetTx(ctx, p.db)

	accessToken, refreshToken, err := sealSecrets(ctx, p.fields, token)
	if err != nil {
		return err
	}

	query := `UPDATE oauth_tokens
			  SET access_token = $1, expires_at = $2, refresh_token = $3, refresh_token_expires_at = $4,
			      token_type = $5, scope = $6, owner_id = $7, name = $8, profile_json = $9, updated_at = $10
			  WHERE id = $11`

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
		token.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update oauth token")
	}
	return requireAffected(result, "failed to update oauth token")
}

// Get retrieves a token by its ID.
func (p *PostgreSQLOAuthTokenRepository) Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error) {
	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens WHERE id = $1`
	return p.getOne(ctx, "failed to get oauth token", query, id)
}

// GetBySlug retrieves a token by its public slug.
func (p *PostgreSQLOAuthTokenRepository) GetBySlug(ctx context.Context, slug string) (*oauthDomain.OAuthToken, error) {
	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens WHERE slug = $1`
	return p.getOne(ctx, "failed to get oauth token by slug", query, slug)
}

// GetByProviderUserID retrieves the token of a provider user.
func (p *PostgreSQLOAuthTokenRepository) GetByProviderUserID(
	ctx context.Context,
	provider, userID string,
) (*oauthDomain.OAuthToken, error) {
	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens WHERE provider = $1 AND user_id = $2`
	return p.getOne(ctx, "failed to get oauth token by provider user", query, provider, userID)
}

// ListByOwner retrieves the tokens of ownerID ordered by ID with pagination.
func (p *PostgreSQLOAuthTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*oauthDomain.OAuthToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + oauthTokenColumns + ` FROM oauth_tokens
			  WHERE owner_id = $1 ORDER BY id LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list oauth tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*oauthDomain.OAuthToken, 0)
	for rows.Next() {
		token, err := p.scan(ctx, rows)
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
func (p *PostgreSQLOAuthTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete oauth token")
	}
	return requireAffected(result, "failed to delete oauth token")
}

// ListSecretsBatch returns up to limit raw secret rows with an ID greater than afterID.
func (p *PostgreSQLOAuthTokenRepository) ListSecretsBatch(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	query := `SELECT id, access_token, refresh_token FROM oauth_tokens
			  WHERE id > $1 ORDER BY id LIMIT $2`
	return p.querySecrets(ctx, query, afterID, limit)
}

// LockSecretsBatch is ListSecretsBatch with the rows locked until the surrounding
// transaction ends.
func (p *PostgreSQLOAuthTokenRepository) LockSecretsBatch(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	query := `SELECT id, access_token, refresh_token FROM oauth_tokens
			  WHERE id > $1 ORDER BY id LIMIT $2 FOR UPDATE`
	return p.querySecrets(ctx, query, afterID, limit)
}

// UpdateSecrets writes raw secret column values without going through the fields.
func (p *PostgreSQLOAuthTokenRepository) UpdateSecrets(
	ctx context.Context,
	secrets *oauthDomain.StoredSecrets,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE oauth_tokens SET access_token = $1, refresh_token = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, secrets.AccessToken, secrets.RefreshToken, secrets.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update oauth token secrets")
	}
	return requireAffected(result, "failed to update oauth token secrets")
}

func (p *PostgreSQLOAuthTokenRepository) getOne(
	ctx context.Context,
	errMsg, query string,
	args ...any,
) (*oauthDomain.OAuthToken, error) {
	querier := database.GetTx(ctx, p.db)

	token, err := p.scan(ctx, querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrOAuthTokenNotFound
		}
		return nil, apperrors.Wrap(err, errMsg)
	}
	return token, nil
}

func (p *PostgreSQLOAuthTokenRepository) scan(ctx context.Context, row rowScanner) (*oauthDomain.OAuthToken, error) {
	var token oauthDomain.OAuthToken
	var profile []byte

	err := row.Scan(
		&token.ID,
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

	token.ProfileJSON = profileFromBytes(profile)
	openSecrets(ctx, p.fields, &token)
	return &token, nil
}

func (p *PostgreSQLOAuthTokenRepository) querySecrets(
	ctx context.Context,
	query string,
	args ...any,
) ([]*oauthDomain.StoredSecrets, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list oauth token secrets")
	}
	defer func() {
		_ = rows.Close()
	}()

	batch := make([]*oauthDomain.StoredSecrets, 0)
	for rows.Next() {
		var s oauthDomain.StoredSecrets
		if err := rows.Scan(&s.ID, &s.AccessToken, &s.RefreshToken); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan oauth token secrets")
		}
		batch = append(batch, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate oauth token secrets")
	}
	return batch, nil
}

// isPostgreSQLUniqueViolation checks for SQLSTATE 23505.
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
