// Package usecase implements the OAuth token workflows: saving provider tokens,
// reading them back for API calls, and the encryption maintenance procedures
// (key rotation, one-time encryption of legacy rows, migration status).
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

// OAuthTokenRepository defines the interface for OAuthToken persistence operations.
//
// Methods returning OAuthToken decrypt the secret columns; the StoredSecrets
// methods read and write them raw.
type OAuthTokenRepository interface {
	Create(ctx context.Context, token *oauthDomain.OAuthToken) error
	Update(ctx context.Context, token *oauthDomain.OAuthToken) error
	Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error)
	GetBySlug(ctx context.Context, slug string) (*oauthDomain.OAuthToken, error)
	GetByProviderUserID(ctx context.Context, provider, userID string) (*oauthDomain.OAuthToken, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*oauthDomain.OAuthToken, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListSecretsBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*oauthDomain.StoredSecrets, error)
	LockSecretsBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*oauthDomain.StoredSecrets, error)
	UpdateSecrets(ctx context.Context, secrets *oauthDomain.StoredSecrets) error
}

// OAuthTokenUseCase defines the interface for OAuth token business logic.
//
// Slug lookups are scoped to ownerID: a token of another owner is reported as
// ErrOAuthTokenNotFound.
type OAuthTokenUseCase interface {
	// Save creates the token of a provider user or updates the existing one.
	Save(ctx context.Context, input *oauthDomain.SaveOAuthTokenInput) (*oauthDomain.OAuthToken, error)
	Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error)
	GetBySlug(ctx context.Context, ownerID, slug string) (*oauthDomain.OAuthToken, error)
	List(ctx context.Context, ownerID string, offset, limit int) ([]*oauthDomain.OAuthToken, error)
	Delete(ctx context.Context, ownerID, slug string) error
	// GetValidAccessToken returns the plaintext access token for a provider API call.
	// It returns ErrOAuthTokenExpired or ErrCredentialMissing when the user has to
	// refresh or re-authenticate.
	GetValidAccessToken(ctx context.Context, ownerID, slug string) (string, error)
}

// EncryptionUseCase defines the maintenance procedures of the encrypted columns.
type EncryptionUseCase interface {
	// Rotate re-encrypts every stored secret from oldCodec to newCodec in batches
	// of batchSize rows, one transaction per batch. Rows already under newCodec are
	// skipped, so an interrupted run can be resumed by running it again.
	Rotate(
		ctx context.Context,
		oldCodec, newCodec cryptoService.TokenCodec,
		batchSize int,
		dryRun bool,
	) (*oauthDomain.RotationReport, error)

	// EncryptExisting encrypts legacy plaintext secrets with codec.
	EncryptExisting(
		ctx context.Context,
		codec cryptoService.TokenCodec,
		batchSize int,
		dryRun bool,
	) (*oauthDomain.RotationReport, error)

	// Status counts stored secrets by state without locking rows.
	Status(ctx context.Context, batchSize int) (*oauthDomain.EncryptionStatus, error)
}
