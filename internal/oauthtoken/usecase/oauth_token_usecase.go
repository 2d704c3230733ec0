package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/allisson/tokenvault/internal/database"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

// oauthTokenUseCase implements the OAuthTokenUseCase interface.
type oauthTokenUseCase struct {
	txManager database.TxManager
	tokenRepo OAuthTokenRepository
	clock     clockwork.Clock
}

// Save stores the token response of a provider user. An existing token of the
// same (provider, user id) is updated in place and keeps its slug. When the
// provider did not send a new refresh token or scope the previous ones are kept.
// A token held by another owner is not taken over: Save returns ErrConflict.
func (o *oauthTokenUseCase) Save(
	ctx context.Context,
	input *oauthDomain.SaveOAuthTokenInput,
) (*oauthDomain.OAuthToken, error) {
	if input.Provider == "" || input.UserID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "provider and user id are required")
	}

	now := o.clock.Now().UTC()

	var token *oauthDomain.OAuthToken
	err := o.txManager.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := o.tokenRepo.GetByProviderUserID(txCtx, input.Provider, input.UserID)
		if err != nil && !errors.Is(err, oauthDomain.ErrOAuthTokenNotFound) {
			return err
		}

		if existing == nil {
			id, err := uuid.NewV7()
			if err != nil {
				return apperrors.Wrap(err, "failed to generate oauth token id")
			}
			slug, err := oauthDomain.NewSlug()
			if err != nil {
				return apperrors.Wrap(err, "failed to generate oauth token slug")
			}
			token = &oauthDomain.OAuthToken{
				ID:        id,
				Provider:  input.Provider,
				Slug:      slug,
				UserID:    input.UserID,
				CreatedAt: now,
			}
			applyInput(token, input, now)
			return o.tokenRepo.Create(txCtx, token)
		}

		if existing.OwnerID != "" && input.OwnerID != "" && existing.OwnerID != input.OwnerID {
			return apperrors.Wrap(apperrors.ErrConflict, "oauth token belongs to another owner")
		}

		token = existing
		applyInput(token, input, now)
		return o.tokenRepo.Update(txCtx, token)
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

func applyInput(token *oauthDomain.OAuthToken, input *oauthDomain.SaveOAuthTokenInput, now time.Time) {
	token.AccessToken = input.AccessToken
	token.ExpiresAt = expiryFrom(now, input.ExpiresIn)

	if input.RefreshToken != "" {
		token.RefreshToken = input.RefreshToken
		token.RefreshTokenExpiresAt = expiryFrom(now, input.RefreshTokenExpiresIn)
	}
	if input.TokenType != "" {
		token.TokenType = input.TokenType
	}
	if input.Scope != "" {
		token.Scope = input.Scope
	}
	if input.OwnerID != "" {
		token.OwnerID = input.OwnerID
	}
	if input.Name != "" {
		token.Name = input.Name
	}
	if len(input.ProfileJSON) > 0 {
		token.ProfileJSON = input.ProfileJSON
	}
	token.UpdatedAt = now
}

// expiryFrom converts an expires_in value in seconds. Nil or non-positive means
// the provider did not announce an expiry.
func expiryFrom(now time.Time, expiresIn *int64) *time.Time {
	if expiresIn == nil || *expiresIn <= 0 {
		return nil
	}
	expiresAt := now.Add(time.Duration(*expiresIn) * time.Second)
	return &expiresAt
}

// Get retrieves a token by its ID.
func (o *oauthTokenUseCase) Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error) {
	return o.tokenRepo.Get(ctx, id)
}

// GetBySlug retrieves a token of ownerID by its slug.
func (o *oauthTokenUseCase) GetBySlug(ctx context.Context, ownerID, slug string) (*oauthDomain.OAuthToken, error) {
	token, err := o.tokenRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if token.OwnerID != ownerID {
		return nil, oauthDomain.ErrOAuthTokenNotFound
	}
	return token, nil
}

// List retrieves the tokens of ownerID with pagination.
func (o *oauthTokenUseCase) List(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*oauthDomain.OAuthToken, error) {
	return o.tokenRepo.ListByOwner(ctx, ownerID, offset, limit)
}

// Delete removes the token of ownerID identified by slug.
func (o *oauthTokenUseCase) Delete(ctx context.Context, ownerID, slug string) error {
	return o.txManager.WithTx(ctx, func(txCtx context.Context) error {
		token, err := o.GetBySlug(txCtx, ownerID, slug)
		if err != nil {
			return err
		}
		return o.tokenRepo.Delete(txCtx, token.ID)
	})
}

// GetValidAccessToken returns the access token of slug if it can be used right now.
//
// A stored value that could not be decrypted is loaded as an empty string, so
// ErrCredentialMissing also covers corrupted rows and rows written under another key.
func (o *oauthTokenUseCase) GetValidAccessToken(ctx context.Context, ownerID, slug string) (string, error) {
	token, err := o.GetBySlug(ctx, ownerID, slug)
	if err != nil {
		return "", err
	}

	if token.IsExpired(o.clock.Now()) {
		return "", oauthDomain.ErrOAuthTokenExpired
	}
	if token.AccessToken == "" {
		return "", oauthDomain.ErrCredentialMissing
	}

	return token.AccessToken, nil
}

// NewOAuthTokenUseCase creates a new OAuthTokenUseCase.
func NewOAuthTokenUseCase(
	txManager database.TxManager,
	tokenRepo OAuthTokenRepository,
	clock clockwork.Clock,
) OAuthTokenUseCase {
	return &oauthTokenUseCase{
		txManager: txManager,
		tokenRepo: tokenRepo,
		clock:     clock,
	}
}
