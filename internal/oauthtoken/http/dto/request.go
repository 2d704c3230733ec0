// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

const (
	// MaxAccessTokenLength bounds the access token accepted from a provider.
	MaxAccessTokenLength = 8192
	// MaxRefreshTokenLength bounds the refresh token so its encrypted form fits
	// the refresh_token column.
	MaxRefreshTokenLength = 500
)

// SaveOAuthTokenRequest is the token response of a provider together with the
// identity of the provider user, as posted by the OAuth callback. The token is
// owned by the authenticated API client.
type SaveOAuthTokenRequest struct {
	Provider              string          `json:"provider"`
	UserID                string          `json:"user_id"`
	AccessToken           string          `json:"access_token"`
	RefreshToken          string          `json:"refresh_token"`
	ExpiresIn             *int64          `json:"expires_in"`
	RefreshTokenExpiresIn *int64          `json:"refresh_token_expires_in"`
	TokenType             string          `json:"token_type"`
	Scope                 string          `json:"scope"`
	Name                  string          `json:"name"`
	Profile               json.RawMessage `json:"profile"`
}

// Validate checks if the save request is valid.
func (r *SaveOAuthTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Provider, validation.Required, customValidation.ProviderName),
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 100),
		),
		validation.Field(&r.AccessToken,
			validation.Required,
			customValidation.NotBlank,
			customValidation.TokenChars,
			validation.Length(1, MaxAccessTokenLength),
		),
		validation.Field(&r.RefreshToken,
			customValidation.TokenChars,
			validation.Length(0, MaxRefreshTokenLength),
		),
		validation.Field(&r.ExpiresIn, validation.Min(int64(0))),
		validation.Field(&r.RefreshTokenExpiresIn, validation.Min(int64(0))),
		validation.Field(&r.TokenType, validation.Length(0, 40)),
		validation.Field(&r.Scope, validation.Length(0, 1024)),
		validation.Field(&r.Name, validation.Length(0, 100)),
		validation.Field(&r.Profile, customValidation.JSONObject),
	)
}

// ToDomain converts the request into a use case input for ownerID.
func (r *SaveOAuthTokenRequest) ToDomain(ownerID string) *oauthDomain.SaveOAuthTokenInput {
	return &oauthDomain.SaveOAuthTokenInput{
		Provider:              r.Provider,
		UserID:                r.UserID,
		OwnerID:               ownerID,
		AccessToken:           r.AccessToken,
		RefreshToken:          r.RefreshToken,
		ExpiresIn:             r.ExpiresIn,
		RefreshTokenExpiresIn: r.RefreshTokenExpiresIn,
		TokenType:             r.TokenType,
		Scope:                 r.Scope,
		Name:                  r.Name,
		ProfileJSON:           r.Profile,
	}
}
