package dto

import (
	"time"

	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

// OAuthTokenResponse represents a stored token in API responses.
// The access and refresh tokens themselves are never returned, only whether they are present.
type OAuthTokenResponse struct {
	ID                    string     `json:"id"`
	Provider              string     `json:"provider"`
	Slug                  string     `json:"slug"`
	UserID                string     `json:"user_id"`
	OwnerID               string     `json:"owner_id,omitempty"`
	Username              string     `json:"username,omitempty"`
	TokenType             string     `json:"token_type,omitempty"`
	Scope                 string     `json:"scope,omitempty"`
	HasAccessToken        bool       `json:"has_access_token"`
	HasRefreshToken       bool       `json:"has_refresh_token"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	Expired               bool       `json:"expired"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	RefreshTokenExpired   bool       `json:"refresh_token_expired"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// MapOAuthTokenToResponse converts a domain token to an API response. now is
// used for the expiry flags.
func MapOAuthTokenToResponse(token *oauthDomain.OAuthToken, now time.Time) OAuthTokenResponse {
	return OAuthTokenResponse{
		ID:                    token.ID.String(),
		Provider:              token.Provider,
		Slug:                  token.Slug,
		UserID:                token.UserID,
		OwnerID:               token.OwnerID,
		Username:              token.Username(),
		TokenType:             token.TokenType,
		Scope:                 token.Scope,
		HasAccessToken:        token.AccessToken != "",
		HasRefreshToken:       token.RefreshToken != "",
		ExpiresAt:             token.ExpiresAt,
		Expired:               token.IsExpired(now),
		RefreshTokenExpiresAt: token.RefreshTokenExpiresAt,
		RefreshTokenExpired:   token.IsRefreshTokenExpired(now),
		CreatedAt:             token.CreatedAt,
		UpdatedAt:             token.UpdatedAt,
	}
}

// ListOAuthTokensResponse represents a paginated list of tokens in API responses.
type ListOAuthTokensResponse struct {
	Data []OAuthTokenResponse `json:"data"`
}

// MapOAuthTokensToListResponse converts a slice of domain tokens to a list response.
func MapOAuthTokensToListResponse(tokens []*oauthDomain.OAuthToken, now time.Time) ListOAuthTokensResponse {
	data := make([]OAuthTokenResponse, 0, len(tokens))
	for _, token := range tokens {
		data = append(data, MapOAuthTokenToResponse(token, now))
	}
	return ListOAuthTokensResponse{Data: data}
}

// CredentialResponse reports that a token can be used for a provider API call.
type CredentialResponse struct {
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// EncryptionStatusResponse reports migration progress of the encrypted columns.
type EncryptionStatusResponse struct {
	Enabled      bool                    `json:"enabled"`
	Complete     bool                    `json:"complete"`
	Total        int                     `json:"total"`
	AccessToken  oauthDomain.FieldStatus `json:"access_token"`
	RefreshToken oauthDomain.FieldStatus `json:"refresh_token"`
}

// MapEncryptionStatusToResponse converts a domain status to an API response.
func MapEncryptionStatusToResponse(status *oauthDomain.EncryptionStatus, enabled bool) EncryptionStatusResponse {
	return EncryptionStatusResponse{
		Enabled:      enabled,
		Complete:     status.Complete(),
		Total:        status.Total,
		AccessToken:  status.AccessToken,
		RefreshToken: status.RefreshToken,
	}
}
