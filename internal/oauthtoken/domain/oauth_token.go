// Package domain defines the OAuth token model captured from third-party providers.
// Access and refresh tokens are held in plaintext here; encryption happens at the
// storage boundary.
package domain

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
)

// OAuthToken is the credential obtained from a provider for one provider user.
// (Provider, UserID) is unique.
type OAuthToken struct {
	ID                    uuid.UUID
	Provider              string
	Slug                  string
	AccessToken           string `json:"-"`
	ExpiresAt             *time.Time
	RefreshToken          string `json:"-"`
	RefreshTokenExpiresAt *time.Time
	TokenType             string
	Scope                 string
	UserID                string
	OwnerID               string
	Name                  string
	ProfileJSON           json.RawMessage
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// Unreadable holds the stored form of secrets that failed to decrypt on
	// load. Writes keep it for every secret that was not replaced.
	Unreadable StoredSecrets `json:"-"`
}

// IsExpired reports whether the access token expired before now. A token without
// an expiry never expires.
func (t *OAuthToken) IsExpired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return now.After(*t.ExpiresAt)
}

// IsRefreshTokenExpired reports whether the refresh token expired before now.
func (t *OAuthToken) IsRefreshTokenExpired(now time.Time) bool {
	if t.RefreshTokenExpiresAt == nil {
		return false
	}
	return now.After(*t.RefreshTokenExpiresAt)
}

// Username returns the profile "username", then the profile "login", then Name.
func (t *OAuthToken) Username() string {
	if len(t.ProfileJSON) > 0 {
		var profile map[string]any
		if err := json.Unmarshal(t.ProfileJSON, &profile); err == nil {
			for _, key := range []string{"username", "login"} {
				if v, ok := profile[key].(string); ok && v != "" {
					return v
				}
			}
		}
	}
	return t.Name
}

// SaveOAuthTokenInput carries a token response from a provider together with the
// user info needed to identify the account.
type SaveOAuthTokenInput struct {
	Provider              string
	UserID                string
	OwnerID               string
	AccessToken           string
	RefreshToken          string
	ExpiresIn             *int64
	RefreshTokenExpiresIn *int64
	TokenType             string
	Scope                 string
	Name                  string
	ProfileJSON           json.RawMessage
}

// StoredSecrets is the raw view of the encrypted columns of one row, as found in
// the database. Rotation and migration work on it without going through the
// transparent fields.
type StoredSecrets struct {
	ID           uuid.UUID
	AccessToken  string
	RefreshToken string
}

var slugSource io.Reader = rand.Reader

// NewSlug returns a random 22 character URL-safe identifier.
func NewSlug() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(slugSource, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
