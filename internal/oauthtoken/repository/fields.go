// Package repository implements OAuth token persistence for PostgreSQL and MySQL.
//
// The access_token and refresh_token columns go through crypto/service.TokenFields
// on every write and read, so callers only handle plaintext while the database
// only holds ciphertext. Rotation and migration use the StoredSecrets methods,
// which read and write the raw column values.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

const oauthTokenColumns = `id, provider, slug, access_token, expires_at, refresh_token, refresh_token_expires_at,
	token_type, scope, user_id, owner_id, name, profile_json, created_at, updated_at`

// sealSecrets returns the stored form of the token secrets.
func sealSecrets(
	ctx context.Context,
	fields *cryptoService.TokenFields,
	token *oauthDomain.OAuthToken,
) (accessToken, refreshToken string, err error) {
	accessToken, err = sealSecret(ctx, fields.AccessToken, token.AccessToken, token.Unreadable.AccessToken)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = sealSecret(ctx, fields.RefreshToken, token.RefreshToken, token.Unreadable.RefreshToken)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// sealSecret writes back the stored value it could not decrypt unless the
// secret was replaced.
func sealSecret(ctx context.Context, field *cryptoService.TransparentField, plaintext, unreadable string) (string, error) {
	if plaintext == "" && unreadable != "" {
		return unreadable, nil
	}
	return field.Persist(ctx, plaintext)
}

// openSecrets replaces the stored secrets of token with their plaintext. Values
// that can not be decrypted become empty and are kept in token.Unreadable.
func openSecrets(ctx context.Context, fields *cryptoService.TokenFields, token *oauthDomain.OAuthToken) {
	token.AccessToken, token.Unreadable.AccessToken = openSecret(ctx, fields.AccessToken, token.AccessToken)
	token.RefreshToken, token.Unreadable.RefreshToken = openSecret(ctx, fields.RefreshToken, token.RefreshToken)
}

func openSecret(ctx context.Context, field *cryptoService.TransparentField, stored string) (plaintext, unreadable string) {
	plaintext, err := field.Load(ctx, stored)
	if err != nil {
		return "", stored
	}
	return plaintext, ""
}

// profileValue converts a JSON document into a driver value. Both drivers accept
// JSON columns as text.
func profileValue(profile json.RawMessage) any {
	if len(profile) == 0 {
		return nil
	}
	return string(profile)
}

func profileFromBytes(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// requireAffected turns an update or delete that matched no row into ErrOAuthTokenNotFound.
func requireAffected(result sql.Result, errMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, errMsg)
	}
	if affected == 0 {
		return oauthDomain.ErrOAuthTokenNotFound
	}
	return nil
}
