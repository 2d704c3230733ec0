// Package domain defines the API clients allowed to use the token vault and the
// bearer tokens they authenticate with.
//
// A client owns the OAuth tokens it saves: its ID is the owner of every token
// stored through its requests.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is an API client. Secret holds the Argon2id hash of the client secret.
type Client struct {
	ID        uuid.UUID
	Secret    string //nolint:gosec // hashed client secret (not plaintext)
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// OwnerID returns the owner identifier stored on the OAuth tokens of the client.
func (c *Client) OwnerID() string {
	return c.ID.String()
}

// CreateClientInput contains the parameters for creating a new API client. The
// secret is generated and can not be chosen by the caller.
type CreateClientInput struct {
	Name     string
	IsActive bool
}

// CreateClientOutput is the result of creating a client. PlainSecret is returned
// only once and is never stored.
type CreateClientOutput struct {
	ID          uuid.UUID
	PlainSecret string
}
