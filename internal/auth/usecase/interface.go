// Package usecase implements API client management and bearer token
// authentication.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
)

// ClientRepository defines the interface for Client persistence operations.
type ClientRepository interface {
	Create(ctx context.Context, client *authDomain.Client) error
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)
}

// TokenRepository defines the interface for Token persistence operations.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)
}

// ClientUseCase defines the interface for client management.
type ClientUseCase interface {
	// Create stores a new client and returns its generated secret once.
	Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)
}

// TokenUseCase defines the interface for token issuance and authentication.
type TokenUseCase interface {
	// Issue exchanges client credentials for a new bearer token.
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Authenticate returns the client owning the token with tokenHash. It
	// returns ErrInvalidCredentials for unknown, expired or revoked tokens and
	// ErrClientInactive for disabled clients.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error)
}
