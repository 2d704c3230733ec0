package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
	authService "github.com/allisson/tokenvault/internal/auth/service"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

type clientUseCase struct {
	clientRepo    ClientRepository
	secretService authService.SecretService
	clock         clockwork.Clock
}

// Create generates the client secret and stores only its hash.
func (c *clientUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client name is required")
	}

	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate client id")
	}

	client := &authDomain.Client{
		ID:        id,
		Secret:    hashedSecret,
		Name:      name,
		IsActive:  input.IsActive,
		CreatedAt: c.clock.Now().UTC(),
	}
	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{ID: client.ID, PlainSecret: plainSecret}, nil
}

// NewClientUseCase creates a new ClientUseCase.
func NewClientUseCase(
	clientRepo ClientRepository,
	secretService authService.SecretService,
	clock clockwork.Clock,
) ClientUseCase {
	return &clientUseCase{
		clientRepo:    clientRepo,
		secretService: secretService,
		clock:         clock,
	}
}
