package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
	authMocks "github.com/allisson/tokenvault/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/tokenvault/internal/errors"
)

var fixedNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func TestClientUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_StoresOnlyTheHash", func(t *testing.T) {
		repo := authMocks.NewMockClientRepository(t)
		secrets := authMocks.NewMockSecretService(t)
		useCase := NewClientUseCase(repo, secrets, clockwork.NewFakeClockAt(fixedNow))

		secrets.On("GenerateSecret").Return("plain-secret", "$argon2id$hash", nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(client *authDomain.Client) bool {
			return client.Secret == "$argon2id$hash" &&
				client.Name == "billing-service" &&
				client.IsActive &&
				client.CreatedAt.Equal(fixedNow) &&
				client.ID.Version() == uuid.Version(7)
		})).Return(nil).Once()

		output, err := useCase.Create(ctx, &authDomain.CreateClientInput{Name: " billing-service ", IsActive: true})
		require.NoError(t, err)
		assert.Equal(t, "plain-secret", output.PlainSecret)
		assert.NotEqual(t, uuid.Nil, output.ID)
	})

	t.Run("Error_BlankName", func(t *testing.T) {
		useCase := NewClientUseCase(
			authMocks.NewMockClientRepository(t),
			authMocks.NewMockSecretService(t),
			clockwork.NewFakeClockAt(fixedNow),
		)

		_, err := useCase.Create(ctx, &authDomain.CreateClientInput{Name: "   "})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_RepositoryFails", func(t *testing.T) {
		repo := authMocks.NewMockClientRepository(t)
		secrets := authMocks.NewMockSecretService(t)
		useCase := NewClientUseCase(repo, secrets, clockwork.NewFakeClockAt(fixedNow))
		dbErr := errors.New("connection reset")

		secrets.On("GenerateSecret").Return("plain-secret", "$argon2id$hash", nil).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(dbErr).Once()

		output, err := useCase.Create(ctx, &authDomain.CreateClientInput{Name: "billing-service"})
		assert.Nil(t, output)
		assert.ErrorIs(t, err, dbErr)
	})
}
