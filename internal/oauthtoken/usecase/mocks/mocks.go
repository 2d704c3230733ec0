// Package mocks provides mock implementations of the oauth token use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockOAuthTokenRepository is a mock implementation of OAuthTokenRepository.
type MockOAuthTokenRepository struct {
	mock.Mock
}

// NewMockOAuthTokenRepository creates a mock whose expectations are asserted on test cleanup.
func NewMockOAuthTokenRepository(t testingT) *MockOAuthTokenRepository {
	m := &MockOAuthTokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) Create(ctx context.Context, token *oauthDomain.OAuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Update mocks the Update method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) Update(ctx context.Context, token *oauthDomain.OAuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Get mocks the Get method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.OAuthToken), args.Error(1)
}

// GetBySlug mocks the GetBySlug method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) GetBySlug(ctx context.Context, slug string) (*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.OAuthToken), args.Error(1)
}

// GetByProviderUserID mocks the GetByProviderUserID method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) GetByProviderUserID(
	ctx context.Context,
	provider, userID string,
) (*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, provider, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.OAuthToken), args.Error(1)
}

// ListByOwner mocks the ListByOwner method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*oauthDomain.OAuthToken), args.Error(1)
}

// Delete mocks the Delete method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ListSecretsBatch mocks the ListSecretsBatch method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) ListSecretsBatch(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*oauthDomain.StoredSecrets), args.Error(1)
}

// LockSecretsBatch mocks the LockSecretsBatch method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) LockSecretsBatch(
	ctx context.Context,
	afterID uuid.UUID,
	limit int,
) ([]*oauthDomain.StoredSecrets, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*oauthDomain.StoredSecrets), args.Error(1)
}

// UpdateSecrets mocks the UpdateSecrets method of OAuthTokenRepository.
func (m *MockOAuthTokenRepository) UpdateSecrets(ctx context.Context, secrets *oauthDomain.StoredSecrets) error {
	args := m.Called(ctx, secrets)
	return args.Error(0)
}

// MockOAuthTokenUseCase is a mock implementation of OAuthTokenUseCase.
type MockOAuthTokenUseCase struct {
	mock.Mock
}

// NewMockOAuthTokenUseCase creates a mock whose expectations are asserted on test cleanup.
func NewMockOAuthTokenUseCase(t testingT) *MockOAuthTokenUseCase {
	m := &MockOAuthTokenUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Save mocks the Save method of OAuthTokenUseCase.
func (m *MockOAuthTokenUseCase) Save(
	ctx context.Context,
	input *oauthDomain.SaveOAuthTokenInput,
) (*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.OAuthToken), args.Error(1)
}

// Get mocks the Get method of OAuthTokenUseCase.
func (m *MockOAuthTokenUseCase) Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.OAuthToken), args.Error(1)
}

// GetBySlug mocks the GetBySlug method of OAuthTokenUseCase.
func (m *MockOAuthTokenUseCase) GetBySlug(ctx context.Context, ownerID, slug string) (*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, ownerID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.OAuthToken), args.Error(1)
}

// List mocks the List method of OAuthTokenUseCase.
func (m *MockOAuthTokenUseCase) List(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*oauthDomain.OAuthToken, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*oauthDomain.OAuthToken), args.Error(1)
}

// Delete mocks the Delete method of OAuthTokenUseCase.
func (m *MockOAuthTokenUseCase) Delete(ctx context.Context, ownerID, slug string) error {
	args := m.Called(ctx, ownerID, slug)
	return args.Error(0)
}

// GetValidAccessToken mocks the GetValidAccessToken method of OAuthTokenUseCase.
func (m *MockOAuthTokenUseCase) GetValidAccessToken(ctx context.Context, ownerID, slug string) (string, error) {
	args := m.Called(ctx, ownerID, slug)
	return args.String(0), args.Error(1)
}

// MockEncryptionUseCase is a mock implementation of EncryptionUseCase.
type MockEncryptionUseCase struct {
	mock.Mock
}

// NewMockEncryptionUseCase creates a mock whose expectations are asserted on test cleanup.
func NewMockEncryptionUseCase(t testingT) *MockEncryptionUseCase {
	m := &MockEncryptionUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Rotate mocks the Rotate method of EncryptionUseCase.
func (m *MockEncryptionUseCase) Rotate(
	ctx context.Context,
	oldCodec, newCodec cryptoService.TokenCodec,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	args := m.Called(ctx, oldCodec, newCodec, batchSize, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.RotationReport), args.Error(1)
}

// EncryptExisting mocks the EncryptExisting method of EncryptionUseCase.
func (m *MockEncryptionUseCase) EncryptExisting(
	ctx context.Context,
	codec cryptoService.TokenCodec,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	args := m.Called(ctx, codec, batchSize, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.RotationReport), args.Error(1)
}

// Status mocks the Status method of EncryptionUseCase.
func (m *MockEncryptionUseCase) Status(ctx context.Context, batchSize int) (*oauthDomain.EncryptionStatus, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.EncryptionStatus), args.Error(1)
}
