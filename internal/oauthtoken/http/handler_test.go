package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
	authHTTP "github.com/allisson/tokenvault/internal/auth/http"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
	"github.com/allisson/tokenvault/internal/oauthtoken/http/dto"
	"github.com/allisson/tokenvault/internal/oauthtoken/usecase/mocks"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testClient = &authDomain.Client{
	ID:       uuid.MustParse("0191c1a0-0000-7000-8000-000000000001"),
	Name:     "test-client",
	IsActive: true,
}

var testOwner = testClient.OwnerID()

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*OAuthTokenHandler, *mocks.MockOAuthTokenUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := mocks.NewMockOAuthTokenUseCase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewOAuthTokenHandler(mockUseCase, clockwork.NewFakeClockAt(fixedNow), logger), mockUseCase
}

// createTestContext builds a gin context carrying body encoded as JSON and
// authenticated as testClient.
func createTestContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := createAnonymousContext(method, target, body)
	c.Request = c.Request.WithContext(authHTTP.WithClient(c.Request.Context(), testClient))
	return c, w
}

// createAnonymousContext builds a gin context without an authenticated client.
func createAnonymousContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func newToken() *oauthDomain.OAuthToken {
	expiresAt := fixedNow.Add(time.Hour)
	return &oauthDomain.OAuthToken{
		ID:           uuid.Must(uuid.NewV7()),
		Provider:     "github",
		Slug:         "slug",
		AccessToken:  "gho_access",
		ExpiresAt:    &expiresAt,
		RefreshToken: "ghr_refresh",
		UserID:       "42",
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
}

func TestOAuthTokenHandler_SaveHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		token := newToken()

		request := dto.SaveOAuthTokenRequest{
			Provider:     "github",
			UserID:       "42",
			AccessToken:  "gho_access",
			RefreshToken: "ghr_refresh",
		}

		mockUseCase.On("Save", mock.Anything, mock.MatchedBy(func(in *oauthDomain.SaveOAuthTokenInput) bool {
			return in.Provider == "github" && in.UserID == "42" && in.AccessToken == "gho_access" &&
				in.OwnerID == testOwner
		})).Return(token, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/oauth-tokens", request)
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "gho_access")
		assert.NotContains(t, w.Body.String(), "ghr_refresh")

		var response dto.OAuthTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, token.ID.String(), response.ID)
		assert.True(t, response.HasAccessToken)
		assert.True(t, response.HasRefreshToken)
		assert.False(t, response.Expired)
	})

	t.Run("Error_ValidationFailed", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/oauth-tokens", dto.SaveOAuthTokenRequest{Provider: "github"})
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createAnonymousContext(http.MethodPost, "/v1/oauth-tokens", dto.SaveOAuthTokenRequest{
			Provider:    "github",
			UserID:      "42",
			AccessToken: "gho_access",
		})
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_AccessTokenTooLong", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/oauth-tokens", dto.SaveOAuthTokenRequest{
			Provider:    "github",
			UserID:      "42",
			AccessToken: strings.Repeat("a", dto.MaxAccessTokenLength+1),
		})
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_RefreshTokenTooLong", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/oauth-tokens", dto.SaveOAuthTokenRequest{
			Provider:     "github",
			UserID:       "42",
			AccessToken:  "gho_access",
			RefreshToken: strings.Repeat("r", dto.MaxRefreshTokenLength+1),
		})
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_OtherOwner", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Save", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrConflict, "oauth token belongs to another owner")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/oauth-tokens", dto.SaveOAuthTokenRequest{
			Provider:    "github",
			UserID:      "42",
			AccessToken: "gho_access",
		})
		handler.SaveHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/oauth-tokens", bytes.NewBufferString("{"))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request = c.Request.WithContext(authHTTP.WithClient(c.Request.Context(), testClient))

		handler.SaveHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOAuthTokenHandler_GetHandler(t *testing.T) {
	t.Run("Success_UndecryptableSecretsReportedMissing", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		token := newToken()
		token.AccessToken = ""

		mockUseCase.On("GetBySlug", mock.Anything, testOwner, "slug").Return(token, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/oauth-tokens/slug", nil)
		c.Params = gin.Params{{Key: "slug", Value: "slug"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.OAuthTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.HasAccessToken)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("GetBySlug", mock.Anything, testOwner, "missing").Return(nil, oauthDomain.ErrOAuthTokenNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/oauth-tokens/missing", nil)
		c.Params = gin.Params{{Key: "slug", Value: "missing"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOAuthTokenHandler_CredentialHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "valid", expectedCode: http.StatusOK},
		{name: "expired", err: oauthDomain.ErrOAuthTokenExpired, expectedCode: http.StatusUnauthorized},
		{name: "missing", err: oauthDomain.ErrCredentialMissing, expectedCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockUseCase := setupTestHandler(t)

			mockUseCase.On("GetValidAccessToken", mock.Anything, testOwner, "slug").Return("gho_access", tt.err).Once()

			c, w := createTestContext(http.MethodGet, "/v1/oauth-tokens/slug/credential", nil)
			c.Params = gin.Params{{Key: "slug", Value: "slug"}}
			handler.CredentialHandler(c)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.NotContains(t, w.Body.String(), "gho_access")
		})
	}
}

func TestOAuthTokenHandler_ListHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("List", mock.Anything, testOwner, 10, 20).
			Return([]*oauthDomain.OAuthToken{newToken()}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/oauth-tokens?offset=10&limit=20", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListOAuthTokensResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/oauth-tokens?limit=500", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestOAuthTokenHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Delete", mock.Anything, testOwner, "slug").Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, "/v1/oauth-tokens/slug", nil)
		c.Params = gin.Params{{Key: "slug", Value: "slug"}}
		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_OtherOwner", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Delete", mock.Anything, testOwner, "foreign").
			Return(oauthDomain.ErrOAuthTokenNotFound).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/oauth-tokens/foreign", nil)
		c.Params = gin.Params{{Key: "slug", Value: "foreign"}}
		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createAnonymousContext(http.MethodDelete, "/v1/oauth-tokens/slug", nil)
		c.Params = gin.Params{{Key: "slug", Value: "slug"}}
		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEncryptionHandler_StatusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockUseCase := mocks.NewMockEncryptionUseCase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewEncryptionHandler(mockUseCase, true, 250, logger)

	status := &oauthDomain.EncryptionStatus{
		Total:        3,
		AccessToken:  oauthDomain.FieldStatus{Plaintext: 1, Ciphertext: 2},
		RefreshToken: oauthDomain.FieldStatus{Empty: 3},
	}
	mockUseCase.On("Status", mock.Anything, 250).Return(status, nil).Once()

	c, w := createTestContext(http.MethodGet, "/v1/encryption/status", nil)
	handler.StatusHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.EncryptionStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Enabled)
	assert.False(t, response.Complete)
	assert.Equal(t, 1, response.AccessToken.Plaintext)
}
