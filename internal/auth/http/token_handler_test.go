package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
	"github.com/allisson/tokenvault/internal/auth/http/dto"
	"github.com/allisson/tokenvault/internal/auth/usecase/mocks"
)

func issueTokenRequest(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/token", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestTokenHandler_IssueTokenHandler(t *testing.T) {
	clientID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		tokenUseCase := mocks.NewMockTokenUseCase(t)
		handler := NewTokenHandler(tokenUseCase, newTestLogger())
		expiresAt := time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC)

		tokenUseCase.On("Issue", mock.Anything, &authDomain.IssueTokenInput{
			ClientID:     clientID,
			ClientSecret: "secret",
		}).Return(&authDomain.IssueTokenOutput{PlainToken: "plain-token", ExpiresAt: expiresAt}, nil).Once()

		c, w := issueTokenRequest(t, `{"client_id":"`+clientID.String()+`","client_secret":"secret"}`)
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.IssueTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "plain-token", response.Token)
		assert.True(t, expiresAt.Equal(response.ExpiresAt))
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		tokenUseCase := mocks.NewMockTokenUseCase(t)
		handler := NewTokenHandler(tokenUseCase, newTestLogger())

		tokenUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrInvalidCredentials).Once()

		c, w := issueTokenRequest(t, `{"client_id":"`+clientID.String()+`","client_secret":"wrong"}`)
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_InvalidClientID", func(t *testing.T) {
		handler := NewTokenHandler(mocks.NewMockTokenUseCase(t), newTestLogger())

		c, w := issueTokenRequest(t, `{"client_id":"not-a-uuid","client_secret":"secret"}`)
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		handler := NewTokenHandler(mocks.NewMockTokenUseCase(t), newTestLogger())

		c, w := issueTokenRequest(t, `{"client_id":"`+clientID.String()+`"}`)
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler := NewTokenHandler(mocks.NewMockTokenUseCase(t), newTestLogger())

		c, w := issueTokenRequest(t, `{`)
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
