// Package http provides HTTP handlers for stored OAuth tokens and for the
// encryption status of their secret columns. Responses never carry the access
// or refresh token itself.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	authHTTP "github.com/allisson/tokenvault/internal/auth/http"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	"github.com/allisson/tokenvault/internal/httputil"
	"github.com/allisson/tokenvault/internal/oauthtoken/http/dto"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// OAuthTokenHandler handles HTTP requests for OAuth token operations.
type OAuthTokenHandler struct {
	tokenUseCase oauthUseCase.OAuthTokenUseCase
	clock        clockwork.Clock
	logger       *slog.Logger
}

// NewOAuthTokenHandler creates a new OAuth token handler with required dependencies.
func NewOAuthTokenHandler(
	tokenUseCase oauthUseCase.OAuthTokenUseCase,
	clock clockwork.Clock,
	logger *slog.Logger,
) *OAuthTokenHandler {
	return &OAuthTokenHandler{
		tokenUseCase: tokenUseCase,
		clock:        clock,
		logger:       logger,
	}
}

// ownerID returns the owner of the tokens handled by the request: the
// authenticated client. It writes a 401 and returns false when no client is set.
func (h *OAuthTokenHandler) ownerID(c *gin.Context) (string, bool) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthenticated, h.logger)
		return "", false
	}
	return client.OwnerID(), true
}

// SaveHandler stores the token of a provider user, creating or updating it.
// POST /v1/oauth-tokens
// Returns 201 Created with token metadata.
func (h *OAuthTokenHandler) SaveHandler(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req dto.SaveOAuthTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.tokenUseCase.Save(c.Request.Context(), req.ToDomain(owner))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOAuthTokenToResponse(token, h.clock.Now()))
}

// ListHandler retrieves tokens with pagination support.
// GET /v1/oauth-tokens?offset=0&limit=50
func (h *OAuthTokenHandler) ListHandler(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	page, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	tokens, err := h.tokenUseCase.List(c.Request.Context(), owner, page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOAuthTokensToListResponse(tokens, h.clock.Now()))
}

// GetHandler retrieves token metadata by slug. Tokens of other owners are
// reported as not found.
// GET /v1/oauth-tokens/:slug
func (h *OAuthTokenHandler) GetHandler(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	token, err := h.tokenUseCase.GetBySlug(c.Request.Context(), owner, c.Param("slug"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOAuthTokenToResponse(token, h.clock.Now()))
}

// CredentialHandler checks that the access token of slug can be used right now.
// GET /v1/oauth-tokens/:slug/credential
// Returns 401 when the token is expired or the stored credential is missing or
// unreadable, meaning the user has to re-authenticate.
func (h *OAuthTokenHandler) CredentialHandler(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	slug := c.Param("slug")

	if _, err := h.tokenUseCase.GetValidAccessToken(c.Request.Context(), owner, slug); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CredentialResponse{Slug: slug, Status: "valid"})
}

// DeleteHandler removes a token by slug.
// DELETE /v1/oauth-tokens/:slug
// Returns 204 No Content.
func (h *OAuthTokenHandler) DeleteHandler(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	if err := h.tokenUseCase.Delete(c.Request.Context(), owner, c.Param("slug")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
