package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/tokenvault/internal/httputil"
	"github.com/allisson/tokenvault/internal/oauthtoken/http/dto"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
)

// EncryptionHandler exposes the migration progress of the encrypted columns.
type EncryptionHandler struct {
	encryptionUseCase oauthUseCase.EncryptionUseCase
	enabled           bool
	batchSize         int
	logger            *slog.Logger
}

// NewEncryptionHandler creates a new encryption handler. batchSize bounds the
// number of rows read per query while counting.
func NewEncryptionHandler(
	encryptionUseCase oauthUseCase.EncryptionUseCase,
	enabled bool,
	batchSize int,
	logger *slog.Logger,
) *EncryptionHandler {
	return &EncryptionHandler{
		encryptionUseCase: encryptionUseCase,
		enabled:           enabled,
		batchSize:         batchSize,
		logger:            logger,
	}
}

// StatusHandler counts stored secrets by state.
// GET /v1/encryption/status
func (h *EncryptionHandler) StatusHandler(c *gin.Context) {
	status, err := h.encryptionUseCase.Status(c.Request.Context(), h.batchSize)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEncryptionStatusToResponse(status, h.enabled))
}
