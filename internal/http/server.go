// Package http provides the HTTP servers of the token vault: the API server
// with its middleware chain and the Prometheus metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/tokenvault/internal/auth/http"
	"github.com/allisson/tokenvault/internal/config"
	"github.com/allisson/tokenvault/internal/database"
	"github.com/allisson/tokenvault/internal/metrics"
	oauthHTTP "github.com/allisson/tokenvault/internal/oauthtoken/http"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	addr   string
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new API server. The router is built by SetupRouter.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	addr := fmt.Sprintf("%s:%d", host, port)
	return &Server{
		db:   db,
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) useRouter(router *gin.Engine) {
	s.router = router
	s.server.Handler = router
}

// Handler returns the configured router, or nil before SetupRouter.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// SetupRouter registers middleware and routes. Every /v1 route except token
// issuance requires a bearer token checked by authMiddleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	tokenHandler *oauthHTTP.OAuthTokenHandler,
	encryptionHandler *oauthHTTP.EncryptionHandler,
	authTokenHandler *authHTTP.TokenHandler,
	authMiddleware gin.HandlerFunc,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			cfg.MetricsNamespace,
			"/health",
			"/ready",
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	v1.POST("/token", authTokenHandler.IssueTokenHandler)

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware)

	tokens := authenticated.Group("/oauth-tokens")
	{
		tokens.POST("", tokenHandler.SaveHandler)
		tokens.GET("", tokenHandler.ListHandler)
		tokens.GET("/:slug", tokenHandler.GetHandler)
		tokens.GET("/:slug/credential", tokenHandler.CredentialHandler)
		tokens.DELETE("/:slug", tokenHandler.DeleteHandler)
	}

	authenticated.GET("/encryption/status", encryptionHandler.StatusHandler)

	s.useRouter(router)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}

	s.logger.Info("starting http server", slog.String("addr", s.addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	if err := database.Ping(c.Request.Context(), s.db, 2*time.Second); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
