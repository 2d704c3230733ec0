// Package app provides the dependency injection container that assembles the token vault.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	authHTTP "github.com/allisson/tokenvault/internal/auth/http"
	authService "github.com/allisson/tokenvault/internal/auth/service"
	authUseCase "github.com/allisson/tokenvault/internal/auth/usecase"
	"github.com/allisson/tokenvault/internal/config"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	"github.com/allisson/tokenvault/internal/http"
	"github.com/allisson/tokenvault/internal/metrics"
	oauthHTTP "github.com/allisson/tokenvault/internal/oauthtoken/http"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	clock           clockwork.Clock
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	fieldMetrics    metrics.FieldMetrics

	// Crypto
	kmsService  cryptoService.KMSService
	aeadManager cryptoService.AEADManager
	keyProvider cryptoService.KeyProvider
	tokenCodec  cryptoService.TokenCodec
	tokenFields *cryptoService.TokenFields

	// Auth
	secretService       authService.SecretService
	tokenService        authService.TokenService
	clientRepository    authUseCase.ClientRepository
	authTokenRepository authUseCase.TokenRepository
	clientUseCase       authUseCase.ClientUseCase
	tokenUseCase        authUseCase.TokenUseCase
	tokenHandler        *authHTTP.TokenHandler
	authMiddleware      gin.HandlerFunc

	// OAuth tokens
	oauthTokenRepository oauthUseCase.OAuthTokenRepository
	oauthTokenUseCase    oauthUseCase.OAuthTokenUseCase
	encryptionUseCase    oauthUseCase.EncryptionUseCase
	oauthTokenHandler    *oauthHTTP.OAuthTokenHandler
	encryptionHandler    *oauthHTTP.EncryptionHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                       sync.Mutex
	loggerInit               sync.Once
	dbInit                   sync.Once
	clockInit                sync.Once
	txManagerInit            sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	fieldMetricsInit         sync.Once
	kmsServiceInit           sync.Once
	aeadManagerInit          sync.Once
	keyProviderInit          sync.Once
	tokenCodecInit           sync.Once
	tokenFieldsInit          sync.Once
	secretServiceInit        sync.Once
	tokenServiceInit         sync.Once
	clientRepositoryInit     sync.Once
	authTokenRepositoryInit  sync.Once
	clientUseCaseInit        sync.Once
	tokenUseCaseInit         sync.Once
	tokenHandlerInit         sync.Once
	authMiddlewareInit       sync.Once
	oauthTokenRepositoryInit sync.Once
	oauthTokenUseCaseInit    sync.Once
	encryptionUseCaseInit    sync.Once
	oauthTokenHandlerInit    sync.Once
	encryptionHandlerInit    sync.Once
	httpServerInit           sync.Once
	metricsServerInit        sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger configured with the log level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the wall clock used for token expiry.
func (c *Container) Clock() clockwork.Clock {
	c.clockInit.Do(func() {
		c.clock = clockwork.NewRealClock()
	})
	return c.clock
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the use case metrics, a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// FieldMetrics returns the encrypted field metrics, a no-op when metrics are disabled.
func (c *Container) FieldMetrics() (metrics.FieldMetrics, error) {
	var err error
	c.fieldMetricsInit.Do(func() {
		c.fieldMetrics, err = c.initFieldMetrics()
		if err != nil {
			c.initErrors["fieldMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldMetrics"]; exists {
		return nil, storedErr
	}
	return c.fieldMetrics, nil
}

// HTTPServer returns the API server with its routes registered.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown releases every initialized resource. Call it when the application stops.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.tokenCodec != nil {
		if key, err := c.keyProvider.Resolve(ctx); err == nil {
			key.Zero()
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initFieldMetrics() (metrics.FieldMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpFieldMetrics(), nil
	}
	return metrics.NewFieldMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	tokenHandler, err := c.OAuthTokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token handler for http server: %w", err)
	}

	encryptionHandler, err := c.EncryptionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption handler for http server: %w", err)
	}

	authTokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	authMiddleware, err := c.AuthenticationMiddleware()
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication middleware for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(
		c.config,
		tokenHandler,
		encryptionHandler,
		authTokenHandler,
		authMiddleware,
		metricsProvider,
	)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}

// keyProviderConfig maps configuration to the key sources of the token key.
func keyProviderConfig(cfg *config.Config) cryptoService.KeyProviderConfig {
	return cryptoService.KeyProviderConfig{
		DedicatedKey: cfg.TokenEncryptionKey,
		Strict:       cfg.TokenEncryptionKeyStrict,
		KMSKeyURI:    cfg.KMSKeyURI,
		MasterSecret: cfg.SecretKey,
		SaltVersion:  cfg.TokenKeySaltVersion,
	}
}

// fieldConfigs returns the policies of the access and refresh token columns.
func fieldConfigs(cfg *config.Config) (access, refresh cryptoDomain.FieldConfig) {
	access = cryptoDomain.FieldConfig{
		Name:          cryptoDomain.FieldAccessToken,
		Enabled:       cfg.TokenEncryptionEnabled,
		MigrationMode: cfg.AccessTokenMigrationMode,
		MaxLength:     cfg.AccessTokenMaxLength,
	}
	refresh = cryptoDomain.FieldConfig{
		Name:          cryptoDomain.FieldRefreshToken,
		Enabled:       cfg.TokenEncryptionEnabled,
		MigrationMode: cfg.RefreshTokenMigrationMode,
		MaxLength:     cfg.RefreshTokenMaxLength,
	}
	return access, refresh
}
