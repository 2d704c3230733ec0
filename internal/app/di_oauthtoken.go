package app

import (
	"context"
	"fmt"

	oauthHTTP "github.com/allisson/tokenvault/internal/oauthtoken/http"
	oauthRepository "github.com/allisson/tokenvault/internal/oauthtoken/repository"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
)

// OAuthTokenRepository returns the token repository for the configured database driver.
func (c *Container) OAuthTokenRepository() (oauthUseCase.OAuthTokenRepository, error) {
	var err error
	c.oauthTokenRepositoryInit.Do(func() {
		c.oauthTokenRepository, err = c.initOAuthTokenRepository()
		if err != nil {
			c.initErrors["oauthTokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["oauthTokenRepository"]; exists {
		return nil, storedErr
	}
	return c.oauthTokenRepository, nil
}

// OAuthTokenUseCase returns the token use case.
func (c *Container) OAuthTokenUseCase() (oauthUseCase.OAuthTokenUseCase, error) {
	var err error
	c.oauthTokenUseCaseInit.Do(func() {
		c.oauthTokenUseCase, err = c.initOAuthTokenUseCase()
		if err != nil {
			c.initErrors["oauthTokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["oauthTokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.oauthTokenUseCase, nil
}

// EncryptionUseCase returns the use case that rotates and backfills encrypted columns.
func (c *Container) EncryptionUseCase() (oauthUseCase.EncryptionUseCase, error) {
	var err error
	c.encryptionUseCaseInit.Do(func() {
		c.encryptionUseCase, err = c.initEncryptionUseCase()
		if err != nil {
			c.initErrors["encryptionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.encryptionUseCase, nil
}

// OAuthTokenHandler returns the HTTP handler for token operations.
func (c *Container) OAuthTokenHandler() (*oauthHTTP.OAuthTokenHandler, error) {
	var err error
	c.oauthTokenHandlerInit.Do(func() {
		var useCase oauthUseCase.OAuthTokenUseCase
		useCase, err = c.OAuthTokenUseCase()
		if err != nil {
			c.initErrors["oauthTokenHandler"] = fmt.Errorf("failed to get oauth token use case for handler: %w", err)
			return
		}
		c.oauthTokenHandler = oauthHTTP.NewOAuthTokenHandler(useCase, c.Clock(), c.Logger())
	})
	if storedErr, exists := c.initErrors["oauthTokenHandler"]; exists {
		return nil, storedErr
	}
	return c.oauthTokenHandler, nil
}

// EncryptionHandler returns the HTTP handler for the encryption status.
func (c *Container) EncryptionHandler() (*oauthHTTP.EncryptionHandler, error) {
	var err error
	c.encryptionHandlerInit.Do(func() {
		var useCase oauthUseCase.EncryptionUseCase
		useCase, err = c.EncryptionUseCase()
		if err != nil {
			c.initErrors["encryptionHandler"] = fmt.Errorf("failed to get encryption use case for handler: %w", err)
			return
		}
		c.encryptionHandler = oauthHTTP.NewEncryptionHandler(
			useCase,
			c.config.TokenEncryptionEnabled,
			c.config.RotationBatchSize,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["encryptionHandler"]; exists {
		return nil, storedErr
	}
	return c.encryptionHandler, nil
}

func (c *Container) initOAuthTokenRepository() (oauthUseCase.OAuthTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for oauth token repository: %w", err)
	}

	fields, err := c.TokenFields(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get token fields for oauth token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return oauthRepository.NewPostgreSQLOAuthTokenRepository(db, fields), nil
	case "mysql":
		return oauthRepository.NewMySQLOAuthTokenRepository(db, fields), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initOAuthTokenUseCase() (oauthUseCase.OAuthTokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for oauth token use case: %w", err)
	}

	tokenRepository, err := c.OAuthTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token repository for oauth token use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewOAuthTokenUseCase(txManager, tokenRepository, c.Clock())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for oauth token use case: %w", err)
		}
		return oauthUseCase.NewOAuthTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initEncryptionUseCase() (oauthUseCase.EncryptionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for encryption use case: %w", err)
	}

	tokenRepository, err := c.OAuthTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token repository for encryption use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewEncryptionUseCase(
		txManager,
		tokenRepository,
		c.config.TokenEncryptionEnabled,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for encryption use case: %w", err)
		}
		return oauthUseCase.NewEncryptionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
