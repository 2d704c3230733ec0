package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/tokenvault/internal/auth/http"
	authRepository "github.com/allisson/tokenvault/internal/auth/repository"
	authService "github.com/allisson/tokenvault/internal/auth/service"
	authUseCase "github.com/allisson/tokenvault/internal/auth/usecase"
)

// SecretService returns the Argon2id client secret service.
func (c *Container) SecretService() (authService.SecretService, error) {
	var err error
	c.secretServiceInit.Do(func() {
		c.secretService, err = authService.NewSecretService()
		if err != nil {
			c.initErrors["secretService"] = fmt.Errorf("failed to create secret service: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["secretService"]; exists {
		return nil, storedErr
	}
	return c.secretService, nil
}

// TokenService returns the bearer token service.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// ClientRepository returns the client repository for the configured database driver.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	var err error
	c.clientRepositoryInit.Do(func() {
		c.clientRepository, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepository"] = err
		}
	})
	if storedErr, exists := c.initErrors["clientRepository"]; exists {
		return nil, storedErr
	}
	return c.clientRepository, nil
}

// AuthTokenRepository returns the bearer token repository for the configured database driver.
func (c *Container) AuthTokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.authTokenRepositoryInit.Do(func() {
		c.authTokenRepository, err = c.initAuthTokenRepository()
		if err != nil {
			c.initErrors["authTokenRepository"] = err
		}
	})
	if storedErr, exists := c.initErrors["authTokenRepository"]; exists {
		return nil, storedErr
	}
	return c.authTokenRepository, nil
}

// ClientUseCase returns the client management use case.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	var err error
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.initErrors["clientUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.clientUseCase, nil
}

// TokenUseCase returns the bearer token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TokenHandler returns the HTTP handler issuing bearer tokens.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		var useCase authUseCase.TokenUseCase
		useCase, err = c.TokenUseCase()
		if err != nil {
			c.initErrors["tokenHandler"] = fmt.Errorf("failed to get token use case for handler: %w", err)
			return
		}
		c.tokenHandler = authHTTP.NewTokenHandler(useCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// AuthenticationMiddleware returns the bearer token middleware guarding the API.
func (c *Container) AuthenticationMiddleware() (gin.HandlerFunc, error) {
	var err error
	c.authMiddlewareInit.Do(func() {
		var useCase authUseCase.TokenUseCase
		useCase, err = c.TokenUseCase()
		if err != nil {
			c.initErrors["authMiddleware"] = fmt.Errorf("failed to get token use case for middleware: %w", err)
			return
		}
		c.authMiddleware = authHTTP.AuthenticationMiddleware(useCase, c.TokenService(), c.Logger())
	})
	if storedErr, exists := c.initErrors["authMiddleware"]; exists {
		return nil, storedErr
	}
	return c.authMiddleware, nil
}

func (c *Container) initClientRepository() (authUseCase.ClientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLClientRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuthTokenRepository() (authUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for auth token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLTokenRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initClientUseCase() (authUseCase.ClientUseCase, error) {
	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	secretService, err := c.SecretService()
	if err != nil {
		return nil, err
	}

	return authUseCase.NewClientUseCase(clientRepository, secretService, c.Clock()), nil
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for token use case: %w", err)
	}

	tokenRepository, err := c.AuthTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth token repository for token use case: %w", err)
	}

	secretService, err := c.SecretService()
	if err != nil {
		return nil, err
	}

	return authUseCase.NewTokenUseCase(
		clientRepository,
		tokenRepository,
		secretService,
		c.TokenService(),
		c.config.AuthTokenExpiration,
		c.Clock(),
	), nil
}
