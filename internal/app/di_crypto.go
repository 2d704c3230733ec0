package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
)

// KMSService returns the KMS service used to unwrap the dedicated key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyProvider returns the provider of the configured token key.
func (c *Container) KeyProvider() cryptoService.KeyProvider {
	c.keyProviderInit.Do(func() {
		c.keyProvider = cryptoService.NewKeyProvider(keyProviderConfig(c.config), c.KMSService(), c.Logger())
	})
	return c.keyProvider
}

// TokenCodec returns the codec bound to the configured key and algorithm.
// The key is resolved on first access, so a missing key fails here and not at startup.
func (c *Container) TokenCodec(ctx context.Context) (cryptoService.TokenCodec, error) {
	c.tokenCodecInit.Do(func() {
		alg, err := cryptoDomain.ParseAlgorithm(c.config.TokenEncryptionAlgorithm)
		if err != nil {
			c.initErrors["tokenCodec"] = fmt.Errorf("failed to create token codec: %w", err)
			return
		}
		c.tokenCodec, err = cryptoService.NewTokenCodec(
			ctx,
			c.KeyProvider(),
			c.AEADManager(),
			alg,
		)
		if err != nil {
			c.initErrors["tokenCodec"] = fmt.Errorf("failed to create token codec: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// TokenCodecForKey builds a codec for a key other than the configured one, as
// the target of a key rotation. dedicatedKey is base64, wrapped by kmsKeyURI when
// that is set. The configured algorithm and strictness apply.
func (c *Container) TokenCodecForKey(
	ctx context.Context,
	dedicatedKey, kmsKeyURI string,
) (cryptoService.TokenCodec, error) {
	provider := cryptoService.NewKeyProvider(cryptoService.KeyProviderConfig{
		DedicatedKey: dedicatedKey,
		Strict:       c.config.TokenEncryptionKeyStrict,
		KMSKeyURI:    kmsKeyURI,
	}, c.KMSService(), c.Logger())

	alg, err := cryptoDomain.ParseAlgorithm(c.config.TokenEncryptionAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec for new key: %w", err)
	}
	codec, err := cryptoService.NewTokenCodec(ctx, provider, c.AEADManager(), alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec for new key: %w", err)
	}
	return codec, nil
}

// TokenFields returns the transparent wrappers of the access and refresh token columns.
// With encryption disabled no key is needed and values are stored as given.
func (c *Container) TokenFields(ctx context.Context) (*cryptoService.TokenFields, error) {
	var err error
	c.tokenFieldsInit.Do(func() {
		c.tokenFields, err = c.initTokenFields(ctx)
		if err != nil {
			c.initErrors["tokenFields"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenFields"]; exists {
		return nil, storedErr
	}
	return c.tokenFields, nil
}

func (c *Container) initTokenFields(ctx context.Context) (*cryptoService.TokenFields, error) {
	var codec cryptoService.TokenCodec
	if c.config.TokenEncryptionEnabled {
		var err error
		codec, err = c.TokenCodec(ctx)
		if err != nil {
			return nil, err
		}
	}

	fieldMetrics, err := c.FieldMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get field metrics for token fields: %w", err)
	}

	accessConfig, refreshConfig := fieldConfigs(c.config)
	logger := c.Logger()

	accessToken, err := cryptoService.NewTransparentField(accessConfig, codec, fieldMetrics, logger)
	if err != nil {
		return nil, err
	}
	refreshToken, err := cryptoService.NewTransparentField(refreshConfig, codec, fieldMetrics, logger)
	if err != nil {
		return nil, err
	}

	return &cryptoService.TokenFields{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
