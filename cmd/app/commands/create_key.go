package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
)

// createKeyResult is the JSON output of create-key.
type createKeyResult struct {
	TokenEncryptionKey string `json:"token_encryption_key"`
	KMSKeyURI          string `json:"kms_key_uri,omitempty"`
	KeyDigest          string `json:"key_digest"`
}

// RunCreateKey generates a random 32-byte token encryption key and prints it as
// configuration. With kmsKeyURI set the key is wrapped by the KMS keeper first
// and TOKEN_ENCRYPTION_KEY holds the wrapped bytes.
func RunCreateKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	raw := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	defer cryptoDomain.Zero(raw)

	key, err := cryptoDomain.NewEncryptionKey(raw, cryptoDomain.KeySourceDedicated)
	if err != nil {
		return err
	}
	defer key.Zero()

	stored := raw
	if kmsKeyURI != "" {
		stored, err = cryptoService.WrapKey(ctx, kmsService, kmsKeyURI, raw)
		if err != nil {
			return fmt.Errorf("failed to wrap key with KMS: %w", err)
		}
	}

	result := createKeyResult{
		TokenEncryptionKey: base64.StdEncoding.EncodeToString(stored),
		KMSKeyURI:          kmsKeyURI,
		KeyDigest:          key.ShortDigest(),
	}

	logger.Info("token encryption key generated",
		slog.String("key_digest", result.KeyDigest),
		slog.Bool("kms", kmsKeyURI != ""),
	)

	if format == "json" {
		return writeJSON(writer, result)
	}

	_, _ = fmt.Fprintln(writer, "# Token encryption key")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintf(writer, "# Key digest: %s\n", result.KeyDigest)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "TOKEN_ENCRYPTION_KEY=\"%s\"\n", result.TokenEncryptionKey)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# To move existing tokens to this key, run:")
	_, _ = fmt.Fprintln(writer, "#   app rotate-key --new-key \"$NEW_TOKEN_ENCRYPTION_KEY\"")
	return nil
}
