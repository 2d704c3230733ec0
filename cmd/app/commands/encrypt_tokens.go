package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
)

// RunEncryptTokens encrypts the legacy plaintext tokens left from before
// encryption was enabled. Values that are already ciphertext are skipped, so the
// command is safe to run more than once.
func RunEncryptTokens(
	ctx context.Context,
	encryptionUseCase oauthUseCase.EncryptionUseCase,
	codec cryptoService.TokenCodec,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("encrypting existing tokens",
		slog.String("key_digest", cryptoDomain.ShortDigest(codec.KeyDigest())),
		slog.Int("batch_size", batchSize),
		slog.Bool("dry_run", dryRun),
	)

	report, err := encryptionUseCase.EncryptExisting(ctx, codec, batchSize, dryRun)
	if err != nil {
		if report != nil {
			_ = outputReport(writer, "Token encryption", report, format)
		}
		return fmt.Errorf("failed to encrypt tokens: %w", err)
	}

	if err := outputReport(writer, "Token encryption", report, format); err != nil {
		return err
	}

	if !report.Success() {
		return fmt.Errorf("%w: %d row(s) failed to encrypt", ErrRowsFailed, report.Failed)
	}
	return nil
}
