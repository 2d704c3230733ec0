package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
)

// ErrRowsFailed is returned by the batch commands when at least one row could
// not be processed. It makes the process exit non-zero.
var ErrRowsFailed = errors.New("some rows could not be processed")

// RunRotateKey re-encrypts every stored token from the configured key to a new
// one. After a successful run TOKEN_ENCRYPTION_KEY must be switched to the new
// key; a partial run can be resumed by running the command again.
func RunRotateKey(
	ctx context.Context,
	encryptionUseCase oauthUseCase.EncryptionUseCase,
	oldCodec, newCodec cryptoService.TokenCodec,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("rotating token encryption key",
		slog.String("old_key_digest", cryptoDomain.ShortDigest(oldCodec.KeyDigest())),
		slog.String("new_key_digest", cryptoDomain.ShortDigest(newCodec.KeyDigest())),
		slog.Int("batch_size", batchSize),
		slog.Bool("dry_run", dryRun),
	)

	report, err := encryptionUseCase.Rotate(ctx, oldCodec, newCodec, batchSize, dryRun)
	if err != nil {
		if report != nil {
			_ = outputReport(writer, "Key rotation", report, format)
		}
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	if err := outputReport(writer, "Key rotation", report, format); err != nil {
		return err
	}

	if !report.Success() {
		return fmt.Errorf("%w: %d row(s) failed to rotate", ErrRowsFailed, report.Failed)
	}
	return nil
}

// outputReport writes a rotation or migration report in the requested format.
func outputReport(writer io.Writer, title string, report *oauthDomain.RotationReport, format string) error {
	if format == "json" {
		return writeJSON(writer, report)
	}

	mode := ""
	if report.DryRun {
		mode = " (dry-run, nothing was written)"
	}

	_, _ = fmt.Fprintf(writer, "%s%s\n", title, mode)
	_, _ = fmt.Fprintf(writer, "  processed: %d\n", report.Processed)
	_, _ = fmt.Fprintf(writer, "  updated:   %d\n", report.Updated)
	_, _ = fmt.Fprintf(writer, "  skipped:   %d\n", report.Skipped)
	_, _ = fmt.Fprintf(writer, "  failed:    %d\n", report.Failed)
	_, _ = fmt.Fprintf(writer, "  batches:   %d\n", report.Batches)
	for _, id := range report.FailedIDs {
		_, _ = fmt.Fprintf(writer, "  failed id: %s\n", id)
	}
	return nil
}
