package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
	oauthUseCase "github.com/allisson/tokenvault/internal/oauthtoken/usecase"
)

type encryptionStatusResult struct {
	Enabled  bool `json:"enabled"`
	Complete bool `json:"complete"`
	*oauthDomain.EncryptionStatus
}

// RunEncryptionStatus prints how many stored tokens are empty, plaintext or
// ciphertext, per column.
func RunEncryptionStatus(
	ctx context.Context,
	encryptionUseCase oauthUseCase.EncryptionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	enabled bool,
	batchSize int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	status, err := encryptionUseCase.Status(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to count tokens: %w", err)
	}

	logger.Debug("encryption status computed", slog.Int("total", status.Total))

	if format == "json" {
		return writeJSON(writer, encryptionStatusResult{
			Enabled:          enabled,
			Complete:         status.Complete(),
			EncryptionStatus: status,
		})
	}

	_, _ = fmt.Fprintf(writer, "Token encryption enabled: %t\n", enabled)
	_, _ = fmt.Fprintf(writer, "Total tokens: %d\n", status.Total)
	_, _ = fmt.Fprintf(writer, "%-14s %8s %10s %11s\n", "field", "empty", "plaintext", "ciphertext")
	for _, row := range []struct {
		name   string
		status oauthDomain.FieldStatus
	}{
		{"access_token", status.AccessToken},
		{"refresh_token", status.RefreshToken},
	} {
		_, _ = fmt.Fprintf(writer, "%-14s %8d %10d %11d\n",
			row.name, row.status.Empty, row.status.Plaintext, row.status.Ciphertext)
	}
	if status.Complete() {
		_, _ = fmt.Fprintln(writer, "Migration complete: no plaintext tokens left")
	} else {
		_, _ = fmt.Fprintln(writer, "Migration incomplete: run encrypt-tokens")
	}
	return nil
}
