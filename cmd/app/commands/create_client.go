package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/tokenvault/internal/auth/domain"
	authUseCase "github.com/allisson/tokenvault/internal/auth/usecase"
)

type createClientResult struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

// RunCreateClient creates an API client and prints its ID and secret. The
// name is read from io.Reader when empty. The secret is printed only once.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	name string,
	isActive bool,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if strings.TrimSpace(name) == "" {
		var err error
		name, err = promptForName(io)
		if err != nil {
			return err
		}
	}

	logger.Info("creating new client", slog.String("name", name))

	output, err := clientUseCase.Create(ctx, &authDomain.CreateClientInput{
		Name:     name,
		IsActive: isActive,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.ID.String()),
		slog.String("name", name),
		slog.Bool("is_active", isActive),
	)

	if format == "json" {
		return writeJSON(io.Writer, createClientResult{
			ClientID: output.ID.String(),
			Secret:   output.PlainSecret,
		})
	}

	_, _ = fmt.Fprintln(io.Writer, "Client created successfully!")
	_, _ = fmt.Fprintf(io.Writer, "Client ID: %s\n", output.ID.String())
	_, _ = fmt.Fprintf(io.Writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(io.Writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
	return nil
}

func promptForName(io IOTuple) (string, error) {
	_, _ = fmt.Fprint(io.Writer, "Enter client name: ")

	name, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && name == "" {
		return "", fmt.Errorf("failed to read client name: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("client name cannot be empty")
	}
	return name, nil
}
