package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/tokenvault/internal/app"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// serverRunner is the part of an HTTP server RunServer drives.
type serverRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the API server and, when metrics are enabled, the metrics
// server. It blocks until SIGINT/SIGTERM or until one server fails, then shuts
// both down within the DBConnMaxLifetime timeout.
func RunServer(ctx context.Context, container *app.Container, version string) error {
	cfg := container.Config()
	gin.SetMode(cfg.GetGinMode())

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	// Resolving the codec here makes a missing or invalid key fail at startup.
	if cfg.TokenEncryptionEnabled {
		codec, err := container.TokenCodec(ctx)
		if err != nil {
			return err
		}
		logger.Info("token encryption enabled",
			slog.String("algorithm", cfg.TokenEncryptionAlgorithm),
			slog.String("key_digest", cryptoDomain.ShortDigest(codec.KeyDigest())),
		)
	} else {
		logger.Warn("token encryption disabled, tokens are stored as plaintext")
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	servers := map[string]serverRunner{"api": server}
	if metricsServer != nil {
		servers["metrics"] = metricsServer
	}

	return serve(ctx, servers, cfg.DBConnMaxLifetime, logger)
}

// serve runs every server until ctx is done or one of them fails, then shuts
// all of them down.
func serve(ctx context.Context, servers map[string]serverRunner, shutdownTimeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, srv := range servers {
		g.Go(func() error {
			if err := srv.Start(gctx); err != nil {
				return fmt.Errorf("%s server error: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for name, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("%s server shutdown: %w", name, err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
