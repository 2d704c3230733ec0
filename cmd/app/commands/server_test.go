package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	startErr  error
	started   chan struct{}
	stopped   chan struct{}
	shutdowns int
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{
		startErr: startErr,
		started:  make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (f *fakeServer) Start(ctx context.Context) error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return nil
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdowns++
	if f.startErr == nil {
		close(f.stopped)
	}
	return nil
}

func TestServe(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("shutdown-on-cancel", func(t *testing.T) {
		api := newFakeServer(nil)
		metrics := newFakeServer(nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, map[string]serverRunner{"api": api, "metrics": metrics}, time.Second, logger)
		}()

		<-api.started
		<-metrics.started
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not return after cancel")
		}
		assert.Equal(t, 1, api.shutdowns)
		assert.Equal(t, 1, metrics.shutdowns)
	})

	t.Run("one-server-fails", func(t *testing.T) {
		api := newFakeServer(nil)
		metrics := newFakeServer(errors.New("address already in use"))

		err := serve(context.Background(), map[string]serverRunner{"api": api, "metrics": metrics}, time.Second, logger)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics server error")
		assert.Equal(t, 1, api.shutdowns)
	})
}
