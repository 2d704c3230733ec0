package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
	oauthUsecaseMocks "github.com/allisson/tokenvault/internal/oauthtoken/usecase/mocks"
)

func TestRunRotateKey(t *testing.T) {
	ctx := context.Background()
	oldCodec := codecWithKeyByte(t, 0x01)
	newCodec := codecWithKeyByte(t, 0x02)

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := oauthUsecaseMocks.NewMockEncryptionUseCase(t)
		mockUseCase.On("Rotate", ctx, oldCodec, newCodec, 100, false).
			Return(&oauthDomain.RotationReport{Processed: 3, Updated: 2, Skipped: 1, Batches: 1}, nil).
			Once()

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, oldCodec, newCodec, discardLogger(), &out, 100, false, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Key rotation\n")
		assert.Contains(t, out.String(), "updated:   2")
	})

	t.Run("json-dry-run", func(t *testing.T) {
		mockUseCase := oauthUsecaseMocks.NewMockEncryptionUseCase(t)
		mockUseCase.On("Rotate", ctx, oldCodec, newCodec, 50, true).
			Return(&oauthDomain.RotationReport{Processed: 4, Updated: 4, Batches: 1, DryRun: true}, nil).
			Once()

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, oldCodec, newCodec, discardLogger(), &out, 50, true, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"updated": 4`)
		assert.Contains(t, out.String(), `"dry_run": true`)
	})

	t.Run("failed-rows-exit-non-zero", func(t *testing.T) {
		failedID := uuid.Must(uuid.NewV7())
		mockUseCase := oauthUsecaseMocks.NewMockEncryptionUseCase(t)
		mockUseCase.On("Rotate", ctx, oldCodec, newCodec, 100, false).
			Return(&oauthDomain.RotationReport{
				Processed: 2,
				Updated:   1,
				Failed:    1,
				Batches:   1,
				FailedIDs: []uuid.UUID{failedID},
			}, nil).
			Once()

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, oldCodec, newCodec, discardLogger(), &out, 100, false, "text")

		assert.ErrorIs(t, err, ErrRowsFailed)
		assert.Contains(t, out.String(), "failed id: "+failedID.String())
	})

	t.Run("aborted-run-prints-committed-progress", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mockUseCase := oauthUsecaseMocks.NewMockEncryptionUseCase(t)
		mockUseCase.On("Rotate", ctx, oldCodec, newCodec, 100, false).
			Return(&oauthDomain.RotationReport{Processed: 100, Updated: 100, Batches: 1}, dbErr).
			Once()

		var out bytes.Buffer
		err := RunRotateKey(ctx, mockUseCase, oldCodec, newCodec, discardLogger(), &out, 100, false, "text")

		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, out.String(), "batches:   1")
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := oauthUsecaseMocks.NewMockEncryptionUseCase(t)

		err := RunRotateKey(ctx, mockUseCase, oldCodec, newCodec, discardLogger(), &bytes.Buffer{}, 100, false, "yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
}

func TestRunRotateKey_ShortKeyDigest(t *testing.T) {
	ctx := context.Background()
	oldCodec := digestCodec{TokenCodec: codecWithKeyByte(t, 0x01), digest: "abc"}
	newCodec := digestCodec{TokenCodec: codecWithKeyByte(t, 0x02), digest: ""}

	mockUseCase := oauthUsecaseMocks.NewMockEncryptionUseCase(t)
	mockUseCase.On("Rotate", ctx, oldCodec, newCodec, 100, false).
		Return(&oauthDomain.RotationReport{Batches: 1}, nil).
		Once()

	var out bytes.Buffer
	require.NotPanics(t, func() {
		err := RunRotateKey(ctx, mockUseCase, oldCodec, newCodec, discardLogger(), &out, 100, false, "text")
		require.NoError(t, err)
	})
}
