package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

// valueTransform maps one stored value to the value that should be stored instead.
// changed is false when the stored value is already in its final form.
type valueTransform func(stored string) (next string, changed bool, err error)

// encryptionUseCase implements the EncryptionUseCase interface.
type encryptionUseCase struct {
	txManager database.TxManager
	tokenRepo OAuthTokenRepository
	enabled   bool
	logger    *slog.Logger
}

// Rotate re-encrypts every stored secret under newCodec.
//
// Each value is handled as follows: empty values are skipped; legacy plaintext is
// encrypted under the new key; values that open under the new key were already
// rotated and are skipped; values that fail authentication under the new key
// and open under the old key are re-encrypted. Malformed envelopes are not tried
// against the old key. Anything else is a failure and the whole row is left
// untouched.
func (e *encryptionUseCase) Rotate(
	ctx context.Context,
	oldCodec, newCodec cryptoService.TokenCodec,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	if batchSize <= 0 {
		return nil, oauthDomain.ErrInvalidBatchSize
	}
	if oldCodec.KeyDigest() == newCodec.KeyDigest() {
		return nil, cryptoDomain.ErrSameKey
	}

	e.logger.InfoContext(ctx, "starting key rotation",
		slog.String("old_key_digest", cryptoDomain.ShortDigest(oldCodec.KeyDigest())),
		slog.String("new_key_digest", cryptoDomain.ShortDigest(newCodec.KeyDigest())),
		slog.Int("batch_size", batchSize),
		slog.Bool("dry_run", dryRun),
	)

	transform := func(stored string) (string, bool, error) {
		if stored == "" {
			return stored, false, nil
		}
		if !cryptoDomain.LooksLikeCiphertext(stored) {
			encoded, err := newCodec.Encode(stored)
			return encoded, err == nil, err
		}
		_, err := newCodec.Decode(stored)
		if err == nil {
			return stored, false, nil
		}
		if !errors.Is(err, cryptoDomain.ErrAuthentication) {
			return "", false, err
		}
		plaintext, err := oldCodec.Decode(stored)
		if err != nil {
			return "", false, err
		}
		encoded, err := newCodec.Encode(plaintext)
		return encoded, err == nil, err
	}

	report, err := e.run(ctx, transform, batchSize, dryRun)
	if err != nil {
		e.logReport(ctx, "key rotation aborted", report)
		return report, err
	}

	e.logReport(ctx, "key rotation finished", report)
	return report, nil
}

// EncryptExisting encrypts legacy plaintext secrets with codec. Values that already
// open under codec are skipped; ciphertext-looking values that do not are failures.
func (e *encryptionUseCase) EncryptExisting(
	ctx context.Context,
	codec cryptoService.TokenCodec,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	if !e.enabled {
		return nil, cryptoDomain.ErrEncryptionDisabled
	}
	if batchSize <= 0 {
		return nil, oauthDomain.ErrInvalidBatchSize
	}

	e.logger.InfoContext(ctx, "starting token encryption",
		slog.String("key_digest", cryptoDomain.ShortDigest(codec.KeyDigest())),
		slog.Int("batch_size", batchSize),
		slog.Bool("dry_run", dryRun),
	)

	transform := func(stored string) (string, bool, error) {
		switch cryptoDomain.Classify(stored) {
		case cryptoDomain.StoredValueEmpty:
			return stored, false, nil
		case cryptoDomain.StoredValuePlaintext:
			encoded, err := codec.Encode(stored)
			return encoded, err == nil, err
		}
		if _, err := codec.Decode(stored); err != nil {
			return "", false, err
		}
		return stored, false, nil
	}

	report, err := e.run(ctx, transform, batchSize, dryRun)
	if err != nil {
		e.logReport(ctx, "token encryption aborted", report)
		return report, err
	}

	e.logReport(ctx, "token encryption finished", report)
	return report, nil
}

// run walks the table in primary key order, one transaction per batch. A database
// error or cancellation aborts the run and rolls back the current batch. The
// report returned with the error counts the batches committed before it.
func (e *encryptionUseCase) run(
	ctx context.Context,
	transform valueTransform,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	report := &oauthDomain.RotationReport{DryRun: dryRun}
	afterID := uuid.Nil

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var (
			batch   oauthDomain.RotationReport
			fetched int
			lastID  uuid.UUID
		)

		err := e.txManager.WithTx(ctx, func(txCtx context.Context) error {
			batch = oauthDomain.RotationReport{}

			fetch := e.tokenRepo.LockSecretsBatch
			if dryRun {
				fetch = e.tokenRepo.ListSecretsBatch
			}

			rows, err := fetch(txCtx, afterID, batchSize)
			if err != nil {
				return err
			}
			fetched = len(rows)

			for _, row := range rows {
				lastID = row.ID
				batch.Processed++

				next, changed, err := e.transformRow(txCtx, row, transform)
				if err != nil {
					batch.Failed++
					batch.FailedIDs = append(batch.FailedIDs, row.ID)
					continue
				}
				if !changed {
					batch.Skipped++
					continue
				}
				if !dryRun {
					if err := e.tokenRepo.UpdateSecrets(txCtx, next); err != nil {
						return err
					}
				}
				batch.Updated++
			}
			return nil
		})
		if err != nil {
			return report, err
		}

		if fetched == 0 {
			return report, nil
		}

		report.Batches++
		report.Processed += batch.Processed
		report.Updated += batch.Updated
		report.Skipped += batch.Skipped
		report.Failed += batch.Failed
		report.FailedIDs = append(report.FailedIDs, batch.FailedIDs...)
		afterID = lastID

		e.logger.DebugContext(ctx, "batch processed",
			slog.Int("batch", report.Batches),
			slog.Int("rows", fetched),
			slog.String("last_id", lastID.String()),
		)

		if fetched < batchSize {
			return report, nil
		}
	}
}

// transformRow applies transform to both secrets of row. The returned row is
// only meaningful when changed is true.
func (e *encryptionUseCase) transformRow(
	ctx context.Context,
	row *oauthDomain.StoredSecrets,
	transform valueTransform,
) (*oauthDomain.StoredSecrets, bool, error) {
	next := &oauthDomain.StoredSecrets{ID: row.ID}

	access, accessChanged, err := transform(row.AccessToken)
	if err != nil {
		e.logFailure(ctx, row.ID, cryptoDomain.FieldAccessToken, err)
		return nil, false, err
	}
	refresh, refreshChanged, err := transform(row.RefreshToken)
	if err != nil {
		e.logFailure(ctx, row.ID, cryptoDomain.FieldRefreshToken, err)
		return nil, false, err
	}

	next.AccessToken = access
	next.RefreshToken = refresh
	return next, accessChanged || refreshChanged, nil
}

func (e *encryptionUseCase) logFailure(ctx context.Context, id uuid.UUID, field string, err error) {
	reason := cryptoDomain.ReasonAuthentication
	if errors.Is(err, cryptoDomain.ErrFormat) {
		reason = cryptoDomain.ReasonFormat
	}
	e.logger.ErrorContext(ctx, "failed to process stored value",
		slog.String("id", id.String()),
		slog.String("field", field),
		slog.String("reason", reason),
	)
}

func (e *encryptionUseCase) logReport(ctx context.Context, msg string, report *oauthDomain.RotationReport) {
	level := slog.LevelInfo
	if !report.Success() {
		level = slog.LevelWarn
	}
	e.logger.Log(ctx, level, msg,
		slog.Int("processed", report.Processed),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int("batches", report.Batches),
		slog.Bool("dry_run", report.DryRun),
	)
}

// Status counts stored secrets by state, reading batchSize rows at a time.
func (e *encryptionUseCase) Status(ctx context.Context, batchSize int) (*oauthDomain.EncryptionStatus, error) {
	if batchSize <= 0 {
		return nil, oauthDomain.ErrInvalidBatchSize
	}

	status := &oauthDomain.EncryptionStatus{}
	afterID := uuid.Nil

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := e.tokenRepo.ListSecretsBatch(ctx, afterID, batchSize)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			status.Total++
			status.AccessToken.Add(cryptoDomain.Classify(row.AccessToken))
			status.RefreshToken.Add(cryptoDomain.Classify(row.RefreshToken))
			afterID = row.ID
		}

		if len(rows) < batchSize {
			return status, nil
		}
	}
}

// NewEncryptionUseCase creates a new EncryptionUseCase. enabled mirrors
// TOKEN_ENCRYPTION_ENABLED.
func NewEncryptionUseCase(
	txManager database.TxManager,
	tokenRepo OAuthTokenRepository,
	enabled bool,
	logger *slog.Logger,
) EncryptionUseCase {
	return &encryptionUseCase{
		txManager: txManager,
		tokenRepo: tokenRepo,
		enabled:   enabled,
		logger:    logger,
	}
}
