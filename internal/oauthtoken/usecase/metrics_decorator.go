package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/metrics"
	oauthDomain "github.com/allisson/tokenvault/internal/oauthtoken/domain"
)

var errRowsFailed = errors.New("rows failed")

const (
	oauthTokensDomain = "oauth_tokens"
	encryptionDomain  = "encryption"
)

func record(
	ctx context.Context,
	m metrics.BusinessMetrics,
	domain, operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, domain, operation, status)
	m.RecordDuration(ctx, domain, operation, time.Since(start), status)
}

// oauthTokenUseCaseWithMetrics decorates OAuthTokenUseCase with metrics instrumentation.
type oauthTokenUseCaseWithMetrics struct {
	next    OAuthTokenUseCase
	metrics metrics.BusinessMetrics
}

// NewOAuthTokenUseCaseWithMetrics wraps an OAuthTokenUseCase with metrics recording.
func NewOAuthTokenUseCaseWithMetrics(useCase OAuthTokenUseCase, m metrics.BusinessMetrics) OAuthTokenUseCase {
	return &oauthTokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Save records metrics for token save operations.
func (o *oauthTokenUseCaseWithMetrics) Save(
	ctx context.Context,
	input *oauthDomain.SaveOAuthTokenInput,
) (*oauthDomain.OAuthToken, error) {
	start := time.Now()
	token, err := o.next.Save(ctx, input)
	record(ctx, o.metrics, oauthTokensDomain, "token_save", start, err)
	return token, err
}

// Get records metrics for token retrieval by ID.
func (o *oauthTokenUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*oauthDomain.OAuthToken, error) {
	start := time.Now()
	token, err := o.next.Get(ctx, id)
	record(ctx, o.metrics, oauthTokensDomain, "token_get", start, err)
	return token, err
}

// GetBySlug records metrics for token retrieval by slug.
func (o *oauthTokenUseCaseWithMetrics) GetBySlug(
	ctx context.Context,
	ownerID, slug string,
) (*oauthDomain.OAuthToken, error) {
	start := time.Now()
	token, err := o.next.GetBySlug(ctx, ownerID, slug)
	record(ctx, o.metrics, oauthTokensDomain, "token_get", start, err)
	return token, err
}

// List records metrics for token listing.
func (o *oauthTokenUseCaseWithMetrics) List(
	ctx context.Context,
	ownerID string,
	offset, limit int,
) ([]*oauthDomain.OAuthToken, error) {
	start := time.Now()
	tokens, err := o.next.List(ctx, ownerID, offset, limit)
	record(ctx, o.metrics, oauthTokensDomain, "token_list", start, err)
	return tokens, err
}

// Delete records metrics for token deletion.
func (o *oauthTokenUseCaseWithMetrics) Delete(ctx context.Context, ownerID, slug string) error {
	start := time.Now()
	err := o.next.Delete(ctx, ownerID, slug)
	record(ctx, o.metrics, oauthTokensDomain, "token_delete", start, err)
	return err
}

// GetValidAccessToken records metrics for access token checkout.
func (o *oauthTokenUseCaseWithMetrics) GetValidAccessToken(ctx context.Context, ownerID, slug string) (string, error) {
	start := time.Now()
	accessToken, err := o.next.GetValidAccessToken(ctx, ownerID, slug)
	record(ctx, o.metrics, oauthTokensDomain, "token_checkout", start, err)
	return accessToken, err
}

// encryptionUseCaseWithMetrics decorates EncryptionUseCase with metrics instrumentation.
// A run that completes with failed rows is recorded as an error.
type encryptionUseCaseWithMetrics struct {
	next    EncryptionUseCase
	metrics metrics.BusinessMetrics
}

// NewEncryptionUseCaseWithMetrics wraps an EncryptionUseCase with metrics recording.
func NewEncryptionUseCaseWithMetrics(useCase EncryptionUseCase, m metrics.BusinessMetrics) EncryptionUseCase {
	return &encryptionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Rotate records metrics for key rotation runs.
func (e *encryptionUseCaseWithMetrics) Rotate(
	ctx context.Context,
	oldCodec, newCodec cryptoService.TokenCodec,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	start := time.Now()
	report, err := e.next.Rotate(ctx, oldCodec, newCodec, batchSize, dryRun)
	record(ctx, e.metrics, encryptionDomain, "key_rotate", start, reportErr(report, err))
	recordRows(ctx, e.metrics, "key_rotate", report)
	return report, err
}

// EncryptExisting records metrics for one-time encryption runs.
func (e *encryptionUseCaseWithMetrics) EncryptExisting(
	ctx context.Context,
	codec cryptoService.TokenCodec,
	batchSize int,
	dryRun bool,
) (*oauthDomain.RotationReport, error) {
	start := time.Now()
	report, err := e.next.EncryptExisting(ctx, codec, batchSize, dryRun)
	record(ctx, e.metrics, encryptionDomain, "encrypt_existing", start, reportErr(report, err))
	recordRows(ctx, e.metrics, "encrypt_existing", report)
	return report, err
}

// Status records metrics for encryption status queries.
func (e *encryptionUseCaseWithMetrics) Status(
	ctx context.Context,
	batchSize int,
) (*oauthDomain.EncryptionStatus, error) {
	start := time.Now()
	status, err := e.next.Status(ctx, batchSize)
	record(ctx, e.metrics, encryptionDomain, "encryption_status", start, err)
	return status, err
}

// recordRows counts the rows of a run, including the committed part of an
// aborted one.
func recordRows(ctx context.Context, m metrics.BusinessMetrics, operation string, report *oauthDomain.RotationReport) {
	if report == nil {
		return
	}
	m.RecordRows(ctx, operation, "updated", report.Updated, report.DryRun)
	m.RecordRows(ctx, operation, "skipped", report.Skipped, report.DryRun)
	m.RecordRows(ctx, operation, "failed", report.Failed, report.DryRun)
}

func reportErr(report *oauthDomain.RotationReport, err error) error {
	if err == nil && report != nil && !report.Success() {
		return errRowsFailed
	}
	return err
}
