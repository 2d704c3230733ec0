package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FieldMetrics records the outcome of encrypted field reads and writes.
//
// A read that can not be decrypted is degraded to an empty value by the field,
// so this counter is the only signal that data is unreadable. It is recorded even
// when the caller discards the error.
type FieldMetrics interface {
	// RecordDecryptFailure counts a stored value that failed to decode.
	// Reason is "format" or "authentication".
	RecordDecryptFailure(ctx context.Context, field, reason string)

	// RecordSizingWarning counts an encoded value longer than the field max length.
	RecordSizingWarning(ctx context.Context, field string)
}

type fieldMetrics struct {
	decryptFailures metric.Int64Counter
	sizingWarnings  metric.Int64Counter
}

// NewFieldMetrics creates a FieldMetrics implementation using the provided meter provider.
func NewFieldMetrics(meterProvider metric.MeterProvider, namespace string) (FieldMetrics, error) {
	meter := meterProvider.Meter(namespace)

	decryptFailures, err := meter.Int64Counter(
		fmt.Sprintf("%s_field_decrypt_failures_total", namespace),
		metric.WithDescription("Total number of stored field values that could not be decrypted"),
		metric.WithUnit("{value}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decrypt failure counter: %w", err)
	}

	sizingWarnings, err := meter.Int64Counter(
		fmt.Sprintf("%s_field_sizing_warnings_total", namespace),
		metric.WithDescription("Total number of encoded field values exceeding the field max length"),
		metric.WithUnit("{value}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sizing warning counter: %w", err)
	}

	return &fieldMetrics{
		decryptFailures: decryptFailures,
		sizingWarnings:  sizingWarnings,
	}, nil
}

func (f *fieldMetrics) RecordDecryptFailure(ctx context.Context, field, reason string) {
	f.decryptFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("field", field),
			attribute.String("reason", reason),
		),
	)
}

func (f *fieldMetrics) RecordSizingWarning(ctx context.Context, field string) {
	f.sizingWarnings.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

// NoOpFieldMetrics is used when metrics are disabled.
type NoOpFieldMetrics struct{}

// NewNoOpFieldMetrics creates a no-op FieldMetrics implementation.
func NewNoOpFieldMetrics() FieldMetrics {
	return &NoOpFieldMetrics{}
}

// RecordDecryptFailure does nothing when metrics are disabled.
func (n *NoOpFieldMetrics) RecordDecryptFailure(ctx context.Context, field, reason string) {}

// RecordSizingWarning does nothing when metrics are disabled.
func (n *NoOpFieldMetrics) RecordSizingWarning(ctx context.Context, field string) {}
