package resolver

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Metrics records resolution outcomes.
type Metrics struct {
	resolveTotal metric.Int64Counter
	relatedTotal metric.Int64Counter
	inputLength  metric.Int64Histogram
}

func newMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	m := &Metrics{}
	var err error

	m.resolveTotal, err = meter.Int64Counter(
		"upiexplain.resolve.total",
		metric.WithDescription("Resolve calls labeled by the cascade strategy that matched (none for no match)."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		logger.Warn("failed to create resolve counter", zap.Error(err))
	}

	m.relatedTotal, err = meter.Int64Counter(
		"upiexplain.related.total",
		metric.WithDescription("Related-records rankings computed, labeled by whether the current slug is in the catalog."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		logger.Warn("failed to create related counter", zap.Error(err))
	}

	m.inputLength, err = meter.Int64Histogram(
		"upiexplain.resolve.input_length",
		metric.WithDescription("Length in bytes of normalized resolve input."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(0, 2, 4, 8, 16, 32, 64, 128, 256),
	)
	if err != nil {
		logger.Warn("failed to create input length histogram", zap.Error(err))
	}

	return m
}

func (m *Metrics) recordResolve(ctx context.Context, strategy Strategy, inputLen int) {
	if m.resolveTotal != nil {
		m.resolveTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", string(strategy))))
	}
	if m.inputLength != nil {
		m.inputLength.Record(ctx, int64(inputLen))
	}
}

func (m *Metrics) recordRelated(ctx context.Context, known bool) {
	if m.relatedTotal != nil {
		m.relatedTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("known_slug", known)))
	}
}
