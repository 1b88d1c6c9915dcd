package mcp

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/explain"
)

const instrumentationName = "github.com/fyrsmithlabs/upiexplain/internal/mcp"

// Metrics instruments tool calls.
type Metrics struct {
	meter          metric.Meter
	logger         *zap.Logger
	invocations    metric.Int64Counter
	duration       metric.Float64Histogram
	errors         metric.Int64Counter
	activeRequests metric.Int64UpDownCounter
}

// NewMetrics creates tool instruments on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	return newMetrics(otel.Meter(instrumentationName), logger)
}

func newMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{meter: meter, logger: logger}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.invocations, err = m.meter.Int64Counter(
		"upiexplain.mcp.tool.invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		m.logger.Warn("failed to create invocations counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"upiexplain.mcp.tool.duration_seconds",
		metric.WithDescription("Duration of MCP tool invocations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"upiexplain.mcp.tool.errors_total",
		metric.WithDescription("Total number of MCP tool errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}

	m.activeRequests, err = m.meter.Int64UpDownCounter(
		"upiexplain.mcp.tool.active_requests",
		metric.WithDescription("Number of currently active MCP tool requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create active requests gauge", zap.Error(err))
	}
}

// Track marks a call to tool as active and returns the func that records its
// outcome. The returned func must be called exactly once.
func (m *Metrics) Track(ctx context.Context, tool string) func(error) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("tool", tool))
	if m.activeRequests != nil {
		m.activeRequests.Add(ctx, 1, attrs)
	}

	return func(err error) {
		if m.activeRequests != nil {
			m.activeRequests.Add(ctx, -1, attrs)
		}
		if m.invocations != nil {
			m.invocations.Add(ctx, 1, attrs)
		}
		if m.duration != nil {
			m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
		if err != nil && m.errors != nil {
			m.errors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool", tool),
				attribute.String("reason", categorizeError(err)),
			))
		}
	}
}

// categorizeError buckets a tool error for the errors_total reason label.
func categorizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, explain.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal_error"
	}
}
