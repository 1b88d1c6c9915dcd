package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/upiexplain/internal/explain"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum
			}
		}
	}
	return sums
}

func total(sum metricdata.Sum[int64]) int64 {
	var n int64
	for _, dp := range sum.DataPoints {
		n += dp.Value
	}
	return n
}

func TestMetrics_Track(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := newMetrics(mp.Meter(instrumentationName), nil)
	ctx := context.Background()

	m.Track(ctx, "resolve_error")(nil)
	m.Track(ctx, "resolve_error")(fmt.Errorf("lookup: %w", ErrInvalidInput))
	pending := m.Track(ctx, "explain_error")

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), total(sums["upiexplain.mcp.tool.invocations_total"]))
	assert.Equal(t, int64(1), total(sums["upiexplain.mcp.tool.active_requests"]))

	errs := sums["upiexplain.mcp.tool.errors_total"]
	require.Len(t, errs.DataPoints, 1)
	reason, _ := errs.DataPoints[0].Attributes.Value(attribute.Key("reason"))
	assert.Equal(t, "invalid_input", reason.AsString())

	pending(nil)
	sums = collectSums(t, reader)
	assert.Equal(t, int64(0), total(sums["upiexplain.mcp.tool.active_requests"]))
	assert.Equal(t, int64(3), total(sums["upiexplain.mcp.tool.invocations_total"]))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"invalid input", fmt.Errorf("slug: %w", ErrInvalidInput), "invalid_input"},
		{"not found", &explain.NotFoundError{Slug: "qq42"}, "not_found"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"canceled", fmt.Errorf("explain: %w", context.Canceled), "canceled"},
		{"generic error", errors.New("something went wrong"), "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, categorizeError(tt.err))
		})
	}
}
