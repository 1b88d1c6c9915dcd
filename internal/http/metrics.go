package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/upiexplain/internal/http"

// HTTPMetrics holds the request instruments.
type HTTPMetrics struct {
	meter          metric.Meter
	logger         *zap.Logger
	requestsTotal  metric.Int64Counter
	requestDur     metric.Float64Histogram
	responseSize   metric.Int64Histogram
	activeRequests metric.Int64UpDownCounter
}

// NewHTTPMetrics creates instruments on the global meter provider.
func NewHTTPMetrics(logger *zap.Logger) *HTTPMetrics {
	return newHTTPMetrics(otel.Meter(httpInstrumentationName), logger)
}

func newHTTPMetrics(meter metric.Meter, logger *zap.Logger) *HTTPMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &HTTPMetrics{meter: meter, logger: logger}
	m.init()
	return m
}

func (m *HTTPMetrics) init() {
	var err error

	m.requestsTotal, err = m.meter.Int64Counter(
		"upiexplain.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create requests counter", zap.Error(err))
	}

	m.requestDur, err = m.meter.Float64Histogram(
		"upiexplain.http.request_duration_seconds",
		metric.WithDescription("HTTP request duration by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.responseSize, err = m.meter.Int64Histogram(
		"upiexplain.http.response_size_bytes",
		metric.WithDescription("HTTP response body size."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 5000, 10000, 50000),
	)
	if err != nil {
		m.logger.Warn("failed to create response size histogram", zap.Error(err))
	}

	m.activeRequests, err = m.meter.Int64UpDownCounter(
		"upiexplain.http.active_requests",
		metric.WithDescription("Requests currently being served."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn("failed to create active requests gauge", zap.Error(err))
	}
}

// MetricsMiddleware returns an Echo middleware that records HTTP metrics.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := req.Context()

			if m.activeRequests != nil {
				m.activeRequests.Add(ctx, 1)
			}

			err := next(c)

			attrs := metric.WithAttributes(
				attribute.String("method", req.Method),
				attribute.String("route", normalizePath(c.Path())),
				attribute.Int("status", c.Response().Status),
			)
			if m.requestsTotal != nil {
				m.requestsTotal.Add(ctx, 1, attrs)
			}
			if m.requestDur != nil {
				m.requestDur.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			if m.responseSize != nil {
				m.responseSize.Record(ctx, c.Response().Size, attrs)
			}
			if m.activeRequests != nil {
				m.activeRequests.Add(ctx, -1)
			}
			return err
		}
	}
}

// normalizePath labels requests by their route template, never the raw URL,
// so /error/:slug is one series however many slugs are requested. Requests
// that matched no route share a single label.
func normalizePath(route string) string {
	if route == "" || route == "/*" {
		return "unmatched"
	}
	return route
}
