package resolver

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
)

const instrumentationName = "github.com/fyrsmithlabs/upiexplain/internal/resolver"

// CatalogReader provides the loaded catalog.
type CatalogReader interface {
	All() *catalog.Catalog
}

// Match is the outcome of Resolve. Found is false when nothing matched.
type Match struct {
	Slug     string
	Record   catalog.Record
	Strategy Strategy
	Found    bool
}

// Engine resolves free-text input to catalog records.
//
// Engine holds no mutable state; Resolve and Related are safe for concurrent use.
type Engine struct {
	catalog CatalogReader
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *Metrics
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	tracer trace.Tracer
	meter  metric.Meter
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *engineOptions) { o.tracer = t }
}

// WithMeter overrides the global meter.
func WithMeter(m metric.Meter) Option {
	return func(o *engineOptions) { o.meter = m }
}

// NewEngine creates an engine reading from cat.
func NewEngine(cat CatalogReader, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("catalog is required for resolver engine")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := engineOptions{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		catalog: cat,
		logger:  logger,
		tracer:  o.tracer,
		metrics: newMetrics(o.meter, logger),
	}, nil
}

// Resolve finds the best catalog record for raw user input.
//
// The input is trimmed and compared case-insensitively. Strategies are tried in
// cascade order and the first one that matches decides the result:
//  1. slug equals input
//  2. code equals input
//  3. an alias equals input
//  4. a code occurs inside the input
//  5. an alias occurs inside the input, or the input inside an alias
//  6. the input occurs inside a scenario
//
// Blank input never matches. No match is a normal result, not an error.
func (e *Engine) Resolve(ctx context.Context, raw string) Match {
	ctx, span := e.tracer.Start(ctx, "Engine.Resolve")
	defer span.End()

	q := newQuery(raw)
	if q.lower == "" {
		span.SetAttributes(attribute.String("strategy", string(StrategyNone)))
		e.metrics.recordResolve(ctx, StrategyNone, 0)
		return Match{Strategy: StrategyNone}
	}

	cat := e.catalog.All()
	for _, s := range cascade {
		slug, ok := s.match(q, cat)
		if !ok {
			continue
		}
		rec, _ := cat.Get(slug)
		span.SetAttributes(
			attribute.String("strategy", string(s.name)),
			attribute.String("slug", slug),
		)
		e.metrics.recordResolve(ctx, s.name, len(q.lower))
		e.logger.Debug("input resolved",
			zap.String("slug", slug),
			zap.String("strategy", string(s.name)))
		return Match{Slug: slug, Record: rec, Strategy: s.name, Found: true}
	}

	span.SetAttributes(attribute.String("strategy", string(StrategyNone)))
	e.metrics.recordResolve(ctx, StrategyNone, len(q.lower))
	e.logger.Debug("input not resolved", zap.Int("input_len", len(q.lower)))
	return Match{Strategy: StrategyNone}
}

// Related ranks up to limit records related to slug by alias keyword overlap.
//
// The record for slug itself is never included. Equal scores keep catalog
// order, and zero-score records fill the list so callers always get entries
// while the catalog has them. An unknown slug yields the first limit records.
// A non-positive limit means DefaultRelatedLimit.
func (e *Engine) Related(ctx context.Context, slug string, limit int) []Related {
	ctx, span := e.tracer.Start(ctx, "Engine.Related")
	defer span.End()

	slug = strings.ToLower(slug)
	cat := e.catalog.All()
	_, known := cat.Get(slug)

	related := rankRelated(cat, slug, limit)

	span.SetAttributes(
		attribute.String("slug", slug),
		attribute.Bool("known_slug", known),
		attribute.Int("results", len(related)),
	)
	e.metrics.recordRelated(ctx, known)
	return related
}
