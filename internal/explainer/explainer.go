// Package explainer asks a language model to explain error text the catalog
// does not know.
//
// Explainers are result-or-absent: every failure (provider down, rate limit,
// timeout, malformed reply) is logged and reported as no explanation.
package explainer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	instrumentationName = "github.com/fyrsmithlabs/upiexplain/internal/explainer"

	defaultTimeout       = 15 * time.Second
	defaultRatePerMinute = 30
	maxInputRunes        = 500
)

// Explanation is a model-written description of an error.
type Explanation struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Reasons     []string `json:"reasons"`
	NextSteps   []string `json:"next_steps"`
}

// Explainer produces explanations for unknown error text.
type Explainer interface {
	// Explain returns an explanation, or false when none is available.
	Explain(ctx context.Context, input string) (*Explanation, bool)
	// Available reports whether a provider is configured.
	Available() bool
}

// Nop never explains anything. Used when no AI provider is configured.
type Nop struct{}

func (Nop) Explain(context.Context, string) (*Explanation, bool) { return nil, false }
func (Nop) Available() bool                                      { return false }

// LLM explains errors with a langchaingo model.
type LLM struct {
	model   llms.Model
	logger  *zap.Logger
	limiter *rate.Limiter
	timeout time.Duration

	requests metric.Int64Counter
}

// Option configures an LLM explainer.
type Option func(*LLM)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(l *LLM) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithRatePerMinute caps model calls per minute.
func WithRatePerMinute(n int) Option {
	return func(l *LLM) {
		if n > 0 {
			l.limiter = newLimiter(n)
		}
	}
}

// WithMeter overrides the global meter.
func WithMeter(m metric.Meter) Option {
	return func(l *LLM) {
		l.requests = newRequestCounter(m, l.logger)
	}
}

// NewLLM creates an explainer backed by model.
func NewLLM(model llms.Model, logger *zap.Logger, opts ...Option) (*LLM, error) {
	if model == nil {
		return nil, errors.New("model is required for llm explainer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &LLM{
		model:   model,
		logger:  logger,
		limiter: newLimiter(defaultRatePerMinute),
		timeout: defaultTimeout,
	}
	l.requests = newRequestCounter(otel.Meter(instrumentationName), logger)
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Available reports true; an LLM explainer always has a provider.
func (l *LLM) Available() bool { return true }

// Explain asks the model about input. Blank input is never sent.
func (l *LLM) Explain(ctx context.Context, input string) (*Explanation, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, false
	}
	if r := []rune(input); len(r) > maxInputRunes {
		input = string(r[:maxInputRunes])
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.limiter.Wait(ctx); err != nil {
		l.record(ctx, "rate_limited")
		l.logger.Warn("ai explanation skipped", zap.String("reason", "rate limited"), zap.Error(err))
		return nil, false
	}

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, l.model, buildPrompt(input), llms.WithTemperature(0.2))
	if err != nil {
		l.record(ctx, "provider_error")
		l.logger.Warn("ai explanation failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, false
	}

	exp, err := parseExplanation(text)
	if err != nil {
		l.record(ctx, "invalid_response")
		l.logger.Warn("ai explanation rejected", zap.Error(err), zap.Int("response_len", len(text)))
		return nil, false
	}

	l.record(ctx, "ok")
	l.logger.Info("ai explanation generated",
		zap.String("title", exp.Title),
		zap.Duration("duration", time.Since(start)))
	return exp, true
}

func (l *LLM) record(ctx context.Context, outcome string) {
	if l.requests != nil {
		l.requests.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	burst := perMinute
	if burst > 5 {
		burst = 5
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

func newRequestCounter(m metric.Meter, logger *zap.Logger) metric.Int64Counter {
	c, err := m.Int64Counter(
		"upiexplain.ai.requests",
		metric.WithDescription("AI explanation attempts labeled by outcome."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn("failed to create ai request counter", zap.Error(err))
		return nil
	}
	return c
}

func buildPrompt(input string) string {
	return fmt.Sprintf(promptTemplate, strings.ReplaceAll(input, `"`, `'`))
}

const promptTemplate = `You are a helpful assistant explaining UPI and Indian banking transaction errors.

The user encountered this error: "%s"

Respond with ONLY a valid JSON object (no markdown, no extra text) with these exact keys:
- "title": A short title for this error (5-7 words max)
- "explanation": Plain English explanation of what this error means (2 sentences max, India banking context)
- "reasons": A list of 2-3 likely reasons why this happened (short bullet points)
- "next_steps": A list of 2-3 clear actions the user should take

Rules:
- Use simple, non-technical language
- Assume Indian banking/UPI context
- If unsure, say "This error usually means..."
- Do NOT guess specific bank policies
- Keep each field concise

Return ONLY the JSON object, nothing else.`
