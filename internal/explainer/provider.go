package explainer

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/config"
)

// NewFromConfig builds the explainer for cfg. A disabled provider, or one
// without an API key, yields Nop.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, logger *zap.Logger, opts ...Option) (Explainer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		logger.Info("ai fallback disabled", zap.String("provider", cfg.Provider))
		return Nop{}, nil
	}

	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s model: %w", cfg.Provider, err)
	}

	opts = append([]Option{
		WithTimeout(cfg.Timeout.Duration()),
		WithRatePerMinute(cfg.RatePerMinute),
	}, opts...)

	l, err := NewLLM(model, logger, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("ai fallback enabled",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))
	return l, nil
}

func newModel(ctx context.Context, cfg config.AIConfig) (llms.Model, error) {
	switch cfg.Provider {
	case config.AIProviderGoogleAI:
		opts := []googleai.Option{googleai.WithAPIKey(cfg.APIKey.Value())}
		if cfg.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(cfg.Model))
		}
		return googleai.New(ctx, opts...)
	case config.AIProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey.Value())}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
