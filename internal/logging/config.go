// internal/logging/config.go
package logging

import (
	"fmt"
	"io"
	"regexp"

	"github.com/fyrsmithlabs/upiexplain/internal/config"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      zapcore.Level
	Format     string // json or console
	Stream     string // stdout or stderr
	OTEL       bool
	Caller     bool
	Stacktrace zapcore.Level
	Fields     map[string]string
	Redaction  RedactionConfig

	// Writer overrides Stream when set.
	Writer io.Writer
}

// RedactionConfig controls sensitive data redaction.
type RedactionConfig struct {
	Enabled  bool
	Fields   []string
	Patterns []string
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:      zapcore.InfoLevel,
		Format:     "json",
		Stream:     "stdout",
		Caller:     true,
		Stacktrace: zapcore.ErrorLevel,
		Fields: map[string]string{
			"service": "upiexplain",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields:  []string{"api_key", "authorization", "cookie", "session_token", "upx_session"},
			Patterns: []string{
				// VPA handles such as name@okaxis
				`(?i)\b[a-z0-9._-]{2,}@[a-z][a-z0-9]{1,}\b`,
				// Indian mobile numbers
				`\b(?:\+?91[\s-]?)?[6-9]\d{9}\b`,
			},
		},
	}
}

// FromAppConfig builds a logging config from the application's logging section.
func FromAppConfig(c config.LoggingConfig) (*Config, error) {
	cfg := NewDefaultConfig()
	if c.Level != "" {
		lvl, err := LevelFromString(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		cfg.Level = lvl
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Stream != "" {
		cfg.Stream = c.Stream
	}
	return cfg, cfg.Validate()
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if c.Writer == nil && c.Stream != "stdout" && c.Stream != "stderr" {
		return fmt.Errorf("stream must be 'stdout' or 'stderr', got %q", c.Stream)
	}
	if c.Redaction.Enabled {
		for _, pattern := range c.Redaction.Patterns {
			if len(pattern) > 200 {
				return fmt.Errorf("redaction pattern too long (max 200 chars): %q", pattern)
			}
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("invalid redaction pattern %q: %w", pattern, err)
			}
		}
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}
