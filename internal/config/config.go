// Package config provides configuration loading for upiexplain.
//
// Configuration is layered: hardcoded defaults, then an optional YAML file,
// then UPIEXPLAIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// AI provider names.
const (
	AIProviderNone     = "none"
	AIProviderGoogleAI = "googleai"
	AIProviderOpenAI   = "openai"
)

// Config holds the complete upiexplain configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	AI        AIConfig        `koanf:"ai"`
	Session   SessionConfig   `koanf:"session"`
	Related   RelatedConfig   `koanf:"related"`
	App       AppConfig       `koanf:"app"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// CatalogConfig selects the error catalog source.
// An empty Path uses the catalog embedded in the binary.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// AIConfig configures the AI fallback explainer.
type AIConfig struct {
	Provider      string   `koanf:"provider"` // none, googleai, openai
	Model         string   `koanf:"model"`
	APIKey        Secret   `koanf:"api_key"`
	Timeout       Duration `koanf:"timeout"`
	RatePerMinute int      `koanf:"rate_per_minute"`
}

// Enabled reports whether an AI provider is configured with credentials.
func (c AIConfig) Enabled() bool {
	return c.Provider != AIProviderNone && c.Provider != "" && c.APIKey.IsSet()
}

// SessionConfig bounds the last-search session store.
type SessionConfig struct {
	TTL        Duration `koanf:"ttl"`
	MaxEntries int      `koanf:"max_entries"`
}

// RelatedConfig configures related-error suggestions.
type RelatedConfig struct {
	Limit int `koanf:"limit"`
}

// AppConfig holds display metadata.
type AppConfig struct {
	LastUpdated string `koanf:"last_updated"` // when the catalog content was last revised
}

// LoggingConfig holds logger settings; see internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
	Stream string `koanf:"stream"` // stdout or stderr
}

// TelemetryConfig holds OpenTelemetry export settings; see internal/telemetry.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // grpc or http/protobuf
	Insecure       bool     `koanf:"insecure"`
	ServiceName    string   `koanf:"service_name"`
	SampleRate     float64  `koanf:"sample_rate"`
	MetricsEnabled bool     `koanf:"metrics_enabled"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		AI: AIConfig{
			Provider:      AIProviderGoogleAI,
			Model:         "gemini-1.5-flash",
			Timeout:       Duration(15 * time.Second),
			RatePerMinute: 30,
		},
		Session: SessionConfig{
			TTL:        Duration(30 * time.Minute),
			MaxEntries: 10000,
		},
		Related: RelatedConfig{
			Limit: 5,
		},
		App: AppConfig{
			LastUpdated: "February 2026",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Stream: "stdout",
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			Insecure:       true,
			ServiceName:    "upiexplain",
			SampleRate:     1.0,
			MetricsEnabled: true,
			ExportInterval: Duration(15 * time.Second),
		},
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - AI provider is unknown, or its timeout or rate is not positive when enabled
//   - Session TTL or capacity is not positive
//   - Related limit is not positive
//   - Logging format or stream is unknown
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	switch c.AI.Provider {
	case AIProviderNone, AIProviderGoogleAI, AIProviderOpenAI:
	default:
		return fmt.Errorf("unknown ai provider %q (must be none, googleai or openai)", c.AI.Provider)
	}
	if c.AI.Enabled() {
		if c.AI.Timeout.Duration() <= 0 {
			return errors.New("ai timeout must be positive")
		}
		if c.AI.RatePerMinute <= 0 {
			return errors.New("ai rate_per_minute must be positive")
		}
	}

	if c.Session.TTL.Duration() <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Session.MaxEntries <= 0 {
		return errors.New("session max_entries must be positive")
	}
	if c.Related.Limit <= 0 {
		return fmt.Errorf("related limit must be positive, got %d", c.Related.Limit)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Logging.Stream != "stdout" && c.Logging.Stream != "stderr" {
		return fmt.Errorf("logging stream must be 'stdout' or 'stderr', got %q", c.Logging.Stream)
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}
