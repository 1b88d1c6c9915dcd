package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points HOME at a temp dir and clears overrides that would leak into tests.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(legacyAPIKeyEnv, "")
	return home
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Related.Limit)
	assert.Equal(t, AIProviderGoogleAI, cfg.AI.Provider)
	assert.False(t, cfg.AI.Enabled(), "no key means AI disabled")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"zero shutdown", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "shutdown timeout"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "claude" }, "unknown ai provider"},
		{"enabled ai without rate", func(c *Config) {
			c.AI.APIKey = "k"
			c.AI.RatePerMinute = 0
		}, "rate_per_minute"},
		{"enabled ai without timeout", func(c *Config) {
			c.AI.APIKey = "k"
			c.AI.Timeout = 0
		}, "ai timeout"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "session ttl"},
		{"zero session entries", func(c *Config) { c.Session.MaxEntries = 0 }, "max_entries"},
		{"zero related limit", func(c *Config) { c.Related.Limit = 0 }, "related limit"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
		{"bad log stream", func(c *Config) { c.Logging.Stream = "file" }, "logging stream"},
		{"telemetry without name", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.ServiceName = ""
		}, "service name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("disabled provider skips ai checks", func(t *testing.T) {
		cfg := Default()
		cfg.AI.Provider = AIProviderNone
		cfg.AI.APIKey = "k"
		cfg.AI.RatePerMinute = 0
		assert.NoError(t, cfg.Validate())
		assert.False(t, cfg.AI.Enabled())
	})
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	home := isolateEnv(t)
	path := writeConfig(t, home, `
server:
  host: 0.0.0.0
  port: 9000
  shutdown_timeout: 3s
catalog:
  path: /srv/errors.toml
ai:
  provider: openai
  model: gpt-4o-mini
  api_key: file-key
session:
  ttl: 5m
related:
  limit: 3
`, 0600)

	t.Setenv("UPIEXPLAIN_SERVER_PORT", "9100")
	t.Setenv("UPIEXPLAIN_SESSION_MAX_ENTRIES", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "/srv/errors.toml", cfg.Catalog.Path)
	assert.Equal(t, AIProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "file-key", cfg.AI.APIKey.Value())
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL.Duration())
	assert.Equal(t, 42, cfg.Session.MaxEntries)
	assert.Equal(t, 3, cfg.Related.Limit)
	assert.Equal(t, "February 2026", cfg.App.LastUpdated, "untouched fields keep defaults")
}

func TestLoad_LegacyGeminiKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv(legacyAPIKeyEnv, "gemini-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.AI.APIKey.Value())
	assert.True(t, cfg.AI.Enabled())

	t.Setenv("UPIEXPLAIN_AI_API_KEY", "explicit")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.AI.APIKey.Value())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		home := isolateEnv(t)
		_, err := Load(filepath.Join(home, "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("insecure permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission model differs on windows")
		}
		home := isolateEnv(t)
		path := writeConfig(t, home, "server:\n  port: 9000\n", 0644)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insecure config file permissions")
	})

	t.Run("invalid values", func(t *testing.T) {
		home := isolateEnv(t)
		path := writeConfig(t, home, "related:\n  limit: -1\n", 0600)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config validation failed")
	})

	t.Run("bad duration", func(t *testing.T) {
		home := isolateEnv(t)
		path := writeConfig(t, home, "session:\n  ttl: forever\n", 0600)
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("UPIEXPLAIN_SERVER_PORT"))
	assert.Equal(t, "ai.api_key", envKey("UPIEXPLAIN_AI_API_KEY"))
	assert.Equal(t, "session.max_entries", envKey("UPIEXPLAIN_SESSION_MAX_ENTRIES"))
	assert.Equal(t, "debug", envKey("UPIEXPLAIN_DEBUG"))
}

func TestSecret_NeverLeaks(t *testing.T) {
	s := Secret("sk-live-123")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-live-123", s.Value())

	out, err := json.Marshal(struct{ Key Secret }{Key: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Key":"[REDACTED]"}`, string(out))

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
