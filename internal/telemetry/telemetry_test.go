package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/upiexplain/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, HealthStatus{}, tel.Health())
	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = "collector.example.com:4317"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure connections")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry
	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.Equal(t, HealthStatus{}, tel.Health())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"disabled skips checks", func(c *Config) { c.Endpoint = "" }, false},
		{"enabled local", func(c *Config) { c.Enabled = true }, false},
		{"enabled remote tls", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "otel.example.com:4317"
			c.Insecure = false
		}, false},
		{"http protocol with scheme", func(c *Config) {
			c.Enabled = true
			c.Protocol = ProtocolHTTP
			c.Endpoint = "http://127.0.0.1:4318"
		}, false},
		{"ipv6 loopback", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "[::1]:4317"
		}, false},
		{"missing endpoint", func(c *Config) {
			c.Enabled = true
			c.Endpoint = ""
		}, true},
		{"unknown protocol", func(c *Config) {
			c.Enabled = true
			c.Protocol = "udp"
		}, true},
		{"sample rate out of range", func(c *Config) {
			c.Enabled = true
			c.SampleRate = 1.5
		}, true},
		{"zero export interval", func(c *Config) {
			c.Enabled = true
			c.ExportInterval = 0
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.TelemetryConfig{
		Enabled:        true,
		Endpoint:       "localhost:4318",
		Protocol:       ProtocolHTTP,
		Insecure:       true,
		SampleRate:     0.5,
		MetricsEnabled: true,
		ExportInterval: config.Duration(30 * time.Second),
	}, "1.2.3")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.Equal(t, "upiexplain", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, 0.5, cfg.SampleRate)
	assert.Equal(t, 30*time.Second, cfg.ExportInterval)
	assert.NoError(t, cfg.Validate())
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "host:4318", stripScheme("https://host:4318"))
	assert.Equal(t, "host:4318", stripScheme("http://host:4318"))
	assert.Equal(t, "host:4318", stripScheme("host:4318"))
}

func TestTestTelemetry(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	_, span := tt.Tracer("test").Start(ctx, "lookup")
	span.SetAttributes(attribute.String("slug", "u30"), attribute.Int("results", 3))
	span.End()

	counter, err := tt.Meter("test").Int64Counter("lookups")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	tt.AssertSpanExists(t, "lookup")
	tt.AssertSpanAttribute(t, "lookup", "slug", "u30")
	tt.AssertSpanAttribute(t, "lookup", "results", int64(3))
	tt.AssertMetricExists(t, "lookups")
	assert.Nil(t, tt.SpanByName("missing"))
}
