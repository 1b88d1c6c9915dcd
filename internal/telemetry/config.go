package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/upiexplain/internal/config"
)

// Export protocols.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// Config holds telemetry configuration.
type Config struct {
	Enabled         bool
	Endpoint        string
	Protocol        string
	Insecure        bool
	ServiceName     string
	ServiceVersion  string
	SampleRate      float64
	MetricsEnabled  bool
	ExportInterval  time.Duration
	ShutdownTimeout time.Duration
}

// NewDefaultConfig returns telemetry defaults. Export is off until a
// collector is configured.
func NewDefaultConfig() *Config {
	return &Config{
		Endpoint:        "localhost:4317",
		Protocol:        ProtocolGRPC,
		Insecure:        true,
		ServiceName:     "upiexplain",
		ServiceVersion:  "dev",
		SampleRate:      1.0,
		MetricsEnabled:  true,
		ExportInterval:  15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// FromAppConfig builds a telemetry config from the application's telemetry section.
func FromAppConfig(c config.TelemetryConfig, version string) *Config {
	cfg := NewDefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.Insecure = c.Insecure
	cfg.MetricsEnabled = c.MetricsEnabled
	cfg.SampleRate = c.SampleRate
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	if c.Protocol != "" {
		cfg.Protocol = c.Protocol
	}
	if c.ServiceName != "" {
		cfg.ServiceName = c.ServiceName
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	if d := c.ExportInterval.Duration(); d > 0 {
		cfg.ExportInterval = d
	}
	return cfg
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when telemetry is enabled")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required when telemetry is enabled")
	}
	if c.Protocol != ProtocolGRPC && c.Protocol != ProtocolHTTP {
		return fmt.Errorf("protocol must be %q or %q, got %q", ProtocolGRPC, ProtocolHTTP, c.Protocol)
	}
	if c.Insecure && !isLocalEndpoint(c.Endpoint) {
		return fmt.Errorf("insecure connections to remote endpoints are not allowed; set insecure=false for TLS or use a local endpoint")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0 and 1, got %f", c.SampleRate)
	}
	if c.MetricsEnabled && c.ExportInterval <= 0 {
		return fmt.Errorf("export_interval must be positive when metrics enabled")
	}
	return nil
}

func isLocalEndpoint(endpoint string) bool {
	host := stripScheme(endpoint)
	if strings.HasPrefix(host, "[") {
		if idx := strings.Index(host, "]"); idx != -1 {
			host = host[1:idx]
		}
	} else if strings.Count(host, ":") == 1 {
		host = host[:strings.LastIndex(host, ":")]
	}
	return host == "localhost" || host == "::1" || strings.HasPrefix(host, "127.")
}
