// internal/logging/otel.go
package logging

import (
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// newCore creates a core writing to the configured stream and, when a
// provider is given, to OpenTelemetry.
func newCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, error) {
	encoder, err := newRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
	if err != nil {
		return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
	}

	var writer zapcore.WriteSyncer
	switch {
	case cfg.Writer != nil:
		writer = zapcore.AddSync(cfg.Writer)
	case cfg.Stream == "stderr":
		// stdout belongs to the MCP stdio transport in that mode
		writer = zapcore.Lock(os.Stderr)
	default:
		writer = zapcore.Lock(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writer, cfg.Level)
	if cfg.OTEL && otelProvider != nil {
		core = zapcore.NewTee(core, otelzap.NewCore("upiexplain",
			otelzap.WithLoggerProvider(otelProvider),
		))
	}
	return core, nil
}
