// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - stdout or stderr output, optionally teed to OpenTelemetry
//   - Automatic context field injection (trace_id, request.id)
//   - Redaction of API keys, session cookies and payment identifiers
//
// # Usage
//
//	cfg, err := logging.FromAppConfig(appCfg.Logging)
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req_123")
//	logger.Info(ctx, "search resolved", zap.String("slug", "u30"))
//
// Packages that do not need context fields take *zap.Logger via
// Logger.Underlying.
//
// # Stdio mode
//
// When the MCP server speaks over stdio, stdout carries protocol frames.
// Set Stream to "stderr" there.
//
// # Redaction
//
// Users paste raw bank messages into the search box. Those often carry a
// VPA ("name@okaxis") or a mobile number, which the encoder replaces with
// [REDACTED] in messages and string fields.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertField(t, "test message", "key", "value")
package logging
