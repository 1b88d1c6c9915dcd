// Upiexplaind serves plain-language explanations of UPI and bank error codes.
//
// By default it starts the HTTP server. With -mcp it serves the same lookups
// as MCP tools over stdio, logging to stderr.
//
// Configuration is read from ~/.config/upiexplain/config.yaml (or -config)
// and UPIEXPLAIN_* environment variables. See internal/config for details.
//
// Usage:
//
//	# Start the HTTP server
//	upiexplaind
//
//	# Serve MCP tools on stdio
//	upiexplaind -mcp
//
//	# Override settings via environment
//	UPIEXPLAIN_SERVER_PORT=9090 UPIEXPLAIN_AI_API_KEY=... upiexplaind
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
	"github.com/fyrsmithlabs/upiexplain/internal/config"
	"github.com/fyrsmithlabs/upiexplain/internal/explain"
	"github.com/fyrsmithlabs/upiexplain/internal/explainer"
	"github.com/fyrsmithlabs/upiexplain/internal/feedback"
	httpserver "github.com/fyrsmithlabs/upiexplain/internal/http"
	"github.com/fyrsmithlabs/upiexplain/internal/logging"
	"github.com/fyrsmithlabs/upiexplain/internal/mcp"
	"github.com/fyrsmithlabs/upiexplain/internal/resolver"
	"github.com/fyrsmithlabs/upiexplain/internal/session"
	"github.com/fyrsmithlabs/upiexplain/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

const scopePrefix = "github.com/fyrsmithlabs/upiexplain/internal/"

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/upiexplain/config.yaml)")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools on stdio instead of HTTP")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  upiexplaind [-config path] [-mcp]   Start the server\n")
			fmt.Fprintf(os.Stderr, "  upiexplaind version                 Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *mcpMode); err != nil {
		log.Fatalf("upiexplaind: %v", err)
	}
}

func printVersion() {
	fmt.Printf("upiexplaind by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every service and blocks until ctx is cancelled or the server fails.
//
// Startup order:
//  1. Configuration
//  2. Logger (stderr in MCP mode, since stdout carries the protocol)
//  3. Telemetry
//  4. Catalog; a catalog that fails to load aborts startup
//  5. Resolver, AI explainer and explain service
//  6. HTTP server or MCP stdio server
func run(ctx context.Context, configPath string, mcpMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := initLogger(cfg, mcpMode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// ctx is already cancelled here; Shutdown applies its own timeout
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}()
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.String("error", h.Error))
	}

	svc, err := initExplainService(ctx, cfg, logger, tel)
	if err != nil {
		return err
	}

	logger.Info(ctx, "starting upiexplaind",
		zap.String("version", version),
		zap.Bool("mcp", mcpMode),
		zap.Bool("ai_available", svc.AIAvailable()))

	if mcpMode {
		return runMCP(ctx, svc, logger)
	}
	return runHTTP(ctx, cfg, svc, logger)
}

func initLogger(cfg *config.Config, mcpMode bool) (*logging.Logger, error) {
	logCfg, err := logging.FromAppConfig(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if mcpMode {
		logCfg.Stream = "stderr"
	}
	logCfg.OTEL = cfg.Telemetry.Enabled
	return logging.NewLogger(logCfg, global.GetLoggerProvider())
}

func initExplainService(ctx context.Context, cfg *config.Config, logger *logging.Logger, tel *telemetry.Telemetry) (*explain.Service, error) {
	zl := logger.Underlying()

	var source catalog.Source = catalog.EmbeddedSource()
	if cfg.Catalog.Path != "" {
		source = catalog.NewFileSource(cfg.Catalog.Path)
	}
	store, err := catalog.NewStore(source, zl.Named("catalog"))
	if err != nil {
		return nil, err
	}
	if _, err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	engine, err := resolver.NewEngine(store, zl.Named("resolver"),
		resolver.WithTracer(tel.Tracer(scopePrefix+"resolver")),
		resolver.WithMeter(tel.Meter(scopePrefix+"resolver")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	ai, err := explainer.NewFromConfig(ctx, cfg.AI, zl.Named("explainer"),
		explainer.WithMeter(tel.Meter(scopePrefix+"explainer")))
	if err != nil {
		// the catalog still answers without the AI fallback
		logger.Warn(ctx, "ai fallback unavailable", zap.Error(err))
		ai = explainer.Nop{}
	}

	return explain.NewService(store, engine, ai, zl.Named("explain"),
		explain.WithRelatedLimit(cfg.Related.Limit),
		explain.WithLastUpdated(cfg.App.LastUpdated),
	)
}

func runHTTP(ctx context.Context, cfg *config.Config, svc *explain.Service, logger *logging.Logger) error {
	srv, err := httpserver.NewServer(httpserver.Deps{
		Explain:  svc,
		Sessions: session.NewStore(cfg.Session.TTL.Duration(), cfg.Session.MaxEntries, session.NewMetrics()),
		Feedback: feedback.NewRecorder(logger.Underlying().Named("feedback")),
	}, logger, &httpserver.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		SessionTTL: cfg.Session.TTL.Duration(),
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info(shutdownCtx, "server shutdown complete")
	return nil
}

func runMCP(ctx context.Context, svc *explain.Service, logger *logging.Logger) error {
	srv, err := mcp.NewServer(&mcp.Config{
		Name:    "upiexplain",
		Version: version,
		Logger:  logger.Underlying().Named("mcp"),
	}, svc)
	if err != nil {
		return fmt.Errorf("failed to create mcp server: %w", err)
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
