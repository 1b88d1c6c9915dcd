package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/explain"
)

// Server is an MCP server backed by the explain service.
type Server struct {
	mcp     *mcp.Server
	explain *explain.Service
	metrics *Metrics
	logger  *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "upiexplain")
	Name string

	// Version is the server version (default: "dev")
	Version string

	Logger *zap.Logger

	// Metrics defaults to instruments on the global meter provider.
	Metrics *Metrics
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "upiexplain",
		Version: "dev",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates an MCP server and registers its tools.
func NewServer(cfg *Config, svc *explain.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("explain service is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Name == "" {
		cfg.Name = "upiexplain"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(cfg.Logger)
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		explain: svc,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	s.registerTools()
	return s, nil
}

// Run serves the tools on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// Connect serves the tools on transport and returns the session.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, transport, nil)
}
