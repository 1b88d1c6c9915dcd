// Package http serves the upiexplain JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/explain"
	"github.com/fyrsmithlabs/upiexplain/internal/feedback"
	"github.com/fyrsmithlabs/upiexplain/internal/logging"
	"github.com/fyrsmithlabs/upiexplain/internal/session"
)

// SessionCookie names the cookie carrying the session token.
const SessionCookie = "upx_session"

// Server provides HTTP endpoints for upiexplain.
type Server struct {
	echo     *echo.Echo
	explain  *explain.Service
	sessions *session.Store
	feedback *feedback.Recorder
	logger   *logging.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host       string
	Port       int
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure; set behind TLS.
	SecureCookie bool
}

// Deps are the services the handlers call.
type Deps struct {
	Explain  *explain.Service
	Sessions *session.Store
	Feedback *feedback.Recorder
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, logger *logging.Logger, cfg *Config) (*Server, error) {
	if deps.Explain == nil {
		return nil, fmt.Errorf("explain service cannot be nil")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if deps.Feedback == nil {
		deps.Feedback = feedback.NewRecorder(logger.Underlying())
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8080}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		explain:  deps.Explain,
		sessions: deps.Sessions,
		feedback: deps.Feedback,
		logger:   logger,
		config:   cfg,
	}

	e.HTTPErrorHandler = s.renderError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger.Underlying()).MetricsMiddleware())
	e.Use(s.requestContext)

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/search", s.handleSearch)
	s.echo.POST("/search", s.handleSearch)
	s.echo.GET("/error/:slug", s.handleErrorPage)
	s.echo.GET("/feedback", s.handleFeedback)
	s.echo.GET("/robots.txt", s.handleRobots)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// requestContext puts the request ID on the request context and logs each request.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		if err != nil {
			// let the error handler set the status before it is logged
			c.Error(err)
			err = nil
		}

		s.logger.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// IndexEntry is one row of the index listing.
type IndexEntry struct {
	Slug  string `json:"slug"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// IndexResponse is the response body for GET /.
type IndexResponse struct {
	Errors      []IndexEntry `json:"errors"`
	AIAvailable bool         `json:"ai_available"`
}

// NotFoundResponse is the body of every 404.
type NotFoundResponse struct {
	Searched bool `json:"searched"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	CatalogRecords int    `json:"catalog_records"`
	AIAvailable    bool   `json:"ai_available"`
}

func (s *Server) handleIndex(c echo.Context) error {
	records := s.explain.Index()
	entries := make([]IndexEntry, len(records))
	for i, r := range records {
		entries[i] = IndexEntry{Slug: r.Slug, Code: r.Code, Title: r.Title}
	}
	return c.JSON(http.StatusOK, IndexResponse{Errors: entries, AIAvailable: s.explain.AIAvailable()})
}

// handleSearch resolves error_input and redirects to its page. The input is
// remembered for the session so the not-found page can ask the AI about it.
func (s *Server) handleSearch(c echo.Context) error {
	ctx := c.Request().Context()
	result := s.explain.Search(ctx, c.FormValue("error_input"))
	if result.Blank {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	token := s.sessions.Save(s.sessionToken(c), result.Input)
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Debug(ctx, "search resolved",
		zap.String("slug", result.Slug),
		zap.String("strategy", string(result.Strategy)))
	return c.Redirect(http.StatusSeeOther, errorPath(result.Slug))
}

// handleErrorPage serves GET /error/:slug.
func (s *Server) handleErrorPage(c echo.Context) error {
	raw := c.Param("slug")
	if lower := strings.ToLower(raw); lower != raw {
		return c.Redirect(http.StatusMovedPermanently, errorPath(lower))
	}

	var lastSearch string
	if raw == explain.NotFoundSlug {
		lastSearch, _ = s.sessions.LastSearch(s.sessionToken(c))
	}

	page, err := s.explain.Page(c.Request().Context(), raw, lastSearch)
	if err != nil {
		var nf *explain.NotFoundError
		if errors.As(err, &nf) {
			return c.JSON(http.StatusNotFound, NotFoundResponse{Searched: nf.Searched})
		}
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// handleFeedback records an ok=1|0 vote and sends the visitor back.
func (s *Server) handleFeedback(c echo.Context) error {
	slug := c.QueryParam("error")
	s.feedback.Record(c.Request().Context(), slug, feedback.ParseVote(c.QueryParam("ok")))

	if slug != "" && slug != explain.NotFoundSlug {
		return c.Redirect(http.StatusSeeOther, errorPath(slug))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\n")
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		CatalogRecords: len(s.explain.Index()),
		AIAvailable:    s.explain.AIAvailable(),
	})
}

// renderError renders unknown routes like an unexplained slug and defers
// everything else to echo.
func (s *Server) renderError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusNotFound {
		if jerr := c.JSON(http.StatusNotFound, NotFoundResponse{}); jerr != nil {
			s.logger.Warn(c.Request().Context(), "failed to write 404", zap.Error(jerr))
		}
		return
	}
	s.echo.DefaultHTTPErrorHandler(err, c)
}

func (s *Server) sessionToken(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func errorPath(slug string) string {
	return "/error/" + url.PathEscape(slug)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
