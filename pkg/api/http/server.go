package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aescanero/devops-api/internal/config"
	metrics "github.com/aescanero/devops-api/pkg/adapters/metrics/prometheus"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router  *gin.Engine
	handler http.Handler
	server  *http.Server
	metrics *metrics.Collector
	logger  *zap.Logger

	environment string
	hostname    string
	hasAPIKey   bool
	hasFalKey   bool

	startedAt time.Time
	now       func() time.Time
}

// Config holds HTTP server configuration
type Config struct {
	Addr              string
	Environment       string
	Hostname          string
	HasAPIKey         bool
	HasFalKey         bool
	MaxBodyBytes      int64
	ReadHeaderTimeout time.Duration

	// StartedAt is the instant uptime is measured from. Defaults to the construction time.
	StartedAt time.Time

	// Metrics is optional; request metrics and /metrics are disabled when nil.
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	startedAt := cfg.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	s := &Server{
		router:      gin.New(),
		metrics:     cfg.Metrics,
		logger:      logger,
		environment: cfg.Environment,
		hostname:    cfg.Hostname,
		hasAPIKey:   cfg.HasAPIKey,
		hasFalKey:   cfg.HasFalKey,
		startedAt:   startedAt,
		now:         time.Now,
	}

	// Trailing slashes are folded by normalizePath, so gin must not answer them with a redirect.
	s.router.RedirectTrailingSlash = false

	s.setupMiddleware(cfg.MaxBodyBytes)
	s.setupRoutes()
	s.handler = normalizePath(s.router)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return s
}

// setupMiddleware installs the middleware chain, outermost first
func (s *Server) setupMiddleware(maxBodyBytes int64) {
	s.router.Use(requestLogger(s.logger))
	s.router.Use(requestID())
	if s.metrics != nil {
		s.router.Use(requestMetrics(s.metrics))
	}
	s.router.Use(errorHandler(s.logger, s.development(), s.metrics))
	s.router.Use(securityHeaders())
	s.router.Use(corsMiddleware())
	s.router.Use(jsonBody(maxBodyBytes, s.development(), s.metrics))
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Probes
	getOrHead(s.router, "/health", s.handleHealth)
	getOrHead(s.router, "/ready", s.handleReady)

	if s.metrics != nil {
		getOrHead(s.router, "/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		getOrHead(api, "/info", s.handleInfo)
		getOrHead(api, "/demo", s.handleDemo)
	}

	s.router.NoRoute(s.handleNotFound)
}

// getOrHead registers a read-only route; HEAD is answered by the GET handler
// and net/http drops the body.
func getOrHead(r gin.IRoutes, path string, handler gin.HandlerFunc) {
	r.GET(path, handler)
	r.HEAD(path, handler)
}

// Handler returns the root handler with path normalization and the full
// middleware chain applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server on its configured port
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Serve serves HTTP on an existing listener
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", l.Addr().String()))

	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

func (s *Server) development() bool {
	return s.environment == config.EnvDevelopment
}
