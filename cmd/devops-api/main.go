package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aescanero/devops-api/internal/config"
	"github.com/aescanero/devops-api/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/devops-api/pkg/api/grpc"
	"github.com/aescanero/devops-api/pkg/api/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

// run serves until ctx is cancelled or a listener fails, then drains and
// returns the process exit code.
func run(ctx context.Context) int {
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting devops API",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("environment", cfg.Environment))

	var collector *prometheus.Collector
	if cfg.MetricsEnabled {
		collector = prometheus.NewCollector()
	}

	httpServer := http.NewServer(&http.Config{
		Addr:              cfg.GetHTTPAddr(),
		Environment:       cfg.Environment,
		Hostname:          cfg.Hostname,
		HasAPIKey:         cfg.HasAPIKey,
		HasFalKey:         cfg.HasFalKey,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		ReadHeaderTimeout: cfg.Timeouts.ReadHeaderTimeout,
		StartedAt:         startedAt,
		Metrics:           collector,
		Logger:            logger,
	})

	var grpcServer *grpc.Server
	if cfg.GRPCEnabled() {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Addr:   cfg.GetGRPCAddr(),
			Logger: logger,
		})
		if err != nil {
			logger.Error("failed to create gRPC server", zap.Error(err))
			return 1
		}
	}

	// Start servers
	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	logger.Info("devops API started",
		zap.Int("http_port", cfg.Port),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled))
	if cfg.IsDevelopment() {
		logger.Info("health check available", zap.String("url", fmt.Sprintf("http://localhost:%d/health", cfg.Port)))
	}

	// Wait for a shutdown signal or a listener failure
	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		exitCode = 1
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
		exitCode = 1
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
			exitCode = 1
		}
	}

	logger.Info("devops API shut down complete", zap.Int("exit_code", exitCode))
	return exitCode
}

// initLogger builds the production JSON logger; unknown levels fall back to info
func initLogger(level string) *zap.Logger {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
