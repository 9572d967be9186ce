package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// EnvDevelopment is the environment label under which fault details are echoed to clients.
const EnvDevelopment = "development"

const (
	apiKeyVar = "OPENROUTER_API_KEY"
	falKeyVar = "FAL_KEY"
)

// Config holds all configuration for the devops API
type Config struct {
	// Server configuration
	Port        int    `env:"PORT" envDefault:"3000"`
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"0"` // 0 disables the gRPC health listener
	Environment string `env:"NODE_ENV" envDefault:"development"`
	Hostname    string `env:"HOSTNAME" envDefault:"unknown"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	MetricsEnabled bool  `env:"METRICS_ENABLED" envDefault:"true"`
	MaxBodyBytes   int64 `env:"MAX_BODY_BYTES" envDefault:"102400"`

	// Timeouts
	Timeouts TimeoutConfig

	// Presence of secret environment variables. The values themselves are never read.
	HasAPIKey bool
	HasFalKey bool
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the process environment
func Load() (*Config, error) {
	return LoadFrom(environMap(os.Environ()))
}

// LoadFrom reads configuration from the given environment map instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	_, cfg.HasAPIKey = environ[apiKeyVar]
	_, cfg.HasFalKey = environ[falKeyVar]

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		return fmt.Errorf("gRPC port must differ from HTTP port: %d", c.GRPCPort)
	}

	if c.Environment == "" {
		return fmt.Errorf("environment name must not be empty")
	}

	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("max body bytes must be positive: %d", c.MaxBodyBytes)
	}

	if c.Timeouts.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive: %s", c.Timeouts.ShutdownTimeout)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// IsDevelopment reports whether fault details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// GRPCEnabled reports whether the gRPC health listener should be started
func (c *Config) GRPCEnabled() bool {
	return c.GRPCPort > 0
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
