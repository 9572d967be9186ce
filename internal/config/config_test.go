package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 0, cfg.GRPCPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "unknown", cfg.Hostname)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, int64(102400), cfg.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.ReadHeaderTimeout)
	assert.False(t, cfg.HasAPIKey)
	assert.False(t, cfg.HasFalKey)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.GRPCEnabled())
	assert.Equal(t, ":3000", cfg.GetHTTPAddr())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":             "8081",
		"GRPC_PORT":        "9091",
		"NODE_ENV":         "production",
		"HOSTNAME":         "pod-7f9c",
		"LOG_LEVEL":        "debug",
		"METRICS_ENABLED":  "false",
		"MAX_BODY_BYTES":   "2048",
		"SHUTDOWN_TIMEOUT": "3s",
	})
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 9091, cfg.GRPCPort)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "pod-7f9c", cfg.Hostname)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.ShutdownTimeout)

	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.GRPCEnabled())
	assert.Equal(t, ":9091", cfg.GetGRPCAddr())
}

func TestLoadFrom_SecretPresence(t *testing.T) {
	tests := []struct {
		name      string
		environ   map[string]string
		hasAPIKey bool
		hasFalKey bool
	}{
		{
			name:    "neither set",
			environ: map[string]string{},
		},
		{
			name:      "api key set",
			environ:   map[string]string{"OPENROUTER_API_KEY": "sk-or-123"},
			hasAPIKey: true,
		},
		{
			name:      "fal key set",
			environ:   map[string]string{"FAL_KEY": "fal-abc"},
			hasFalKey: true,
		},
		{
			name:      "empty values still count as present",
			environ:   map[string]string{"OPENROUTER_API_KEY": "", "FAL_KEY": ""},
			hasAPIKey: true,
			hasFalKey: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.environ)
			require.NoError(t, err)
			assert.Equal(t, tt.hasAPIKey, cfg.HasAPIKey)
			assert.Equal(t, tt.hasFalKey, cfg.HasFalKey)
		})
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		errMsg  string
	}{
		{"port not a number", map[string]string{"PORT": "http"}, "failed to parse config"},
		{"port out of range", map[string]string{"PORT": "70000"}, "invalid HTTP port"},
		{"port zero", map[string]string{"PORT": "0"}, "invalid HTTP port"},
		{"negative grpc port", map[string]string{"GRPC_PORT": "-1"}, "invalid gRPC port"},
		{"grpc port clashes", map[string]string{"PORT": "4000", "GRPC_PORT": "4000"}, "must differ"},
		{"bad log level", map[string]string{"LOG_LEVEL": "trace"}, "invalid log level"},
		{"zero body limit", map[string]string{"MAX_BODY_BYTES": "0"}, "max body bytes"},
		{"zero shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "0s"}, "shutdown timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("PORT", "3100")
	t.Setenv("FAL_KEY", "x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3100, cfg.Port)
	assert.True(t, cfg.HasFalKey)
}

func TestEnvironMap(t *testing.T) {
	m := environMap([]string{"A=1", "B=x=y", "C=", "broken"})

	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, m)
}
