package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.InDelta(t, 0.1, cfg.AmbientChance, 1e-9)
	assert.Zero(t, cfg.RNGSeed)
	assert.False(t, cfg.TracesEnabled)
	assert.Equal(t, FlavorBooks, cfg.Flavor)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 256, cfg.QueueSize)
	assert.Empty(t, cfg.WorkerID)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("AMBIENT_CHANCE", "0")
	t.Setenv("RNG_SEED", "42")
	t.Setenv("OTEL_TRACES_ENABLED", "true")
	t.Setenv("FLAVOR", "static")
	t.Setenv("WORKERS", "0")
	t.Setenv("QUEUE_SIZE", "16")
	t.Setenv("WORKER_ID", "worker-a")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Zero(t, cfg.AmbientChance)
	assert.Equal(t, uint64(42), cfg.RNGSeed)
	assert.True(t, cfg.TracesEnabled)
	assert.Equal(t, FlavorStatic, cfg.Flavor)
	assert.Zero(t, cfg.Workers)
	assert.Equal(t, 16, cfg.QueueSize)
	assert.Equal(t, "worker-a", cfg.WorkerID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SESSION_TTL", "forever"},
		{"AMBIENT_CHANCE", "lots"},
		{"AMBIENT_CHANCE", "1.5"},
		{"RNG_SEED", "-1"},
		{"OTEL_TRACES_ENABLED", "maybe"},
		{"SESSION_STORE", "mongo"},
		{"FLAVOR", "llm"},
		{"WORKERS", "-1"},
		{"WORKERS", "many"},
		{"QUEUE_SIZE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
