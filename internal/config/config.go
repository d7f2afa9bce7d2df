package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Flavor text sources for actions no rule covers.
const (
	FlavorStatic = "static"
	FlavorBooks  = "books"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	SessionStore string        // memory or redis
	RedisURL     string        // redis://host:port/db
	SessionTTL   time.Duration // Idle sessions expire after this long

	DataDir       string  // Extra scenario JSON files, loaded next to the built-in ones
	AmbientChance float64 // Probability of an ambient event per action
	RNGSeed       uint64  // 0 picks a random seed per session
	ContentRating string
	Flavor        string // static or books

	Workers   int    // In-process queue workers; 0 leaves queued actions to cmd/worker
	QueueSize int    // Capacity of the in-memory action queue
	WorkerID  string // Worker name in logs, random when empty

	TracesEnabled bool
	OTLPEndpoint  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:       getEnv("DATA_DIR", ""),
		ContentRating: getEnv("CONTENT_RATING", "PG13"),
		Flavor:        strings.ToLower(getEnv("FLAVOR", FlavorBooks)),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		WorkerID:      getEnv("WORKER_ID", ""),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "2h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.AmbientChance, err = strconv.ParseFloat(getEnv("AMBIENT_CHANCE", "0.1"), 64); err != nil {
		return nil, fmt.Errorf("invalid AMBIENT_CHANCE: %w", err)
	}
	if cfg.AmbientChance < 0 || cfg.AmbientChance > 1 {
		return nil, fmt.Errorf("AMBIENT_CHANCE must be between 0 and 1, got %v", cfg.AmbientChance)
	}
	if cfg.RNGSeed, err = strconv.ParseUint(getEnv("RNG_SEED", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid RNG_SEED: %w", err)
	}
	if cfg.TracesEnabled, err = strconv.ParseBool(getEnv("OTEL_TRACES_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("invalid OTEL_TRACES_ENABLED: %w", err)
	}

	if cfg.Workers, err = strconv.Atoi(getEnv("WORKERS", "1")); err != nil || cfg.Workers < 0 {
		return nil, fmt.Errorf("invalid WORKERS %q: must be a non-negative integer", os.Getenv("WORKERS"))
	}
	if cfg.QueueSize, err = strconv.Atoi(getEnv("QUEUE_SIZE", "256")); err != nil || cfg.QueueSize < 1 {
		return nil, fmt.Errorf("invalid QUEUE_SIZE %q: must be a positive integer", os.Getenv("QUEUE_SIZE"))
	}

	switch cfg.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q (supported: %s, %s)", cfg.SessionStore, StoreMemory, StoreRedis)
	}
	switch cfg.Flavor {
	case FlavorStatic, FlavorBooks:
	default:
		return nil, fmt.Errorf("unsupported FLAVOR %q (supported: %s, %s)", cfg.Flavor, FlavorStatic, FlavorBooks)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
