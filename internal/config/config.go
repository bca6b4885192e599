// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects json or console output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the recompute job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the remembered connection requests.
	DedupeSize int `koanf:"dedupe_size"`

	// RecomputeDelayMS is how long a recompute waits before ranking.
	RecomputeDelayMS int `koanf:"recompute_delay_ms"`

	// StoreBackend selects the profile directory: memory or redis.
	StoreBackend string `koanf:"store_backend"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// SeedFixture loads the demo profiles at startup.
	SeedFixture bool `koanf:"seed_fixture"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       50_000,
		RecomputeDelayMS: 2000,
		StoreBackend:     BackendMemory,
		RedisAddr:        "localhost:6379",
		RedisPrefix:      "matchmaker:",
		SeedFixture:      true,
	}
}

// RecomputeDelay returns RecomputeDelayMS as a duration.
func (c *Config) RecomputeDelay() time.Duration {
	return time.Duration(c.RecomputeDelayMS) * time.Millisecond
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.RecomputeDelayMS < 0:
		return fmt.Errorf("%w: recompute_delay_ms must not be negative, got %d", ErrInvalidConfig, c.RecomputeDelayMS)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log_format must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}
