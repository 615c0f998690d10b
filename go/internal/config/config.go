// Package config defines the process configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel error kinds for this package
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "console" for humans or "json".
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	Storage Storage `koanf:"storage"`
	Redis   Redis   `koanf:"redis"`
	NATS    NATS    `koanf:"nats"`
	Events  Events  `koanf:"events"`
	Buzzer  Buzzer  `koanf:"buzzer"`
	Match   Match   `koanf:"match"`
	Metrics Metrics `koanf:"metrics"`
}

// Storage selects the snapshot and roster backend
type Storage struct {
	// Backend is one of memory, sqlite, postgres, redis.
	Backend    string `koanf:"backend"`
	SQLitePath string `koanf:"sqlite_path"`
}

// Redis is shared by the redis storage backend and the redis event stream
type Redis struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// NATS configures the JetStream event publisher
type NATS struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	Stream        string `koanf:"stream"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// Events configures notification delivery
type Events struct {
	QueueSize         int   `koanf:"queue_size"`
	RedisStream       bool  `koanf:"redis_stream"`
	RedisStreamMaxLen int64 `koanf:"redis_stream_max_len"`
}

// Buzzer configures the horn sent to displays when a clock expires
type Buzzer struct {
	Enabled     bool    `koanf:"enabled"`
	FrequencyHz float64 `koanf:"frequency_hz"`
	DurationMs  int     `koanf:"duration_ms"`
	Volume      float64 `koanf:"volume"`
}

// Duration returns the horn length
func (b Buzzer) Duration() time.Duration {
	return time.Duration(b.DurationMs) * time.Millisecond
}

// Match configures the engine
type Match struct {
	// ResumePolicy is "reanchor" or "catch_up".
	ResumePolicy string `koanf:"resume_policy"`
	// Preset applies a rule preset to a fresh match, empty keeps the defaults.
	Preset string `koanf:"preset"`
}

// Metrics configures the Prometheus endpoint
type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// New returns a Config holding every default
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		Addr:      ":8080",
		Storage: Storage{
			Backend:    "sqlite",
			SQLitePath: "courtside.db",
		},
		Redis: Redis{
			Addr:      "localhost:6379",
			KeyPrefix: "courtside",
		},
		NATS: NATS{
			URL:           "nats://127.0.0.1:4222",
			Stream:        "COURTSIDE_EVENTS",
			SubjectPrefix: "courtside.events",
		},
		Events: Events{
			QueueSize:         256,
			RedisStreamMaxLen: 10_000,
		},
		Buzzer: Buzzer{
			Enabled:     true,
			FrequencyHz: 440,
			DurationMs:  600,
			Volume:      0.4,
		},
		Match: Match{
			ResumePolicy: "reanchor",
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "memory", "postgres", "redis":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("%w: storage.sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	switch c.Match.ResumePolicy {
	case "reanchor", "catch_up":
	default:
		return fmt.Errorf("%w: match.resume_policy must be reanchor or catch_up, got %q", ErrInvalidConfig, c.Match.ResumePolicy)
	}
	if c.Events.QueueSize <= 0 {
		return fmt.Errorf("%w: events.queue_size must be positive", ErrInvalidConfig)
	}
	if c.Buzzer.Enabled && (c.Buzzer.DurationMs <= 0 || c.Buzzer.FrequencyHz <= 0) {
		return fmt.Errorf("%w: buzzer needs a positive frequency and duration", ErrInvalidConfig)
	}
	return nil
}
