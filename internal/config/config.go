package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SourceRedis  = "redis"
	SourceReplay = "replay"
)

// Config holds the order book service configuration.
type Config struct {
	// Server
	Addr               string `env:"OB_ADDR" envDefault:":8080"`
	ShutdownTimeoutSec int    `env:"SHUTDOWN_TIMEOUT_SEC" envDefault:"30"`

	// Books
	Pairs     []string `env:"OB_PAIRS" envSeparator:"," envDefault:"BTC/USDT"`
	QueueSize int      `env:"QUEUE_SIZE" envDefault:"10000"`

	// Upstream
	Source        string `env:"OB_SOURCE" envDefault:"redis"`
	ReplayFile    string `env:"OB_REPLAY_FILE"`
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	StreamKey     string `env:"STREAM_KEY" envDefault:"ob:events"`
	ConsumerGroup string `env:"CONSUMER_GROUP" envDefault:"ob-engine"`
	ConsumerName  string `env:"CONSUMER_NAME"`

	// Observability
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	pairs := cfg.Pairs[:0]
	for _, p := range cfg.Pairs {
		if p = strings.TrimSpace(p); p != "" {
			pairs = append(pairs, p)
		}
	}
	cfg.Pairs = pairs

	if cfg.ConsumerName == "" {
		host, _ := os.Hostname()
		cfg.ConsumerName = "ob-engine-" + host
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceRedis:
		if c.StreamKey == "" {
			return errors.New("stream key must be set for the redis source")
		}
	case SourceReplay:
		if c.ReplayFile == "" {
			return errors.New("OB_REPLAY_FILE must be set for the replay source")
		}
	default:
		return fmt.Errorf("invalid source: %s", c.Source)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.ShutdownTimeoutSec < 1 {
		return errors.New("shutdown timeout must be at least 1 second")
	}

	if c.QueueSize < 1 {
		return errors.New("queue size must be positive")
	}

	return nil
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", c.LogLevel)
}
