package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Dataset sources
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
)

// Config holds the application configuration
type Config struct {
	DatasetSource string        `env:"DATASET_SOURCE" envDefault:"csv"`
	DatasetPath   string        `env:"DATASET_PATH" envDefault:"spacex_launch_dash.csv"`
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8050"`
	DBConnStr     string        `env:"DB_CONN_STR"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	NATSURL       string        `env:"NATS_URL"`
	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"5m"`
	OutputDir     string        `env:"OUTPUT_DIR" envDefault:"./logs"`
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatasetSource = strings.ToLower(strings.TrimSpace(cfg.DatasetSource))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected dataset source has what it needs
func (c *Config) Validate() error {
	switch c.DatasetSource {
	case SourceCSV:
		if c.DatasetPath == "" {
			return fmt.Errorf("DATASET_PATH is required for the %s source", SourceCSV)
		}
	case SourcePostgres:
		if c.DBConnStr == "" {
			return fmt.Errorf("DB_CONN_STR is required for the %s source", SourcePostgres)
		}
	case SourceRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the %s source", SourceRedis)
		}
	default:
		return fmt.Errorf("unknown DATASET_SOURCE %q", c.DatasetSource)
	}

	if c.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL must be positive, got %s", c.StatsInterval)
	}
	return nil
}
