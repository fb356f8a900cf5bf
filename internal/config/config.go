// Package config loads the spool configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level spool configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Flush     FlushConfig     `yaml:"flush"`
	Collector CollectorConfig `yaml:"collector"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig holds event store settings.
type StoreConfig struct {
	// Path is the location of the SQLite backing file.
	Path string `yaml:"path"`
	// SpaceFloor optionally overrides the 32 MiB admission floor, in bytes.
	SpaceFloor int64 `yaml:"space_floor"`
}

// FlushConfig holds delivery worker settings.
type FlushConfig struct {
	Interval time.Duration `yaml:"interval"`
	BulkSize int           `yaml:"bulk_size"`
	// MaxAge drops events older than this before each flush; zero disables.
	MaxAge time.Duration `yaml:"max_age"`
}

// CollectorConfig holds the remote collector endpoint settings.
type CollectorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with all defaults applied and no store
// path or collector URL set.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// defaults applies sane defaults to zero-valued fields.
func (c *Config) defaults() {
	if c.Flush.Interval == 0 {
		c.Flush.Interval = 15 * time.Second
	}
	if c.Flush.BulkSize == 0 {
		c.Flush.BulkSize = 100
	}
	if c.Collector.Timeout == 0 {
		c.Collector.Timeout = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// validate checks required fields and value constraints.
func (c *Config) validate() error {
	if c.Flush.Interval <= 0 {
		return fmt.Errorf("flush.interval must be positive, got %v", c.Flush.Interval)
	}
	if c.Flush.BulkSize < 1 {
		return fmt.Errorf("flush.bulk_size must be at least 1, got %d", c.Flush.BulkSize)
	}
	if c.Flush.MaxAge < 0 {
		return fmt.Errorf("flush.max_age must be non-negative, got %v", c.Flush.MaxAge)
	}
	if c.Store.SpaceFloor < 0 {
		return fmt.Errorf("store.space_floor must be non-negative, got %d", c.Store.SpaceFloor)
	}
	if c.Collector.Timeout <= 0 {
		return fmt.Errorf("collector.timeout must be positive, got %v", c.Collector.Timeout)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug|info|warn|error, got %q", c.Logging.Level)
	}
	return nil
}
