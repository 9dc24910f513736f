// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tathienbao/indicator-engine/internal/types"
	"github.com/tathienbao/indicator-engine/pkg/indicator"
	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration.
type Config struct {
	Feed        FeedConfig         `yaml:"feed"`
	Indicators  []indicator.Config `yaml:"indicators"`
	Persistence PersistenceConfig  `yaml:"persistence"`
	Metrics     MetricsConfig      `yaml:"metrics"`
}

// FeedConfig holds bar feed settings.
type FeedConfig struct {
	Symbol        string  `yaml:"symbol"`
	Path          string  `yaml:"path"`           // CSV file path
	Timeframe     string  `yaml:"timeframe"`      // e.g. 5m, 1h
	ReplayPerSec  float64 `yaml:"replay_per_sec"` // 0 = emit as fast as possible
	ChannelBuffer int     `yaml:"channel_buffer"`
}

// PersistenceConfig holds persistence settings.
type PersistenceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // sqlite database path
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Feed.Symbol == "" {
		errs = append(errs, "feed.symbol is required")
	}
	if c.Feed.Timeframe != "" {
		if _, err := types.ParseTimeframe(c.Feed.Timeframe); err != nil {
			errs = append(errs, fmt.Sprintf("feed.timeframe %q is not valid", c.Feed.Timeframe))
		}
	}
	if c.Feed.ReplayPerSec < 0 {
		errs = append(errs, "feed.replay_per_sec must not be negative")
	}
	if c.Feed.ChannelBuffer < 0 {
		errs = append(errs, "feed.channel_buffer must not be negative")
	}

	if len(c.Indicators) == 0 {
		errs = append(errs, "at least one indicator is required")
	}
	seen := make(map[string]bool, len(c.Indicators))
	for i, ic := range c.Indicators {
		if err := ic.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("indicators[%d]: %v", i, err))
			continue
		}
		if ic.Name != "" {
			if seen[ic.Name] {
				errs = append(errs, fmt.Sprintf("indicators[%d]: duplicate name %q", i, ic.Name))
			}
			seen[ic.Name] = true
		}
	}

	if c.Persistence.Enabled && c.Persistence.Path == "" {
		errs = append(errs, "persistence.path is required when persistence is enabled")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			errs = append(errs, "metrics.port must be a valid TCP port")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// BuildIndicators constructs an indicator instance for every configured
// entry.
func (c *Config) BuildIndicators() ([]indicator.Indicator, error) {
	out := make([]indicator.Indicator, 0, len(c.Indicators))
	for i, ic := range c.Indicators {
		ind, err := indicator.New(ic)
		if err != nil {
			return nil, fmt.Errorf("indicators[%d]: %w", i, err)
		}
		out = append(out, ind)
	}
	return out, nil
}

// Timeframe returns the parsed feed timeframe, defaulting to 5m.
func (c *Config) Timeframe() types.Timeframe {
	if c.Feed.Timeframe == "" {
		return types.Timeframe5m
	}
	tf, err := types.ParseTimeframe(c.Feed.Timeframe)
	if err != nil {
		return types.Timeframe5m
	}
	return tf
}

// MetricsAddr returns the metrics listen address.
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf(":%d", c.Metrics.Port)
}

// ReplayInterval returns the minimum delay between replayed bars, or
// zero when replay throttling is disabled.
func (c *Config) ReplayInterval() time.Duration {
	if c.Feed.ReplayPerSec <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.Feed.ReplayPerSec)
}
