package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/delaneyj/fiberparty/scheduler"
	"gopkg.in/yaml.v3"
)

const (
	ModeSync       = "sync"
	ModeConcurrent = "concurrent"
)

// Config holds the settings of the command line tools
type Config struct {
	Mode             string        `yaml:"mode"`
	Slice            time.Duration `yaml:"slice"`
	MaxYieldInterval time.Duration `yaml:"max_yield_interval"`
	Tick             time.Duration `yaml:"tick"`
	Trace            bool          `yaml:"trace"`
	LogLevel         string        `yaml:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Mode:             ModeSync,
		Slice:            scheduler.DefaultSlice,
		MaxYieldInterval: scheduler.DefaultMaxYieldInterval,
		LogLevel:         "info",
	}
}

// Load reads the configuration at path.
// Falls back to defaults if path is empty or the file doesn't exist
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSync, ModeConcurrent:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Slice < 0 || c.MaxYieldInterval < 0 || c.Tick < 0 {
		return errors.New("durations must not be negative")
	}
	if c.MaxYieldInterval < c.Slice {
		return fmt.Errorf("max_yield_interval %v is shorter than slice %v", c.MaxYieldInterval, c.Slice)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Budget is the scheduler budget the configuration describes.
func (c *Config) Budget() scheduler.Budget {
	return scheduler.Budget{Slice: c.Slice, MaxYieldInterval: c.MaxYieldInterval}
}
