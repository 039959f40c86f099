package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// FeedbackLevels is the number of round-robin feedback levels. Priority classes
// 1..FeedbackLevels map onto them.
const FeedbackLevels = 3

var ErrInvalidConfig = errors.New("invalid dispatcher config")

// Config mirrors config.yml
type Config struct {
	MemorySize     int    `yaml:"memory_size"`     // 256 (by default)
	Quantum        int64  `yaml:"quantum"`         // 2 (by default)
	FeedbackLevels int    `yaml:"feedback_levels"` // fixed at 3
	MaxLevel       int    `yaml:"max_level"`       // demotion clamp, 2 (by default)
	Coalesce       bool   `yaml:"coalesce"`        // merge adjacent free regions on release
	EventLog       string `yaml:"event_log"`       // optional CSV event log path
	LogLevel       string `yaml:"log_level"`       // logrus level name
}

// DefaultConfig returns the values the dispatcher uses when no file is given.
func DefaultConfig() Config {
	return Config{
		MemorySize:     256,
		Quantum:        2,
		FeedbackLevels: FeedbackLevels,
		MaxLevel:       FeedbackLevels - 1,
		LogLevel:       "info",
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithStack(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate fails on values no simulation can run with.
func (c Config) Validate() error {
	switch {
	case c.MemorySize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "memory_size must be positive, got %d", c.MemorySize)
	case c.Quantum <= 0:
		return errors.Wrapf(ErrInvalidConfig, "quantum must be positive, got %d", c.Quantum)
	case c.FeedbackLevels != FeedbackLevels:
		return errors.Wrapf(ErrInvalidConfig, "feedback_levels is fixed at %d, got %d", FeedbackLevels, c.FeedbackLevels)
	case c.MaxLevel < 0 || c.MaxLevel >= c.FeedbackLevels:
		return errors.Wrapf(ErrInvalidConfig, "max_level must be in [0,%d], got %d", c.FeedbackLevels-1, c.MaxLevel)
	}
	return nil
}
