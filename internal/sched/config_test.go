package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 256, cfg.MemorySize)
	assert.Equal(t, int64(2), cfg.Quantum)
	assert.Equal(t, 2, cfg.MaxLevel)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("memory_size: 1024\nquantum: 4\ncoalesce: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.MemorySize)
	assert.Equal(t, int64(4), cfg.Quantum)
	assert.True(t, cfg.Coalesce)
	assert.Equal(t, FeedbackLevels, cfg.FeedbackLevels)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		valid  bool
	}{
		"defaults":          {mutate: func(*Config) {}, valid: true},
		"zero memory":       {mutate: func(c *Config) { c.MemorySize = 0 }},
		"negative quantum":  {mutate: func(c *Config) { c.Quantum = -1 }},
		"four levels":       {mutate: func(c *Config) { c.FeedbackLevels = 4 }},
		"max level too big": {mutate: func(c *Config) { c.MaxLevel = 3 }},
		"max level one":     {mutate: func(c *Config) { c.MaxLevel = 1 }, valid: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			}
		})
	}
}
