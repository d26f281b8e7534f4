// Package config loads the gdf CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config mirrors ~/.config/gdf/config.yaml. Pointer fields distinguish "not
// set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Depth is the default parse depth for inspect: none, min or all.
	Depth     string `yaml:"depth"`
	MemoryMap *bool  `yaml:"memory_map"`
	RowLimit  *int   `yaml:"row_limit"`
	Output    string `yaml:"output"`
	Jobs      *int   `yaml:"jobs"`
}

// DefaultPath returns the per-user config location, or "" when the platform
// has no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gdf", "config.yaml")
}

// Load reads path. A missing file yields a zero Config; a malformed one is an
// error.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Depth {
	case "", "none", "min", "all":
	default:
		return fmt.Errorf("depth %q: want none, min or all", c.Depth)
	}
	switch c.Output {
	case "", "text", "json", "yaml":
	default:
		return fmt.Errorf("output %q: want text, json or yaml", c.Output)
	}
	if c.RowLimit != nil && *c.RowLimit < 0 {
		return fmt.Errorf("row_limit %d is negative", *c.RowLimit)
	}
	if c.Jobs != nil && *c.Jobs < 1 {
		return fmt.Errorf("jobs %d must be at least 1", *c.Jobs)
	}
	return nil
}
