// Package config provides configuration loading for folio.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/folio/internal/compiler"
)

// Config represents the complete folio configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Compile  CompileConfig  `yaml:"compile"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path is the database file (default: folio.db)
	Path string `yaml:"path"`
}

// CompileConfig configures compilation.
type CompileConfig struct {
	// JumpPolicy is "orphan" (default) or "reject"
	JumpPolicy string `yaml:"jump_policy"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile is a Prometheus textfile written after each compile (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error (default: info)
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "folio.db"},
		Compile:  CompileConfig{JumpPolicy: string(compiler.JumpOrphan)},
		Metrics:  MetricsConfig{Textfile: ""},
		Log:      LogConfig{Level: "info"},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := compiler.ParseJumpPolicy(c.Compile.JumpPolicy); err != nil {
		return fmt.Errorf("compile.jump_policy: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// JumpPolicy returns the validated compile.jump_policy.
func (c *Config) JumpPolicy() compiler.JumpPolicy {
	p, err := compiler.ParseJumpPolicy(c.Compile.JumpPolicy)
	if err != nil {
		return compiler.JumpOrphan
	}
	return p
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: invalid level %q", c.Log.Level)
	}
	return level, nil
}

// LoadFromFile loads configuration from a YAML file.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Database.Path != "" {
		c.Database.Path = other.Database.Path
	}
	if other.Compile.JumpPolicy != "" {
		c.Compile.JumpPolicy = other.Compile.JumpPolicy
	}
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
