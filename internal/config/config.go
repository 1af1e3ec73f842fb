// Package config loads the daemon's configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds app configuration. User-visible settings (language)
// live in the database settings table instead; this file covers
// process-level knobs only.
type Config struct {
	// DBPath is the SQLite database file path.
	// Default: .lens/lens.db
	DBPath string `yaml:"db_path"`

	// IntervalMinutes is the sync period in minutes.
	// Default: 5, Range: 1-1440
	IntervalMinutes int `yaml:"interval_minutes"`

	// MaxConcurrentWorkspaces bounds parallel workspace rounds.
	// Default: 1, Range: 1-16
	MaxConcurrentWorkspaces int `yaml:"max_concurrent_workspaces"`

	// RequestTimeoutSeconds is the per-request timeout for remote
	// tracker calls.
	// Default: 15, Range: 1-300
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// Log configures the daemon's rotating log file. With an empty
	// file path the daemon logs to stderr.
	Log LogConfig `yaml:"log"`

	// Enrich configures optional AI summaries for newly important
	// issues.
	Enrich EnrichConfig `yaml:"enrich"`
}

// LogConfig configures log rotation for daemon mode.
type LogConfig struct {
	// File is the log file path. Empty means stderr.
	File string `yaml:"file"`
	// MaxSizeMB before rotation. Default: 10
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups to retain. Default: 3
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays to retain. Default: 28
	MaxAgeDays int `yaml:"max_age_days"`
}

// EnrichConfig configures the AI summarizer.
type EnrichConfig struct {
	// Enabled turns enrichment on. It additionally requires
	// ANTHROPIC_API_KEY in the environment.
	Enabled bool `yaml:"enabled"`
	// Model override. Empty picks the package default.
	Model string `yaml:"model"`
	// MaxIssuesPerRound caps summaries per sync round. Default: 5
	MaxIssuesPerRound int `yaml:"max_issues_per_round"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DBPath:                  ".lens/lens.db",
		IntervalMinutes:         5,
		MaxConcurrentWorkspaces: 1,
		RequestTimeoutSeconds:   15,
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Enrich: EnrichConfig{
			MaxIssuesPerRound: 5,
		},
	}
}

// Load reads the YAML config at path, layered over the defaults. A
// missing file is not an error: it yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all values are in range.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.IntervalMinutes < 1 || c.IntervalMinutes > 1440 {
		return fmt.Errorf("interval_minutes must be between 1 and 1440 (got %d)", c.IntervalMinutes)
	}
	if c.MaxConcurrentWorkspaces < 1 || c.MaxConcurrentWorkspaces > 16 {
		return fmt.Errorf("max_concurrent_workspaces must be between 1 and 16 (got %d)", c.MaxConcurrentWorkspaces)
	}
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > 300 {
		return fmt.Errorf("request_timeout_seconds must be between 1 and 300 (got %d)", c.RequestTimeoutSeconds)
	}
	return nil
}

// Interval returns the sync period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
