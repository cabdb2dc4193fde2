// Package config loads runtime configuration. Values come from an
// optional YAML file (with ${VAR} expansion) overridden by environment
// variables. Fail-fast: if a required value is missing after both
// sources, startup stops with an error.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the board service and the
// terminal client.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	AuthURL     string `yaml:"auth_url"`

	// Janitor: guest-owned records older than the retention window are
	// purged every PurgeIntervalHours.
	GuestRetentionDays int `yaml:"guest_retention_days"`
	PurgeIntervalHours int `yaml:"purge_interval_hours"`

	// Client presentation.
	DarkMode  bool   `yaml:"dark_mode"`
	TokenFile string `yaml:"token_file"`
}

var envPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:               "8080",
		GuestRetentionDays: 30,
		PurgeIntervalHours: 24,
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			content := envPattern.ReplaceAllStringFunc(string(b), func(m string) string {
				return os.Getenv(envPattern.FindStringSubmatch(m)[1])
			})
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.GuestRetentionDays < 1 {
		return nil, fmt.Errorf("guest_retention_days must be a positive integer, got %d", cfg.GuestRetentionDays)
	}
	if cfg.PurgeIntervalHours < 1 {
		return nil, fmt.Errorf("purge_interval_hours must be a positive integer, got %d", cfg.PurgeIntervalHours)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOARD_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("AUTH_URL"); v != "" {
		cfg.AuthURL = v
	}
	if v := os.Getenv("GUEST_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GuestRetentionDays = n
		}
	}
	if v := os.Getenv("PURGE_INTERVAL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PurgeIntervalHours = n
		}
	}
	if v := os.Getenv("BOARD_DARK_MODE"); v != "" {
		cfg.DarkMode = v == "1" || v == "true"
	}
	if v := os.Getenv("BOARD_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
}
