// Package config provides configuration loading and utilities for the
// application.
package config

import (
	"fmt"
	"time"

	"github.com/hively/hively/internal/common"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the offline gateway.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
	Origin string `mapstructure:"origin"`
}

// CacheConfig configures the versioned shell cache.
type CacheConfig struct {
	Dir      string   `mapstructure:"dir"`
	Version  string   `mapstructure:"version"`
	Shell    []string `mapstructure:"shell"`
	Precache []string `mapstructure:"precache"`
}

// ScanConfig configures the remote receipt-scanning call.
type ScanConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// NotifyConfig configures reminder notifications.
type NotifyConfig struct {
	Permission   string        `mapstructure:"permission"`
	Command      string        `mapstructure:"command"`
	WakeInterval time.Duration `mapstructure:"wake_interval"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults installs the built-in defaults on a viper instance. External
// config files and flags layer on top.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/hively/hively.db")
	v.SetDefault("server.listen", "127.0.0.1:8797")
	v.SetDefault("server.origin", "http://127.0.0.1:3000")
	v.SetDefault("cache.dir", "~/.cache/hively")
	v.SetDefault("cache.version", "v2")
	v.SetDefault("cache.shell", []string{
		"/", "/expenses", "/reports", "/reminders", "/settings", "/add-expense",
	})
	v.SetDefault("cache.precache", []string{
		"/", "/expenses", "/reports", "/reminders", "/settings", "/add-expense",
		"/manifest.json", "/icons/icon-192x192.png", "/icons/icon-512x512.png",
	})
	v.SetDefault("scan.model", "gpt-4o-mini")
	v.SetDefault("notify.permission", "default")
	v.SetDefault("notify.command", "notify-send")
	v.SetDefault("notify.wake_interval", 12*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load unmarshals and validates the configuration from a viper instance.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Cache.Dir = ExpandPath(cfg.Cache.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Cache.Version == "" {
		return fmt.Errorf("%w: cache.version", common.ErrMissingConfig)
	}
	if c.Notify.WakeInterval < 12*time.Hour {
		// The platform contract promises at most one wake per 12 hours.
		c.Notify.WakeInterval = 12 * time.Hour
	}
	switch c.Notify.Permission {
	case "default", "granted", "denied":
	default:
		return fmt.Errorf("%w: notify.permission must be default, granted, or denied", common.ErrInvalidConfig)
	}
	return nil
}
