// Package config loads monthgrid settings from config files, environment
// variables, and defaults.
//
// Settings are read from monthgrid.yaml in the config search path and may be
// overridden with MONTHGRID_* environment variables (MONTHGRID_ADDR,
// MONTHGRID_DB_PATH, and so on).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the resolved monthgrid settings.
type Config struct {
	// Addr is the listen address for the API server.
	Addr string `mapstructure:"addr"`

	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"db_path"`

	// BaseURL is the server URL the client-side commands talk to.
	BaseURL string `mapstructure:"base_url"`

	// LogFile is the rotating log destination. Empty means stderr only.
	LogFile string `mapstructure:"log_file"`

	// AssetsDir is watched for changes that trigger live reloads.
	// Empty disables the watcher.
	AssetsDir string `mapstructure:"assets_dir"`

	// DebounceMS is the text field debounce delay in milliseconds.
	DebounceMS int `mapstructure:"debounce_ms"`
}

// Load reads the configuration, falling back to defaults when no config
// file is present.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("log_file", "")
	v.SetDefault("assets_dir", "")
	v.SetDefault("debounce_ms", 500)

	v.SetConfigName("monthgrid") // .yaml is implicit
	v.SetEnvPrefix("MONTHGRID")
	v.AutomaticEnv()

	if override := os.Getenv("MONTHGRID_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "monthgrid"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.DebounceMS < 0 {
		return nil, fmt.Errorf("debounce_ms must not be negative (got %d)", cfg.DebounceMS)
	}
	return &cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "monthgrid.db"
	}
	return filepath.Join(home, ".local", "share", "monthgrid", "tracker.db")
}
