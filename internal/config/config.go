// Package config defines process configuration and its loading order:
// defaults, then an optional YAML file, then FRCMETRICS_-prefixed environment
// variables.
package config

import (
	"os"
	"path/filepath"
)

// Config contains process configuration for the frcmetrics CLI.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `koanf:"db_path"`

	// InboxDir is the directory the watch command monitors for incoming
	// consolidated timeline files.
	InboxDir string `koanf:"inbox_dir"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CargoPoints and PanelPoints are the scoring values used when
	// estimating points prevented by defense.
	CargoPoints float64 `koanf:"cargo_points"`
	PanelPoints float64 `koanf:"panel_points"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".frcmetrics")
	return &Config{
		DBPath:      filepath.Join(base, "metrics.db"),
		InboxDir:    filepath.Join(base, "inbox"),
		LogLevel:    "info",
		CargoPoints: 3,
		PanelPoints: 2,
	}
}
