package config

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (Default())
//  2. YAML file at path, when path is non-empty
//  3. environment variables (prefix FRCMETRICS_)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// FRCMETRICS_DB_PATH -> db_path, FRCMETRICS_CARGO_POINTS -> cargo_points.
	envProvider := env.Provider("FRCMETRICS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "frcmetrics_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	if cfg.CargoPoints <= 0 || cfg.PanelPoints <= 0 {
		return nil, errors.New("piece point values must be positive")
	}
	return &cfg, nil
}
