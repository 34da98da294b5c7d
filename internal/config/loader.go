package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TAKSIR_CONFIG is set
//  3. env (prefix TAKSIR_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TAKSIR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TAKSIR_ADDR, TAKSIR_CSV_PATH, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TAKSIR_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "taksir_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CSVPath == "":
		return fmt.Errorf("%w: csv_path must not be empty", ErrInvalidConfig)
	case c.SessionDBPath == "":
		return fmt.Errorf("%w: session_db_path must not be empty", ErrInvalidConfig)
	case c.SpreadsheetID == "":
		return fmt.Errorf("%w: spreadsheet_id must not be empty", ErrInvalidConfig)
	case c.CorrectionMaxRatio <= c.CorrectionMinRatio:
		return fmt.Errorf("%w: correction_max_ratio must exceed correction_min_ratio", ErrInvalidConfig)
	}
	return nil
}
