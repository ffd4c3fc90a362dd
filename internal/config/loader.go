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
//  2. file (YAML) if SWEATSTAKE_CONFIG is set
//  3. env (prefix SWEATSTAKE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SWEATSTAKE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: SWEATSTAKE_ADDR, SWEATSTAKE_RUN_INTERVAL_SEC, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("SWEATSTAKE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sweatstake_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.LedgerEndpoint == "":
		return nil, fmt.Errorf("%w: ledger_endpoint must not be empty", ErrInvalidConfig)
	case cfg.RunIntervalSec <= 0:
		return nil, fmt.Errorf("%w: run_interval_sec must be positive", ErrInvalidConfig)
	case cfg.RunBudgetSec <= 0:
		return nil, fmt.Errorf("%w: run_budget_sec must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
