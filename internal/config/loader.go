package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "DOJO_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if DOJO_CONFIG is set
//  3. env (prefix DOJO_), after reading a .env file when one exists
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DOJO_BOUT_INTERVAL_MINUTES -> bout_interval_minutes. Keys stay flat so
	// underscores match the koanf tags, except map entries:
	// DOJO_RANK_THRESHOLDS_GREEN -> rank_thresholds.green. List values are
	// comma separated.
	envProvider := env.ProviderWithValue(envPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Config keys holding maps; an env suffix after these names one entry.
var mapKeys = []string{"rank_thresholds", "metrics_labels"}

func envKey(key, value string) (string, interface{}) {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
	switch key {
	case "cors_allowed_origins", "metrics_buckets":
		return key, splitList(value)
	}
	for _, m := range mapKeys {
		if entry, ok := strings.CutPrefix(key, m+"_"); ok && entry != "" {
			return m + "." + entry, value
		}
	}
	return key, value
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
