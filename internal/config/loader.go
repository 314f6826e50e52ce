package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCOREPDF_"

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New())
//  2. YAML file at path, or at SCOREPDF_CONFIG when path is empty
//  3. env (prefix SCOREPDF_)
func Load(ctx context.Context, path string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, failure.IO("config", fmt.Errorf("%w: %w", ErrLoadConfig, err))
			}
			return nil, failure.Validation("config", fmt.Errorf("%w: %w", ErrLoadConfig, err))
		}
	}

	// SCOREPDF_GROUP_CAPACITY -> group_capacity
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, failure.Validation("config", fmt.Errorf("%w: %w", ErrLoadConfig, err))
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, failure.Validation("config", fmt.Errorf("%w: %w", ErrLoadConfig, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
