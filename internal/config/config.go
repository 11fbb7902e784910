// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultTokenTTL    = 24 * time.Hour
)

// Config holds the service configuration. The JWT signing secret and the
// role taxonomy are process-wide, set once at startup, and passed
// explicitly into the token service and guard; nothing reads them as
// ambient globals afterwards.
type Config struct {
	ListenAddr  string        `koanf:"listen-addr"`
	MetricsAddr string        `koanf:"metrics-addr"`
	DatabaseURL string        `koanf:"database-url"`
	JWTSecret   string        `koanf:"jwt-secret"`
	TokenTTL    time.Duration `koanf:"token-ttl"`
	LogFormat   string        `koanf:"log-format"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database-url is required")
	}
	if c.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("jwt-secret is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log-format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text'")
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token-ttl must be positive")
	}
	return nil
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), and the given flag set.
// Flags win over the file, which wins over defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}

	k := koanf.New(".")

	// Defaults are seeded into koanf so the posflag provider can tell an
	// unchanged flag's built-in default apart from an explicit value: only
	// changed flags may shadow the file or the environment.
	err := k.Load(confmap.Provider(map[string]any{
		"listen-addr":  DefaultListenAddr,
		"metrics-addr": DefaultMetricsAddr,
		"database-url": os.Getenv("DATABASE_URL"),
		"jwt-secret":   os.Getenv("FIRMDECK_JWT_SECRET"),
		"token-ttl":    DefaultTokenTTL,
		"log-format":   DefaultLogFormat,
	}, "."), nil)
	if err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
