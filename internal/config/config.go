// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Stevedore Contributors

// Package config loads stevedore configuration from defaults, an optional
// YAML file, and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/stevedore/stevedore/internal/loader"
	"github.com/stevedore/stevedore/internal/xdg"
)

// Config holds all stevedore settings.
type Config struct {
	// PluginsDir is the directory scanned for plugin archives.
	PluginsDir string `koanf:"plugins_dir"`
	// ArchiveSuffix selects which files in PluginsDir are archives.
	ArchiveSuffix string `koanf:"archive_suffix"`
	// EntrySuffix selects which archive entries are compiled symbols.
	EntrySuffix string `koanf:"entry_suffix"`
	// Include and Exclude are glob patterns over qualified names,
	// with '.' as the segment separator.
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`
	// MetricsAddr is the metrics/health HTTP address. Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PluginsDir:    "plugins",
		ArchiveSuffix: loader.DefaultArchiveSuffix,
		EntrySuffix:   loader.DefaultEntrySuffix,
		LogFormat:     "json",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

// Load builds the configuration: defaults first, then the file at path if
// it exists, then any changed flags. Flag names map to config keys with
// dashes replaced by underscores.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		switch _, err := os.Stat(path); {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("load config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return cfg, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks configuration constraints.
func (c Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if !strings.HasPrefix(c.ArchiveSuffix, ".") {
		return fmt.Errorf("archive_suffix must start with '.', got %q", c.ArchiveSuffix)
	}
	if !strings.HasPrefix(c.EntrySuffix, ".") {
		return fmt.Errorf("entry_suffix must start with '.', got %q", c.EntrySuffix)
	}
	return nil
}
