package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile finds the config file to use.
// Priority: explicit path > datalyst.yaml > datalyst.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("datalyst.yaml"); err == nil {
		return "datalyst.yaml"
	}
	if _, err := os.Stat("datalyst.yml"); err == nil {
		return "datalyst.yml"
	}
	return ""
}

// GetConfigFileUsed returns the path of the loaded config file, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// flagKeyMap bridges CLI flag names to config keys where they differ.
var flagKeyMap = map[string]string{
	"use-llm":         "llm.enabled",
	"model":           "llm.model",
	"chart-dir":       "charts.dir",
	"chart-dpi":       "charts.dpi",
	"max-suggestions": "analysis.max_suggestions",
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config file
// > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFileUsed = ""

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose":                  false,
		"output":                   DefaultOutput,
		"llm.enabled":              false,
		"llm.model":                DefaultModel,
		"llm.base_url":             "",
		"llm.api_key_env":          DefaultAPIKeyEnv,
		"llm.timeout_seconds":      DefaultTimeoutSeconds,
		"charts.dir":               "",
		"charts.dpi":               DefaultChartDPI,
		"analysis.max_suggestions": DefaultMaxSuggestions,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		configFileUsed = path
	}

	// 3. Load environment variables (DATALYST_ prefix)
	// Transform: DATALYST_LLM__MODEL -> llm.model ("__" nests sections,
	// single underscores stay part of the key).
	if err := k.Load(env.Provider("DATALYST_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DATALYST_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeyMap[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Output {
	case "table", "csv", "json", "md", "markdown":
	default:
		return fmt.Errorf("invalid output format %q (want table, csv, json, or md)", c.Output)
	}
	if c.Charts.DPI <= 0 {
		return fmt.Errorf("charts.dpi must be positive, got %d", c.Charts.DPI)
	}
	if c.Analysis.MaxSuggestions <= 0 {
		return fmt.Errorf("analysis.max_suggestions must be positive, got %d", c.Analysis.MaxSuggestions)
	}
	return nil
}
