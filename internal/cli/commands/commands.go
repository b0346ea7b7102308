// Package commands implements the Datalyst CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/datalyst-labs/datalyst/internal/analyst"
	"github.com/datalyst-labs/datalyst/internal/cli/config"
	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/llm"
)

// ConfigFn retrieves the loaded config from the command context.
type ConfigFn func(context.Context) *config.Config

// LoggerFn retrieves the logger from the command context.
type LoggerFn func(context.Context) *slog.Logger

// buildEngine wires the analysis engine from config. The LLM provider is
// only constructed when enabled, so a missing API key does not block
// deterministic-only use.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*analyst.Engine, error) {
	var provider llm.Provider
	if cfg.LLM.Enabled {
		client, err := llm.NewClient(llm.Config{
			APIKey:  os.Getenv(cfg.LLM.APIKeyEnv),
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM provider is enabled but unusable: %w", err)
		}
		provider = client
	}
	return analyst.New(analyst.Config{
		Provider:       provider,
		ChartDir:       cfg.Charts.Dir,
		ChartDPI:       cfg.Charts.DPI,
		MaxSuggestions: cfg.Analysis.MaxSuggestions,
		Logger:         logger,
	}), nil
}

// loadFrame loads the dataset file. Load failures stop the flow before
// any analysis is attempted.
func loadFrame(path string) (*dataset.Frame, error) {
	if path == "" {
		return nil, fmt.Errorf("no dataset file given (use --file)")
	}
	f, err := dataset.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return f, nil
}
