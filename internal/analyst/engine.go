// Package analyst orchestrates one analysis request: deterministic
// intent translation first, external code provider fallback second, and
// sandboxed execution of whichever code came out.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/intent"
	"github.com/datalyst-labs/datalyst/internal/llm"
	"github.com/datalyst-labs/datalyst/internal/sandbox"
	"github.com/datalyst-labs/datalyst/internal/suggest"
)

// ErrProviderDisabled is returned when no template matches and the
// external code provider is not enabled. It carries the instructional
// message shown to the user; execution is never attempted.
var ErrProviderDisabled = errors.New(
	"this is a custom prompt that cannot be converted deterministically; " +
		"enable the LLM code provider (llm.enabled) or edit your prompt to match one of the suggested patterns")

// Config holds engine configuration.
type Config struct {
	// Provider is the external code provider; nil disables the fallback.
	Provider llm.Provider
	// ChartDir is where chart artifacts are written.
	ChartDir string
	// ChartDPI is the chart raster resolution.
	ChartDPI int
	// MaxSuggestions caps generated prompts (suggest.DefaultMax if zero).
	MaxSuggestions int
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs analyses against one dataset at a time. One request is one
// matcher pass and at most one sandbox run, blocking until done.
type Engine struct {
	provider       llm.Provider
	runner         *sandbox.Runner
	maxSuggestions int
	logger         *slog.Logger
}

// New creates an analysis engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxSuggestions := cfg.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = suggest.DefaultMax
	}
	return &Engine{
		provider: cfg.Provider,
		runner: sandbox.New(sandbox.Config{
			ChartDir: cfg.ChartDir,
			ChartDPI: cfg.ChartDPI,
			Logger:   logger,
		}),
		maxSuggestions: maxSuggestions,
		logger:         logger,
	}
}

// Suggest returns the ordered analysis prompts for the frame.
func (e *Engine) Suggest(f *dataset.Frame) []string {
	return suggest.Prompts(f, e.maxSuggestions)
}

// Analyze translates the prompt to code and executes it. Deterministic
// templates take precedence; unmatched prompts go to the external
// provider when one is configured. Execution failures come back as Text
// outcomes, never as errors; only provider and routing failures error.
func (e *Engine) Analyze(ctx context.Context, f *dataset.Frame, prompt string) (sandbox.Outcome, error) {
	code, err := intent.Translate(prompt)
	switch {
	case err == nil:
		e.logger.Debug("prompt matched deterministic template")

	case errors.Is(err, intent.ErrNoMatch):
		if e.provider == nil {
			return sandbox.Outcome{}, ErrProviderDisabled
		}
		e.logger.Debug("no template matched, asking code provider", "provider", e.provider.Name())
		raw, genErr := e.provider.Generate(ctx, prompt)
		if genErr != nil {
			return sandbox.Outcome{}, genErr
		}
		code, genErr = llm.ExtractCode(raw)
		if genErr != nil {
			return sandbox.Outcome{}, genErr
		}

	default:
		return sandbox.Outcome{}, fmt.Errorf("failed to translate prompt: %w", err)
	}

	return e.runner.Execute(f, code), nil
}
