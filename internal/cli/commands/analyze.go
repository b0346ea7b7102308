package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/llm"
	"github.com/datalyst-labs/datalyst/internal/sandbox"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(getConfig ConfigFn, getLogger LoggerFn) *cobra.Command {
	var filePath string
	var exportPath string

	cmd := &cobra.Command{
		Use:   "analyze [prompt...]",
		Short: "Run one analysis prompt against a dataset",
		Long: `Translate a natural-language prompt into analysis code and execute it
against the dataset. Prompts matching a known pattern run without any
LLM; custom prompts need the LLM code provider enabled (--use-llm).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())

			frame, err := loadFrame(filePath)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			outcome, err := engine.Analyze(cmd.Context(), frame, prompt)
			if err != nil {
				var provErr *llm.ProviderError
				if errors.As(err, &provErr) && provErr.Raw != "" {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Raw provider output:")
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), provErr.Raw)
				}
				return err
			}

			if err := renderOutcome(cmd.OutOrStdout(), outcome, cfg.Output); err != nil {
				return err
			}
			if exportPath != "" {
				return exportCSV(exportPath, outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Dataset file (CSV or JSON)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write a table result to this CSV file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// exportCSV writes a table outcome to path in the export contract
// format (comma separated, UTF-8, header row, no index column).
func exportCSV(path string, out sandbox.Outcome) error {
	if out.Kind != sandbox.ResultTable {
		return fmt.Errorf("result is not a table, nothing to export")
	}
	f, err := os.Create(path) //nolint:gosec // G304: user-supplied export path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := dataset.WriteCSV(f, out.Table); err != nil {
		return fmt.Errorf("failed to export CSV: %w", err)
	}
	return nil
}
