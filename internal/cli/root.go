// Package cli provides the command-line interface for Datalyst.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/datalyst-labs/datalyst/internal/cli/commands"
	"github.com/datalyst-labs/datalyst/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datalyst",
		Short: "Datalyst - Personal Data Analyst",
		Long: `Datalyst turns natural-language questions about a tabular dataset into
computed results. Known prompts are translated deterministically into
sandboxed analysis code; custom prompts can fall back to an LLM code
provider. Results come back as text, tables, or chart images.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := slog.New(slog.DiscardHandler)
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Personal Data Analyst built with Go and Starlark
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./datalyst.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|csv|json|md)")
	rootCmd.PersistentFlags().Bool("use-llm", false, "Enable the LLM code provider for custom prompts")
	rootCmd.PersistentFlags().String("model", "", "LLM model name")
	rootCmd.PersistentFlags().String("chart-dir", "", "Directory for rendered chart PNGs")
	rootCmd.PersistentFlags().Int("chart-dpi", 0, "Chart raster resolution")
	rootCmd.PersistentFlags().Int("max-suggestions", 0, "Maximum number of suggested prompts")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "csv", "json", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewAnalyzeCommand(GetConfig, GetLogger))
	rootCmd.AddCommand(commands.NewSuggestCommand(GetConfig, GetLogger))
	rootCmd.AddCommand(commands.NewREPLCommand(GetConfig, GetLogger))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Output: config.DefaultOutput,
		LLM: config.LLMConfig{
			Model:          config.DefaultModel,
			APIKeyEnv:      config.DefaultAPIKeyEnv,
			TimeoutSeconds: config.DefaultTimeoutSeconds,
		},
		Charts:   config.ChartsConfig{DPI: config.DefaultChartDPI},
		Analysis: config.AnalysisConfig{MaxSuggestions: config.DefaultMaxSuggestions},
	}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
