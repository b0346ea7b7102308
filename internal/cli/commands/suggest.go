package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/profile"
)

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(getConfig ConfigFn, getLogger LoggerFn) *cobra.Command {
	var filePath string
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List suggested analysis prompts for a dataset",
		Long: `Profile the dataset's columns and print ready-to-run analysis prompts.
Every suggested prompt runs without the LLM provider.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			out := cmd.OutOrStdout()
			if showSchema {
				printSchema(out, frame)
				_, _ = fmt.Fprintln(out)
			}
			for i, prompt := range engine.Suggest(frame) {
				_, _ = fmt.Fprintf(out, "%2d. %s\n", i+1, prompt)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Dataset file (CSV or JSON)")
	cmd.Flags().BoolVar(&showSchema, "schema", false, "Also print the column classification")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// printSchema writes the column classification for a frame.
func printSchema(out io.Writer, f *dataset.Frame) {
	_, _ = fmt.Fprintf(out, "%d rows x %d columns\n", f.NumRows(), f.NumCols())
	p := profile.Schema(f)
	_, _ = fmt.Fprintf(out, "numeric:     %v\n", p.Numeric)
	_, _ = fmt.Fprintf(out, "datetime:    %v\n", p.Datetime)
	_, _ = fmt.Fprintf(out, "categorical: %v\n", p.Categorical)
}
