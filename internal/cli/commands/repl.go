package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/datalyst-labs/datalyst/internal/analyst"
	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/llm"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand(getConfig ConfigFn, getLogger LoggerFn) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive analysis shell for a dataset",
		Long: `Open an interactive shell against the dataset. Enter a suggestion
number or a free-text prompt; dot-commands control the session.`,
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
			return runREPL(cmd, engine, frame, cfg.Output)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Dataset file (CSV or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runREPL(cmd *cobra.Command, engine *analyst.Engine, frame *dataset.Frame, format string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "datalyst> ",
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	suggestions := engine.Suggest(frame)

	_, _ = fmt.Fprintf(out, "Datalyst shell: %d rows x %d columns\n", frame.NumRows(), frame.NumCols())
	_, _ = fmt.Fprintln(out, "Type a suggestion number or a prompt; .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)
	printSuggestions(out, suggestions)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(out, line, frame, suggestions); quit {
				break
			}
			continue
		}

		prompt := line
		if n, err := strconv.Atoi(line); err == nil {
			if n < 1 || n > len(suggestions) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No suggestion %d (1-%d)\n", n, len(suggestions))
				continue
			}
			prompt = suggestions[n-1]
			_, _ = fmt.Fprintf(out, "> %s\n", prompt)
		}

		outcome, err := engine.Analyze(cmd.Context(), frame, prompt)
		if err != nil {
			var provErr *llm.ProviderError
			if errors.As(err, &provErr) && provErr.Raw != "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Raw provider output:")
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), provErr.Raw)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		if err := renderOutcome(out, outcome, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func printSuggestions(out io.Writer, suggestions []string) {
	for i, s := range suggestions {
		_, _ = fmt.Fprintf(out, "%2d. %s\n", i+1, s)
	}
	_, _ = fmt.Fprintln(out)
}

// handleDotCommand runs a dot-command; returns true to quit the REPL.
func handleDotCommand(out io.Writer, line string, frame *dataset.Frame, suggestions []string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true

	case ".suggest":
		printSuggestions(out, suggestions)

	case ".schema":
		printSchema(out, frame)

	case ".help":
		_, _ = fmt.Fprintln(out, "Commands:")
		_, _ = fmt.Fprintln(out, "  <n>        run suggestion number n")
		_, _ = fmt.Fprintln(out, "  <prompt>   run a free-text analysis prompt")
		_, _ = fmt.Fprintln(out, "  .suggest   list suggested prompts")
		_, _ = fmt.Fprintln(out, "  .schema    show the column classification")
		_, _ = fmt.Fprintln(out, "  .quit      exit")

	default:
		_, _ = fmt.Fprintf(out, "Unknown command %s (try .help)\n", line)
	}
	return false
}
