package sandbox

import (
	"errors"
	"log/slog"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/datalyst-labs/datalyst/internal/chart"
	"github.com/datalyst-labs/datalyst/internal/dataset"
)

// Variable names the executed code communicates results through.
const (
	resultVar    = "result"
	imagePathVar = "result_img_path"
)

// noResultText is returned when execution produced nothing on any
// channel.
const noResultText = "Execution finished. No result produced."

// ResultKind tags the variants of an execution outcome.
type ResultKind int

const (
	// ResultText is a plain text result (including execution errors).
	ResultText ResultKind = iota
	// ResultTable is a tabular result.
	ResultTable
	// ResultImage is a rendered chart artifact referenced by path.
	ResultImage
)

// Outcome is the classified result of one sandbox run. Exactly one of
// Text, Table, ImagePath is meaningful, selected by Kind.
type Outcome struct {
	Kind      ResultKind
	Text      string
	Table     *dataset.Frame
	ImagePath string
}

// Config configures a Runner.
type Config struct {
	// ChartDir is where rendered chart PNGs are written (system temp
	// directory if empty).
	ChartDir string
	// ChartDPI is the raster resolution for charts (chart.DefaultDPI if
	// zero).
	ChartDPI int
	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Runner executes analysis code fragments against a frame.
type Runner struct {
	chartDir string
	chartDPI int
	logger   *slog.Logger
}

// New creates a sandbox runner.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dpi := cfg.ChartDPI
	if dpi <= 0 {
		dpi = chart.DefaultDPI
	}
	return &Runner{chartDir: cfg.ChartDir, chartDPI: dpi, logger: logger}
}

// fileOptions enables the language features the synthesized templates
// rely on (top-level if/for, global reassignment).
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Execute runs the code once, synchronously, in a namespace holding only
// the dataset and the approved computation/plotting handles. Failures
// never propagate: every error terminates in a Text outcome carrying the
// message. Chart state is cleared on every exit path.
func (r *Runner) Execute(f *dataset.Frame, code string) Outcome {
	ctx := chart.NewContext()
	defer ctx.Clear()

	// The executed code works on a private copy; print output goes to a
	// run-local buffer via the thread hook, so the process's stdout is
	// never touched.
	var stdout strings.Builder
	thread := &starlark.Thread{
		Name: "analysis",
		Print: func(_ *starlark.Thread, msg string) {
			stdout.WriteString(msg)
			stdout.WriteByte('\n')
		},
	}
	predeclared := starlark.StringDict{
		"df":   &frameValue{f: f.Clone()},
		"tbl":  tblModule(),
		"num":  numModule(),
		"plot": plotModule(ctx),
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, "analysis.star", code, predeclared)
	if err != nil {
		r.logger.Debug("execution failed", "error", err)
		return execError(err)
	}
	return r.classify(globals, ctx, stdout.String())
}

// execError converts a runtime failure into the textual outcome.
func execError(err error) Outcome {
	msg := err.Error()
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		msg = evalErr.Msg
	}
	return Outcome{Kind: ResultText, Text: "Execution error: " + msg}
}

// classify resolves the result channels in fixed priority order:
// explicit image path, open figure, result variable (frame or text),
// captured print output, then the no-result text.
func (r *Runner) classify(globals starlark.StringDict, ctx *chart.Context, stdout string) Outcome {
	if v, ok := globals[imagePathVar]; ok {
		if path, isStr := starlark.AsString(v); isStr && path != "" {
			return Outcome{Kind: ResultImage, ImagePath: path}
		}
	}

	if ctx.HasFigure() {
		path, err := ctx.RenderPNG(r.chartDir, r.chartDPI)
		ctx.Clear()
		if err != nil {
			r.logger.Debug("chart rendering failed", "error", err)
			return execError(err)
		}
		return Outcome{Kind: ResultImage, ImagePath: path}
	}

	if v, ok := globals[resultVar]; ok {
		if fv, isFrame := v.(*frameValue); isFrame {
			return Outcome{Kind: ResultTable, Table: fv.f}
		}
		if s, isStr := starlark.AsString(v); isStr {
			return Outcome{Kind: ResultText, Text: s}
		}
		return Outcome{Kind: ResultText, Text: v.String()}
	}

	if out := strings.TrimSpace(stdout); out != "" {
		return Outcome{Kind: ResultText, Text: out}
	}

	return Outcome{Kind: ResultText, Text: noResultText}
}
