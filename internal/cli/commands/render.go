package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/sandbox"
)

// renderOutcome writes a classified execution outcome to w.
func renderOutcome(w io.Writer, out sandbox.Outcome, format string) error {
	switch out.Kind {
	case sandbox.ResultImage:
		_, _ = fmt.Fprintf(w, "Chart written to %s\n", out.ImagePath)
		return nil
	case sandbox.ResultTable:
		return renderFrame(w, out.Table, format)
	default:
		_, _ = fmt.Fprintln(w, out.Text)
		return nil
	}
}

// renderFrame writes a frame in the requested format.
func renderFrame(w io.Writer, f *dataset.Frame, format string) error {
	switch format {
	case "json":
		return renderJSON(w, f)
	case "csv":
		return dataset.WriteCSV(w, f)
	case "md", "markdown":
		return renderMarkdown(w, f)
	default:
		return renderTable(w, f)
	}
}

func renderTable(w io.Writer, f *dataset.Frame) error {
	if f.NumRows() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	names := f.Names()
	headerRow := make(table.Row, len(names))
	for i, name := range names {
		headerRow[i] = name
	}
	t.AppendHeader(headerRow)

	for i := 0; i < f.NumRows(); i++ {
		row := make(table.Row, f.NumCols())
		for j := 0; j < f.NumCols(); j++ {
			row[j] = f.ColAt(j).CellString(i)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", f.NumRows())
	return nil
}

func renderJSON(w io.Writer, f *dataset.Frame) error {
	names := f.Names()
	records := make([]map[string]any, 0, f.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		rec := make(map[string]any, len(names))
		for j, name := range names {
			col := f.ColAt(j)
			if col.IsMissing(i) {
				rec[name] = nil
			} else if col.Kind == dataset.KindNumeric {
				rec[name] = col.Nums[i]
			} else {
				rec[name] = col.CellString(i)
			}
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderMarkdown(w io.Writer, f *dataset.Frame) error {
	if f.NumRows() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	names := f.Names()
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(names, " | "))
	seps := make([]string, len(names))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
	for i := 0; i < f.NumRows(); i++ {
		cells := make([]string, f.NumCols())
		for j := 0; j < f.NumCols(); j++ {
			cells[j] = f.ColAt(j).CellString(i)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}
