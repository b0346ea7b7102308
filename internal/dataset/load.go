package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Load reads a tabular file into a frame, choosing the format from the
// file extension. Unknown extensions fall back to a CSV sniff, then JSON.
func Load(path string) (*Frame, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied dataset path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(bytes.NewReader(raw))
	case ".json":
		return ReadJSON(bytes.NewReader(raw))
	default:
		if looksLikeCSV(raw) {
			return ReadCSV(bytes.NewReader(raw))
		}
		if f, err := ReadJSON(bytes.NewReader(raw)); err == nil {
			return f, nil
		}
		return ReadCSV(bytes.NewReader(raw))
	}
}

// looksLikeCSV applies a cheap byte-level sniff to the file head.
func looksLikeCSV(raw []byte) bool {
	sample := raw
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	return bytes.ContainsRune(sample, ',') && bytes.ContainsRune(sample, '\n')
}

// ReadCSV parses CSV with a header row. Column types are inferred: a
// column whose every non-empty cell parses as a number becomes numeric,
// everything else stays text. Empty cells are missing.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV input has no header row")
	}
	header := records[0]
	rows := records[1:]
	cols := make([]Column, len(header))
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				cells[i] = rec[j]
			}
		}
		cols[j] = inferColumn(strings.TrimSpace(name), cells)
	}
	return New(cols...)
}

// inferColumn types a column of raw text cells.
func inferColumn(name string, cells []string) Column {
	missing := make([]bool, len(cells))
	nums := make([]float64, len(cells))
	numeric := true
	present := 0
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			missing[i] = true
			continue
		}
		present++
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
		} else {
			nums[i] = v
		}
	}
	if numeric && present > 0 {
		return NumericColumn(name, nums, missing)
	}
	strs := make([]string, len(cells))
	for i, cell := range cells {
		strs[i] = strings.TrimSpace(cell)
	}
	return StringColumn(name, strs, missing)
}

// ReadJSON parses an array of flat JSON objects. Column order follows
// first appearance across records.
func ReadJSON(r io.Reader) (*Frame, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	// Map iteration is unordered; walk sorted keys per record so column
	// order is deterministic.
	var names []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}

	cols := make([]Column, 0, len(names))
	for _, name := range names {
		cells := make([]string, len(records))
		for i, rec := range records {
			v, ok := rec[name]
			if !ok || v == nil {
				continue
			}
			switch val := v.(type) {
			case json.Number:
				cells[i] = val.String()
			case string:
				cells[i] = val
			case bool:
				cells[i] = strconv.FormatBool(val)
			default:
				b, _ := json.Marshal(val)
				cells[i] = string(b)
			}
		}
		cols = append(cols, inferColumn(name, cells))
	}
	return New(cols...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteCSV writes the frame as UTF-8 CSV: comma separated, header row
// first, no index column. This is the export contract for table results.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	row := make([]string, f.NumCols())
	for i := 0; i < f.NumRows(); i++ {
		for j := 0; j < f.NumCols(); j++ {
			row[j] = f.ColAt(j).CellString(i)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
