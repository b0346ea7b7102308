// Package dataset provides the in-memory tabular data model and the
// column-level operations the analysis engine runs against it.
package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Kind classifies the declared type of a column.
type Kind int

const (
	// KindNumeric holds float64 values.
	KindNumeric Kind = iota
	// KindString holds text values.
	KindString
	// KindTime holds datetime values.
	KindTime
)

// String returns the dtype descriptor used in summaries.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "float64"
	case KindString:
		return "string"
	case KindTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Column is a named, typed sequence of values with a missing-value mask.
// Only the slice matching Kind is populated.
type Column struct {
	Name    string
	Kind    Kind
	Nums    []float64
	Strs    []string
	Times   []time.Time
	Missing []bool
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.Missing)
}

// IsMissing reports whether the cell at row i is missing.
func (c *Column) IsMissing(i int) bool {
	return c.Missing[i]
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// CellString formats the cell at row i for display and CSV export.
// Missing cells format as the empty string.
func (c *Column) CellString(i int) string {
	if c.Missing[i] {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Nums[i], 'g', -1, 64)
	case KindTime:
		t := c.Times[i]
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return c.Strs[i]
	}
}

// clone returns a deep copy of the column.
func (c *Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	out.Missing = append([]bool(nil), c.Missing...)
	switch c.Kind {
	case KindNumeric:
		out.Nums = append([]float64(nil), c.Nums...)
	case KindTime:
		out.Times = append([]time.Time(nil), c.Times...)
	default:
		out.Strs = append([]string(nil), c.Strs...)
	}
	return out
}

// take builds a new column holding the rows at the given indices.
func (c *Column) take(idx []int) Column {
	out := Column{Name: c.Name, Kind: c.Kind, Missing: make([]bool, len(idx))}
	switch c.Kind {
	case KindNumeric:
		out.Nums = make([]float64, len(idx))
	case KindTime:
		out.Times = make([]time.Time, len(idx))
	default:
		out.Strs = make([]string, len(idx))
	}
	for j, i := range idx {
		out.Missing[j] = c.Missing[i]
		switch c.Kind {
		case KindNumeric:
			out.Nums[j] = c.Nums[i]
		case KindTime:
			out.Times[j] = c.Times[i]
		default:
			out.Strs[j] = c.Strs[i]
		}
	}
	return out
}

// NumericColumn builds a numeric column from values where the mask marks
// missing entries. A nil mask means no missing values.
func NumericColumn(name string, values []float64, missing []bool) Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return Column{Name: name, Kind: KindNumeric, Nums: values, Missing: missing}
}

// StringColumn builds a text column. Nil mask means no missing values.
func StringColumn(name string, values []string, missing []bool) Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return Column{Name: name, Kind: KindString, Strs: values, Missing: missing}
}

// TimeColumn builds a datetime column. Nil mask means no missing values.
func TimeColumn(name string, values []time.Time, missing []bool) Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return Column{Name: name, Kind: KindTime, Times: values, Missing: missing}
}

// Frame is an ordered collection of equal-length named columns.
// Frames are immutable from the caller's perspective: every operation
// returns a new frame.
type Frame struct {
	cols []Column
	rows int
}

// New creates a frame from the given columns. All columns must have the
// same length and unique names.
func New(cols ...Column) (*Frame, error) {
	f := &Frame{}
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), f.rows)
		}
	}
	f.cols = cols
	return f, nil
}

// Empty returns a frame with no columns and no rows.
func Empty() *Frame {
	return &Frame{}
}

// NumRows returns the row count.
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the named column, or false if it does not exist.
func (f *Frame) Col(name string) (*Column, bool) {
	for i := range f.cols {
		if f.cols[i].Name == name {
			return &f.cols[i], true
		}
	}
	return nil, false
}

// ColAt returns the column at position i.
func (f *Frame) ColAt(i int) *Column {
	return &f.cols[i]
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	cols := make([]Column, len(f.cols))
	for i := range f.cols {
		cols[i] = f.cols[i].clone()
	}
	return &Frame{cols: cols, rows: f.rows}
}

// take builds a new frame holding the rows at the given indices.
func (f *Frame) take(idx []int) *Frame {
	cols := make([]Column, len(f.cols))
	for i := range f.cols {
		cols[i] = f.cols[i].take(idx)
	}
	return &Frame{cols: cols, rows: len(idx)}
}
