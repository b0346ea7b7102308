// Package profile classifies a frame's columns into numeric,
// datetime-like, and low-cardinality categorical sets.
package profile

import (
	"github.com/datalyst-labs/datalyst/internal/dataset"
)

// CategoricalThreshold is the default distinct-value ceiling for a
// column to count as categorical.
const CategoricalThreshold = 50

// dateSampleSize bounds how many non-missing values are probed when
// sniffing text columns for dates.
const dateSampleSize = 20

// Profile holds the column classification for one frame. The three sets
// are pairwise disjoint; columns that fit none are left out entirely.
type Profile struct {
	Numeric     []string
	Datetime    []string
	Categorical []string
}

// Schema profiles the frame. Deterministic for a fixed frame; a column
// that cannot be classified is skipped, never fatal.
func Schema(f *dataset.Frame) Profile {
	return SchemaWithThreshold(f, CategoricalThreshold)
}

// SchemaWithThreshold profiles the frame with a custom categorical
// cardinality ceiling.
func SchemaWithThreshold(f *dataset.Frame, maxCardinality int) Profile {
	var p Profile
	classified := make(map[string]bool)

	for i := 0; i < f.NumCols(); i++ {
		col := f.ColAt(i)
		switch {
		case col.Kind == dataset.KindNumeric:
			p.Numeric = append(p.Numeric, col.Name)
			classified[col.Name] = true
		case col.Kind == dataset.KindTime || looksLikeDates(col):
			p.Datetime = append(p.Datetime, col.Name)
			classified[col.Name] = true
		}
	}

	for i := 0; i < f.NumCols(); i++ {
		col := f.ColAt(i)
		if classified[col.Name] {
			continue
		}
		if cardinality(col) <= maxCardinality {
			p.Categorical = append(p.Categorical, col.Name)
		}
	}
	return p
}

// looksLikeDates samples the first non-missing values of a text column
// and reports whether enough of them parse as dates. The threshold
// max(1, min(5, sample/2)) tolerates partially dirty data without
// classifying ordinary text as dates.
func looksLikeDates(col *dataset.Column) bool {
	if col.Kind != dataset.KindString {
		return false
	}
	sample := 0
	parsed := 0
	for i := 0; i < col.Len() && sample < dateSampleSize; i++ {
		if col.IsMissing(i) {
			continue
		}
		sample++
		if _, ok := dataset.ParseDate(col.CellString(i)); ok {
			parsed++
		}
	}
	if sample == 0 {
		return false
	}
	need := sample / 2
	if need > 5 {
		need = 5
	}
	if need < 1 {
		need = 1
	}
	return parsed >= need
}

// cardinality counts distinct non-missing values.
func cardinality(col *dataset.Column) int {
	seen := make(map[string]bool)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			seen[col.CellString(i)] = true
		}
	}
	return len(seen)
}
