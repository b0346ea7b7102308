package dataset

import (
	"fmt"
	"math"
	"sort"
)

// MissingBucket is the value-counts label for missing cells.
const MissingBucket = "<missing>"

// Head returns the first n rows (fewer if the frame is smaller).
func (f *Frame) Head(n int) *Frame {
	if n > f.rows {
		n = f.rows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return f.take(idx)
}

// SortBy returns the frame sorted by the named column. Missing values
// sort last regardless of direction. The sort is stable.
func (f *Frame) SortBy(name string, ascending bool) (*Frame, error) {
	col, ok := f.Col(name)
	if !ok {
		return nil, fmt.Errorf("no such column: %q", name)
	}
	idx := make([]int, f.rows)
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b int) bool {
		ma, mb := col.Missing[a], col.Missing[b]
		if ma || mb {
			return !ma && mb
		}
		switch col.Kind {
		case KindNumeric:
			if ascending {
				return col.Nums[a] < col.Nums[b]
			}
			return col.Nums[a] > col.Nums[b]
		case KindTime:
			if ascending {
				return col.Times[a].Before(col.Times[b])
			}
			return col.Times[a].After(col.Times[b])
		default:
			if ascending {
				return col.Strs[a] < col.Strs[b]
			}
			return col.Strs[a] > col.Strs[b]
		}
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })
	return f.take(idx), nil
}

// FilterRows returns the rows where mask is true. The mask must cover
// every row.
func (f *Frame) FilterRows(mask []bool) (*Frame, error) {
	if len(mask) != f.rows {
		return nil, fmt.Errorf("mask has %d entries, frame has %d rows", len(mask), f.rows)
	}
	var idx []int
	for i, keep := range mask {
		if keep {
			idx = append(idx, i)
		}
	}
	return f.take(idx), nil
}

// NumericColumnNames returns the names of numeric columns in order.
func (f *Frame) NumericColumnNames() []string {
	var names []string
	for i := range f.cols {
		if f.cols[i].Kind == KindNumeric {
			names = append(names, f.cols[i].Name)
		}
	}
	return names
}

// SelectNumeric returns a frame holding only the numeric columns.
func (f *Frame) SelectNumeric() *Frame {
	var cols []Column
	for i := range f.cols {
		if f.cols[i].Kind == KindNumeric {
			cols = append(cols, f.cols[i].clone())
		}
	}
	return &Frame{cols: cols, rows: f.rows}
}

// NameCount pairs a column name with a count.
type NameCount struct {
	Name  string
	Count int
}

// MissingCounts returns per-column missing-value counts, sorted by count
// descending (ties keep column order).
func (f *Frame) MissingCounts() []NameCount {
	out := make([]NameCount, len(f.cols))
	for i := range f.cols {
		out[i] = NameCount{Name: f.cols[i].Name, Count: f.cols[i].MissingCount()}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ValueCounts counts occurrences of each distinct value in the named
// column, missing cells included under the MissingBucket label. The
// result has columns "value" and "count", ordered by count descending
// (ties keep first-seen order).
func (f *Frame) ValueCounts(name string) (*Frame, error) {
	col, ok := f.Col(name)
	if !ok {
		return nil, fmt.Errorf("no such column: %q", name)
	}
	counts := make(map[string]int)
	var order []string
	for i := 0; i < col.Len(); i++ {
		v := MissingBucket
		if !col.Missing[i] {
			v = col.CellString(i)
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	values := make([]string, len(order))
	nums := make([]float64, len(order))
	for i, v := range order {
		values[i] = v
		nums[i] = float64(counts[v])
	}
	return New(
		StringColumn("value", values, nil),
		NumericColumn("count", nums, nil),
	)
}

// nonMissing returns the present values of a numeric column.
func nonMissing(c *Column) []float64 {
	var out []float64
	for i, v := range c.Nums {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// std is the sample standard deviation (ddof=1), NaN for fewer than two
// values. Describe uses this; anomaly z-scores use pstd.
func std(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// pstd is the population standard deviation (ddof=0).
func pstd(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

// percentile computes the q-th percentile (0..1) with linear
// interpolation over sorted values.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Describe computes count/mean/std/min/quartiles/max for each numeric
// column, one row per column.
func (f *Frame) Describe() (*Frame, error) {
	names := f.NumericColumnNames()
	colNames := make([]string, 0, len(names))
	count := make([]float64, 0, len(names))
	means := make([]float64, 0, len(names))
	stds := make([]float64, 0, len(names))
	mins := make([]float64, 0, len(names))
	q25 := make([]float64, 0, len(names))
	q50 := make([]float64, 0, len(names))
	q75 := make([]float64, 0, len(names))
	maxs := make([]float64, 0, len(names))

	for _, name := range names {
		col, _ := f.Col(name)
		vals := nonMissing(col)
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)

		colNames = append(colNames, name)
		count = append(count, float64(len(vals)))
		means = append(means, mean(vals))
		stds = append(stds, std(vals))
		mins = append(mins, percentile(sorted, 0))
		q25 = append(q25, percentile(sorted, 0.25))
		q50 = append(q50, percentile(sorted, 0.5))
		q75 = append(q75, percentile(sorted, 0.75))
		maxs = append(maxs, percentile(sorted, 1))
	}
	return New(
		StringColumn("column", colNames, nil),
		NumericColumn("count", count, nil),
		NumericColumn("mean", means, nil),
		NumericColumn("std", stds, nil),
		NumericColumn("min", mins, nil),
		NumericColumn("25%", q25, nil),
		NumericColumn("50%", q50, nil),
		NumericColumn("75%", q75, nil),
		NumericColumn("max", maxs, nil),
	)
}

// Corr computes the pairwise Pearson correlation of numeric columns over
// rows where both values are present. The first column labels the rows.
func (f *Frame) Corr() (*Frame, error) {
	names := f.NumericColumnNames()
	cols := make([]Column, 0, len(names)+1)
	cols = append(cols, StringColumn("column", append([]string(nil), names...), nil))
	for _, xn := range names {
		vals := make([]float64, len(names))
		for i, yn := range names {
			vals[i] = f.pearson(xn, yn)
		}
		cols = append(cols, NumericColumn(xn, vals, nil))
	}
	fr := &Frame{cols: cols, rows: len(names)}
	return fr, nil
}

func (f *Frame) pearson(xn, yn string) float64 {
	xc, _ := f.Col(xn)
	yc, _ := f.Col(yn)
	var xs, ys []float64
	for i := 0; i < f.rows; i++ {
		if !xc.Missing[i] && !yc.Missing[i] {
			xs = append(xs, xc.Nums[i])
			ys = append(ys, yc.Nums[i])
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// ZScores computes per-cell z-scores for every numeric column, aligned
// to the frame's rows. Scores use the population standard deviation, so
// a borderline outlier is not shrunk below the threshold by the n-1
// correction. Missing cells and zero-deviation columns yield 0 (never
// flagged as anomalous).
func (f *Frame) ZScores() [][]float64 {
	names := f.NumericColumnNames()
	out := make([][]float64, f.rows)
	for i := range out {
		out[i] = make([]float64, len(names))
	}
	for j, name := range names {
		col, _ := f.Col(name)
		vals := nonMissing(col)
		m, s := mean(vals), pstd(vals)
		if math.IsNaN(s) || s == 0 {
			continue
		}
		for i := 0; i < f.rows; i++ {
			if !col.Missing[i] {
				out[i][j] = (col.Nums[i] - m) / s
			}
		}
	}
	return out
}
