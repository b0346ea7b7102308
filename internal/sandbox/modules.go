package sandbox

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/datalyst-labs/datalyst/internal/dataset"
)

// tblModule is the tabular-computation handle bound into the sandbox.
func tblModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "tbl",
		Members: starlark.StringDict{
			"head":            starlark.NewBuiltin("tbl.head", tblHead),
			"sort_by":         starlark.NewBuiltin("tbl.sort_by", tblSortBy),
			"value_counts":    starlark.NewBuiltin("tbl.value_counts", tblValueCounts),
			"describe":        starlark.NewBuiltin("tbl.describe", tblDescribe),
			"select_numeric":  starlark.NewBuiltin("tbl.select_numeric", tblSelectNumeric),
			"numeric_columns": starlark.NewBuiltin("tbl.numeric_columns", tblNumericColumns),
			"missing_counts":  starlark.NewBuiltin("tbl.missing_counts", tblMissingCounts),
			"parse_dates":     starlark.NewBuiltin("tbl.parse_dates", tblParseDates),
			"monthly_sum":     starlark.NewBuiltin("tbl.monthly_sum", tblMonthlySum),
			"monthly_counts":  starlark.NewBuiltin("tbl.monthly_counts", tblMonthlyCounts),
			"corr":            starlark.NewBuiltin("tbl.corr", tblCorr),
			"filter_rows":     starlark.NewBuiltin("tbl.filter_rows", tblFilterRows),
			"empty":           starlark.NewBuiltin("tbl.empty", tblEmpty),
		},
	}
}

func tblHead(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var n int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fv, &n); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	return &frameValue{f: f.Head(n)}, nil
}

func tblSortBy(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var col string
	var ascending bool
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &fv, &col, &ascending); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	sorted, err := f.SortBy(col, ascending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: sorted}, nil
}

func tblValueCounts(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var col string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fv, &col); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	counts, err := f.ValueCounts(col)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: counts}, nil
}

func tblDescribe(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	desc, err := f.Describe()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: desc}, nil
}

func tblSelectNumeric(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	return &frameValue{f: f.SelectNumeric()}, nil
}

func tblNumericColumns(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	return stringList(f.NumericColumnNames()), nil
}

func tblMissingCounts(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	counts := f.MissingCounts()
	elems := make([]starlark.Value, len(counts))
	for i, nc := range counts {
		elems[i] = starlark.Tuple{starlark.String(nc.Name), starlark.MakeInt(nc.Count)}
	}
	return starlark.NewList(elems), nil
}

func tblParseDates(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var col string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fv, &col); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	parsed, err := f.ParseDates(col)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: parsed}, nil
}

func tblMonthlySum(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var dateCol, valCol string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &fv, &dateCol, &valCol); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	agg, err := f.MonthlySum(dateCol, valCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: agg}, nil
}

func tblMonthlyCounts(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var dateCol string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fv, &dateCol); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	agg, err := f.MonthlyCounts(dateCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: agg}, nil
}

func tblCorr(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	corr, err := f.Corr()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: corr}, nil
}

func tblFilterRows(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv, maskv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fv, &maskv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	mask, err := unpackBools(b.Name(), maskv)
	if err != nil {
		return nil, err
	}
	filtered, err := f.FilterRows(mask)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return &frameValue{f: filtered}, nil
}

func tblEmpty(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return &frameValue{f: dataset.Empty()}, nil
}

// numModule is the array-computation handle bound into the sandbox.
func numModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "num",
		Members: starlark.StringDict{
			"column": starlark.NewBuiltin("num.column", numColumn),
			"mean":   starlark.NewBuiltin("num.mean", numMean),
			"std":    starlark.NewBuiltin("num.std", numStd),
			"zscore": starlark.NewBuiltin("num.zscore", numZScore),
			"abs":    starlark.NewBuiltin("num.abs", numAbs),
			"any_gt": starlark.NewBuiltin("num.any_gt", numAnyGT),
		},
	}
}

// numColumn returns the non-missing values of a numeric column.
func numColumn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &fv, &name); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	col, ok := f.Col(name)
	if !ok {
		return nil, fmt.Errorf("%s: no such column: %q", b.Name(), name)
	}
	if col.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("%s: column %q is not numeric", b.Name(), name)
	}
	var vals []float64
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			vals = append(vals, col.Nums[i])
		}
	}
	return floatList(vals), nil
}

func numMean(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	vals, err := unpackFloats(b.Name(), v)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: empty input", b.Name())
	}
	sum := 0.0
	for _, x := range vals {
		sum += x
	}
	return starlark.Float(sum / float64(len(vals))), nil
}

func numStd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	vals, err := unpackFloats(b.Name(), v)
	if err != nil {
		return nil, err
	}
	if len(vals) < 2 {
		return nil, fmt.Errorf("%s: need at least two values", b.Name())
	}
	m := 0.0
	for _, x := range vals {
		m += x
	}
	m /= float64(len(vals))
	ss := 0.0
	for _, x := range vals {
		d := x - m
		ss += d * d
	}
	return starlark.Float(math.Sqrt(ss / float64(len(vals)-1))), nil
}

// numZScore returns the per-cell z-score matrix of a frame's numeric
// columns, aligned to the frame's rows. Missing cells score 0.
func numZScore(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	return &matrixValue{rows: f.ZScores()}, nil
}

func numAbs(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case *matrixValue:
		rows := make([][]float64, len(m.rows))
		for i, row := range m.rows {
			rows[i] = make([]float64, len(row))
			for j, x := range row {
				rows[i][j] = math.Abs(x)
			}
		}
		return &matrixValue{rows: rows}, nil
	default:
		vals, err := unpackFloats(b.Name(), v)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = math.Abs(x)
		}
		return floatList(out), nil
	}
}

// numAnyGT reduces a matrix to a row mask: true where any cell in the
// row exceeds the threshold.
func numAnyGT(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var mv starlark.Value
	var threshold float64
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &mv, &threshold); err != nil {
		return nil, err
	}
	m, ok := mv.(*matrixValue)
	if !ok {
		return nil, fmt.Errorf("%s: expected matrix, got %s", b.Name(), mv.Type())
	}
	mask := make([]bool, len(m.rows))
	for i, row := range m.rows {
		for _, x := range row {
			if x > threshold {
				mask[i] = true
				break
			}
		}
	}
	return boolList(mask), nil
}
