package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := New(
		NumericColumn("amount", []float64{10, 250, 40, 5, 100}, []bool{false, false, false, false, false}),
		StringColumn("category", []string{"food", "rent", "food", "fun", "rent"}, nil),
		StringColumn("date", []string{"2024-01-05", "2024-01-20", "2024-02-01", "2024-02-14", "not-a-date"}, nil),
	)
	require.NoError(t, err, "building test frame")
	return f
}

func TestNew_Validation(t *testing.T) {
	_, err := New(
		NumericColumn("a", []float64{1, 2}, nil),
		NumericColumn("b", []float64{1}, nil),
	)
	assert.Error(t, err, "mismatched column lengths must be rejected")

	_, err = New(
		NumericColumn("a", []float64{1}, nil),
		NumericColumn("a", []float64{2}, nil),
	)
	assert.Error(t, err, "duplicate column names must be rejected")

	_, err = New(NumericColumn("", []float64{1}, nil))
	assert.Error(t, err, "empty column name must be rejected")
}

func TestSortBy_DescendingWithHead(t *testing.T) {
	f := testFrame(t)

	sorted, err := f.SortBy("amount", false)
	require.NoError(t, err)

	top := sorted.Head(3)
	col, ok := top.Col("amount")
	require.True(t, ok)
	assert.Equal(t, []float64{250, 100, 40}, col.Nums, "rows sorted descending by amount")

	// Original frame untouched
	orig, _ := f.Col("amount")
	assert.Equal(t, []float64{10, 250, 40, 5, 100}, orig.Nums, "source frame must not change")
}

func TestSortBy_MissingLast(t *testing.T) {
	f, err := New(NumericColumn("x", []float64{3, 0, 1}, []bool{false, true, false}))
	require.NoError(t, err)

	sorted, err := f.SortBy("x", true)
	require.NoError(t, err)
	col, _ := sorted.Col("x")
	assert.Equal(t, []float64{1, 3}, col.Nums[:2], "present values first, ascending")
	assert.True(t, col.IsMissing(2), "missing value sorts last")
}

func TestSortBy_UnknownColumn(t *testing.T) {
	f := testFrame(t)
	_, err := f.SortBy("nope", true)
	assert.Error(t, err)
}

func TestHead_LargerThanFrame(t *testing.T) {
	f := testFrame(t)
	assert.Equal(t, 5, f.Head(10).NumRows(), "head larger than frame returns all rows")
}

func TestFilterRows(t *testing.T) {
	f := testFrame(t)
	got, err := f.FilterRows([]bool{true, false, false, false, true})
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())

	col, _ := got.Col("amount")
	assert.Equal(t, []float64{10, 100}, col.Nums)

	_, err = f.FilterRows([]bool{true})
	assert.Error(t, err, "short mask must be rejected")
}

func TestValueCounts_IncludesMissing(t *testing.T) {
	f, err := New(StringColumn("c", []string{"a", "b", "a", "", "a"}, []bool{false, false, false, true, false}))
	require.NoError(t, err)

	counts, err := f.ValueCounts("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"value", "count"}, counts.Names())

	vals, _ := counts.Col("value")
	nums, _ := counts.Col("count")
	assert.Equal(t, "a", vals.Strs[0], "most frequent value first")
	assert.Equal(t, 3.0, nums.Nums[0])
	assert.Contains(t, vals.Strs, MissingBucket, "missing bucket included")
}

func TestDescribe(t *testing.T) {
	f, err := New(
		NumericColumn("x", []float64{1, 2, 3, 4}, nil),
		StringColumn("s", []string{"a", "b", "c", "d"}, nil),
	)
	require.NoError(t, err)

	desc, err := f.Describe()
	require.NoError(t, err)
	assert.Equal(t, []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, desc.Names())
	assert.Equal(t, 1, desc.NumRows(), "one row per numeric column")

	get := func(name string) float64 {
		col, ok := desc.Col(name)
		require.True(t, ok, "column %s", name)
		return col.Nums[0]
	}
	assert.Equal(t, 4.0, get("count"))
	assert.Equal(t, 2.5, get("mean"))
	assert.InDelta(t, 1.29099, get("std"), 1e-4, "sample std")
	assert.Equal(t, 1.0, get("min"))
	assert.Equal(t, 1.75, get("25%"), "linear interpolation quartile")
	assert.Equal(t, 2.5, get("50%"))
	assert.Equal(t, 3.25, get("75%"))
	assert.Equal(t, 4.0, get("max"))
}

func TestCorr(t *testing.T) {
	f, err := New(
		NumericColumn("x", []float64{1, 2, 3, 4}, nil),
		NumericColumn("y", []float64{2, 4, 6, 8}, nil),
		NumericColumn("z", []float64{4, 3, 2, 1}, nil),
	)
	require.NoError(t, err)

	corr, err := f.Corr()
	require.NoError(t, err)
	assert.Equal(t, 3, corr.NumRows())

	xcol, ok := corr.Col("x")
	require.True(t, ok)
	assert.InDelta(t, 1.0, xcol.Nums[0], 1e-9, "corr(x,x)")
	assert.InDelta(t, 1.0, xcol.Nums[1], 1e-9, "corr(x,y) perfectly positive")
	assert.InDelta(t, -1.0, xcol.Nums[2], 1e-9, "corr(x,z) perfectly negative")
}

func TestZScores(t *testing.T) {
	// 20 ordinary rows plus one large outlier.
	vals := make([]float64, 21)
	labels := make([]string, 21)
	for i := range vals {
		vals[i] = 1
		labels[i] = "a"
	}
	vals[20] = 100
	f, err := New(
		NumericColumn("x", vals, nil),
		StringColumn("s", labels, nil),
	)
	require.NoError(t, err)

	z := f.ZScores()
	require.Len(t, z, 21)
	require.Len(t, z[0], 1, "only numeric columns scored")
	assert.Greater(t, math.Abs(z[20][0]), 3.0, "outlier row exceeds threshold")
	assert.Less(t, math.Abs(z[0][0]), 1.0, "normal rows stay small")
}

func TestZScores_PopulationStd(t *testing.T) {
	f, err := New(NumericColumn("x", []float64{1, 2, 3, 4}, nil))
	require.NoError(t, err)

	z := f.ZScores()
	// 1.5 / sqrt(5/4), not 1.5 / sqrt(5/3).
	assert.InDelta(t, 1.34164, z[3][0], 1e-4, "scores divide by the population std")
}

// A borderline outlier sits just above 3 under population std but just
// below it under sample std; it must be flagged.
func TestZScores_BorderlineOutlierFlagged(t *testing.T) {
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = float64(i % 2)
	}
	vals[19] = 2.6
	f, err := New(NumericColumn("x", vals, nil))
	require.NoError(t, err)

	z := f.ZScores()
	assert.Greater(t, math.Abs(z[19][0]), 3.0, "outlier crosses the threshold")
	for i := 0; i < 19; i++ {
		assert.Less(t, math.Abs(z[i][0]), 3.0, "row %d is ordinary", i)
	}
}

func TestZScores_MissingNeverFlagged(t *testing.T) {
	f, err := New(NumericColumn("x", []float64{1, 2, 0}, []bool{false, false, true}))
	require.NoError(t, err)
	z := f.ZScores()
	assert.Zero(t, z[2][0], "missing cell scores zero")
}

func TestParseDates(t *testing.T) {
	f := testFrame(t)
	parsed, err := f.ParseDates("date")
	require.NoError(t, err)

	col, _ := parsed.Col("date")
	assert.Equal(t, KindTime, col.Kind)
	assert.False(t, col.IsMissing(0))
	assert.True(t, col.IsMissing(4), "unparseable date becomes missing")

	// Source frame keeps its string column.
	orig, _ := f.Col("date")
	assert.Equal(t, KindString, orig.Kind)
}

func TestMonthlySum(t *testing.T) {
	f := testFrame(t)
	parsed, err := f.ParseDates("date")
	require.NoError(t, err)

	agg, err := parsed.MonthlySum("date", "amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "amount"}, agg.Names())

	months, _ := agg.Col("date")
	sums, _ := agg.Col("amount")
	assert.Equal(t, []string{"2024-01", "2024-02"}, months.Strs, "months ascending, bad dates dropped")
	assert.Equal(t, []float64{260, 45}, sums.Nums)
}

func TestMonthlyCounts(t *testing.T) {
	f := testFrame(t)
	parsed, err := f.ParseDates("date")
	require.NoError(t, err)

	agg, err := parsed.MonthlyCounts("date")
	require.NoError(t, err)

	counts, _ := agg.Col("count")
	assert.Equal(t, []float64{2, 2}, counts.Nums, "row with unparseable date dropped")
}

func TestMonthly_GapMonthsZeroFilled(t *testing.T) {
	f, err := New(
		NumericColumn("amount", []float64{10, 20}, nil),
		StringColumn("date", []string{"2024-01-15", "2024-03-02"}, nil),
	)
	require.NoError(t, err)
	parsed, err := f.ParseDates("date")
	require.NoError(t, err)

	agg, err := parsed.MonthlySum("date", "amount")
	require.NoError(t, err)
	months, _ := agg.Col("date")
	sums, _ := agg.Col("amount")
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, months.Strs, "skipped month appears")
	assert.Equal(t, []float64{10, 0, 20}, sums.Nums, "gap month sums to zero")

	counts, err := parsed.MonthlyCounts("date")
	require.NoError(t, err)
	n, _ := counts.Col("count")
	assert.Equal(t, []float64{1, 0, 1}, n.Nums, "gap month counts zero rows")
}

func TestMonthly_RequiresDatetime(t *testing.T) {
	f := testFrame(t)
	_, err := f.MonthlyCounts("date")
	assert.Error(t, err, "string column must be parsed first")
}
