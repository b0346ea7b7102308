package intent

import (
	"fmt"
	"regexp"
	"strconv"
)

// Extraction patterns run against the original (non-lowercased) prompt.
var (
	singleQuoted  = regexp.MustCompile(`'([^']+)'`)
	doubleQuoted  = regexp.MustCompile(`"([^"]+)"`)
	scatterPair   = regexp.MustCompile(`'([^']+)' \(x\) vs '([^']+)' \(y\)`)
	sortedByCol   = regexp.MustCompile(`by '([^']+)'`)
	monthlySumRef = regexp.MustCompile(`sum of '([^']+)' using the datetime column '([^']+)'`)
	datetimeCol   = regexp.MustCompile(`datetime column '([^']+)'`)
)

// firstQuoted extracts the first single- or double-quoted token.
func firstQuoted(s string) (string, bool) {
	if m := singleQuoted.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := doubleQuoted.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// lit renders a value as a Starlark string literal, so column names are
// embedded as data, never as code structure.
func lit(s string) string {
	return strconv.Quote(s)
}

func renderSummary(string) (string, bool) {
	code := `info = []
info.append("Rows: %d, Columns: %d" % (df.num_rows, df.num_cols))
info.append("Column types: " + ", ".join(["%s:%s" % (c, df.dtype(c)) for c in df.columns[:10]]))
miss = [m for m in tbl.missing_counts(df) if m[1] > 0]
if len(miss) > 0:
    info.append("Top missing: " + ", ".join(["%s:%d" % (m[0], m[1]) for m in miss[:10]]))
info.append("Numeric columns count: %d" % len(tbl.numeric_columns(df)))
result = "\n".join(["- " + i for i in info])
`
	return code, true
}

func renderValueCounts(prompt string) (string, bool) {
	col, ok := firstQuoted(prompt)
	if !ok {
		return "", false
	}
	code := fmt.Sprintf(`result = tbl.head(tbl.value_counts(df, %s), 10)
`, lit(col))
	return code, true
}

func renderDescribe(string) (string, bool) {
	return "result = tbl.describe(tbl.select_numeric(df))\n", true
}

func renderHistogram(prompt string) (string, bool) {
	col, ok := firstQuoted(prompt)
	if !ok {
		return "", false
	}
	code := fmt.Sprintf(`plot.figure(6, 4)
plot.hist(num.column(df, %s), 30)
plot.title(%s)
plot.xlabel(%s)
plot.ylabel("count")
result_img_path = None
`, lit(col), lit("Histogram of "+col), lit(col))
	return code, true
}

func renderScatter(prompt string) (string, bool) {
	m := scatterPair.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	x, y := m[1], m[2]
	code := fmt.Sprintf(`plot.figure(6, 4)
plot.scatter(df, %s, %s)
plot.title(%s)
result_img_path = None
`, lit(x), lit(y), lit(y+" vs "+x))
	return code, true
}

func renderTopRows(prompt string) (string, bool) {
	m := sortedByCol.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	code := fmt.Sprintf(`result = tbl.head(tbl.sort_by(df, %s, False), 10)
`, lit(m[1]))
	return code, true
}

func renderMonthlySum(prompt string) (string, bool) {
	m := monthlySumRef.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	val, date := m[1], m[2]
	code := fmt.Sprintf(`tmp = tbl.parse_dates(df, %s)
result = tbl.monthly_sum(tmp, %s, %s)
`, lit(date), lit(date), lit(val))
	return code, true
}

func renderMonthlyCounts(prompt string) (string, bool) {
	m := datetimeCol.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	code := fmt.Sprintf(`tmp = tbl.parse_dates(df, %s)
result = tbl.monthly_counts(tmp, %s)
`, lit(m[1]), lit(m[1]))
	return code, true
}

func renderCorrHeatmap(string) (string, bool) {
	code := `corr = tbl.corr(tbl.select_numeric(df))
plot.figure(6, 5)
plot.heatmap(corr)
plot.title("Correlation matrix")
result_img_path = None
`
	return code, true
}

func renderAnomalies(string) (string, bool) {
	code := `nf = tbl.select_numeric(df)
if nf.num_cols == 0:
    result = tbl.empty()
else:
    z = num.abs(num.zscore(nf))
    mask = num.any_gt(z, 3.0)
    result = tbl.head(tbl.filter_rows(df, mask), 20)
`
	return code, true
}
