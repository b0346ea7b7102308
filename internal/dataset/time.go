package dataset

import (
	"fmt"
	"sort"
	"time"
)

// dateLayouts are tried in order when parsing text dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ParseDate parses a text value as a date using the known layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDates returns a copy of the frame with the named column converted
// to a datetime column. Cells that cannot be parsed become missing;
// datetime columns pass through unchanged.
func (f *Frame) ParseDates(name string) (*Frame, error) {
	col, ok := f.Col(name)
	if !ok {
		return nil, fmt.Errorf("no such column: %q", name)
	}
	out := f.Clone()
	oc, _ := out.Col(name)
	if oc.Kind == KindTime {
		return out, nil
	}
	times := make([]time.Time, col.Len())
	missing := make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.Missing[i] {
			missing[i] = true
			continue
		}
		t, parsed := ParseDate(col.CellString(i))
		if !parsed {
			missing[i] = true
			continue
		}
		times[i] = t
	}
	*oc = TimeColumn(name, times, missing)
	return out, nil
}

// monthKey formats a time as its calendar month, e.g. "2024-01".
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// groupByMonth buckets row indices of a datetime column by calendar
// month, dropping rows with a missing date. Months are returned sorted
// ascending, with gap months between the first and last date included
// so they aggregate to zero rather than vanish.
func (f *Frame) groupByMonth(name string) ([]string, map[string][]int, error) {
	col, ok := f.Col(name)
	if !ok {
		return nil, nil, fmt.Errorf("no such column: %q", name)
	}
	if col.Kind != KindTime {
		return nil, nil, fmt.Errorf("column %q is not a datetime column", name)
	}
	groups := make(map[string][]int)
	for i := 0; i < col.Len(); i++ {
		if col.Missing[i] {
			continue
		}
		k := monthKey(col.Times[i])
		groups[k] = append(groups[k], i)
	}
	months := make([]string, 0, len(groups))
	for k := range groups {
		months = append(months, k)
	}
	sort.Strings(months)
	if len(months) > 1 {
		first, _ := time.Parse("2006-01", months[0])
		last, _ := time.Parse("2006-01", months[len(months)-1])
		months = months[:0]
		for t := first; !t.After(last); t = t.AddDate(0, 1, 0) {
			months = append(months, monthKey(t))
		}
	}
	return months, groups, nil
}

// MonthlySum aggregates a numeric column by calendar month of a datetime
// column. Rows with unparseable or missing dates are dropped. The result
// has the datetime column (as "YYYY-MM") and the summed value column.
func (f *Frame) MonthlySum(dateCol, valCol string) (*Frame, error) {
	vc, ok := f.Col(valCol)
	if !ok {
		return nil, fmt.Errorf("no such column: %q", valCol)
	}
	if vc.Kind != KindNumeric {
		return nil, fmt.Errorf("column %q is not numeric", valCol)
	}
	months, groups, err := f.groupByMonth(dateCol)
	if err != nil {
		return nil, err
	}
	sums := make([]float64, len(months))
	for i, m := range months {
		for _, row := range groups[m] {
			if !vc.Missing[row] {
				sums[i] += vc.Nums[row]
			}
		}
	}
	return New(
		StringColumn(dateCol, months, nil),
		NumericColumn(valCol, sums, nil),
	)
}

// MonthlyCounts counts rows per calendar month of a datetime column.
// Rows with unparseable or missing dates are dropped.
func (f *Frame) MonthlyCounts(dateCol string) (*Frame, error) {
	months, groups, err := f.groupByMonth(dateCol)
	if err != nil {
		return nil, err
	}
	counts := make([]float64, len(months))
	for i, m := range months {
		counts[i] = float64(len(groups[m]))
	}
	return New(
		StringColumn(dateCol, months, nil),
		NumericColumn("count", counts, nil),
	)
}
