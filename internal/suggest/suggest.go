// Package suggest generates ready-to-run analysis prompts tailored to a
// frame's shape. Every generated prompt is guaranteed to be recognized
// by the intent matcher.
package suggest

import (
	"fmt"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/profile"
)

// DefaultMax is the default cap on generated prompts.
const DefaultMax = 8

// Prompts returns up to max ordered prompt strings for the frame. The
// list is never empty: the dataset-summary prompt is always first.
// Column names are embedded in single quotes so the matcher can
// re-extract them verbatim.
func Prompts(f *dataset.Frame, max int) []string {
	if max <= 0 {
		max = DefaultMax
	}
	p := profile.Schema(f)

	var out []string
	out = append(out,
		"Summarize the dataset in 5 bullet points (rows, columns, missing values, numeric columns, top categorical).")

	if len(p.Categorical) > 0 {
		out = append(out,
			fmt.Sprintf("Show the top 10 counts for the categorical column '%s'.", p.Categorical[0]))
	}

	if len(p.Numeric) > 0 {
		out = append(out,
			"Show summary statistics (count, mean, std, min, 25%, 50%, 75%, max) for numeric columns.")
		out = append(out,
			fmt.Sprintf("Create a histogram of the numeric column '%s'.", p.Numeric[0]))
		if len(p.Numeric) >= 2 {
			out = append(out,
				fmt.Sprintf("Create a scatter plot comparing '%s' (x) vs '%s' (y).", p.Numeric[0], p.Numeric[1]))
		}
		out = append(out,
			fmt.Sprintf("Show the top 10 rows sorted by '%s' descending.", p.Numeric[0]))
	}

	if len(p.Datetime) > 0 {
		if len(p.Numeric) > 0 {
			out = append(out,
				fmt.Sprintf("Create a time series of monthly sum of '%s' using the datetime column '%s'.", p.Numeric[0], p.Datetime[0]))
		} else {
			out = append(out,
				fmt.Sprintf("Show counts per month using the datetime column '%s'.", p.Datetime[0]))
		}
	}

	if len(p.Numeric) >= 2 {
		out = append(out, "Show the correlation matrix heatmap for numeric columns.")
	}

	out = append(out,
		"Find rows that look like anomalies using z-score > 3 on numeric columns and show top 20.")

	if len(out) > max {
		out = out[:max]
	}
	return out
}
