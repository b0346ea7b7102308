// Package intent translates natural-language analysis prompts into
// Starlark code via a fixed, ordered list of recognizer/extractor/
// renderer rules. First match wins; a matched rule whose parameters
// cannot be extracted falls through to the next rule.
package intent

import (
	"errors"
	"strings"
)

// ErrNoMatch signals that no template recognized the prompt. This is a
// routing signal, not a failure: the caller is expected to fall back to
// the external code provider.
var ErrNoMatch = errors.New("no deterministic intent matches the prompt")

// Rule pairs a recognizer over the normalized prompt with a renderer
// that extracts parameters from the original prompt and produces code.
type Rule struct {
	// Name tags the rule for logging and tests.
	Name string

	// Match tests the normalized (trimmed, lowercased) prompt.
	Match func(normalized string) bool

	// Render extracts parameters from the original prompt and renders
	// the code fragment. ok=false means required parameters were not
	// found and matching should continue with the next rule.
	Render func(original string) (code string, ok bool)
}

// Rules returns the intent templates in precedence order. The order is
// fixed at build time.
func Rules() []Rule {
	return []Rule{
		{
			Name: "summarize",
			Match: func(p string) bool {
				return strings.HasPrefix(p, "summarize the dataset")
			},
			Render: renderSummary,
		},
		{
			Name: "top_categorical_counts",
			Match: func(p string) bool {
				return strings.Contains(p, "top 10 counts for the categorical column") ||
					(strings.Contains(p, "top 10 counts") && strings.Contains(p, "'"))
			},
			Render: renderValueCounts,
		},
		{
			Name: "summary_statistics",
			Match: func(p string) bool {
				return strings.Contains(p, "summary statistics") || strings.Contains(p, "describe")
			},
			Render: renderDescribe,
		},
		{
			Name: "histogram",
			Match: func(p string) bool {
				return strings.Contains(p, "histogram of the numeric column")
			},
			Render: renderHistogram,
		},
		{
			Name: "scatter",
			Match: func(p string) bool {
				return strings.Contains(p, "scatter plot comparing") && strings.Contains(p, "vs")
			},
			Render: renderScatter,
		},
		{
			Name: "top_rows_sorted",
			Match: func(p string) bool {
				return strings.HasPrefix(p, "show the top 10 rows sorted by")
			},
			Render: renderTopRows,
		},
		{
			Name: "monthly_sum",
			Match: func(p string) bool {
				return strings.Contains(p, "monthly sum") && strings.Contains(p, "using the datetime column")
			},
			Render: renderMonthlySum,
		},
		{
			Name: "monthly_counts",
			Match: func(p string) bool {
				return strings.Contains(p, "counts per month using the datetime column")
			},
			Render: renderMonthlyCounts,
		},
		{
			Name: "correlation_heatmap",
			Match: func(p string) bool {
				return strings.Contains(p, "correlation matrix heatmap") || strings.Contains(p, "correlation heatmap")
			},
			Render: renderCorrHeatmap,
		},
		{
			Name: "anomalies_zscore",
			Match: func(p string) bool {
				return strings.Contains(p, "anomalies") && strings.Contains(p, "z-score")
			},
			Render: renderAnomalies,
		},
	}
}

// Translate converts a prompt into Starlark code, or ErrNoMatch if no
// template recognizes it. Recognizers run against the normalized prompt,
// extraction against the original text so quoted column names keep
// their case.
func Translate(prompt string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(prompt))
	for _, rule := range Rules() {
		if !rule.Match(normalized) {
			continue
		}
		if code, ok := rule.Render(prompt); ok {
			return code, nil
		}
	}
	return "", ErrNoMatch
}
