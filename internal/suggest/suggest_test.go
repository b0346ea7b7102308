package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/intent"
)

func richFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	f, err := dataset.New(
		dataset.NumericColumn("amount", []float64{10, 20, 30}, nil),
		dataset.NumericColumn("quantity", []float64{1, 2, 3}, nil),
		dataset.StringColumn("category", []string{"food", "rent", "food"}, nil),
		dataset.StringColumn("date", []string{"2024-01-01", "2024-02-01", "2024-03-01"}, nil),
	)
	require.NoError(t, err)
	return f
}

func TestPrompts_SummaryAlwaysFirst(t *testing.T) {
	for _, f := range []*dataset.Frame{richFrame(t), dataset.Empty()} {
		got := Prompts(f, DefaultMax)
		require.NotEmpty(t, got)
		assert.Equal(t,
			"Summarize the dataset in 5 bullet points (rows, columns, missing values, numeric columns, top categorical).",
			got[0])
	}
}

func TestPrompts_Deterministic(t *testing.T) {
	f := richFrame(t)
	assert.Equal(t, Prompts(f, DefaultMax), Prompts(f, DefaultMax))
}

func TestPrompts_CapRespected(t *testing.T) {
	got := Prompts(richFrame(t), 3)
	assert.Len(t, got, 3)
}

func TestPrompts_ShapeDriven(t *testing.T) {
	got := Prompts(richFrame(t), DefaultMax)

	assert.Contains(t, got, "Show the top 10 counts for the categorical column 'category'.")
	assert.Contains(t, got, "Create a histogram of the numeric column 'amount'.")
	assert.Contains(t, got, "Create a scatter plot comparing 'amount' (x) vs 'quantity' (y).")
	assert.Contains(t, got, "Create a time series of monthly sum of 'amount' using the datetime column 'date'.")
	assert.Contains(t, got, "Show the correlation matrix heatmap for numeric columns.")
}

func TestPrompts_CountsPerMonthWithoutNumerics(t *testing.T) {
	f, err := dataset.New(
		dataset.StringColumn("date", []string{"2024-01-01", "2024-02-01"}, nil),
	)
	require.NoError(t, err)

	got := Prompts(f, DefaultMax)
	assert.Contains(t, got, "Show counts per month using the datetime column 'date'.")
}

// Every suggested prompt must be translatable without the LLM.
func TestPrompts_AllRecognizedByMatcher(t *testing.T) {
	for _, prompt := range Prompts(richFrame(t), DefaultMax) {
		_, err := intent.Translate(prompt)
		assert.NoError(t, err, "prompt not recognized: %q", prompt)
	}
}
