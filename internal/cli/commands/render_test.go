package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalyst-labs/datalyst/internal/dataset"
	"github.com/datalyst-labs/datalyst/internal/sandbox"
)

func renderTestFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	f, err := dataset.New(
		dataset.NumericColumn("amount", []float64{10.5, 20}, []bool{false, true}),
		dataset.StringColumn("category", []string{"food", "rent"}, nil),
	)
	require.NoError(t, err)
	return f
}

func TestRenderOutcome_Text(t *testing.T) {
	var sb strings.Builder
	err := renderOutcome(&sb, sandbox.Outcome{Kind: sandbox.ResultText, Text: "hello"}, "table")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", sb.String())
}

func TestRenderOutcome_Image(t *testing.T) {
	var sb strings.Builder
	err := renderOutcome(&sb, sandbox.Outcome{Kind: sandbox.ResultImage, ImagePath: "/tmp/chart.png"}, "table")
	require.NoError(t, err)
	assert.Equal(t, "Chart written to /tmp/chart.png\n", sb.String())
}

func TestRenderFrame_Table(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderFrame(&sb, renderTestFrame(t), "table"))

	got := sb.String()
	assert.Contains(t, got, "AMOUNT", "go-pretty uppercases headers")
	assert.Contains(t, got, "food")
	assert.Contains(t, got, "(2 rows)")
}

func TestRenderFrame_TableEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderFrame(&sb, dataset.Empty(), "table"))
	assert.Equal(t, "(0 rows)\n", sb.String())
}

func TestRenderFrame_CSV(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderFrame(&sb, renderTestFrame(t), "csv"))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "amount,category", lines[0], "header first, no index column")
	assert.Equal(t, "10.5,food", lines[1])
	assert.Equal(t, ",rent", lines[2], "missing cell exported as empty")
}

func TestRenderFrame_JSON(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderFrame(&sb, renderTestFrame(t), "json"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 10.5, records[0]["amount"])
	assert.Nil(t, records[1]["amount"], "missing cell is null")
	assert.Equal(t, "rent", records[1]["category"])
}

func TestRenderFrame_Markdown(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderFrame(&sb, renderTestFrame(t), "md"))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| amount | category |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| 10.5 | food |", lines[2])
}
