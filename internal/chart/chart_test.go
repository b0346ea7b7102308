package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngMagic is the 8-byte PNG file signature.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestContext_OpenAndClear(t *testing.T) {
	ctx := NewContext()
	assert.Nil(t, ctx.Current())
	assert.False(t, ctx.HasFigure(), "empty context has no figure")

	fig := ctx.Open(6, 4)
	require.NotNil(t, fig)
	assert.False(t, ctx.HasFigure(), "an opened but undrawn figure does not count")

	fig.Kind = KindHist
	fig.Values = []float64{1, 2, 3}
	fig.Bins = 3
	assert.True(t, ctx.HasFigure())

	ctx.Clear()
	assert.Nil(t, ctx.Current())
	assert.False(t, ctx.HasFigure())
}

func TestContext_OpenDiscardsPrevious(t *testing.T) {
	ctx := NewContext()
	first := ctx.Open(6, 4)
	first.Kind = KindHist

	second := ctx.Open(8, 5)
	assert.Same(t, second, ctx.Current())
	assert.Equal(t, KindNone, second.Kind, "fresh figure starts undrawn")
}

func TestRenderPNG_Histogram(t *testing.T) {
	ctx := NewContext()
	fig := ctx.Open(6, 4)
	fig.Kind = KindHist
	fig.Values = []float64{1, 2, 2, 3, 3, 3, 4, 10}
	fig.Bins = 5
	fig.Title = "Histogram of amount"
	fig.XLabel = "amount"
	fig.YLabel = "count"

	dir := t.TempDir()
	path, err := ctx.RenderPNG(dir, DefaultDPI)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path), "file lands in the configured directory")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), len(pngMagic))
	assert.Equal(t, pngMagic, raw[:len(pngMagic)], "output is a PNG")
}

func TestRenderPNG_Scatter(t *testing.T) {
	ctx := NewContext()
	fig := ctx.Open(6, 4)
	fig.Kind = KindScatter
	fig.Points = []Point{{1, 2}, {2, 4}, {3, 6}}
	fig.Title = "y vs x"

	path, err := ctx.RenderPNG(t.TempDir(), DefaultDPI)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRenderPNG_Heatmap(t *testing.T) {
	ctx := NewContext()
	fig := ctx.Open(6, 5)
	fig.Kind = KindHeatmap
	fig.Grid = [][]float64{
		{1, 0.5},
		{0.5, 1},
	}
	fig.Labels = []string{"a", "b"}
	fig.Title = "Correlation matrix"

	path, err := ctx.RenderPNG(t.TempDir(), DefaultDPI)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRenderPNG_NoFigure(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.RenderPNG(t.TempDir(), DefaultDPI)
	assert.Error(t, err)

	ctx.Open(6, 4)
	_, err = ctx.RenderPNG(t.TempDir(), DefaultDPI)
	assert.Error(t, err, "undrawn figure cannot be rendered")
}

func TestRenderPNG_FreshFilePerCall(t *testing.T) {
	ctx := NewContext()
	fig := ctx.Open(6, 4)
	fig.Kind = KindHist
	fig.Values = []float64{1, 2, 3}
	fig.Bins = 3

	dir := t.TempDir()
	p1, err := ctx.RenderPNG(dir, DefaultDPI)
	require.NoError(t, err)
	p2, err := ctx.RenderPNG(dir, DefaultDPI)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2, "each render gets its own file")
}
