package sandbox

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/datalyst-labs/datalyst/internal/chart"
	"github.com/datalyst-labs/datalyst/internal/dataset"
)

// plotModule is the charting handle. All calls write figure specs into
// the run's chart context; nothing is rasterized until after execution.
func plotModule(ctx *chart.Context) *starlarkstruct.Module {
	p := &plotBridge{ctx: ctx}
	return &starlarkstruct.Module{
		Name: "plot",
		Members: starlark.StringDict{
			"figure":  starlark.NewBuiltin("plot.figure", p.figure),
			"hist":    starlark.NewBuiltin("plot.hist", p.hist),
			"scatter": starlark.NewBuiltin("plot.scatter", p.scatter),
			"heatmap": starlark.NewBuiltin("plot.heatmap", p.heatmap),
			"title":   starlark.NewBuiltin("plot.title", p.title),
			"xlabel":  starlark.NewBuiltin("plot.xlabel", p.xlabel),
			"ylabel":  starlark.NewBuiltin("plot.ylabel", p.ylabel),
		},
	}
}

type plotBridge struct {
	ctx *chart.Context
}

// current returns the open figure, opening a default-sized one if code
// draws without calling figure() first.
func (p *plotBridge) current() *chart.Figure {
	if fig := p.ctx.Current(); fig != nil {
		return fig
	}
	return p.ctx.Open(6, 4)
}

func (p *plotBridge) figure(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var wv, hv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &wv, &hv); err != nil {
		return nil, err
	}
	// Sizes arrive as int or float literals; accept both.
	w, ok := starlark.AsFloat(wv)
	if !ok {
		return nil, fmt.Errorf("%s: got %s for width, want a number", b.Name(), wv.Type())
	}
	h, ok := starlark.AsFloat(hv)
	if !ok {
		return nil, fmt.Errorf("%s: got %s for height, want a number", b.Name(), hv.Type())
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%s: size must be positive", b.Name())
	}
	p.ctx.Open(w, h)
	return starlark.None, nil
}

func (p *plotBridge) hist(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	var bins int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &v, &bins); err != nil {
		return nil, err
	}
	vals, err := unpackFloats(b.Name(), v)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: no values to plot", b.Name())
	}
	if bins <= 0 {
		bins = 30
	}
	fig := p.current()
	fig.Kind = chart.KindHist
	fig.Values = vals
	fig.Bins = bins
	return starlark.None, nil
}

// scatter plots rows of a frame where both coordinates are present.
func (p *plotBridge) scatter(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	var xcol, ycol string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &fv, &xcol, &ycol); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	xc, ok := f.Col(xcol)
	if !ok || xc.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("%s: %q is not a numeric column", b.Name(), xcol)
	}
	yc, ok := f.Col(ycol)
	if !ok || yc.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("%s: %q is not a numeric column", b.Name(), ycol)
	}
	var pts []chart.Point
	for i := 0; i < f.NumRows(); i++ {
		if !xc.IsMissing(i) && !yc.IsMissing(i) {
			pts = append(pts, chart.Point{X: xc.Nums[i], Y: yc.Nums[i]})
		}
	}
	fig := p.current()
	fig.Kind = chart.KindScatter
	fig.Points = pts
	fig.XLabel = xcol
	fig.YLabel = ycol
	return starlark.None, nil
}

// heatmap plots a correlation frame: a "column" label column followed by
// one numeric column per variable.
func (p *plotBridge) heatmap(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fv starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fv); err != nil {
		return nil, err
	}
	f, err := unpackFrame(b.Name(), fv)
	if err != nil {
		return nil, err
	}
	names := f.NumericColumnNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: frame has no numeric columns", b.Name())
	}
	grid := make([][]float64, f.NumRows())
	for i := range grid {
		grid[i] = make([]float64, len(names))
		for j, name := range names {
			col, _ := f.Col(name)
			if !col.IsMissing(i) {
				grid[i][j] = col.Nums[i]
			}
		}
	}
	labels := names
	if lc, ok := f.Col("column"); ok && lc.Kind == dataset.KindString {
		labels = make([]string, f.NumRows())
		for i := range labels {
			labels[i] = lc.CellString(i)
		}
	}
	fig := p.current()
	fig.Kind = chart.KindHeatmap
	fig.Grid = grid
	fig.Labels = labels
	return starlark.None, nil
}

func (p *plotBridge) title(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	p.current().Title = s
	return starlark.None, nil
}

func (p *plotBridge) xlabel(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	p.current().XLabel = s
	return starlark.None, nil
}

func (p *plotBridge) ylabel(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	p.current().YLabel = s
	return starlark.None, nil
}
