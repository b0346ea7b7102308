// Package chart holds the explicit chart rendering context. The
// sandbox's plot handle accumulates a figure spec here; rendering to PNG
// happens in Go after execution, and the context is cleared per run so
// no figure state leaks into the next request.
package chart

import (
	"fmt"
	"os"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultDPI is the raster resolution for rendered figures.
const DefaultDPI = 150

// FigureKind selects the plot type of a figure spec.
type FigureKind int

const (
	// KindNone marks an opened but not yet drawn figure.
	KindNone FigureKind = iota
	// KindHist is a histogram of a value series.
	KindHist
	// KindScatter is an x/y point plot.
	KindScatter
	// KindHeatmap is a labeled matrix heatmap.
	KindHeatmap
)

// Point is an x/y pair for scatter figures.
type Point struct {
	X, Y float64
}

// Figure is a declarative plot spec built up by sandboxed code.
type Figure struct {
	Kind     FigureKind
	WidthIn  float64
	HeightIn float64
	Title    string
	XLabel   string
	YLabel   string

	// Histogram
	Values []float64
	Bins   int

	// Scatter
	Points []Point

	// Heatmap
	Grid   [][]float64
	Labels []string
}

// Context is the single-figure register for one sandbox run. It replaces
// the original design's implicit process-global current figure.
type Context struct {
	mu  sync.Mutex
	fig *Figure
}

// NewContext returns an empty chart context.
func NewContext() *Context {
	return &Context{}
}

// Open starts a new figure with the given size in inches and makes it
// current, discarding any previous figure.
func (c *Context) Open(widthIn, heightIn float64) *Figure {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fig = &Figure{Kind: KindNone, WidthIn: widthIn, HeightIn: heightIn}
	return c.fig
}

// Current returns the open figure, or nil.
func (c *Context) Current() *Figure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fig
}

// HasFigure reports whether a drawn figure is open.
func (c *Context) HasFigure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fig != nil && c.fig.Kind != KindNone
}

// Clear releases the open figure.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fig = nil
}

// RenderPNG renders the open figure to a fresh PNG file in dir (the
// system temp directory if dir is empty) and returns its path.
func (c *Context) RenderPNG(dir string, dpi int) (string, error) {
	fig := c.Current()
	if fig == nil || fig.Kind == KindNone {
		return "", fmt.Errorf("no figure to render")
	}
	f, err := os.CreateTemp(dir, "datalyst-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := render(fig, f, dpi); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func render(fig *Figure, out *os.File, dpi int) error {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	switch fig.Kind {
	case KindHist:
		h, err := plotter.NewHist(plotter.Values(fig.Values), fig.Bins)
		if err != nil {
			return fmt.Errorf("failed to build histogram: %w", err)
		}
		p.Add(h)

	case KindScatter:
		xys := make(plotter.XYs, len(fig.Points))
		for i, pt := range fig.Points {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		p.Add(s)

	case KindHeatmap:
		cm := moreland.SmoothBlueRed()
		cm.SetMin(-1)
		cm.SetMax(1)
		hm := plotter.NewHeatMap(matrixGrid{fig.Grid}, cm.Palette(64))
		p.Add(hm)
		if ticks := labelTicks(fig.Labels); ticks != nil {
			p.X.Tick.Marker = ticks
			p.Y.Tick.Marker = ticks
		}

	default:
		return fmt.Errorf("unsupported figure kind %d", fig.Kind)
	}

	w := vg.Length(fig.WidthIn) * vg.Inch
	h := vg.Length(fig.HeightIn) * vg.Inch
	canvas := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}
	p.Draw(draw.New(canvas))
	if _, err := canvas.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	return nil
}

// matrixGrid adapts a square matrix to plotter.GridXYZ.
type matrixGrid struct {
	m [][]float64
}

func (g matrixGrid) Dims() (int, int) {
	if len(g.m) == 0 {
		return 0, 0
	}
	return len(g.m[0]), len(g.m)
}

func (g matrixGrid) Z(c, r int) float64 { return g.m[r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// labelTicks places one tick per label at integer positions.
func labelTicks(labels []string) plot.ConstantTicks {
	if len(labels) == 0 {
		return nil
	}
	ticks := make([]plot.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return plot.ConstantTicks(ticks)
}
