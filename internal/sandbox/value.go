// Package sandbox executes analysis code in a restricted Starlark
// namespace bound to the dataset and classifies the outcome.
package sandbox

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/datalyst-labs/datalyst/internal/dataset"
)

// frameValue exposes a dataset.Frame to Starlark code. Attrs: num_rows,
// num_cols, columns. Methods: dtype(name). All tabular operations go
// through the tbl module so the frame itself stays read-only.
type frameValue struct {
	f *dataset.Frame
}

var (
	_ starlark.Value    = (*frameValue)(nil)
	_ starlark.HasAttrs = (*frameValue)(nil)
)

func (v *frameValue) String() string {
	return fmt.Sprintf("<frame %dx%d>", v.f.NumRows(), v.f.NumCols())
}

func (v *frameValue) Type() string          { return "frame" }
func (v *frameValue) Freeze()               {}
func (v *frameValue) Truth() starlark.Bool  { return starlark.Bool(v.f.NumRows() > 0) }
func (v *frameValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: frame") }

func (v *frameValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "num_rows":
		return starlark.MakeInt(v.f.NumRows()), nil
	case "num_cols":
		return starlark.MakeInt(v.f.NumCols()), nil
	case "columns":
		return stringList(v.f.Names()), nil
	case "dtype":
		return starlark.NewBuiltin("dtype", v.dtype).BindReceiver(v), nil
	default:
		return nil, nil
	}
}

func (v *frameValue) AttrNames() []string {
	return []string{"columns", "dtype", "num_cols", "num_rows"}
}

func (v *frameValue) dtype(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	col, ok := v.f.Col(name)
	if !ok {
		return nil, fmt.Errorf("dtype: no such column: %q", name)
	}
	return starlark.String(col.Kind.String()), nil
}

// matrixValue is a row-major numeric matrix produced by the num module.
type matrixValue struct {
	rows [][]float64
}

var _ starlark.Value = (*matrixValue)(nil)

func (m *matrixValue) String() string {
	c := 0
	if len(m.rows) > 0 {
		c = len(m.rows[0])
	}
	return fmt.Sprintf("<matrix %dx%d>", len(m.rows), c)
}

func (m *matrixValue) Type() string          { return "matrix" }
func (m *matrixValue) Freeze()               {}
func (m *matrixValue) Truth() starlark.Bool  { return starlark.Bool(len(m.rows) > 0) }
func (m *matrixValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: matrix") }

// stringList converts names to a Starlark list.
func stringList(names []string) *starlark.List {
	elems := make([]starlark.Value, len(names))
	for i, n := range names {
		elems[i] = starlark.String(n)
	}
	return starlark.NewList(elems)
}

// floatList converts values to a Starlark list of floats.
func floatList(values []float64) *starlark.List {
	elems := make([]starlark.Value, len(values))
	for i, v := range values {
		elems[i] = starlark.Float(v)
	}
	return starlark.NewList(elems)
}

// boolList converts a mask to a Starlark list of bools.
func boolList(mask []bool) *starlark.List {
	elems := make([]starlark.Value, len(mask))
	for i, v := range mask {
		elems[i] = starlark.Bool(v)
	}
	return starlark.NewList(elems)
}

// unpackFrame extracts the frame from a Starlark argument value.
func unpackFrame(fn string, v starlark.Value) (*dataset.Frame, error) {
	fv, ok := v.(*frameValue)
	if !ok {
		return nil, fmt.Errorf("%s: expected frame, got %s", fn, v.Type())
	}
	return fv.f, nil
}

// unpackFloats extracts a float slice from a Starlark iterable.
func unpackFloats(fn string, v starlark.Value) ([]float64, error) {
	iter, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s: expected iterable of floats, got %s", fn, v.Type())
	}
	var out []float64
	it := iter.Iterate()
	defer it.Done()
	var elem starlark.Value
	for it.Next(&elem) {
		f, ok := starlark.AsFloat(elem)
		if !ok {
			return nil, fmt.Errorf("%s: expected float, got %s", fn, elem.Type())
		}
		out = append(out, f)
	}
	return out, nil
}

// unpackBools extracts a bool slice from a Starlark iterable.
func unpackBools(fn string, v starlark.Value) ([]bool, error) {
	iter, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s: expected iterable of bools, got %s", fn, v.Type())
	}
	var out []bool
	it := iter.Iterate()
	defer it.Done()
	var elem starlark.Value
	for it.Next(&elem) {
		out = append(out, bool(elem.Truth()))
	}
	return out, nil
}
