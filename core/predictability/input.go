package predictability

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// FeatureInput is a batch of feature rows accepted by PredictByFeature. It
// is implemented by Vector, Rows, Table and Frame.
type FeatureInput interface {
	// matrix returns the rows laid out in the model column order.
	matrix(columns []string) (*mat.Dense, error)
}

// Vector is a single feature row.
type Vector []float64

// Rows is a list of feature rows of equal width.
type Rows [][]float64

// Table wraps any gonum matrix whose columns follow the model columns.
type Table struct {
	mat.Matrix
}

// Frame holds named feature columns. Columns unknown to the model are
// ignored and model columns absent from the frame are NaN, which prediction
// turns into zero.
type Frame map[string][]float64

func (v Vector) matrix(columns []string) (*mat.Dense, error) {
	if len(v) == 0 {
		return nil, invalidf("empty feature vector")
	}
	return Rows{v}.matrix(columns)
}

func (r Rows) matrix(columns []string) (*mat.Dense, error) {
	if len(r) == 0 {
		return nil, invalidf("no feature rows")
	}
	width := len(r[0])
	if width != len(columns) {
		return nil, invalidf("feature rows have %d columns, model expects %d", width, len(columns))
	}
	x := mat.NewDense(len(r), width, nil)
	for i, row := range r {
		if len(row) != width {
			return nil, invalidf("ragged feature rows: row %d has %d columns, want %d", i, len(row), width)
		}
		x.SetRow(i, row)
	}
	return x, nil
}

func (t Table) matrix(columns []string) (*mat.Dense, error) {
	if t.Matrix == nil {
		return nil, invalidf("nil feature table")
	}
	rows, cols := t.Dims()
	if rows == 0 {
		return nil, invalidf("no feature rows")
	}
	if cols != len(columns) {
		return nil, invalidf("feature table has %d columns, model expects %d", cols, len(columns))
	}
	return mat.DenseCopyOf(t.Matrix), nil
}

func (f Frame) matrix(columns []string) (*mat.Dense, error) {
	n := -1
	for name, col := range f {
		if n >= 0 && len(col) != n {
			return nil, invalidf("frame column %q has %d values, want %d", name, len(col), n)
		}
		n = len(col)
	}
	if n <= 0 {
		return nil, invalidf("empty feature frame")
	}
	x := mat.NewDense(n, len(columns), nil)
	for j, name := range columns {
		col, ok := f[name]
		for i := 0; i < n; i++ {
			v := math.NaN()
			if ok {
				v = col[i]
			}
			x.Set(i, j, v)
		}
	}
	return x, nil
}

// FrameOf builds a single-row Frame from a feature map.
func FrameOf(features map[string]float64) Frame {
	f := make(Frame, len(features))
	for k, v := range features {
		f[k] = []float64{v}
	}
	return f
}
