// Package gauge projects vectors into and out of per-point local tangent
// frames.
package gauge

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gauges stores one local frame per point: frame i is a d x d matrix whose
// columns are the basis vectors of the tangent space at point i, expressed
// in ambient coordinates.
type Gauges struct {
	n, d int
	data []float64
}

// NewGauges allocates frames for n points in dimension d, all zero. Use
// SetFrame or Frame to fill them in.
func NewGauges(n, d int) *Gauges {
	return &Gauges{n: n, d: d, data: make([]float64, n*d*d)}
}

// NewIdentityGauges allocates frames for n points, each initialized to the
// ambient coordinate frame.
func NewIdentityGauges(n, d int) *Gauges {
	g := NewGauges(n, d)
	for i := 0; i < n; i++ {
		for a := 0; a < d; a++ {
			g.data[(i*d+a)*d+a] = 1
		}
	}
	return g
}

// Len returns the number of points.
func (g *Gauges) Len() int { return g.n }

// Dim returns the frame dimension.
func (g *Gauges) Dim() int { return g.d }

// Frame returns a view of the frame at point i backed by the gauge storage;
// writes through the view update the gauge.
func (g *Gauges) Frame(i int) *mat.Dense {
	return mat.NewDense(g.d, g.d, g.data[i*g.d*g.d:(i+1)*g.d*g.d])
}

// SetFrame copies f into the frame at point i.
func (g *Gauges) SetFrame(i int, f mat.Matrix) error {
	rows, cols := f.Dims()
	if rows != g.d || cols != g.d {
		return fmt.Errorf("gauge frame %d is %dx%d, want %dx%d", i, rows, cols, g.d, g.d)
	}
	g.Frame(i).Copy(f)
	return nil
}

// ProjectToLocalFrame contracts each row of x with the frame at its point:
// forward (reverse=false) maps ambient vectors to local coordinates via
// F^T x, reverse maps local coordinates back to ambient vectors via F x.
// x must be n x d with one row per point.
func ProjectToLocalFrame(x *mat.Dense, gauges *Gauges, reverse bool) (*mat.Dense, error) {
	n, d := x.Dims()
	if n != gauges.n || d != gauges.d {
		return nil, fmt.Errorf("project to local frame: field is %dx%d, gauges hold %d frames of dim %d", n, d, gauges.n, gauges.d)
	}

	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		frame := gauges.Frame(i)
		row := x.RawRowView(i)
		dst := out.RawRowView(i)
		for j := 0; j < d; j++ {
			var sum float64
			for k := 0; k < d; k++ {
				if reverse {
					sum += frame.At(j, k) * row[k]
				} else {
					sum += frame.At(k, j) * row[k]
				}
			}
			dst[j] = sum
		}
	}

	return out, nil
}

// ProjectToManifold projects each ambient vector onto the subspace spanned
// by its local frame (forward projection followed by reconstruction). For
// orthonormal frames this is the tangent-plane projection and is
// idempotent.
func ProjectToManifold(x *mat.Dense, gauges *Gauges) (*mat.Dense, error) {
	coeffs, err := ProjectToLocalFrame(x, gauges, false)
	if err != nil {
		return nil, fmt.Errorf("project to manifold: %w", err)
	}
	out, err := ProjectToLocalFrame(coeffs, gauges, true)
	if err != nil {
		return nil, fmt.Errorf("project to manifold: %w", err)
	}
	return out, nil
}
