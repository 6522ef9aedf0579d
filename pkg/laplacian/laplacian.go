// Package laplacian builds scalar and connection Laplacians over
// neighbourhood graphs. Matrices are stored sparse (CSR) and implement
// gonum's mat.Matrix, so downstream solvers are free to treat them as
// abstract operators and densify only when they must.
package laplacian

import (
	"errors"
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/manifold-geometry-service/pkg/graph"
)

// Normalization selects how the combinatorial Laplacian is normalized.
type Normalization string

const (
	// None keeps the combinatorial form L = D - A.
	None Normalization = ""
	// RandomWalk scales each row by the inverse degree of its node.
	RandomWalk Normalization = "rw"
	// Symmetric is declared for completeness but not implemented; requesting
	// it is an unsupported-configuration error, never a silent fallback.
	Symmetric Normalization = "sym"
)

var (
	// ErrUnsupportedNormalization is returned for normalizations that are
	// recognized but not implemented ("sym") or unknown.
	ErrUnsupportedNormalization = errors.New("unsupported normalization")
	// ErrDimensionMismatch is returned when the connection data does not
	// tile evenly over the graph.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Compute builds the sparse scalar graph Laplacian L = D - A, where D is the
// diagonal of weighted degrees (self-loops counted once, so they cancel out
// of L and every row sums to zero). With RandomWalk normalization each row i
// is scaled element-wise by 1/deg(i); zero-degree rows get a zero scale so
// isolated nodes never produce non-finite entries.
func Compute(g *graph.Graph, normalization Normalization) (*sparse.CSR, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("compute laplacian: %w", err)
	}

	switch normalization {
	case None, RandomWalk:
	case Symmetric:
		return nil, fmt.Errorf("compute laplacian: %q: %w", normalization, ErrUnsupportedNormalization)
	default:
		return nil, fmt.Errorf("compute laplacian: %q: %w", normalization, ErrUnsupportedNormalization)
	}

	n := g.NumNodes
	dok := sparse.NewDOK(n, n)
	row := make(map[int]float64, 8)
	for i := 0; i < n; i++ {
		diag := g.Degrees[i]
		clear(row)
		neighbors, weights := g.Neighbors(i)
		for k, j := range neighbors {
			if j == i {
				diag -= weights[k] // self-loop cancels in D - A
				continue
			}
			row[j] -= weights[k]
		}
		if diag != 0 {
			dok.Set(i, i, diag)
		}
		for j, v := range row {
			dok.Set(i, j, v)
		}
	}
	l := dok.ToCSR()

	if normalization == RandomWalk {
		scale := make([]float64, n)
		for i := 0; i < n; i++ {
			if g.Degrees[i] > 0 {
				scale[i] = 1 / g.Degrees[i]
			}
		}
		l = rowScaled(l, scale)
	}

	return l, nil
}

// ComputeConnection builds the block connection Laplacian: the scalar
// Laplacian expanded to block form by a Kronecker product with a d x d
// all-ones block, then multiplied element-wise with the transport data R,
// so block (i,j) equals L(i,j) * R(i,j). Nonzero blocks therefore sit
// exactly at graph edges plus the diagonal, where the transport is the
// identity. R must be square with order an exact multiple of the graph
// order; the block dimension is inferred as order(R) / order(graph). With
// RandomWalk normalization each point's d-row block is scaled by the scalar
// inverse degree, zero degrees mapping to a zero scale.
func ComputeConnection(g *graph.Graph, r mat.Matrix, normalization Normalization) (*sparse.CSR, error) {
	switch normalization {
	case None, RandomWalk:
	case Symmetric:
		return nil, fmt.Errorf("connection laplacian: %q: %w", normalization, ErrUnsupportedNormalization)
	default:
		return nil, fmt.Errorf("connection laplacian: %q: %w", normalization, ErrUnsupportedNormalization)
	}

	n := g.NumNodes
	rRows, rCols := r.Dims()
	if rRows != rCols {
		return nil, fmt.Errorf("connection laplacian: R is %dx%d, want square: %w", rRows, rCols, ErrDimensionMismatch)
	}
	if n == 0 || rRows%n != 0 || rRows == 0 {
		return nil, fmt.Errorf("connection laplacian: R order %d does not tile %d nodes: %w", rRows, n, ErrDimensionMismatch)
	}
	dim := rRows / n

	l, err := Compute(g, None)
	if err != nil {
		return nil, err
	}

	// kron(L, ones(d,d)) broadcast followed by the Hadamard product with R,
	// fused into one pass over the scalar sparsity pattern.
	dok := sparse.NewDOK(rRows, rRows)
	l.DoNonZero(func(i, j int, w float64) {
		for a := 0; a < dim; a++ {
			for b := 0; b < dim; b++ {
				v := r.At(i*dim+a, j*dim+b)
				if v == 0 {
					continue
				}
				dok.Set(i*dim+a, j*dim+b, w*v)
			}
		}
	})
	lc := dok.ToCSR()

	if normalization == RandomWalk {
		scale := make([]float64, rRows)
		for i := 0; i < n; i++ {
			var inv float64
			if g.Degrees[i] > 0 {
				inv = 1 / g.Degrees[i]
			}
			for a := 0; a < dim; a++ {
				scale[i*dim+a] = inv
			}
		}
		lc = rowScaled(lc, scale)
	}

	return lc, nil
}

// rowScaled re-materializes m with row i multiplied by scale[i]. Rows with a
// zero scale are dropped from the sparsity pattern entirely.
func rowScaled(m *sparse.CSR, scale []float64) *sparse.CSR {
	rows, cols := m.Dims()
	dok := sparse.NewDOK(rows, cols)
	m.DoNonZero(func(i, j int, v float64) {
		if scale[i] == 0 {
			return
		}
		dok.Set(i, j, v*scale[i])
	})
	return dok.ToCSR()
}
