// Package spectral computes truncated eigendecompositions of graph
// Laplacians. The decomposition is dense under the hood (O(n^2) memory,
// O(n^3) time), which is the documented scaling limit of the solver; the
// input stays an abstract mat.Matrix so sparse Laplacians plug in directly.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// ErrNotConverged is returned when the eigensolver fails to converge. It is
// fatal and surfaced verbatim; there is no retry.
var ErrNotConverged = errors.New("eigendecomposition did not converge")

// Spectrum is a truncated eigendecomposition: the k algebraically smallest
// eigenvalues in ascending order and the matching eigenvectors as columns.
// Eigenvectors are scaled by 1/sqrt(n) so each column's squared entries sum
// to one over the vertices; this convention is relied on by spectral
// diffusion and must not be re-derived from raw solver output. Values are
// rounded through single precision, matching the downstream consumers.
type Spectrum struct {
	Eigenvalues  []float64
	Eigenvectors *mat.Dense // n x k
}

// Order returns the number of vertices n the spectrum lives on.
func (s *Spectrum) Order() int {
	n, _ := s.Eigenvectors.Dims()
	return n
}

// NumPairs returns the number of retained eigenpairs k.
func (s *Spectrum) NumPairs() int {
	return len(s.Eigenvalues)
}

// Solver computes spectra of symmetric sparse operators.
type Solver struct {
	log zerolog.Logger
}

// NewSolver creates a solver logging degenerate-request notices to logger.
func NewSolver(logger zerolog.Logger) *Solver {
	return &Solver{log: logger}
}

// Compute returns the k smallest eigenpairs of the (assumed symmetric)
// operator l. k <= 0 means "all". A requested k that is not smaller than
// the matrix order is clipped to the order with a warning; that is a
// recoverable degenerate request, not an error. Only the upper triangle of
// l is read.
func (s *Solver) Compute(l mat.Matrix, k int) (*Spectrum, error) {
	n, m := l.Dims()
	if n != m {
		return nil, fmt.Errorf("compute spectrum: operator is %dx%d, want square", n, m)
	}
	if n == 0 {
		return nil, fmt.Errorf("compute spectrum: empty operator")
	}

	if k <= 0 {
		k = n
	}
	if k >= n {
		if k > n {
			s.log.Warn().
				Int("requested", k).
				Int("order", n).
				Msg("requested eigenpairs exceed matrix order, reducing")
		} else {
			s.log.Warn().
				Int("requested", k).
				Int("order", n).
				Msg("requested eigenpairs equal matrix order, full decomposition")
		}
		k = n
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, l.At(i, j))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("compute spectrum: %w", ErrNotConverged)
	}

	vals := eig.Values(nil) // ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	invSqrtN := 1 / math.Sqrt(float64(n))
	evals := make([]float64, k)
	for i := 0; i < k; i++ {
		evals[i] = singlePrecision(vals[i])
	}
	evecs := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			evecs.Set(i, j, singlePrecision(vecs.At(i, j)*invSqrtN))
		}
	}

	return &Spectrum{Eigenvalues: evals, Eigenvectors: evecs}, nil
}

// singlePrecision rounds x through float32, the precision carried by all
// downstream spectral methods.
func singlePrecision(x float64) float64 {
	return float64(float32(x))
}
