package spectral

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// cycleLaplacian is the 5-node cycle Laplacian, whose eigenvalues are
// 2 - 2*cos(2*pi*k/5).
func cycleLaplacian() *mat.Dense {
	n := 5
	l := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		l.Set(i, i, 2)
		l.Set(i, (i+1)%n, -1)
		l.Set(i, (i+n-1)%n, -1)
	}
	return l
}

func testSolver() *Solver {
	return NewSolver(zerolog.Nop())
}

func TestComputeFullSpectrum(t *testing.T) {
	l := cycleLaplacian()

	spec, err := testSolver().Compute(l, 0)
	require.NoError(t, err)
	require.Equal(t, 5, spec.NumPairs())
	assert.Equal(t, 5, spec.Order())

	// Known cycle eigenvalues, ascending.
	want := []float64{0, 2 - 2*math.Cos(2*math.Pi/5), 2 - 2*math.Cos(2*math.Pi/5),
		2 - 2*math.Cos(4*math.Pi/5), 2 - 2*math.Cos(4*math.Pi/5)}
	for i, w := range want {
		assert.InDelta(t, w, spec.Eigenvalues[i], 1e-4, "eigenvalue %d", i)
		assert.GreaterOrEqual(t, spec.Eigenvalues[i], -1e-6)
	}

	// Each column satisfies L v = lambda v despite the 1/sqrt(n) scaling.
	for j := 0; j < spec.NumPairs(); j++ {
		for i := 0; i < 5; i++ {
			var lv float64
			for k := 0; k < 5; k++ {
				lv += l.At(i, k) * spec.Eigenvectors.At(k, j)
			}
			assert.InDelta(t, spec.Eigenvalues[j]*spec.Eigenvectors.At(i, j), lv, 1e-4,
				"residual at (%d,%d)", i, j)
		}
	}

	// Columns carry the 1/sqrt(n) convention: squared entries sum to 1/n.
	for j := 0; j < spec.NumPairs(); j++ {
		var sq float64
		for i := 0; i < 5; i++ {
			v := spec.Eigenvectors.At(i, j)
			sq += v * v
		}
		assert.InDelta(t, 1.0/5.0, sq, 1e-4, "column %d norm", j)
	}
}

func TestComputeTruncated(t *testing.T) {
	spec, err := testSolver().Compute(cycleLaplacian(), 3)
	require.NoError(t, err)

	require.Equal(t, 3, spec.NumPairs())
	rows, cols := spec.Eigenvectors.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)

	// The cycle is connected: exactly one (near-)zero eigenvalue, then
	// ascending order.
	assert.InDelta(t, 0.0, spec.Eigenvalues[0], 1e-5)
	for i := 1; i < 3; i++ {
		assert.GreaterOrEqual(t, spec.Eigenvalues[i], spec.Eigenvalues[i-1])
	}
}

func TestComputeClipsOversizedRequest(t *testing.T) {
	// Asking for more pairs than the order is degenerate but recoverable.
	spec, err := testSolver().Compute(cycleLaplacian(), 10)
	require.NoError(t, err)
	assert.Equal(t, 5, spec.NumPairs())
}

func TestComputeRejectsNonSquare(t *testing.T) {
	_, err := testSolver().Compute(mat.NewDense(3, 2, nil), 2)
	assert.Error(t, err)
}

func TestSinglePrecisionRounding(t *testing.T) {
	x := 1.0 + 1e-12
	assert.Equal(t, 1.0, singlePrecision(x))
}
