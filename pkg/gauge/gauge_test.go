package gauge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// rotationGauges gives each point an orthonormal frame rotated by a
// different angle.
func rotationGauges(t *testing.T, angles ...float64) *Gauges {
	t.Helper()
	g := NewGauges(len(angles), 2)
	for i, a := range angles {
		frame := mat.NewDense(2, 2, []float64{
			math.Cos(a), -math.Sin(a),
			math.Sin(a), math.Cos(a),
		})
		require.NoError(t, g.SetFrame(i, frame))
	}
	return g
}

func TestIdentityGaugesAreNoOp(t *testing.T) {
	g := NewIdentityGauges(3, 2)
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		-3, 0,
		0.5, 4,
	})

	for _, reverse := range []bool{false, true} {
		out, err := ProjectToLocalFrame(x, g, reverse)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			for j := 0; j < 2; j++ {
				assert.InDelta(t, x.At(i, j), out.At(i, j), 1e-12)
			}
		}
	}
}

func TestProjectRoundTrip(t *testing.T) {
	g := rotationGauges(t, 0, math.Pi/3, 1.1)
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		-3, 0,
		0.5, 4,
	})

	// Forward projection into an orthonormal frame preserves norms and
	// inverts through the reverse projection.
	coeffs, err := ProjectToLocalFrame(x, g, false)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		var xs, cs float64
		for j := 0; j < 2; j++ {
			xs += x.At(i, j) * x.At(i, j)
			cs += coeffs.At(i, j) * coeffs.At(i, j)
		}
		assert.InDelta(t, xs, cs, 1e-10)
	}

	back, err := ProjectToLocalFrame(coeffs, g, true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, x.At(i, j), back.At(i, j), 1e-10)
		}
	}
}

func TestProjectToLocalFrameKnownValues(t *testing.T) {
	// Frame rotated by 90 degrees: local coordinates of (1,0) are (0,-1).
	g := rotationGauges(t, math.Pi/2)
	x := mat.NewDense(1, 2, []float64{1, 0})

	out, err := ProjectToLocalFrame(x, g, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, -1.0, out.At(0, 1), 1e-12)
}

func TestProjectToManifoldIdempotent(t *testing.T) {
	g := rotationGauges(t, 0.2, 2.5)
	x := mat.NewDense(2, 2, []float64{
		3, -1,
		0.5, 2,
	})

	once, err := ProjectToManifold(x, g)
	require.NoError(t, err)
	twice, err := ProjectToManifold(once, g)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			// Full-rank orthonormal frames: projection is the identity, and
			// in particular idempotent.
			assert.InDelta(t, x.At(i, j), once.At(i, j), 1e-10)
			assert.InDelta(t, once.At(i, j), twice.At(i, j), 1e-10)
		}
	}
}

func TestProjectRankDeficientFrame(t *testing.T) {
	// A frame with a single basis vector (second column zero) projects onto
	// the line it spans.
	g := NewGauges(1, 2)
	require.NoError(t, g.SetFrame(0, mat.NewDense(2, 2, []float64{
		1, 0,
		0, 0,
	})))

	x := mat.NewDense(1, 2, []float64{3, 4})
	out, err := ProjectToManifold(x, g)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(0, 1), 1e-12)
}

func TestGaugeDimensionChecks(t *testing.T) {
	g := NewIdentityGauges(2, 2)

	require.Error(t, g.SetFrame(0, mat.NewDense(3, 3, nil)))

	_, err := ProjectToLocalFrame(mat.NewDense(3, 2, nil), g, false)
	assert.Error(t, err)

	_, err = ProjectToLocalFrame(mat.NewDense(2, 3, nil), g, false)
	assert.Error(t, err)
}

func TestFrameViewWritesThrough(t *testing.T) {
	g := NewGauges(2, 2)
	g.Frame(1).Set(0, 0, 7)
	assert.Equal(t, 7.0, g.Frame(1).At(0, 0))
	assert.Equal(t, 0.0, g.Frame(0).At(0, 0))
}
