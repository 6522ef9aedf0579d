package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func linePoints(xs ...float64) *mat.Dense {
	return mat.NewDense(len(xs), 1, xs)
}

func TestAddEdge(t *testing.T) {
	g := NewGraph(3)

	require.NoError(t, g.AddEdge(0, 1, 2.0))
	require.NoError(t, g.AddEdge(1, 1, 1.0))

	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 0))
	assert.False(t, g.HasEdge(0, 2))

	assert.Equal(t, 2.0, g.Degrees[0])
	assert.Equal(t, 3.0, g.Degrees[1]) // edge weight 2 + self-loop weight 1
	assert.Equal(t, 0.0, g.Degrees[2])

	assert.Error(t, g.AddEdge(0, 5, 1.0))
	assert.Error(t, g.AddEdge(0, 2, -1.0))
}

func TestCloneAndValidate(t *testing.T) {
	g := NewGraph(3)
	require.NoError(t, g.AddEdge(0, 1, 1.0))
	require.NoError(t, g.AddEdge(1, 2, 1.0))
	require.NoError(t, g.Validate())

	clone := g.Clone()
	require.NoError(t, clone.AddEdge(0, 2, 1.0))
	assert.True(t, clone.HasEdge(0, 2))
	assert.False(t, g.HasEdge(0, 2))

	// Break symmetry by hand; Validate must notice.
	bad := NewGraph(2)
	bad.Adjacency[0] = []int{1}
	bad.Weights[0] = []float64{1.0}
	assert.Error(t, bad.Validate())
}

func TestPairwiseDistances(t *testing.T) {
	points := linePoints(0, 3, 7)
	dist := PairwiseDistances(points)

	assert.InDelta(t, 0.0, dist.At(0, 0), 1e-12)
	assert.InDelta(t, 3.0, dist.At(0, 1), 1e-12)
	assert.InDelta(t, 3.0, dist.At(1, 0), 1e-12)
	assert.InDelta(t, 7.0, dist.At(0, 2), 1e-12)
	assert.InDelta(t, 4.0, dist.At(1, 2), 1e-12)
}

func TestNearestNeighbors(t *testing.T) {
	points := linePoints(0, 1, 3, 7)

	nn := NearestNeighbors(points, 3)
	require.Len(t, nn, 4)

	// Every point is its own nearest neighbour.
	for i, list := range nn {
		require.NotEmpty(t, list)
		assert.Equal(t, i, list[0])
		assert.Len(t, list, 3)
	}
	assert.Equal(t, []int{0, 1, 2}, nn[0])
	assert.Equal(t, []int{3, 2, 1}, nn[3])
}

func TestManifoldGraphKNN(t *testing.T) {
	points := linePoints(0, 1, 3, 7)

	g, err := ManifoldGraph(points, KNN, 1)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	// Directed 1-NN relations are 0->1, 1->0, 2->1, 3->2; the symmetric
	// union gives edges (0,1), (1,2), (2,3).
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 2))
	assert.True(t, g.HasEdge(2, 3))
	assert.False(t, g.HasEdge(0, 2))
	assert.False(t, g.HasEdge(0, 3))

	// Explicit self-loops on every node.
	for i := 0; i < 4; i++ {
		assert.True(t, g.HasEdge(i, i))
	}

	// Positions attached per node.
	require.NotNil(t, g.Positions)
	assert.Equal(t, []float64{3}, g.Position(2))
	assert.Equal(t, 1, g.Dim())
}

func TestManifoldGraphAffinity(t *testing.T) {
	points := linePoints(0, 0.1, 0.2)

	g, err := ManifoldGraph(points, Affinity, 0)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	// Dense graph: every pair connected, self-loops with weight 1.
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.True(t, g.HasEdge(i, j), "edge %d-%d", i, j)
		}
	}

	neighbors, weights := g.Neighbors(0)
	for k, j := range neighbors {
		if j == 0 {
			assert.InDelta(t, 1.0, weights[k], 1e-12)
		}
	}
}

func TestManifoldGraphUnknownType(t *testing.T) {
	points := linePoints(0, 1)

	_, err := ManifoldGraph(points, Type("mesh"), 1)
	assert.ErrorIs(t, err, ErrUnknownGraphType)
}
