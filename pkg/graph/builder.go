package graph

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Type selects the graph construction strategy.
type Type string

const (
	// KNN builds a symmetric k-nearest-neighbour connectivity graph with
	// unit weights and explicit self-loops.
	KNN Type = "knn"
	// Affinity builds a dense Gaussian-affinity graph over all point pairs.
	Affinity Type = "affinity"
)

// ErrUnknownGraphType is returned when the requested graph type is not one
// of the supported constructions.
var ErrUnknownGraphType = errors.New("unknown graph type")

// affinitySigma controls the width of the Gaussian affinity kernel.
const affinitySigma = 0.1

// ManifoldGraph fits a neighbourhood graph over a point set and attaches
// each point's coordinates as a node attribute. For KNN graphs the edge set
// is the symmetric union of the directed k-NN relations (an edge exists if
// either endpoint selects the other), matching a connectivity matrix plus
// its transpose, with self-loops added explicitly. For Affinity graphs every
// pair is connected with weight exp(-dist^2 / (2*sigma^2)); this is O(n^2)
// in edges and memory.
func ManifoldGraph(points *mat.Dense, typ Type, nNeighbors int) (*Graph, error) {
	n, _ := points.Dims()
	if n == 0 {
		return nil, fmt.Errorf("manifold graph: empty point set")
	}

	g := NewGraph(n)
	g.Positions = points

	switch typ {
	case KNN:
		if nNeighbors < 1 {
			return nil, fmt.Errorf("manifold graph: n_neighbors must be >= 1, got %d", nNeighbors)
		}
		// k+1 because every point is its own nearest neighbour.
		neighbors := NearestNeighbors(points, nNeighbors+1)

		type edge struct{ u, v int }
		seen := make(map[edge]struct{}, n*nNeighbors)
		for i, nn := range neighbors {
			for _, j := range nn {
				if j == i {
					continue
				}
				u, v := i, j
				if v < u {
					u, v = v, u
				}
				seen[edge{u, v}] = struct{}{}
			}
		}
		// Deterministic insertion order: scan pairs in index order.
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				if _, ok := seen[edge{u, v}]; ok {
					if err := g.AddEdge(u, v, 1.0); err != nil {
						return nil, err
					}
				}
			}
		}
		for i := 0; i < n; i++ {
			if err := g.AddEdge(i, i, 1.0); err != nil {
				return nil, err
			}
		}

	case Affinity:
		dist := PairwiseDistances(points)
		denom := 2 * affinitySigma * affinitySigma
		for u := 0; u < n; u++ {
			for v := u; v < n; v++ {
				w := math.Exp(-dist.At(u, v) * dist.At(u, v) / denom)
				if w <= 0 {
					continue // kernel underflow at large distances
				}
				if err := g.AddEdge(u, v, w); err != nil {
					return nil, err
				}
			}
		}

	default:
		return nil, fmt.Errorf("manifold graph: %q: %w", typ, ErrUnknownGraphType)
	}

	return g, nil
}
