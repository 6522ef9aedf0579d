package graph

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Graph is a weighted undirected neighbourhood graph over a point set.
// Nodes are the point indices 0..NumNodes-1 and every node carries the
// coordinates of its point, so geometric operators downstream can read
// positions without going back to the original matrix.
type Graph struct {
	NumNodes  int
	Adjacency [][]int     // adjacency[i] = neighbours of node i
	Weights   [][]float64 // weights[i][j] = weight of edge i -> adjacency[i][j]
	Degrees   []float64   // degrees[i] = weighted degree (self-loops counted once)
	Positions *mat.Dense  // n x d node coordinates
}

// NewGraph creates an empty graph with n nodes and no positions attached.
func NewGraph(n int) *Graph {
	return &Graph{
		NumNodes:  n,
		Adjacency: make([][]int, n),
		Weights:   make([][]float64, n),
		Degrees:   make([]float64, n),
	}
}

// AddEdge adds a weighted undirected edge between u and v. A self-loop
// (u == v) is stored once and contributes its weight once to the degree,
// matching the row-sum convention used by the Laplacian.
func (g *Graph) AddEdge(u, v int, weight float64) error {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return fmt.Errorf("node index out of range: u=%d, v=%d, numNodes=%d", u, v, g.NumNodes)
	}
	if weight <= 0 {
		return fmt.Errorf("edge weight must be positive: %f", weight)
	}

	g.Adjacency[u] = append(g.Adjacency[u], v)
	g.Weights[u] = append(g.Weights[u], weight)
	g.Degrees[u] += weight

	if u != v {
		g.Adjacency[v] = append(g.Adjacency[v], u)
		g.Weights[v] = append(g.Weights[v], weight)
		g.Degrees[v] += weight
	}

	return nil
}

// HasEdge reports whether an edge between u and v exists.
func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return false
	}
	for _, neighbor := range g.Adjacency[u] {
		if neighbor == v {
			return true
		}
	}
	return false
}

// Neighbors returns the neighbours and edge weights of a node.
func (g *Graph) Neighbors(node int) ([]int, []float64) {
	if node < 0 || node >= g.NumNodes {
		return nil, nil
	}
	return g.Adjacency[node], g.Weights[node]
}

// Position returns the coordinates attached to a node, or nil if the graph
// carries no positions.
func (g *Graph) Position(node int) []float64 {
	if g.Positions == nil || node < 0 || node >= g.NumNodes {
		return nil
	}
	return g.Positions.RawRowView(node)
}

// Dim returns the ambient dimension of the attached positions (0 if none).
func (g *Graph) Dim() int {
	if g.Positions == nil {
		return 0
	}
	_, d := g.Positions.Dims()
	return d
}

// Clone creates a deep copy of the graph. Positions are shared, not copied,
// since they are never mutated.
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.NumNodes)
	clone.Positions = g.Positions
	copy(clone.Degrees, g.Degrees)

	for i := 0; i < g.NumNodes; i++ {
		clone.Adjacency[i] = make([]int, len(g.Adjacency[i]))
		clone.Weights[i] = make([]float64, len(g.Weights[i]))
		copy(clone.Adjacency[i], g.Adjacency[i])
		copy(clone.Weights[i], g.Weights[i])
	}

	return clone
}

// Validate checks graph consistency: index ranges, positive weights,
// adjacency/weight alignment and edge symmetry.
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("graph must have positive number of nodes")
	}

	for i := 0; i < g.NumNodes; i++ {
		if len(g.Adjacency[i]) != len(g.Weights[i]) {
			return fmt.Errorf("adjacency and weights arrays inconsistent for node %d", i)
		}

		for j, neighbor := range g.Adjacency[i] {
			if neighbor < 0 || neighbor >= g.NumNodes {
				return fmt.Errorf("invalid neighbor %d for node %d", neighbor, i)
			}
			if g.Weights[i][j] <= 0 {
				return fmt.Errorf("non-positive weight %f for edge %d-%d", g.Weights[i][j], i, neighbor)
			}
			if neighbor != i && !g.HasEdge(neighbor, i) {
				return fmt.Errorf("edge %d-%d has no reverse edge", i, neighbor)
			}
		}
	}

	if g.Positions != nil {
		rows, _ := g.Positions.Dims()
		if rows != g.NumNodes {
			return fmt.Errorf("positions have %d rows for %d nodes", rows, g.NumNodes)
		}
	}

	return nil
}
