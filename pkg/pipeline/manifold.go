// Package pipeline owns the manifold data object: it sequences graph
// construction, Laplacian assembly, spectral decomposition and diffusion
// over one point cloud, caching each stage's output for reuse across
// experiments. The core packages stay pure; all caching lives here.
package pipeline

import (
	"fmt"
	"time"

	"github.com/james-bowman/sparse"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/manifold-geometry-service/pkg/diffusion"
	"github.com/gilchrisn/manifold-geometry-service/pkg/graph"
	"github.com/gilchrisn/manifold-geometry-service/pkg/laplacian"
	"github.com/gilchrisn/manifold-geometry-service/pkg/sampling"
	"github.com/gilchrisn/manifold-geometry-service/pkg/spectral"
)

// RunStatistics collects per-stage runtimes for one manifold data object.
type RunStatistics struct {
	GraphMS     int64 `json:"graph_ms"`
	LaplacianMS int64 `json:"laplacian_ms"`
	SpectrumMS  int64 `json:"spectrum_ms"`
	DiffusionMS int64 `json:"diffusion_ms"`
}

// ManifoldData sequences the geometry pipeline over one point cloud. All
// stages are computed lazily on first use and cached; Invalidate drops the
// caches when the inputs change.
type ManifoldData struct {
	cfg *Config
	log zerolog.Logger

	points *mat.Dense
	faces  [][3]int // optional mesh connectivity, carried for callers

	graph        *graph.Graph
	scalarLap    *sparse.CSR
	connLap      *sparse.CSR
	spectrum     *spectral.Spectrum
	connSpectrum *spectral.Spectrum

	stats RunStatistics
}

// NewManifoldData creates a manifold data object over the given n x d point
// cloud. The points are owned by the caller and must not be mutated while
// the object is in use.
func NewManifoldData(points *mat.Dense, cfg *Config) *ManifoldData {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &ManifoldData{
		cfg:    cfg,
		log:    cfg.CreateLogger(),
		points: points,
	}
}

// SetFaces attaches optional mesh connectivity. Faces are carried through
// for external consumers (gauge estimation, plotting); the core pipeline
// works from points alone.
func (m *ManifoldData) SetFaces(faces [][3]int) {
	m.faces = faces
}

// Faces returns the attached mesh connectivity, if any.
func (m *ManifoldData) Faces() [][3]int { return m.faces }

// Points returns the point cloud.
func (m *ManifoldData) Points() *mat.Dense { return m.points }

// Statistics returns the per-stage runtimes recorded so far.
func (m *ManifoldData) Statistics() RunStatistics { return m.stats }

// Invalidate drops all cached stages, forcing recomputation on next use.
func (m *ManifoldData) Invalidate() {
	m.graph = nil
	m.scalarLap = nil
	m.connLap = nil
	m.spectrum = nil
	m.connSpectrum = nil
}

// Graph returns the neighbourhood graph, building it on first use.
func (m *ManifoldData) Graph() (*graph.Graph, error) {
	if m.graph != nil {
		return m.graph, nil
	}

	start := time.Now()
	g, err := graph.ManifoldGraph(m.points, graph.Type(m.cfg.GraphType()), m.cfg.NNeighbors())
	if err != nil {
		return nil, fmt.Errorf("manifold graph: %w", err)
	}
	m.stats.GraphMS = time.Since(start).Milliseconds()
	m.log.Debug().
		Int("nodes", g.NumNodes).
		Str("type", m.cfg.GraphType()).
		Int64("runtime_ms", m.stats.GraphMS).
		Msg("graph built")

	m.graph = g
	return g, nil
}

// Laplacian returns the scalar graph Laplacian with the configured
// normalization, building graph and Laplacian on first use.
func (m *ManifoldData) Laplacian() (*sparse.CSR, error) {
	if m.scalarLap != nil {
		return m.scalarLap, nil
	}

	g, err := m.Graph()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	l, err := laplacian.Compute(g, laplacian.Normalization(m.cfg.Normalization()))
	if err != nil {
		return nil, err
	}
	m.stats.LaplacianMS = time.Since(start).Milliseconds()

	m.scalarLap = l
	return l, nil
}

// ConnectionLaplacian returns the block connection Laplacian for the
// transport data R, caching the result. Passing nil R uses the trivial
// (identity-transport) connection in the ambient dimension.
func (m *ManifoldData) ConnectionLaplacian(r mat.Matrix) (*sparse.CSR, error) {
	if m.connLap != nil {
		return m.connLap, nil
	}

	g, err := m.Graph()
	if err != nil {
		return nil, err
	}

	if r == nil {
		conn, err := laplacian.TrivialConnection(g, g.Dim())
		if err != nil {
			return nil, err
		}
		r = conn.Matrix()
	}

	start := time.Now()
	lc, err := laplacian.ComputeConnection(g, r, laplacian.Normalization(m.cfg.Normalization()))
	if err != nil {
		return nil, err
	}
	m.stats.LaplacianMS += time.Since(start).Milliseconds()

	m.connLap = lc
	return lc, nil
}

// Spectrum returns the truncated spectrum of the scalar Laplacian with the
// configured number of eigenpairs.
func (m *ManifoldData) Spectrum() (*spectral.Spectrum, error) {
	if m.spectrum != nil {
		return m.spectrum, nil
	}

	l, err := m.Laplacian()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	spec, err := spectral.NewSolver(m.log).Compute(l, m.cfg.NEigenpairs())
	if err != nil {
		return nil, err
	}
	m.stats.SpectrumMS = time.Since(start).Milliseconds()
	m.log.Debug().
		Int("eigenpairs", spec.NumPairs()).
		Int64("runtime_ms", m.stats.SpectrumMS).
		Msg("spectrum computed")

	m.spectrum = spec
	return spec, nil
}

// ConnectionSpectrum returns the truncated spectrum of the connection
// Laplacian (trivial connection if R was never supplied), used by the
// spectral vector-diffusion path.
func (m *ManifoldData) ConnectionSpectrum() (*spectral.Spectrum, error) {
	if m.connSpectrum != nil {
		return m.connSpectrum, nil
	}

	lc, err := m.ConnectionLaplacian(nil)
	if err != nil {
		return nil, err
	}

	spec, err := spectral.NewSolver(m.log).Compute(lc, m.cfg.NEigenpairs())
	if err != nil {
		return nil, err
	}

	m.connSpectrum = spec
	return spec, nil
}

// ScalarDiffuse diffuses a per-node scalar field (one column per channel)
// for the configured time with the configured method.
func (m *ManifoldData) ScalarDiffuse(x *mat.Dense) (*mat.Dense, error) {
	op, err := m.scalarOperator()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := diffusion.Scalar(x, m.cfg.DiffusionTime(), diffusion.Method(m.cfg.DiffusionMethod()), op)
	if err != nil {
		return nil, err
	}
	m.stats.DiffusionMS += time.Since(start).Milliseconds()

	return out, nil
}

// VectorDiffuse diffuses an n x d vector field under the connection
// Laplacian, renormalizing magnitudes when configured to.
func (m *ManifoldData) VectorDiffuse(x *mat.Dense) (*mat.Dense, error) {
	method := diffusion.Method(m.cfg.DiffusionMethod())

	var conn diffusion.Operator
	switch method {
	case diffusion.Spectral:
		spec, err := m.ConnectionSpectrum()
		if err != nil {
			return nil, err
		}
		conn = diffusion.SpectrumOperator(spec)
	default:
		lc, err := m.ConnectionLaplacian(nil)
		if err != nil {
			return nil, err
		}
		conn = diffusion.MatrixOperator(lc)
	}

	scalarOp, err := m.scalarOperator()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := diffusion.Vector(x, m.cfg.DiffusionTime(), conn, scalarOp, method, m.cfg.Normalise())
	if err != nil {
		return nil, err
	}
	m.stats.DiffusionMS += time.Since(start).Milliseconds()

	return out, nil
}

// Subsample runs furthest-point sampling over the point cloud with the
// configured stop criterion and start index. n <= 0 samples until the stop
// criterion is met.
func (m *ManifoldData) Subsample(n int) (*sampling.FPSResult, error) {
	return sampling.FurthestPointSampling(m.points, n, m.cfg.StopCrit(), m.cfg.StartIdx())
}

func (m *ManifoldData) scalarOperator() (diffusion.Operator, error) {
	switch diffusion.Method(m.cfg.DiffusionMethod()) {
	case diffusion.Spectral:
		spec, err := m.Spectrum()
		if err != nil {
			return diffusion.Operator{}, err
		}
		return diffusion.SpectrumOperator(spec), nil
	default:
		l, err := m.Laplacian()
		if err != nil {
			return diffusion.Operator{}, err
		}
		return diffusion.MatrixOperator(l), nil
	}
}
