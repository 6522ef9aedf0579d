package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/manifold-geometry-service/pkg/pipeline"
)

func main() {
	fmt.Println("Manifold Geometry Service")
	fmt.Println("=========================")

	if len(os.Args) < 3 {
		fmt.Println("Usage: go run main.go <mode> <points_file> [config_file]")
		fmt.Println("Modes:")
		fmt.Println("  spectrum - build the graph Laplacian and report its spectrum")
		fmt.Println("  diffuse  - diffuse the coordinate field over the manifold")
		fmt.Println("  sample   - furthest-point subsample the point cloud")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  go run main.go spectrum data/points.json")
		fmt.Println("  go run main.go diffuse data/points.json config.yaml")
		os.Exit(1)
	}

	mode := os.Args[1]
	pointsFile := os.Args[2]

	cfg := pipeline.NewConfig()
	if len(os.Args) > 3 {
		if err := cfg.LoadFromFile(os.Args[3]); err != nil {
			fmt.Printf("Error loading config %s: %v\n", os.Args[3], err)
			os.Exit(1)
		}
	}
	log := cfg.CreateLogger()

	points, err := loadPoints(pointsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", pointsFile).Msg("failed to load points")
	}
	n, d := points.Dims()
	log.Info().Int("points", n).Int("dim", d).Msg("point cloud loaded")

	m := pipeline.NewManifoldData(points, cfg)

	switch mode {
	case "spectrum":
		runSpectrum(m, log)
	case "diffuse":
		runDiffuse(m, points, log)
	case "sample":
		runSample(m, log)
	default:
		fmt.Printf("Unknown mode: %s\n", mode)
		fmt.Println("Available modes: spectrum, diffuse, sample")
		os.Exit(1)
	}

	stats := m.Statistics()
	log.Info().
		Int64("graph_ms", stats.GraphMS).
		Int64("laplacian_ms", stats.LaplacianMS).
		Int64("spectrum_ms", stats.SpectrumMS).
		Int64("diffusion_ms", stats.DiffusionMS).
		Msg("pipeline finished")
}

// loadPoints reads an n x d point cloud stored as a JSON array of rows.
func loadPoints(path string) (*mat.Dense, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("parse %s: empty point cloud", path)
	}

	d := len(rows[0])
	points := mat.NewDense(len(rows), d, nil)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("parse %s: row %d has %d coordinates, want %d", path, i, len(row), d)
		}
		for j, v := range row {
			points.Set(i, j, v)
		}
	}
	return points, nil
}

func runSpectrum(m *pipeline.ManifoldData, log zerolog.Logger) {
	spec, err := m.Spectrum()
	if err != nil {
		log.Fatal().Err(err).Msg("spectrum failed")
	}

	fmt.Printf("✓ Computed %d eigenpairs over %d vertices\n", spec.NumPairs(), spec.Order())
	for i, ev := range spec.Eigenvalues {
		fmt.Printf("  lambda[%d] = %.6f\n", i, ev)
	}
}

func runDiffuse(m *pipeline.ManifoldData, points *mat.Dense, log zerolog.Logger) {
	// Diffuse the coordinates themselves: a cheap smoke signal that needs no
	// extra input field.
	out, err := m.ScalarDiffuse(points)
	if err != nil {
		log.Fatal().Err(err).Msg("diffusion failed")
	}

	rows, cols := out.Dims()
	fmt.Printf("✓ Diffused %d x %d coordinate field\n", rows, cols)
	result := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		result[i] = make([]float64, cols)
		copy(result[i], out.RawRowView(i))
	}
	if err := writeJSON("diffused_points.json", result); err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}
	fmt.Println("✓ Wrote diffused_points.json")
}

func runSample(m *pipeline.ManifoldData, log zerolog.Logger) {
	res, err := m.Subsample(0)
	if err != nil {
		log.Fatal().Err(err).Msg("sampling failed")
	}

	fmt.Printf("✓ Selected %d points\n", len(res.Indices))
	if err := writeJSON("sampled_indices.json", res.Indices); err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}
	fmt.Println("✓ Wrote sampled_indices.json")
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
