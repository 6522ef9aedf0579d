package pipeline

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages pipeline configuration using Viper.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults.
func NewConfig() *Config {
	v := viper.New()

	// Graph construction
	v.SetDefault("graph.type", "knn")
	v.SetDefault("graph.n_neighbors", 5)

	// Laplacians
	v.SetDefault("laplacian.normalization", "rw")

	// Spectral solver
	v.SetDefault("spectral.n_eigenpairs", 64)

	// Diffusion
	v.SetDefault("diffusion.method", "spectral")
	v.SetDefault("diffusion.time", 1.0)
	v.SetDefault("diffusion.normalise", true)

	// Sampling
	v.SetDefault("sampling.stop_crit", 0.1)
	v.SetDefault("sampling.start_idx", 0)

	// Logging
	v.SetDefault("logging.level", "info")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for pipeline parameters
func (c *Config) GraphType() string      { return c.v.GetString("graph.type") }
func (c *Config) NNeighbors() int        { return c.v.GetInt("graph.n_neighbors") }
func (c *Config) Normalization() string  { return c.v.GetString("laplacian.normalization") }
func (c *Config) NEigenpairs() int       { return c.v.GetInt("spectral.n_eigenpairs") }
func (c *Config) DiffusionMethod() string { return c.v.GetString("diffusion.method") }
func (c *Config) DiffusionTime() float64 { return c.v.GetFloat64("diffusion.time") }
func (c *Config) Normalise() bool        { return c.v.GetBool("diffusion.normalise") }
func (c *Config) StopCrit() float64      { return c.v.GetFloat64("sampling.stop_crit") }
func (c *Config) StartIdx() int          { return c.v.GetInt("sampling.start_idx") }
func (c *Config) LogLevel() string       { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "manifold-geometry").Logger()
}
