// Package config loads CLI configuration from YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPrecision     = 32
	DefaultRelTol        = 1e-5
	DefaultAbsTol        = 0
	DefaultMaxIterations = 1000
	DefaultGridSize      = 64
)

type Config struct {
	// Precision is the canonical float width in bits, 32 or 64.
	Precision int         `yaml:"precision"`
	Backend   string      `yaml:"backend"`
	Solve     SolveConfig `yaml:"solve"`
}

type SolveConfig struct {
	RelativeTolerance float64 `yaml:"rtol"`
	AbsoluteTolerance float64 `yaml:"atol"`
	MaxIterations     int     `yaml:"max_iterations"`
	Gradient          string  `yaml:"gradient"`
	GridSize          int     `yaml:"grid_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Precision: DefaultPrecision,
		Backend:   "cpu",
		Solve: SolveConfig{
			RelativeTolerance: DefaultRelTol,
			AbsoluteTolerance: DefaultAbsTol,
			MaxIterations:     DefaultMaxIterations,
			Gradient:          "implicit",
			GridSize:          DefaultGridSize,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
