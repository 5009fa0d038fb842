package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 32, cfg.Precision)
	assert.Equal(t, "cpu", cfg.Backend)
	assert.Equal(t, "implicit", cfg.Solve.Gradient)
	assert.Equal(t, DefaultMaxIterations, cfg.Solve.MaxIterations)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simflux.yaml")
	data := []byte("precision: 64\nsolve:\n  rtol: 1.0e-8\n  grid_size: 128\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Precision)
	assert.Equal(t, 1e-8, cfg.Solve.RelativeTolerance)
	assert.Equal(t, 128, cfg.Solve.GridSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, "cpu", cfg.Backend)
	assert.Equal(t, DefaultMaxIterations, cfg.Solve.MaxIterations)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simflux.yaml")
	cfg := DefaultConfig()
	cfg.Backend = "graph"
	cfg.Solve.Gradient = "autodiff"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
