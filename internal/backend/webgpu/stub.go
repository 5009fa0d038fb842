//go:build !windows

// Package webgpu implements a GPU execution engine on WebGPU compute
// shaders. On platforms without go-webgpu support the engine cannot be
// initialized and every operation reports NotSupported.
package webgpu

import (
	"fmt"

	"github.com/simflux-ml/simflux/internal/backend"
)

// WebGPUBackend is unavailable on this platform.
type WebGPUBackend struct {
	backend.Unsupported
}

// New reports that the engine is unavailable.
func New() (*WebGPUBackend, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}

// Register is a no-op on this platform.
func Register() (*WebGPUBackend, error) {
	return New()
}
