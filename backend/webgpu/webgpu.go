// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu exposes the WebGPU engine. It supports a float32
// elementwise subset; unsupported operations fail at call time so callers
// can fall back to the CPU engine.
package webgpu

import (
	internalwebgpu "github.com/simflux-ml/simflux/internal/backend/webgpu"
)

// Backend is the WebGPU engine.
type Backend = internalwebgpu.WebGPUBackend

// New initializes the engine without registering it. Machines without a
// usable GPU return an error.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// Register initializes the engine and adds it to the registry.
func Register() (*Backend, error) {
	return internalwebgpu.Register()
}
