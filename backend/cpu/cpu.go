// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the built-in eager CPU engine.
package cpu

import (
	internalcpu "github.com/simflux-ml/simflux/internal/backend/cpu"
)

// Backend is the eager CPU engine.
type Backend = internalcpu.CPUBackend

// New creates a CPU engine without registering it.
func New() *Backend {
	return internalcpu.New()
}

// Default returns the shared registered CPU engine.
func Default() *Backend {
	return internalcpu.Default()
}
