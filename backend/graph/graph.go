// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph exposes the tracing engine. Compile a function once and
// replay its recorded program for every matching input signature.
package graph

import (
	internalgraph "github.com/simflux-ml/simflux/internal/backend/graph"
)

// Backend is the tracing engine.
type Backend = internalgraph.GraphBackend

// Node is the engine's native value.
type Node = internalgraph.Node

// Compiled is a traced function with one recorded program per input
// signature.
type Compiled = internalgraph.Compiled

// New creates a graph engine without registering it.
func New() *Backend {
	return internalgraph.New()
}

// Default returns the shared registered graph engine.
func Default() *Backend {
	return internalgraph.Default()
}
