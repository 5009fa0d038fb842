// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff exposes the reverse-mode differentiation decorator.
//
// Wrap any engine, record a forward pass on the tape, then walk it
// backward:
//
//	b := autodiff.New(cpu.Default())
//	b.Tape().StartRecording()
//	y := b.Mul(x, x)
//	grads := b.Gradients(y, x)
package autodiff

import (
	internalautodiff "github.com/simflux-ml/simflux/internal/autodiff"
	"github.com/simflux-ml/simflux/internal/backend"
)

// Backend is the differentiating decorator over an engine of type B.
type Backend[B backend.Backend] = internalautodiff.AutodiffBackend[B]

// Tape records forward operations for the backward walk.
type Tape = internalautodiff.GradientTape

// New wraps an engine with gradient recording.
func New[B backend.Backend](inner B) *Backend[B] {
	return internalautodiff.New(inner)
}
