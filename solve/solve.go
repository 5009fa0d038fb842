// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package solve exposes the linear-solve bridge: solve descriptors,
// operator wrappers and the conjugate-gradient entry point with gradient
// modes and introspectable results.
package solve

import (
	"github.com/simflux-ml/simflux/internal/backend"
	internalsolve "github.com/simflux-ml/simflux/internal/solve"
)

// Solve describes one linear solve.
type Solve = internalsolve.Solve

// Result is the introspectable outcome of one solve.
type Result = internalsolve.Result

// SolveTape collects solve results.
type SolveTape = internalsolve.SolveTape

// LinearOperator is the A of A·x = y.
type LinearOperator = internalsolve.LinearOperator

// Dense wraps a matrix operand, native or gonum.
func Dense(matrix any) LinearOperator {
	return internalsolve.Dense(matrix)
}

// Operator wraps a callable operand with an optional adjoint.
func Operator(apply, adjoint func(x any) any) LinearOperator {
	return internalsolve.Operator(apply, adjoint)
}

// ConjugateGradient solves A·x = y on the given engine.
func ConjugateGradient(b backend.Backend, A LinearOperator, y any, s Solve, callback func(x any)) (any, Result) {
	return internalsolve.ConjugateGradient(b, A, y, s, callback)
}
