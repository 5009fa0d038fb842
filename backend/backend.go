// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend exposes the execution-engine contract and the process
// registry. Linking this package registers the built-in CPU engine, so the
// registry always has a default.
package backend

import (
	internalbackend "github.com/simflux-ml/simflux/internal/backend"
	internalcpu "github.com/simflux-ml/simflux/internal/backend/cpu"
)

// Backend is the capability contract of one execution engine.
type Backend = internalbackend.Backend

// Unsupported provides call-time-failing defaults for engines that
// implement a subset of the contract.
type Unsupported = internalbackend.Unsupported

// SolveParams configures a linear solve.
type SolveParams = internalbackend.SolveParams

// PadMode selects how Pad fills values outside the original array.
type PadMode = internalbackend.PadMode

// Pad modes.
const (
	PadConstant  = internalbackend.PadConstant
	PadBoundary  = internalbackend.PadBoundary
	PadPeriodic  = internalbackend.PadPeriodic
	PadSymmetric = internalbackend.PadSymmetric
	PadReflect   = internalbackend.PadReflect
)

// ScatterMode selects how Scatter combines duplicate indices.
type ScatterMode = internalbackend.ScatterMode

// Scatter modes.
const (
	ScatterAdd     = internalbackend.ScatterAdd
	ScatterReplace = internalbackend.ScatterReplace
)

// GradientMode selects how gradients of a linear solve propagate.
type GradientMode = internalbackend.GradientMode

// Gradient modes.
const (
	GradientImplicit = internalbackend.GradientImplicit
	GradientInverse  = internalbackend.GradientInverse
	GradientAutodiff = internalbackend.GradientAutodiff
)

func init() {
	internalcpu.Default()
}

// Register adds an engine to the registry.
func Register(b Backend) {
	internalbackend.Register(b)
}

// List returns the registered engines in registration order.
func List() []Backend {
	return internalbackend.Backends()
}

// Get returns the engine with the given name.
func Get(name string) (Backend, error) {
	return internalbackend.Get(name)
}

// Default returns the first registered engine.
func Default() Backend {
	return internalbackend.Default()
}

// Current returns the innermost engine selected with Use, or Default.
func Current() Backend {
	return internalbackend.Current()
}

// Use selects b as the current engine until the returned release func runs.
// Defer the release; it pops exactly one stack entry even under panic.
func Use(b Backend) (release func()) {
	return internalbackend.Use(b)
}

// For returns the engine whose natives include x, or Current.
func For(x any) Backend {
	return internalbackend.For(x)
}
