// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public surface of the simflux math core: tensors
// with named, typed dimensions over pluggable execution engines.
//
// # Basic Usage
//
//	import (
//	    "github.com/simflux-ml/simflux/tensor"
//	)
//
//	func main() {
//	    shape := tensor.MustShape(tensor.Batch("b", 2), tensor.Spatial("x", 16))
//	    a := tensor.Ones(shape, tensor.Float32)
//	    c := a.Add(a).Sum("x")
//	}
//
// Dimensions align by name, not by position: operands are transposed and
// expanded automatically before an operation reaches the engine, and
// dimensions private to one operand broadcast to the other.
//
// # Engines
//
// Every tensor is bound to the engine that holds its data, resolved when
// the tensor is constructed. The CPU engine registers itself when this
// package is linked; scoped selection goes through backend.Use:
//
//	release := backend.Use(graph.Default())
//	defer release()
package tensor
