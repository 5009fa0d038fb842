// Copyright 2025 The SimFlux Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	_ "github.com/simflux-ml/simflux/backend"
	"github.com/simflux-ml/simflux/internal/core"
	internaltensor "github.com/simflux-ml/simflux/internal/tensor"
)

// Tensor is an immutable engine-native array with named, typed dimensions.
type Tensor = internaltensor.Tensor

// Shape is an ordered list of named, typed dimensions.
type Shape = core.Shape

// Dimension is one named axis.
type Dimension = core.Dimension

// DimType classifies a dimension's broadcasting role.
type DimType = core.DimType

// Dimension types.
const (
	BatchDim    = core.BatchDim
	SpatialDim  = core.SpatialDim
	ChannelDim  = core.ChannelDim
	InstanceDim = core.InstanceDim
)

// SizeUnknown marks a dimension whose size is not yet determined.
const SizeUnknown = core.SizeUnknown

// Batch declares a batch dimension.
func Batch(name string, size int) Dimension { return core.Batch(name, size) }

// Spatial declares a spatial dimension.
func Spatial(name string, size int) Dimension { return core.Spatial(name, size) }

// Channel declares a channel dimension.
func Channel(name string, size int) Dimension { return core.Channel(name, size) }

// Instance declares an instance dimension.
func Instance(name string, size int) Dimension { return core.Instance(name, size) }

// NewShape builds a shape, rejecting duplicate dimension names.
func NewShape(dims ...Dimension) (Shape, error) { return core.NewShape(dims...) }

// MustShape is NewShape, panicking on error.
func MustShape(dims ...Dimension) Shape { return core.MustShape(dims...) }

// ScalarShape is the empty shape.
func ScalarShape() Shape { return core.Scalar() }

// DType identifies an element type by kind and bit width.
type DType = core.DType

// Element types.
var (
	Bool       = core.BoolT
	Int32      = core.Int32T
	Int64      = core.Int64T
	Float32    = core.Float32T
	Float64    = core.Float64T
	Complex64  = core.Complex64T
	Complex128 = core.Complex128T
)

// CombineTypes resolves the result dtype of a mixed-dtype operation.
func CombineTypes(dtypes ...DType) (DType, error) { return core.CombineTypes(dtypes...) }

// Precision returns the current float precision in bits.
func Precision() int { return core.Precision() }

// SetPrecision changes the canonical float precision and returns a restore
// func, intended for defer.
func SetPrecision(bits int) (restore func()) { return core.SetPrecision(bits) }

// FloatType returns the canonical float dtype at the current precision.
func FloatType() DType { return core.FloatType() }

// ComplexType returns the canonical complex dtype at the current precision.
func ComplexType() DType { return core.ComplexType() }

// Align combines two shapes by dimension name, returning the combined
// shape and per-operand axis plans.
func Align(a, b Shape) (result Shape, planA, planB []int, err error) {
	return core.Align(a, b)
}

// TypeMismatchError reports dtypes with no promotion rule.
type TypeMismatchError = core.TypeMismatchError

// DimensionError reports an invalid dimension reference or size conflict.
type DimensionError = core.DimensionError

// NotSupportedError reports an operation an engine cannot express.
type NotSupportedError = core.NotSupportedError

// FromNative wraps an engine native or tensor-like Go value.
func FromNative(x any, shape Shape) (Tensor, error) { return internaltensor.FromNative(x, shape) }

// MustFromNative is FromNative, panicking on error.
func MustFromNative(x any, shape Shape) Tensor { return internaltensor.MustFromNative(x, shape) }

// FromFloat64s builds a tensor of the canonical float type.
func FromFloat64s(data []float64, shape Shape) (Tensor, error) {
	return internaltensor.FromFloat64s(data, shape)
}

// MustFromFloat64s is FromFloat64s, panicking on error.
func MustFromFloat64s(data []float64, shape Shape) Tensor {
	return internaltensor.MustFromFloat64s(data, shape)
}

// Zeros builds a zero tensor on the current engine.
func Zeros(shape Shape, dt DType) Tensor { return internaltensor.Zeros(shape, dt) }

// Ones builds a one-filled tensor on the current engine.
func Ones(shape Shape, dt DType) Tensor { return internaltensor.Ones(shape, dt) }

// Full builds a constant-filled tensor on the current engine.
func Full(shape Shape, value float64, dt DType) Tensor { return internaltensor.Full(shape, value, dt) }

// RandomUniform samples U(0, 1) at the canonical float type.
func RandomUniform(shape Shape) Tensor { return internaltensor.RandomUniform(shape) }

// RandomNormal samples N(0, 1) at the canonical float type.
func RandomNormal(shape Shape) Tensor { return internaltensor.RandomNormal(shape) }
