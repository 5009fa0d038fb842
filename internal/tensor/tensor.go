// Package tensor implements the named-dimension tensor value on top of the
// backend contract. A Tensor pairs an engine-native array with a Shape;
// the engine is resolved once at construction and travels with the value,
// so operations on a tensor always execute where its data lives.
package tensor

import (
	"fmt"
	"strings"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
)

// Tensor is an immutable engine-native array with named, typed dimensions.
type Tensor struct {
	native any
	shape  core.Shape
	b      backend.Backend
}

// FromNative wraps an existing native (or tensor-like Go value) in a
// Tensor. The owning engine is found via the registry; values no engine
// claims as native go to the current engine.
func FromNative(x any, shape core.Shape) (Tensor, error) {
	b := backend.For(x)
	native, err := b.AsNative(x)
	if err != nil {
		return Tensor{}, err
	}
	if err := checkSizes(b.SizesOf(native), shape); err != nil {
		return Tensor{}, err
	}
	return Tensor{native: native, shape: shape.Clone(), b: b}, nil
}

// MustFromNative is FromNative, panicking on error.
func MustFromNative(x any, shape core.Shape) Tensor {
	t, err := FromNative(x, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// FromFloat64s builds a tensor of the canonical float type on the current
// engine.
func FromFloat64s(data []float64, shape core.Shape) (Tensor, error) {
	b := backend.Current()
	native := b.FromFloat64s(data, shape.Sizes())
	return Tensor{native: native, shape: shape.Clone(), b: b}, nil
}

// MustFromFloat64s is FromFloat64s, panicking on error.
func MustFromFloat64s(data []float64, shape core.Shape) Tensor {
	t, err := FromFloat64s(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros builds a zero tensor of the given dtype on the current engine.
func Zeros(shape core.Shape, dt core.DType) Tensor {
	b := backend.Current()
	return Tensor{native: b.Zeros(shape.Sizes(), dt), shape: shape.Clone(), b: b}
}

// Ones builds a one-filled tensor of the given dtype.
func Ones(shape core.Shape, dt core.DType) Tensor {
	b := backend.Current()
	return Tensor{native: b.Ones(shape.Sizes(), dt), shape: shape.Clone(), b: b}
}

// Full builds a constant-filled tensor of the given dtype.
func Full(shape core.Shape, value float64, dt core.DType) Tensor {
	b := backend.Current()
	return Tensor{native: b.Full(shape.Sizes(), value, dt), shape: shape.Clone(), b: b}
}

// RandomUniform samples U(0, 1) at the canonical float type.
func RandomUniform(shape core.Shape) Tensor {
	b := backend.Current()
	return Tensor{native: b.RandomUniform(shape.Sizes()), shape: shape.Clone(), b: b}
}

// RandomNormal samples N(0, 1) at the canonical float type.
func RandomNormal(shape core.Shape) Tensor {
	b := backend.Current()
	return Tensor{native: b.RandomNormal(shape.Sizes()), shape: shape.Clone(), b: b}
}

// Shape returns the named dimensions.
func (t Tensor) Shape() core.Shape { return t.shape }

// DType returns the element type.
func (t Tensor) DType() core.DType { return t.b.DTypeOf(t.native) }

// Backend returns the engine holding the data.
func (t Tensor) Backend() backend.Backend { return t.b }

// Native returns the engine-native array.
func (t Tensor) Native() any { return t.native }

// Available reports whether the value is computed.
func (t Tensor) Available() bool { return t.b.Available(t.native) }

// Float64s reads the flattened values back as float64.
func (t Tensor) Float64s() []float64 { return t.b.Float64s(t.native) }

// String renders the shape, dtype and engine, plus the values for small
// tensors.
func (t Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s [%s]", t.shape, t.DType(), t.b.Name())
	if t.Available() && t.shape.Volume() <= 16 {
		fmt.Fprintf(&sb, " %v", t.Float64s())
	}
	return sb.String()
}

func checkSizes(sizes []int, shape core.Shape) error {
	expected := shape.Sizes()
	if len(sizes) != len(expected) {
		return &core.DimensionError{Shape: shape,
			Cause: fmt.Sprintf("native has %d axes, shape has %d", len(sizes), len(expected))}
	}
	for i, s := range expected {
		if s != core.SizeUnknown && s != sizes[i] {
			return &core.DimensionError{Name: shape[i].Name, Shape: shape,
				Cause: fmt.Sprintf("native size %d does not match %d", sizes[i], s)}
		}
	}
	return nil
}
