// Package core provides the dimension, shape and dtype models shared by all
// execution engines.
package core

import (
	"fmt"
	"sync/atomic"
)

// Kind classifies the scalar family of a DType.
type Kind uint8

// Scalar kinds, ordered by promotion precedence.
const (
	Bool Kind = iota
	Int
	Float
	Complex
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Complex:
		return "complex"
	default:
		return "unknown"
	}
}

// DType describes a scalar type as a kind plus a bit width.
// Kind and bits together identify the type; DType values are comparable.
type DType struct {
	Kind Kind
	Bits int
}

// Common dtypes.
var (
	BoolT       = DType{Bool, 8}
	Int32T      = DType{Int, 32}
	Int64T      = DType{Int, 64}
	Float32T    = DType{Float, 32}
	Float64T    = DType{Float, 64}
	Complex64T  = DType{Complex, 64}
	Complex128T = DType{Complex, 128}
)

// String returns names like "float32" or "complex128".
func (dt DType) String() string {
	if dt.Kind == Bool {
		return "bool"
	}
	return fmt.Sprintf("%s%d", dt.Kind, dt.Bits)
}

// SizeBytes returns the storage size of one element.
func (dt DType) SizeBytes() int {
	if dt.Kind == Bool {
		return 1
	}
	return dt.Bits / 8
}

// precision is the process-wide float precision in bits, default 32.
// It decides the canonical float and complex types used by type promotion.
var precision atomic.Int32

func init() {
	precision.Store(32)
}

// Precision returns the current process-wide float precision in bits.
func Precision() int {
	return int(precision.Load())
}

// SetPrecision sets the process-wide float precision (32 or 64) and returns
// a function restoring the previous value, for scoped use with defer.
func SetPrecision(bits int) (restore func()) {
	prev := precision.Swap(int32(bits))
	return func() { precision.Store(prev) }
}

// FloatType returns the canonical float type at the current precision.
func FloatType() DType {
	return DType{Float, Precision()}
}

// ComplexType returns the canonical complex type at the current precision.
// Bits count the whole value, so 64-bit floats pair into complex128; the
// width never drops below complex64.
func ComplexType() DType {
	bits := 2 * Precision()
	if bits < 64 {
		bits = 64
	}
	return DType{Complex, bits}
}

// CombineTypes determines the result dtype of an operation over the given
// operand dtypes. The policy widens toward the canonical (precision-derived)
// float and complex types rather than standard numeric promotion, so results
// stay consistent across engines with different native type systems.
//
// Rules, in order:
//  1. all bool             -> bool
//  2. all bool/int         -> widest int operand
//  3. all bool/int/float   -> canonical float type
//  4. any complex          -> canonical complex type
//  5. otherwise            -> TypeMismatchError
//
// The result is independent of operand order.
func CombineTypes(dtypes ...DType) (DType, error) {
	if len(dtypes) == 0 {
		return DType{}, &TypeMismatchError{}
	}
	highest := Bool
	widestInt := 0
	for _, dt := range dtypes {
		if dt.Kind > Complex {
			return DType{}, &TypeMismatchError{DTypes: dtypes}
		}
		if dt.Kind > highest {
			highest = dt.Kind
		}
		if dt.Kind == Int && dt.Bits > widestInt {
			widestInt = dt.Bits
		}
	}
	switch highest {
	case Bool:
		return dtypes[0], nil
	case Int:
		return DType{Int, widestInt}, nil
	case Float:
		return FloatType(), nil
	case Complex:
		return ComplexType(), nil
	}
	return DType{}, &TypeMismatchError{DTypes: dtypes}
}
