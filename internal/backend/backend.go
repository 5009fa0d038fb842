// Package backend defines the capability contract every execution engine
// implements, the process-wide registry of live engines, and the scoped
// selection of the current engine.
package backend

import (
	"github.com/simflux-ml/simflux/internal/core"
)

// PadMode selects how Pad fills values outside the original array.
type PadMode uint8

// Pad modes.
const (
	PadConstant PadMode = iota
	PadBoundary
	PadPeriodic
	PadSymmetric
	PadReflect
)

// ScatterMode selects how Scatter combines duplicate indices.
type ScatterMode uint8

// Scatter modes.
const (
	ScatterAdd ScatterMode = iota
	ScatterReplace
)

// GradientMode selects how gradients of a linear solve propagate.
type GradientMode uint8

const (
	// GradientImplicit differentiates the fixed-point condition A·x = y
	// directly. Cheapest; requires the operator to be self-adjoint unless an
	// adjoint is supplied.
	GradientImplicit GradientMode = iota
	// GradientInverse differentiates by solving a second linear system with
	// the adjoint operator.
	GradientInverse
	// GradientAutodiff propagates gradients through the unrolled iteration
	// sequence. Most expensive, always correct.
	GradientAutodiff
)

// String returns the mode name used in solve descriptors.
func (m GradientMode) String() string {
	switch m {
	case GradientImplicit:
		return "implicit"
	case GradientInverse:
		return "inverse"
	case GradientAutodiff:
		return "autodiff"
	default:
		return "unknown"
	}
}

// SolveParams configures a linear solve.
type SolveParams struct {
	RelativeTolerance float64
	AbsoluteTolerance float64
	MaxIterations     int
	GradientMode      GradientMode
}

// Backend is the capability contract of one execution engine. Methods
// operate on the engine's opaque native arrays; mixed-dtype binary
// operations must auto-cast operands (see AutoCast) before computing so
// results never depend on an engine's implicit promotion rules.
//
// Engines are allowed to support only the subset of operations they can
// express; an unimplemented operation panics with *core.NotSupportedError
// at call time, not at load time. Embed Unsupported to inherit such stubs.
type Backend interface {
	Name() string

	// IsNative reports whether x is accepted by this engine's methods. With
	// onlyNative it accepts only the engine's true native array type, which
	// is how the registry dispatches a foreign value to its owning engine.
	IsNative(x any, onlyNative bool) bool
	// AsNative converts tensor-like values (Go numbers, slices, natives of
	// this engine) to the native representation.
	AsNative(x any) (any, error)
	// Available reports whether the value of x is known now. Eager engines
	// return true; graph nodes are unavailable until executed.
	Available(x any) bool
	// Float64s returns the flattened values of an available native.
	Float64s(x any) []float64

	DTypeOf(x any) core.DType
	SizesOf(x any) []int
	Cast(x any, to core.DType) any
	Copy(x any) any

	Zeros(sizes []int, dt core.DType) any
	Ones(sizes []int, dt core.DType) any
	Full(sizes []int, value float64, dt core.DType) any
	FromFloat64s(data []float64, sizes []int) any
	Range(start, limit, delta float64, dt core.DType) any
	RandomUniform(sizes []int) any
	RandomNormal(sizes []int) any

	Add(a, b any) any
	Sub(a, b any) any
	Mul(a, b any) any
	Div(a, b any) any
	Pow(a, b any) any
	Mod(a, b any) any
	Maximum(a, b any) any
	Minimum(a, b any) any
	// DivideNoNan computes a/b but returns 0 where b is 0.
	DivideNoNan(a, b any) any
	Equal(a, b any) any
	NotEqual(a, b any) any
	Greater(a, b any) any
	GreaterEqual(a, b any) any

	Neg(x any) any
	Abs(x any) any
	Sign(x any) any
	Round(x any) any
	Ceil(x any) any
	Floor(x any) any
	Sqrt(x any) any
	Exp(x any) any
	Log(x any) any
	Sin(x any) any
	Cos(x any) any
	IsFinite(x any) any

	Stack(xs []any, axis int) any
	Concat(xs []any, axis int) any
	Unstack(x any, axis int) []any
	Pad(x any, widths [][2]int, mode PadMode, constant float64) any
	Reshape(x any, sizes []int) any
	Transpose(x any, axes []int) any
	ExpandDims(x any, axis int) any
	Tile(x any, multiples []int) any
	Flip(x any, axes []int) any
	Gather(values, indices any, axis int) any
	GatherND(values, indices any) any
	Scatter(indices, values any, sizes []int, mode ScatterMode) any
	BooleanMask(x, mask any) any
	Where(cond, x, y any) any
	Nonzero(x any) any

	Sum(x any, axes []int, keepDims bool) any
	Prod(x any, axes []int, keepDims bool) any
	Mean(x any, axes []int, keepDims bool) any
	Max(x any, axes []int, keepDims bool) any
	Min(x any, axes []int, keepDims bool) any
	Any(x any, axes []int, keepDims bool) any
	All(x any, axes []int, keepDims bool) any
	Std(x any, axes []int, keepDims bool) any

	MatMul(a, b any) any
	Dot(a, b any) any

	FFT(x any) any
	IFFT(x any) any
	Real(x any) any
	Imag(x any) any

	// WhileLoop repeatedly applies body while cond holds, up to maxIterations
	// (unlimited when < 0).
	WhileLoop(cond func(vars []any) bool, body func(vars []any) []any, vars []any, maxIterations int) []any

	// WithCustomGradient computes forward(inputs) and, on differentiating
	// engines, registers backward as the gradient of the result.
	WithCustomGradient(op string, inputs []any, forward func(inputs []any) any,
		backward func(inputs []any, output, outputGrad any) []any) any

	// ConjugateGradient solves A·x = y. A is either a native matrix or a
	// func(x any) any linear operator; both are accepted without branching in
	// caller code. Non-convergence is reported via converged=false, never as
	// an error.
	ConjugateGradient(A any, y, x0 any, params SolveParams, callback func(x any)) (converged bool, x any, iterations int)
}

// NotSupported panics with a *core.NotSupportedError for the given
// operation and backend.
func NotSupported(op, backendName string) {
	panic(&core.NotSupportedError{Op: op, Backend: backendName})
}
