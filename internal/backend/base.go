package backend

import (
	"github.com/simflux-ml/simflux/internal/core"
)

// AutoCast promotes the given natives to the result dtype determined by
// core.CombineTypes. Every elementwise binary backend method calls this
// before computing, so mixed-dtype operations never fall through to an
// engine's implicit promotion rules. Panics with *core.TypeMismatchError
// when no promotion rule applies.
func AutoCast(b Backend, xs ...any) []any {
	dtypes := make([]core.DType, len(xs))
	for i, x := range xs {
		dtypes[i] = b.DTypeOf(x)
	}
	result, err := core.CombineTypes(dtypes...)
	if err != nil {
		panic(err)
	}
	out := make([]any, len(xs))
	for i, x := range xs {
		if dtypes[i] == result {
			out[i] = x
		} else {
			out[i] = b.Cast(x, result)
		}
	}
	return out
}

// NDims returns the number of axes of a native value.
func NDims(b Backend, x any) int {
	return len(b.SizesOf(x))
}

// Size returns the total number of elements of a native value.
func Size(b Backend, x any) int {
	n := 1
	for _, s := range b.SizesOf(x) {
		n *= s
	}
	return n
}

// Flatten reshapes a native value to one axis.
func Flatten(b Backend, x any) any {
	return b.Reshape(x, []int{Size(b, x)})
}

// OperatorOf turns the A argument of a linear solve into a callable
// operator: a func(x) any passes through, anything else is treated as a
// native matrix applied via MatMul. This is what lets one solve routine
// accept both forms without branching in caller code.
func OperatorOf(b Backend, A any) func(x any) any {
	if f, ok := A.(func(x any) any); ok {
		return f
	}
	m, err := b.AsNative(A)
	if err != nil {
		panic(err)
	}
	return func(x any) any {
		return b.MatMul(m, x)
	}
}

// Unsupported provides call-time-failing defaults for the whole operation
// set. Engines embed it and override the subset their engine can express;
// everything else panics with *core.NotSupportedError naming the operation
// and the engine, allowing callers to catch and fall back.
type Unsupported struct {
	BackendName string
}

// Name returns the engine name.
func (u Unsupported) Name() string { return u.BackendName }

// IsNative reports false: an engine that claims natives must override this.
func (u Unsupported) IsNative(x any, onlyNative bool) bool { return false }

// Available reports false for engines that never materialize values.
func (u Unsupported) Available(x any) bool { return false }

func (u Unsupported) AsNative(x any) (any, error) {
	return nil, &core.NotSupportedError{Op: "AsNative", Backend: u.BackendName}
}

func (u Unsupported) Float64s(x any) []float64 {
	NotSupported("Float64s", u.BackendName)
	return nil
}

func (u Unsupported) DTypeOf(x any) core.DType {
	NotSupported("DTypeOf", u.BackendName)
	return core.DType{}
}

func (u Unsupported) SizesOf(x any) []int {
	NotSupported("SizesOf", u.BackendName)
	return nil
}

func (u Unsupported) Cast(x any, to core.DType) any { NotSupported("Cast", u.BackendName); return nil }
func (u Unsupported) Copy(x any) any                { NotSupported("Copy", u.BackendName); return nil }

func (u Unsupported) Zeros(sizes []int, dt core.DType) any {
	NotSupported("Zeros", u.BackendName)
	return nil
}

func (u Unsupported) Ones(sizes []int, dt core.DType) any {
	NotSupported("Ones", u.BackendName)
	return nil
}

func (u Unsupported) Full(sizes []int, value float64, dt core.DType) any {
	NotSupported("Full", u.BackendName)
	return nil
}

func (u Unsupported) FromFloat64s(data []float64, sizes []int) any {
	NotSupported("FromFloat64s", u.BackendName)
	return nil
}

func (u Unsupported) Range(start, limit, delta float64, dt core.DType) any {
	NotSupported("Range", u.BackendName)
	return nil
}

func (u Unsupported) RandomUniform(sizes []int) any {
	NotSupported("RandomUniform", u.BackendName)
	return nil
}

func (u Unsupported) RandomNormal(sizes []int) any {
	NotSupported("RandomNormal", u.BackendName)
	return nil
}

func (u Unsupported) Add(a, b any) any          { NotSupported("Add", u.BackendName); return nil }
func (u Unsupported) Sub(a, b any) any          { NotSupported("Sub", u.BackendName); return nil }
func (u Unsupported) Mul(a, b any) any          { NotSupported("Mul", u.BackendName); return nil }
func (u Unsupported) Div(a, b any) any          { NotSupported("Div", u.BackendName); return nil }
func (u Unsupported) Pow(a, b any) any          { NotSupported("Pow", u.BackendName); return nil }
func (u Unsupported) Mod(a, b any) any          { NotSupported("Mod", u.BackendName); return nil }
func (u Unsupported) Maximum(a, b any) any      { NotSupported("Maximum", u.BackendName); return nil }
func (u Unsupported) Minimum(a, b any) any      { NotSupported("Minimum", u.BackendName); return nil }
func (u Unsupported) DivideNoNan(a, b any) any  { NotSupported("DivideNoNan", u.BackendName); return nil }
func (u Unsupported) Equal(a, b any) any        { NotSupported("Equal", u.BackendName); return nil }
func (u Unsupported) NotEqual(a, b any) any     { NotSupported("NotEqual", u.BackendName); return nil }
func (u Unsupported) Greater(a, b any) any      { NotSupported("Greater", u.BackendName); return nil }
func (u Unsupported) GreaterEqual(a, b any) any { NotSupported("GreaterEqual", u.BackendName); return nil }

func (u Unsupported) Neg(x any) any      { NotSupported("Neg", u.BackendName); return nil }
func (u Unsupported) Abs(x any) any      { NotSupported("Abs", u.BackendName); return nil }
func (u Unsupported) Sign(x any) any     { NotSupported("Sign", u.BackendName); return nil }
func (u Unsupported) Round(x any) any    { NotSupported("Round", u.BackendName); return nil }
func (u Unsupported) Ceil(x any) any     { NotSupported("Ceil", u.BackendName); return nil }
func (u Unsupported) Floor(x any) any    { NotSupported("Floor", u.BackendName); return nil }
func (u Unsupported) Sqrt(x any) any     { NotSupported("Sqrt", u.BackendName); return nil }
func (u Unsupported) Exp(x any) any      { NotSupported("Exp", u.BackendName); return nil }
func (u Unsupported) Log(x any) any      { NotSupported("Log", u.BackendName); return nil }
func (u Unsupported) Sin(x any) any      { NotSupported("Sin", u.BackendName); return nil }
func (u Unsupported) Cos(x any) any      { NotSupported("Cos", u.BackendName); return nil }
func (u Unsupported) IsFinite(x any) any { NotSupported("IsFinite", u.BackendName); return nil }

func (u Unsupported) Stack(xs []any, axis int) any  { NotSupported("Stack", u.BackendName); return nil }
func (u Unsupported) Concat(xs []any, axis int) any { NotSupported("Concat", u.BackendName); return nil }

func (u Unsupported) Unstack(x any, axis int) []any {
	NotSupported("Unstack", u.BackendName)
	return nil
}

func (u Unsupported) Pad(x any, widths [][2]int, mode PadMode, constant float64) any {
	NotSupported("Pad", u.BackendName)
	return nil
}

func (u Unsupported) Reshape(x any, sizes []int) any {
	NotSupported("Reshape", u.BackendName)
	return nil
}

func (u Unsupported) Transpose(x any, axes []int) any {
	NotSupported("Transpose", u.BackendName)
	return nil
}

func (u Unsupported) ExpandDims(x any, axis int) any {
	NotSupported("ExpandDims", u.BackendName)
	return nil
}

func (u Unsupported) Tile(x any, multiples []int) any {
	NotSupported("Tile", u.BackendName)
	return nil
}

func (u Unsupported) Flip(x any, axes []int) any {
	NotSupported("Flip", u.BackendName)
	return nil
}

func (u Unsupported) Gather(values, indices any, axis int) any {
	NotSupported("Gather", u.BackendName)
	return nil
}

func (u Unsupported) GatherND(values, indices any) any {
	NotSupported("GatherND", u.BackendName)
	return nil
}

func (u Unsupported) Scatter(indices, values any, sizes []int, mode ScatterMode) any {
	NotSupported("Scatter", u.BackendName)
	return nil
}

func (u Unsupported) BooleanMask(x, mask any) any {
	NotSupported("BooleanMask", u.BackendName)
	return nil
}

func (u Unsupported) Where(cond, x, y any) any { NotSupported("Where", u.BackendName); return nil }
func (u Unsupported) Nonzero(x any) any        { NotSupported("Nonzero", u.BackendName); return nil }

func (u Unsupported) Sum(x any, axes []int, keepDims bool) any {
	NotSupported("Sum", u.BackendName)
	return nil
}

func (u Unsupported) Prod(x any, axes []int, keepDims bool) any {
	NotSupported("Prod", u.BackendName)
	return nil
}

func (u Unsupported) Mean(x any, axes []int, keepDims bool) any {
	NotSupported("Mean", u.BackendName)
	return nil
}

func (u Unsupported) Max(x any, axes []int, keepDims bool) any {
	NotSupported("Max", u.BackendName)
	return nil
}

func (u Unsupported) Min(x any, axes []int, keepDims bool) any {
	NotSupported("Min", u.BackendName)
	return nil
}

func (u Unsupported) Any(x any, axes []int, keepDims bool) any {
	NotSupported("Any", u.BackendName)
	return nil
}

func (u Unsupported) All(x any, axes []int, keepDims bool) any {
	NotSupported("All", u.BackendName)
	return nil
}

func (u Unsupported) Std(x any, axes []int, keepDims bool) any {
	NotSupported("Std", u.BackendName)
	return nil
}

func (u Unsupported) MatMul(a, b any) any { NotSupported("MatMul", u.BackendName); return nil }
func (u Unsupported) Dot(a, b any) any    { NotSupported("Dot", u.BackendName); return nil }

func (u Unsupported) FFT(x any) any  { NotSupported("FFT", u.BackendName); return nil }
func (u Unsupported) IFFT(x any) any { NotSupported("IFFT", u.BackendName); return nil }
func (u Unsupported) Real(x any) any { NotSupported("Real", u.BackendName); return nil }
func (u Unsupported) Imag(x any) any { NotSupported("Imag", u.BackendName); return nil }

func (u Unsupported) WhileLoop(cond func(vars []any) bool, body func(vars []any) []any, vars []any, maxIterations int) []any {
	NotSupported("WhileLoop", u.BackendName)
	return nil
}

func (u Unsupported) WithCustomGradient(op string, inputs []any, forward func(inputs []any) any,
	backward func(inputs []any, output, outputGrad any) []any) any {
	NotSupported("WithCustomGradient", u.BackendName)
	return nil
}

func (u Unsupported) ConjugateGradient(A any, y, x0 any, params SolveParams, callback func(x any)) (bool, any, int) {
	NotSupported("ConjugateGradient", u.BackendName)
	return false, nil, 0
}
