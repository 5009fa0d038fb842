// Package autodiff implements reverse-mode automatic differentiation with
// the decorator pattern.
//
// AutodiffBackend wraps any execution engine and satisfies the same
// contract; differentiable operations additionally leave a record on a
// GradientTape, which Backward walks in reverse to accumulate gradients.
// Operations without a gradient rule (comparisons, integer indexing,
// rounding) pass straight through to the wrapped engine.
package autodiff

import (
	"github.com/simflux-ml/simflux/internal/autodiff/ops"
	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
)

// AutodiffBackend wraps an engine and records differentiable operations.
type AutodiffBackend[B backend.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates an AutodiffBackend over the given engine.
func New[B backend.Backend](inner B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: inner, tape: NewGradientTape()}
}

var _ backend.Backend = (*AutodiffBackend[backend.Backend])(nil)

// Tape returns the gradient tape for recording control.
func (b *AutodiffBackend[B]) Tape() *GradientTape { return b.tape }

// Inner returns the wrapped engine.
func (b *AutodiffBackend[B]) Inner() B { return b.inner }

// Name returns the engine name with the decorator marked.
func (b *AutodiffBackend[B]) Name() string { return "autodiff(" + b.inner.Name() + ")" }

func (b *AutodiffBackend[B]) IsNative(x any, onlyNative bool) bool {
	return b.inner.IsNative(x, onlyNative)
}
func (b *AutodiffBackend[B]) AsNative(x any) (any, error) { return b.inner.AsNative(x) }
func (b *AutodiffBackend[B]) Available(x any) bool        { return b.inner.Available(x) }
func (b *AutodiffBackend[B]) Float64s(x any) []float64    { return b.inner.Float64s(x) }

func (b *AutodiffBackend[B]) DTypeOf(x any) core.DType { return b.inner.DTypeOf(x) }
func (b *AutodiffBackend[B]) SizesOf(x any) []int      { return b.inner.SizesOf(x) }

func (b *AutodiffBackend[B]) Cast(x any, to core.DType) any { return b.inner.Cast(x, to) }
func (b *AutodiffBackend[B]) Copy(x any) any                { return b.inner.Copy(x) }

func (b *AutodiffBackend[B]) Zeros(sizes []int, dt core.DType) any { return b.inner.Zeros(sizes, dt) }
func (b *AutodiffBackend[B]) Ones(sizes []int, dt core.DType) any  { return b.inner.Ones(sizes, dt) }
func (b *AutodiffBackend[B]) Full(sizes []int, value float64, dt core.DType) any {
	return b.inner.Full(sizes, value, dt)
}
func (b *AutodiffBackend[B]) FromFloat64s(data []float64, sizes []int) any {
	return b.inner.FromFloat64s(data, sizes)
}
func (b *AutodiffBackend[B]) Range(start, limit, delta float64, dt core.DType) any {
	return b.inner.Range(start, limit, delta, dt)
}
func (b *AutodiffBackend[B]) RandomUniform(sizes []int) any { return b.inner.RandomUniform(sizes) }
func (b *AutodiffBackend[B]) RandomNormal(sizes []int) any  { return b.inner.RandomNormal(sizes) }

// pin prevents in-place reuse of a CPU array that the tape still refers
// to. Natives of other engines are immutable from this layer's view.
func pin(x any) func() {
	if r, ok := x.(*core.Raw); ok {
		return r.ForceNonUnique()
	}
	return func() {}
}

// Add performs elementwise addition and records the operation.
func (b *AutodiffBackend[B]) Add(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, result))
	return result
}

// Sub performs elementwise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, result))
	return result
}

// Mul performs elementwise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, result))
	return result
}

// Div performs elementwise division and records the operation.
func (b *AutodiffBackend[B]) Div(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, result))
	return result
}

// Pow raises x to y elementwise and records the operation.
func (b *AutodiffBackend[B]) Pow(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.Pow(x, y)
	b.tape.Record(ops.NewPowOp(x, y, result))
	return result
}

func (b *AutodiffBackend[B]) Mod(x, y any) any     { return b.inner.Mod(x, y) }
func (b *AutodiffBackend[B]) Maximum(x, y any) any { return b.inner.Maximum(x, y) }
func (b *AutodiffBackend[B]) Minimum(x, y any) any { return b.inner.Minimum(x, y) }

// DivideNoNan divides treating x/0 as 0 and records the operation; the
// gradients carry the same zero-denominator mask.
func (b *AutodiffBackend[B]) DivideNoNan(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.DivideNoNan(x, y)
	b.tape.Record(ops.NewDivideNoNanOp(x, y, result))
	return result
}

func (b *AutodiffBackend[B]) Equal(x, y any) any        { return b.inner.Equal(x, y) }
func (b *AutodiffBackend[B]) NotEqual(x, y any) any     { return b.inner.NotEqual(x, y) }
func (b *AutodiffBackend[B]) Greater(x, y any) any      { return b.inner.Greater(x, y) }
func (b *AutodiffBackend[B]) GreaterEqual(x, y any) any { return b.inner.GreaterEqual(x, y) }

// Neg negates elementwise and records the operation.
func (b *AutodiffBackend[B]) Neg(x any) any {
	defer pin(x)()
	result := b.inner.Neg(x)
	b.tape.Record(ops.NewNegOp(x, result))
	return result
}

func (b *AutodiffBackend[B]) Abs(x any) any   { return b.inner.Abs(x) }
func (b *AutodiffBackend[B]) Sign(x any) any  { return b.inner.Sign(x) }
func (b *AutodiffBackend[B]) Round(x any) any { return b.inner.Round(x) }
func (b *AutodiffBackend[B]) Ceil(x any) any  { return b.inner.Ceil(x) }
func (b *AutodiffBackend[B]) Floor(x any) any { return b.inner.Floor(x) }

// Sqrt takes the elementwise square root and records the operation.
func (b *AutodiffBackend[B]) Sqrt(x any) any {
	defer pin(x)()
	result := b.inner.Sqrt(x)
	b.tape.Record(ops.NewSqrtOp(x, result))
	return result
}

// Exp exponentiates elementwise and records the operation.
func (b *AutodiffBackend[B]) Exp(x any) any {
	defer pin(x)()
	result := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, result))
	return result
}

// Log takes the natural logarithm and records the operation.
func (b *AutodiffBackend[B]) Log(x any) any {
	defer pin(x)()
	result := b.inner.Log(x)
	b.tape.Record(ops.NewLogOp(x, result))
	return result
}

// Sin records the operation.
func (b *AutodiffBackend[B]) Sin(x any) any {
	defer pin(x)()
	result := b.inner.Sin(x)
	b.tape.Record(ops.NewSinOp(x, result))
	return result
}

// Cos records the operation.
func (b *AutodiffBackend[B]) Cos(x any) any {
	defer pin(x)()
	result := b.inner.Cos(x)
	b.tape.Record(ops.NewCosOp(x, result))
	return result
}

func (b *AutodiffBackend[B]) IsFinite(x any) any { return b.inner.IsFinite(x) }

func (b *AutodiffBackend[B]) Stack(xs []any, axis int) any  { return b.inner.Stack(xs, axis) }
func (b *AutodiffBackend[B]) Concat(xs []any, axis int) any { return b.inner.Concat(xs, axis) }
func (b *AutodiffBackend[B]) Unstack(x any, axis int) []any { return b.inner.Unstack(x, axis) }
func (b *AutodiffBackend[B]) Pad(x any, widths [][2]int, mode backend.PadMode, constant float64) any {
	return b.inner.Pad(x, widths, mode, constant)
}

// Reshape records the operation; the gradient reshapes back.
func (b *AutodiffBackend[B]) Reshape(x any, sizes []int) any {
	defer pin(x)()
	result := b.inner.Reshape(x, sizes)
	b.tape.Record(ops.NewReshapeOp(x, result))
	return result
}

// Transpose records the operation; the gradient applies the inverse
// permutation.
func (b *AutodiffBackend[B]) Transpose(x any, axes []int) any {
	defer pin(x)()
	result := b.inner.Transpose(x, axes)
	b.tape.Record(ops.NewTransposeOp(x, result, axes))
	return result
}

// ExpandDims records as a reshape.
func (b *AutodiffBackend[B]) ExpandDims(x any, axis int) any {
	defer pin(x)()
	result := b.inner.ExpandDims(x, axis)
	b.tape.Record(ops.NewReshapeOp(x, result))
	return result
}

func (b *AutodiffBackend[B]) Tile(x any, multiples []int) any { return b.inner.Tile(x, multiples) }
func (b *AutodiffBackend[B]) Flip(x any, axes []int) any      { return b.inner.Flip(x, axes) }
func (b *AutodiffBackend[B]) Gather(values, indices any, axis int) any {
	return b.inner.Gather(values, indices, axis)
}
func (b *AutodiffBackend[B]) GatherND(values, indices any) any {
	return b.inner.GatherND(values, indices)
}
func (b *AutodiffBackend[B]) Scatter(indices, values any, sizes []int, mode backend.ScatterMode) any {
	return b.inner.Scatter(indices, values, sizes, mode)
}
func (b *AutodiffBackend[B]) BooleanMask(x, mask any) any { return b.inner.BooleanMask(x, mask) }

// Where records the operation; gradients route by the condition.
func (b *AutodiffBackend[B]) Where(cond, x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.Where(cond, x, y)
	b.tape.Record(ops.NewWhereOp(cond, x, y, result))
	return result
}

func (b *AutodiffBackend[B]) Nonzero(x any) any { return b.inner.Nonzero(x) }

// Sum reduces and records the operation.
func (b *AutodiffBackend[B]) Sum(x any, axes []int, keepDims bool) any {
	defer pin(x)()
	result := b.inner.Sum(x, axes, keepDims)
	b.tape.Record(ops.NewSumOp(x, result, axes, keepDims))
	return result
}

func (b *AutodiffBackend[B]) Prod(x any, axes []int, keepDims bool) any {
	return b.inner.Prod(x, axes, keepDims)
}

// Mean reduces and records the operation.
func (b *AutodiffBackend[B]) Mean(x any, axes []int, keepDims bool) any {
	defer pin(x)()
	result := b.inner.Mean(x, axes, keepDims)
	b.tape.Record(ops.NewMeanOp(x, result, axes, keepDims, b.inner))
	return result
}

func (b *AutodiffBackend[B]) Max(x any, axes []int, keepDims bool) any {
	return b.inner.Max(x, axes, keepDims)
}
func (b *AutodiffBackend[B]) Min(x any, axes []int, keepDims bool) any {
	return b.inner.Min(x, axes, keepDims)
}
func (b *AutodiffBackend[B]) Any(x any, axes []int, keepDims bool) any {
	return b.inner.Any(x, axes, keepDims)
}
func (b *AutodiffBackend[B]) All(x any, axes []int, keepDims bool) any {
	return b.inner.All(x, axes, keepDims)
}
func (b *AutodiffBackend[B]) Std(x any, axes []int, keepDims bool) any {
	return b.inner.Std(x, axes, keepDims)
}

// MatMul multiplies matrices and records the operation.
func (b *AutodiffBackend[B]) MatMul(x, y any) any {
	defer pin(x)()
	defer pin(y)()
	result := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, result))
	return result
}

func (b *AutodiffBackend[B]) Dot(x, y any) any { return b.inner.Dot(x, y) }

func (b *AutodiffBackend[B]) FFT(x any) any  { return b.inner.FFT(x) }
func (b *AutodiffBackend[B]) IFFT(x any) any { return b.inner.IFFT(x) }
func (b *AutodiffBackend[B]) Real(x any) any { return b.inner.Real(x) }
func (b *AutodiffBackend[B]) Imag(x any) any { return b.inner.Imag(x) }

// WhileLoop runs eagerly; operations the body issues on this decorator are
// recorded as usual, which is what unrolled differentiation relies on.
func (b *AutodiffBackend[B]) WhileLoop(cond func(vars []any) bool, body func(vars []any) []any, vars []any, maxIterations int) []any {
	for i := 0; (maxIterations < 0 || i < maxIterations) && cond(vars); i++ {
		vars = body(vars)
	}
	return vars
}

// WithCustomGradient computes forward and records backward as the gradient
// of the result with respect to inputs. Recording is paused while forward
// runs: the supplied rule replaces whatever the forward computation would
// have put on the tape.
func (b *AutodiffBackend[B]) WithCustomGradient(op string, inputs []any, forward func(inputs []any) any,
	backward func(inputs []any, output, outputGrad any) []any) any {
	for _, x := range inputs {
		defer pin(x)()
	}
	wasRecording := b.tape.IsRecording()
	b.tape.StopRecording()
	result := forward(inputs)
	if wasRecording {
		b.tape.StartRecording()
	}
	b.tape.Record(ops.NewCustomOp(op, inputs, result, backward))
	return result
}
