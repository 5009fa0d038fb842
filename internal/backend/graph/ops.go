package graph

import (
	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
)

// Recorded operations. Each method appends one step that re-invokes the
// same delegate operation on replay; operation arguments that are not
// natives (axes, sizes, modes) are captured by the step closure and so are
// fixed per trace.

func (g *GraphBackend) Cast(x any, to core.DType) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.Cast(in[0], to) })
}

func (g *GraphBackend) Copy(x any) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.Copy(in[0]) })
}

func (g *GraphBackend) Zeros(sizes []int, dt core.DType) any {
	return g.record(nil, func(d backend.Backend, _ []any) any { return d.Zeros(sizes, dt) })
}

func (g *GraphBackend) Ones(sizes []int, dt core.DType) any {
	return g.record(nil, func(d backend.Backend, _ []any) any { return d.Ones(sizes, dt) })
}

func (g *GraphBackend) Full(sizes []int, value float64, dt core.DType) any {
	return g.record(nil, func(d backend.Backend, _ []any) any { return d.Full(sizes, value, dt) })
}

func (g *GraphBackend) FromFloat64s(data []float64, sizes []int) any {
	return g.record(nil, func(d backend.Backend, _ []any) any { return d.FromFloat64s(data, sizes) })
}

func (g *GraphBackend) Range(start, limit, delta float64, dt core.DType) any {
	return g.record(nil, func(d backend.Backend, _ []any) any { return d.Range(start, limit, delta, dt) })
}

func (g *GraphBackend) binary(a, b any, op func(d backend.Backend, x, y any) any) any {
	return g.record([]any{a, b}, func(d backend.Backend, in []any) any { return op(d, in[0], in[1]) })
}

func (g *GraphBackend) Add(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Add(x, y) })
}

func (g *GraphBackend) Sub(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Sub(x, y) })
}

func (g *GraphBackend) Mul(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Mul(x, y) })
}

func (g *GraphBackend) Div(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Div(x, y) })
}

func (g *GraphBackend) Pow(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Pow(x, y) })
}

func (g *GraphBackend) Mod(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Mod(x, y) })
}

func (g *GraphBackend) Maximum(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Maximum(x, y) })
}

func (g *GraphBackend) Minimum(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Minimum(x, y) })
}

func (g *GraphBackend) DivideNoNan(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.DivideNoNan(x, y) })
}

func (g *GraphBackend) Equal(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Equal(x, y) })
}

func (g *GraphBackend) NotEqual(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.NotEqual(x, y) })
}

func (g *GraphBackend) Greater(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Greater(x, y) })
}

func (g *GraphBackend) GreaterEqual(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.GreaterEqual(x, y) })
}

func (g *GraphBackend) unary(x any, op func(d backend.Backend, v any) any) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return op(d, in[0]) })
}

func (g *GraphBackend) Neg(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Neg(v) })
}

func (g *GraphBackend) Abs(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Abs(v) })
}

func (g *GraphBackend) Sign(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Sign(v) })
}

func (g *GraphBackend) Round(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Round(v) })
}

func (g *GraphBackend) Ceil(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Ceil(v) })
}

func (g *GraphBackend) Floor(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Floor(v) })
}

func (g *GraphBackend) Sqrt(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Sqrt(v) })
}

func (g *GraphBackend) Exp(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Exp(v) })
}

func (g *GraphBackend) Log(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Log(v) })
}

func (g *GraphBackend) Sin(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Sin(v) })
}

func (g *GraphBackend) Cos(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Cos(v) })
}

func (g *GraphBackend) IsFinite(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.IsFinite(v) })
}

func (g *GraphBackend) Real(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Real(v) })
}

func (g *GraphBackend) Imag(x any) any {
	return g.unary(x, func(d backend.Backend, v any) any { return d.Imag(v) })
}

func (g *GraphBackend) Stack(xs []any, axis int) any {
	return g.record(xs, func(d backend.Backend, in []any) any { return d.Stack(in, axis) })
}

func (g *GraphBackend) Concat(xs []any, axis int) any {
	return g.record(xs, func(d backend.Backend, in []any) any { return d.Concat(in, axis) })
}

// Unstack records one step per slice; each replays the split and picks its
// slice.
func (g *GraphBackend) Unstack(x any, axis int) []any {
	n := g.SizesOf(x)[normalizeAxis(axis, len(g.SizesOf(x)))]
	out := make([]any, n)
	for k := 0; k < n; k++ {
		k := k
		out[k] = g.record([]any{x}, func(d backend.Backend, in []any) any {
			return d.Unstack(in[0], axis)[k]
		})
	}
	return out
}

func normalizeAxis(axis, rank int) int {
	if axis < 0 {
		return axis + rank
	}
	return axis
}

func (g *GraphBackend) Pad(x any, widths [][2]int, mode backend.PadMode, constant float64) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any {
		return d.Pad(in[0], widths, mode, constant)
	})
}

func (g *GraphBackend) Reshape(x any, sizes []int) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.Reshape(in[0], sizes) })
}

func (g *GraphBackend) Transpose(x any, axes []int) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.Transpose(in[0], axes) })
}

func (g *GraphBackend) ExpandDims(x any, axis int) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.ExpandDims(in[0], axis) })
}

func (g *GraphBackend) Tile(x any, multiples []int) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.Tile(in[0], multiples) })
}

func (g *GraphBackend) Flip(x any, axes []int) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any { return d.Flip(in[0], axes) })
}

func (g *GraphBackend) Gather(values, indices any, axis int) any {
	return g.record([]any{values, indices}, func(d backend.Backend, in []any) any {
		return d.Gather(in[0], in[1], axis)
	})
}

func (g *GraphBackend) GatherND(values, indices any) any {
	return g.record([]any{values, indices}, func(d backend.Backend, in []any) any {
		return d.GatherND(in[0], in[1])
	})
}

func (g *GraphBackend) Where(cond, x, y any) any {
	return g.record([]any{cond, x, y}, func(d backend.Backend, in []any) any {
		return d.Where(in[0], in[1], in[2])
	})
}

func (g *GraphBackend) reduce(x any, axes []int, keepDims bool,
	op func(d backend.Backend, v any, axes []int, keepDims bool) any) any {
	return g.record([]any{x}, func(d backend.Backend, in []any) any {
		return op(d, in[0], axes, keepDims)
	})
}

func (g *GraphBackend) Sum(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Sum)
}

func (g *GraphBackend) Prod(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Prod)
}

func (g *GraphBackend) Mean(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Mean)
}

func (g *GraphBackend) Max(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Max)
}

func (g *GraphBackend) Min(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Min)
}

func (g *GraphBackend) Any(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Any)
}

func (g *GraphBackend) All(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.All)
}

func (g *GraphBackend) Std(x any, axes []int, keepDims bool) any {
	return g.reduce(x, axes, keepDims, backend.Backend.Std)
}

func (g *GraphBackend) MatMul(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.MatMul(x, y) })
}

func (g *GraphBackend) Dot(a, b any) any {
	return g.binary(a, b, func(d backend.Backend, x, y any) any { return d.Dot(x, y) })
}

// WithCustomGradient records the forward computation only; this engine does
// not differentiate.
func (g *GraphBackend) WithCustomGradient(op string, inputs []any, forward func(inputs []any) any,
	backward func(inputs []any, output, outputGrad any) []any) any {
	return forward(inputs)
}
