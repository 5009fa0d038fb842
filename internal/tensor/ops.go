package tensor

import (
	"github.com/simflux-ml/simflux/internal/core"
)

// alignOperands brings both natives to the axis order of the combined
// shape, inserting size-1 axes for dimensions an operand lacks, so that the
// engine's positional broadcasting realizes name-based broadcasting.
func (t Tensor) alignOperands(other Tensor) (core.Shape, any, any) {
	result, planA, planB, err := core.Align(t.shape, other.shape)
	if err != nil {
		panic(err)
	}
	a := applyPlan(t, planA)
	b := applyPlan(other, planB)
	return result, a, b
}

func applyPlan(t Tensor, plan []int) any {
	perm := make([]int, 0, len(plan))
	for _, p := range plan {
		if p >= 0 {
			perm = append(perm, p)
		}
	}
	native := t.native
	if !isIdentity(perm) {
		native = t.b.Transpose(native, perm)
	}
	for i, p := range plan {
		if p < 0 {
			native = t.b.ExpandDims(native, i)
		}
	}
	return native
}

func isIdentity(perm []int) bool {
	for i, p := range perm {
		if i != p {
			return false
		}
	}
	return true
}

func (t Tensor) binary(other Tensor, op func(a, b any) any) Tensor {
	shape, a, b := t.alignOperands(other)
	return Tensor{native: op(a, b), shape: shape, b: t.b}
}

// Add adds two tensors, aligning dimensions by name.
func (t Tensor) Add(other Tensor) Tensor { return t.binary(other, t.b.Add) }

// Sub subtracts, aligning dimensions by name.
func (t Tensor) Sub(other Tensor) Tensor { return t.binary(other, t.b.Sub) }

// Mul multiplies elementwise, aligning dimensions by name.
func (t Tensor) Mul(other Tensor) Tensor { return t.binary(other, t.b.Mul) }

// Div divides elementwise, aligning dimensions by name.
func (t Tensor) Div(other Tensor) Tensor { return t.binary(other, t.b.Div) }

// Pow raises t to other elementwise, aligning dimensions by name.
func (t Tensor) Pow(other Tensor) Tensor { return t.binary(other, t.b.Pow) }

// Maximum takes the elementwise maximum, aligning dimensions by name.
func (t Tensor) Maximum(other Tensor) Tensor { return t.binary(other, t.b.Maximum) }

// Minimum takes the elementwise minimum, aligning dimensions by name.
func (t Tensor) Minimum(other Tensor) Tensor { return t.binary(other, t.b.Minimum) }

func (t Tensor) unary(op func(x any) any) Tensor {
	return Tensor{native: op(t.native), shape: t.shape, b: t.b}
}

// Neg negates elementwise.
func (t Tensor) Neg() Tensor { return t.unary(t.b.Neg) }

// Abs takes the elementwise absolute value.
func (t Tensor) Abs() Tensor { return t.unary(t.b.Abs) }

// Sqrt takes the elementwise square root.
func (t Tensor) Sqrt() Tensor { return t.unary(t.b.Sqrt) }

// Exp exponentiates elementwise.
func (t Tensor) Exp() Tensor { return t.unary(t.b.Exp) }

// Log takes the elementwise natural logarithm.
func (t Tensor) Log() Tensor { return t.unary(t.b.Log) }

// Sin applies elementwise.
func (t Tensor) Sin() Tensor { return t.unary(t.b.Sin) }

// Cos applies elementwise.
func (t Tensor) Cos() Tensor { return t.unary(t.b.Cos) }

// Cast converts the element type.
func (t Tensor) Cast(to core.DType) Tensor {
	return Tensor{native: t.b.Cast(t.native, to), shape: t.shape, b: t.b}
}

// axesOf resolves dimension names to axes, all axes when names is empty.
// Panics with *core.DimensionError for names the shape does not have.
func (t Tensor) axesOf(names []string) []int {
	if len(names) == 0 {
		axes := make([]int, len(t.shape))
		for i := range axes {
			axes[i] = i
		}
		return axes
	}
	axes, err := t.shape.Axes(names...)
	if err != nil {
		panic(err)
	}
	return axes
}

func (t Tensor) reduce(names []string, op func(x any, axes []int, keepDims bool) any) Tensor {
	axes := t.axesOf(names)
	return Tensor{
		native: op(t.native, axes, false),
		shape:  t.shape.Without(namesOrAll(t.shape, names)...),
		b:      t.b,
	}
}

func namesOrAll(shape core.Shape, names []string) []string {
	if len(names) > 0 {
		return names
	}
	return shape.Names()
}

// Sum reduces over the named dimensions, or all of them when none are
// given.
func (t Tensor) Sum(dims ...string) Tensor { return t.reduce(dims, t.b.Sum) }

// Prod reduces by product over the named dimensions.
func (t Tensor) Prod(dims ...string) Tensor { return t.reduce(dims, t.b.Prod) }

// Mean reduces by arithmetic mean over the named dimensions.
func (t Tensor) Mean(dims ...string) Tensor { return t.reduce(dims, t.b.Mean) }

// Max reduces by maximum over the named dimensions.
func (t Tensor) Max(dims ...string) Tensor { return t.reduce(dims, t.b.Max) }

// Min reduces by minimum over the named dimensions.
func (t Tensor) Min(dims ...string) Tensor { return t.reduce(dims, t.b.Min) }

// Any reduces by logical or over the named dimensions.
func (t Tensor) Any(dims ...string) Tensor { return t.reduce(dims, t.b.Any) }

// All reduces by logical and over the named dimensions.
func (t Tensor) All(dims ...string) Tensor { return t.reduce(dims, t.b.All) }

// Std reduces by population standard deviation over the named dimensions.
func (t Tensor) Std(dims ...string) Tensor { return t.reduce(dims, t.b.Std) }

// Transpose reorders the dimensions to the given name order, which must
// cover every dimension exactly once.
func (t Tensor) Transpose(names ...string) Tensor {
	axes, err := t.shape.Axes(names...)
	if err != nil {
		panic(err)
	}
	shape := make(core.Shape, len(axes))
	for i, a := range axes {
		shape[i] = t.shape[a]
	}
	return Tensor{native: t.b.Transpose(t.native, axes), shape: shape, b: t.b}
}

// Unstack splits the tensor along a named dimension into rank-reduced
// slices.
func (t Tensor) Unstack(dim string) []Tensor {
	axes, err := t.shape.Axes(dim)
	if err != nil {
		panic(err)
	}
	natives := t.b.Unstack(t.native, axes[0])
	shape := t.shape.Without(dim)
	out := make([]Tensor, len(natives))
	for i, n := range natives {
		out[i] = Tensor{native: n, shape: shape.Clone(), b: t.b}
	}
	return out
}
