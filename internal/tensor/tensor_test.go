package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
	"github.com/simflux-ml/simflux/internal/tensor"
)

func init() {
	cpu.Default()
}

func TestFromFloat64s(t *testing.T) {
	shape := core.MustShape(core.Batch("b", 2), core.Spatial("x", 3))
	x, err := tensor.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, shape)
	require.NoError(t, err)

	assert.True(t, shape.Equal(x.Shape()))
	assert.Equal(t, core.FloatType(), x.DType())
	assert.True(t, x.Available())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, x.Float64s())
}

func TestFromNative_SizeMismatch(t *testing.T) {
	b := cpu.Default()
	native := b.FromFloat64s([]float64{1, 2}, []int{2})

	_, err := tensor.FromNative(native, core.MustShape(core.Spatial("x", 3)))
	var dimErr *core.DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestFromNative_SymbolicSizeAccepted(t *testing.T) {
	b := cpu.Default()
	native := b.FromFloat64s([]float64{1, 2, 3}, []int{3})

	x, err := tensor.FromNative(native, core.MustShape(core.Spatial("x", core.SizeUnknown)))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, x.Float64s())
}

func TestAdd_SameNames(t *testing.T) {
	shape := core.MustShape(core.Spatial("x", 3))
	a := tensor.MustFromFloat64s([]float64{1, 2, 3}, shape)
	b := tensor.MustFromFloat64s([]float64{10, 20, 30}, shape)

	out := a.Add(b)
	assert.Equal(t, []float64{11, 22, 33}, out.Float64s())
}

func TestAdd_AlignsByName(t *testing.T) {
	// Same dimensions in opposite storage order: the result follows the
	// left operand's order and values align by name, not position.
	a := tensor.MustFromFloat64s([]float64{1, 2, 3, 4, 5, 6},
		core.MustShape(core.Batch("b", 2), core.Spatial("x", 3)))
	b := tensor.MustFromFloat64s([]float64{10, 40, 20, 50, 30, 60},
		core.MustShape(core.Spatial("x", 3), core.Batch("b", 2)))

	out := a.Add(b)
	assert.Equal(t, []string{"b", "x"}, out.Shape().Names())
	assert.Equal(t, []float64{11, 22, 33, 44, 55, 66}, out.Float64s())
}

func TestAdd_BroadcastsPrivateDims(t *testing.T) {
	a := tensor.MustFromFloat64s([]float64{1, 2}, core.MustShape(core.Batch("b", 2)))
	b := tensor.MustFromFloat64s([]float64{10, 20, 30}, core.MustShape(core.Spatial("x", 3)))

	out := a.Add(b)
	assert.Equal(t, []string{"b", "x"}, out.Shape().Names())
	assert.Equal(t, []int{2, 3}, out.Shape().Sizes())
	assert.Equal(t, []float64{11, 21, 31, 12, 22, 32}, out.Float64s())
}

func TestMul_SizeOneExpands(t *testing.T) {
	a := tensor.MustFromFloat64s([]float64{1, 2, 3, 4},
		core.MustShape(core.Batch("b", 2), core.Spatial("x", 2)))
	scale := tensor.MustFromFloat64s([]float64{10}, core.MustShape(core.Batch("b", 1)))

	out := a.Mul(scale)
	assert.Equal(t, []float64{10, 20, 30, 40}, out.Float64s())
}

func TestAdd_SizeConflictPanics(t *testing.T) {
	a := tensor.MustFromFloat64s([]float64{1, 2}, core.MustShape(core.Spatial("x", 2)))
	b := tensor.MustFromFloat64s([]float64{1, 2, 3}, core.MustShape(core.Spatial("x", 3)))

	assert.Panics(t, func() { a.Add(b) })
}

func TestUnaryOps(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{-4, 9}, core.MustShape(core.Spatial("x", 2)))

	assert.Equal(t, []float64{4, -9}, x.Neg().Float64s())
	assert.Equal(t, []float64{4, 9}, x.Abs().Float64s())
}

func TestReduceByName(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1, 2, 3, 4, 5, 6},
		core.MustShape(core.Batch("b", 2), core.Spatial("x", 3)))

	sum := x.Sum("x")
	assert.Equal(t, []string{"b"}, sum.Shape().Names())
	assert.Equal(t, []float64{6, 15}, sum.Float64s())

	total := x.Sum()
	assert.Equal(t, 0, total.Shape().Rank())
	assert.Equal(t, []float64{21}, total.Float64s())
}

func TestReduce_MissingNamePanics(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1, 2}, core.MustShape(core.Spatial("x", 2)))

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*core.DimensionError)
		require.True(t, ok)
		assert.Equal(t, "y", err.Name)
	}()
	x.Sum("y")
}

func TestMeanMax(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1, 2, 3, 4},
		core.MustShape(core.Batch("b", 2), core.Spatial("x", 2)))

	assert.Equal(t, []float64{1.5, 3.5}, x.Mean("x").Float64s())
	assert.Equal(t, []float64{3, 4}, x.Max("b").Float64s())
}

func TestTransposeByName(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1, 2, 3, 4, 5, 6},
		core.MustShape(core.Batch("b", 2), core.Spatial("x", 3)))

	out := x.Transpose("x", "b")
	assert.Equal(t, []string{"x", "b"}, out.Shape().Names())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Float64s())
}

func TestUnstackByName(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1, 2, 3, 4, 5, 6},
		core.MustShape(core.Batch("b", 2), core.Spatial("x", 3)))

	parts := x.Unstack("b")
	require.Len(t, parts, 2)
	assert.Equal(t, []string{"x"}, parts[0].Shape().Names())
	assert.Equal(t, []float64{4, 5, 6}, parts[1].Float64s())
}

func TestCast(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1.7, 2.2}, core.MustShape(core.Spatial("x", 2)))

	out := x.Cast(core.Int64T)
	assert.Equal(t, core.Int64T, out.DType())
	assert.Equal(t, []float64{1, 2}, out.Float64s())
}

func TestConstructors(t *testing.T) {
	shape := core.MustShape(core.Spatial("x", 4))

	assert.Equal(t, []float64{0, 0, 0, 0}, tensor.Zeros(shape, core.Float32T).Float64s())
	assert.Equal(t, []float64{1, 1, 1, 1}, tensor.Ones(shape, core.Float32T).Float64s())
	assert.Equal(t, []float64{7, 7, 7, 7}, tensor.Full(shape, 7, core.Float32T).Float64s())
	assert.Len(t, tensor.RandomNormal(shape).Float64s(), 4)
}

func TestTensorUsesCurrentEngine(t *testing.T) {
	scoped := cpu.New()
	release := backend.Use(scoped)
	defer release()

	x := tensor.Zeros(core.MustShape(core.Spatial("x", 2)), core.Float32T)
	assert.Same(t, backend.Backend(scoped), x.Backend())
}

func TestString(t *testing.T) {
	x := tensor.MustFromFloat64s([]float64{1, 2}, core.MustShape(core.Spatial("x", 2)))
	s := x.String()
	assert.Contains(t, s, "x=2:spatial")
	assert.Contains(t, s, "cpu")
	assert.Contains(t, s, "[1 2]")
}
