package cpu_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
)

func TestAdd(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3}, []int{3})
	c := b.FromFloat64s([]float64{10, 20, 30}, []int{3})

	out := b.Add(a, c)
	assert.Equal(t, []float64{11, 22, 33}, b.Float64s(out))
}

func TestAdd_Broadcast(t *testing.T) {
	b := cpu.New()
	matrix := b.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	row := b.FromFloat64s([]float64{10, 20, 30}, []int{3})

	out := b.Add(matrix, row)
	assert.Equal(t, []int{2, 3}, b.SizesOf(out))
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, b.Float64s(out))
}

func TestAdd_ScalarBroadcast(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2}, []int{2})

	out := b.Add(x, b.Full(nil, 5, core.FloatType()))
	assert.Equal(t, []float64{6, 7}, b.Float64s(out))
}

func TestAdd_MixedDTypePromotes(t *testing.T) {
	b := cpu.New()
	ints := b.Cast(b.FromFloat64s([]float64{1, 2}, []int{2}), core.Int64T)
	floats := b.FromFloat64s([]float64{0.5, 0.25}, []int{2})

	out := b.Add(ints, floats)
	assert.Equal(t, core.FloatType(), b.DTypeOf(out))
	assert.Equal(t, []float64{1.5, 2.25}, b.Float64s(out))
}

func TestAdd_IntStaysInt(t *testing.T) {
	b := cpu.New()
	a := b.Cast(b.FromFloat64s([]float64{1, 2}, []int{2}), core.Int32T)
	c := b.Cast(b.FromFloat64s([]float64{3, 4}, []int{2}), core.Int64T)

	out := b.Add(a, c)
	assert.Equal(t, core.Int64T, b.DTypeOf(out))
	assert.Equal(t, []float64{4, 6}, b.Float64s(out))
}

func TestAdd_Complex(t *testing.T) {
	b := cpu.New()
	x, err := b.AsNative([]complex128{1 + 2i, 3 - 1i})
	require.NoError(t, err)
	y := b.FromFloat64s([]float64{1, 1}, []int{2})

	out := b.Add(x, y)
	assert.Equal(t, core.ComplexType(), b.DTypeOf(out))
	assert.Equal(t, []float64{2, 4}, b.Float64s(b.Real(out)))
	assert.Equal(t, []float64{2, -1}, b.Float64s(b.Imag(out)))
}

func TestSubMulDiv(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{6, 8}, []int{2})
	c := b.FromFloat64s([]float64{2, 4}, []int{2})

	assert.Equal(t, []float64{4, 4}, b.Float64s(b.Sub(a, c)))
	assert.Equal(t, []float64{12, 32}, b.Float64s(b.Mul(a, c)))
	assert.Equal(t, []float64{3, 2}, b.Float64s(b.Div(a, c)))
}

func TestSub_BoolNamesOpInPanic(t *testing.T) {
	b := cpu.New()
	x := b.Cast(b.FromFloat64s([]float64{1, 0}, []int{2}), core.BoolT)

	defer func() {
		mismatch, ok := recover().(*core.TypeMismatchError)
		require.True(t, ok)
		assert.Equal(t, "Sub", mismatch.Op)
		assert.Contains(t, mismatch.Error(), "Sub")
	}()
	b.Sub(x, x)
}

func TestPow(t *testing.T) {
	b := cpu.New()
	base := b.FromFloat64s([]float64{2, 3}, []int{2})
	exp := b.FromFloat64s([]float64{3, 2}, []int{2})

	assert.Equal(t, []float64{8, 9}, b.Float64s(b.Pow(base, exp)))
}

func TestMod(t *testing.T) {
	b := cpu.New()
	a := b.Cast(b.FromFloat64s([]float64{7, -7}, []int{2}), core.Int64T)
	m := b.Cast(b.FromFloat64s([]float64{3, 3}, []int{2}), core.Int64T)

	out := b.Float64s(b.Mod(a, m))
	assert.Equal(t, []float64{1, -1}, out)
}

func TestDivideNoNan(t *testing.T) {
	b := cpu.New()
	num := b.FromFloat64s([]float64{4, 5}, []int{2})
	den := b.FromFloat64s([]float64{2, 0}, []int{2})

	assert.Equal(t, []float64{2, 0}, b.Float64s(b.DivideNoNan(num, den)))
}

func TestMaximumMinimum(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 5}, []int{2})
	c := b.FromFloat64s([]float64{3, 2}, []int{2})

	assert.Equal(t, []float64{3, 5}, b.Float64s(b.Maximum(a, c)))
	assert.Equal(t, []float64{1, 2}, b.Float64s(b.Minimum(a, c)))
}

func TestComparisons(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3}, []int{3})
	c := b.FromFloat64s([]float64{2, 2, 2}, []int{3})

	eq := b.Equal(a, c)
	assert.Equal(t, core.BoolT, b.DTypeOf(eq))
	assert.Equal(t, []float64{0, 1, 0}, b.Float64s(eq))
	assert.Equal(t, []float64{1, 0, 1}, b.Float64s(b.NotEqual(a, c)))
	assert.Equal(t, []float64{0, 0, 1}, b.Float64s(b.Greater(a, c)))
	assert.Equal(t, []float64{0, 1, 1}, b.Float64s(b.GreaterEqual(a, c)))
}

func TestUnaryOps(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{-4, 9}, []int{2})

	assert.Equal(t, []float64{4, -9}, b.Float64s(b.Neg(x)))
	assert.Equal(t, []float64{4, 9}, b.Float64s(b.Abs(x)))
	assert.Equal(t, []float64{-1, 1}, b.Float64s(b.Sign(x)))

	y := b.FromFloat64s([]float64{4, 9}, []int{2})
	assert.Equal(t, []float64{2, 3}, b.Float64s(b.Sqrt(y)))

	z := b.FromFloat64s([]float64{1.4, -1.6}, []int{2})
	assert.Equal(t, []float64{1, -2}, b.Float64s(b.Round(z)))
	assert.Equal(t, []float64{2, -1}, b.Float64s(b.Ceil(z)))
	assert.Equal(t, []float64{1, -2}, b.Float64s(b.Floor(z)))
}

func TestTranscendental(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	x := b.FromFloat64s([]float64{0, 1}, []int{2})

	assert.InDeltaSlice(t, []float64{1, math.E}, b.Float64s(b.Exp(x)), 1e-12)
	assert.InDeltaSlice(t, []float64{0, 1}, b.Float64s(b.Sin(b.Mul(x, b.Full(nil, math.Pi/2, core.Float64T)))), 1e-12)
	assert.InDeltaSlice(t, []float64{1, 0}, b.Float64s(b.Cos(b.Mul(x, b.Full(nil, math.Pi/2, core.Float64T)))), 1e-12)

	y := b.FromFloat64s([]float64{1, math.E}, []int{2})
	assert.InDeltaSlice(t, []float64{0, 1}, b.Float64s(b.Log(y)), 1e-12)
}

func TestIsFinite(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, math.Inf(1), math.NaN()}, []int{3})

	out := b.IsFinite(x)
	assert.Equal(t, core.BoolT, b.DTypeOf(out))
	assert.Equal(t, []float64{1, 0, 0}, b.Float64s(out))
}

func TestRange(t *testing.T) {
	b := cpu.New()
	out := b.Range(0, 5, 1, core.Int64T)
	assert.Equal(t, core.Int64T, b.DTypeOf(out))
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, b.Float64s(out))

	down := b.Range(3, 0, -1, core.Int64T)
	assert.Equal(t, []float64{3, 2, 1}, b.Float64s(down))
}

func TestRandomUniformRange(t *testing.T) {
	b := cpu.New()
	out := b.Float64s(b.RandomUniform([]int{100}))
	require.Len(t, out, 100)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
