package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
)

func TestMatMul(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})
	c := b.FromFloat64s([]float64{5, 6, 7, 8}, []int{2, 2})

	out := b.MatMul(a, c)
	assert.Equal(t, []int{2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{19, 22, 43, 50}, b.Float64s(out))
}

func TestMatMul_NonSquare(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	c := b.FromFloat64s([]float64{1, 0, 0, 1, 1, 1}, []int{3, 2})

	out := b.MatMul(a, c)
	assert.Equal(t, []int{2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{4, 5, 10, 11}, b.Float64s(out))
}

func TestMatMul_MatrixVector(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})
	v := b.FromFloat64s([]float64{1, 1}, []int{2})

	out := b.MatMul(a, v)
	assert.Equal(t, []int{2}, b.SizesOf(out))
	assert.Equal(t, []float64{3, 7}, b.Float64s(out))
}

func TestMatMul_Batched(t *testing.T) {
	b := cpu.New()
	// Two 2x2 matrices times one shared 2x2 matrix.
	a := b.FromFloat64s([]float64{
		1, 0, 0, 1,
		2, 0, 0, 2,
	}, []int{2, 2, 2})
	c := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})

	out := b.MatMul(a, c)
	assert.Equal(t, []int{2, 2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{1, 2, 3, 4, 2, 4, 6, 8}, b.Float64s(out))
}

func TestMatMul_PromotesIntToFloat(t *testing.T) {
	b := cpu.New()
	a := b.Cast(b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2}), core.Int64T)
	c := b.FromFloat64s([]float64{1, 0, 0, 1}, []int{2, 2})

	out := b.MatMul(a, c)
	assert.Equal(t, core.FloatType(), b.DTypeOf(out))
	assert.Equal(t, []float64{1, 2, 3, 4}, b.Float64s(out))
}

func TestMatMul_IntStaysExact(t *testing.T) {
	b := cpu.New()
	// Products reach 2^40, past what a float32 intermediate can hold.
	big := float64(int64(1) << 20)
	a := b.Cast(b.FromFloat64s([]float64{big, 0, 0, big}, []int{2, 2}), core.Int64T)
	c := b.Cast(b.FromFloat64s([]float64{big, 0, 0, big}, []int{2, 2}), core.Int64T)

	out := b.MatMul(a, c)
	assert.Equal(t, core.Int64T, b.DTypeOf(out))
	assert.Equal(t, []int64{1 << 40, 0, 0, 1 << 40}, out.(*core.Raw).Int64s())
}

func TestMatMul_Complex(t *testing.T) {
	b := cpu.New()
	a, err := b.AsNative([]complex128{1i, 0, 0, 1i})
	require.NoError(t, err)
	a = b.Reshape(a, []int{2, 2})
	c, err := b.AsNative([]complex128{1, 2, 3, 4})
	require.NoError(t, err)
	c = b.Reshape(c, []int{2, 2})

	out := b.MatMul(a, c)
	assert.Equal(t, core.ComplexType(), b.DTypeOf(out))
	assert.Equal(t, []float64{1, 2, 3, 4}, b.Float64s(b.Imag(out)))
}

func TestDot(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3}, []int{3})
	c := b.FromFloat64s([]float64{4, 5, 6}, []int{3})

	out := b.Float64s(b.Dot(a, c))
	require.Len(t, out, 1)
	assert.InDelta(t, 32, out[0], 1e-12)
}
