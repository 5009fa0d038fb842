package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
)

func TestFFT_Constant(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 1, 1, 1}, []int{4})

	out := b.FFT(x)
	assert.Equal(t, core.ComplexType(), b.DTypeOf(out))
	// All energy lands in the zero frequency.
	assert.InDeltaSlice(t, []float64{4, 0, 0, 0}, b.Float64s(b.Real(out)), 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, b.Float64s(b.Imag(out)), 1e-12)
}

func TestFFT_Impulse(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 0, 0, 0}, []int{4})

	out := b.FFT(x)
	// An impulse transforms to a flat spectrum.
	assert.InDeltaSlice(t, []float64{1, 1, 1, 1}, b.Float64s(b.Real(out)), 1e-12)
}

func TestIFFT_RoundTrip(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	data := []float64{0.5, -1, 2, 3.25, -0.75, 1, 0, 4}
	x := b.FromFloat64s(data, []int{8})

	back := b.Real(b.IFFT(b.FFT(x)))
	assert.InDeltaSlice(t, data, b.Float64s(back), 1e-10)
}

func TestFFT_Batched(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 1, 1, 0, 0, 0}, []int{2, 3})

	out := b.FFT(x)
	require.Equal(t, []int{2, 3}, b.SizesOf(out))
	re := b.Float64s(b.Real(out))
	assert.InDelta(t, 3, re[0], 1e-12)
	assert.InDelta(t, 0, re[3], 1e-12)
}

func TestRealImag_NonComplex(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2}, []int{2})

	assert.Equal(t, []float64{1, 2}, b.Float64s(b.Real(x)))
	assert.Equal(t, []float64{0, 0}, b.Float64s(b.Imag(x)))
}
