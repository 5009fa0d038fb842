package cpu

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/simflux-ml/simflux/internal/core"
)

// FFT computes the discrete Fourier transform along the last axis. The
// result is always complex at the canonical complex type.
func (c *CPUBackend) FFT(x any) any {
	return c.fft(x, false)
}

// IFFT computes the inverse transform along the last axis, normalized so
// that IFFT(FFT(x)) == x.
func (c *CPUBackend) IFFT(x any) any {
	return c.fft(x, true)
}

func (c *CPUBackend) fft(x any, inverse bool) any {
	r := c.Cast(c.raw(x), core.ComplexType()).(*core.Raw)
	sizes := r.Sizes()
	n := sizes[len(sizes)-1]
	batch := r.NumElements() / n

	out := core.MustRaw(sizes, core.ComplexType())
	at, dst := complexAt(r), setComplex(out)
	plan := fourier.NewCmplxFFT(n)
	src := make([]complex128, n)
	coeffs := make([]complex128, n)
	for b := 0; b < batch; b++ {
		for i := 0; i < n; i++ {
			src[i] = at(b*n + i)
		}
		if inverse {
			// gonum's inverse transform is unnormalized.
			plan.Sequence(coeffs, src)
			scale := complex(1/float64(n), 0)
			for i := 0; i < n; i++ {
				dst(b*n+i, coeffs[i]*scale)
			}
		} else {
			plan.Coefficients(coeffs, src)
			for i := 0; i < n; i++ {
				dst(b*n+i, coeffs[i])
			}
		}
	}
	return out
}

// Real extracts the real part of a native as the canonical float type.
// Non-complex input passes through as a copy.
func (c *CPUBackend) Real(x any) any {
	r := c.raw(x)
	if r.DType().Kind != core.Complex {
		return c.Copy(r)
	}
	out := core.MustRaw(r.Sizes(), core.FloatType())
	at, dst := complexAt(r), setFloat(out)
	for i := 0; i < r.NumElements(); i++ {
		dst(i, real(at(i)))
	}
	return out
}

// Imag extracts the imaginary part, zero for non-complex input.
func (c *CPUBackend) Imag(x any) any {
	r := c.raw(x)
	out := core.MustRaw(r.Sizes(), core.FloatType())
	if r.DType().Kind != core.Complex {
		return out
	}
	at, dst := complexAt(r), setFloat(out)
	for i := 0; i < r.NumElements(); i++ {
		dst(i, imag(at(i)))
	}
	return out
}
