package cpu

import (
	"fmt"

	"github.com/simflux-ml/simflux/internal/core"
)

// Element accessors bridge the dtype-tagged buffers into one of three
// computation domains: float64, int64 or complex128. Kernels pick the
// domain from the (already auto-cast) operand dtype.

func floatAt(r *core.Raw) func(int) float64 {
	switch r.DType() {
	case core.Float32T:
		data := r.Float32s()
		return func(i int) float64 { return float64(data[i]) }
	case core.Float64T:
		data := r.Float64s()
		return func(i int) float64 { return data[i] }
	case core.Int32T:
		data := r.Int32s()
		return func(i int) float64 { return float64(data[i]) }
	case core.Int64T:
		data := r.Int64s()
		return func(i int) float64 { return float64(data[i]) }
	case core.BoolT:
		data := r.Bools()
		return func(i int) float64 {
			if data[i] {
				return 1
			}
			return 0
		}
	case core.Complex64T:
		data := r.Complex64s()
		return func(i int) float64 { return float64(real(data[i])) }
	case core.Complex128T:
		data := r.Complex128s()
		return func(i int) float64 { return real(data[i]) }
	}
	panic(fmt.Sprintf("cpu: no float accessor for %s", r.DType()))
}

func setFloat(r *core.Raw) func(int, float64) {
	switch r.DType() {
	case core.Float32T:
		data := r.Float32s()
		return func(i int, v float64) { data[i] = float32(v) }
	case core.Float64T:
		data := r.Float64s()
		return func(i int, v float64) { data[i] = v }
	}
	panic(fmt.Sprintf("cpu: no float setter for %s", r.DType()))
}

func intAt(r *core.Raw) func(int) int64 {
	switch r.DType() {
	case core.Int32T:
		data := r.Int32s()
		return func(i int) int64 { return int64(data[i]) }
	case core.Int64T:
		data := r.Int64s()
		return func(i int) int64 { return data[i] }
	case core.BoolT:
		data := r.Bools()
		return func(i int) int64 {
			if data[i] {
				return 1
			}
			return 0
		}
	}
	panic(fmt.Sprintf("cpu: no int accessor for %s", r.DType()))
}

func setInt(r *core.Raw) func(int, int64) {
	switch r.DType() {
	case core.Int32T:
		data := r.Int32s()
		return func(i int, v int64) { data[i] = int32(v) }
	case core.Int64T:
		data := r.Int64s()
		return func(i int, v int64) { data[i] = v }
	}
	panic(fmt.Sprintf("cpu: no int setter for %s", r.DType()))
}

func complexAt(r *core.Raw) func(int) complex128 {
	switch r.DType() {
	case core.Complex64T:
		data := r.Complex64s()
		return func(i int) complex128 { return complex128(data[i]) }
	case core.Complex128T:
		data := r.Complex128s()
		return func(i int) complex128 { return data[i] }
	default:
		at := floatAt(r)
		return func(i int) complex128 { return complex(at(i), 0) }
	}
}

func setComplex(r *core.Raw) func(int, complex128) {
	switch r.DType() {
	case core.Complex64T:
		data := r.Complex64s()
		return func(i int, v complex128) { data[i] = complex64(v) }
	case core.Complex128T:
		data := r.Complex128s()
		return func(i int, v complex128) { data[i] = v }
	}
	panic(fmt.Sprintf("cpu: no complex setter for %s", r.DType()))
}

// broadcastSizes combines operand sizes right-aligned, with size-1 axes
// expanding virtually.
func broadcastSizes(a, b []int) []int {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	out := make([]int, rank)
	for i := 0; i < rank; i++ {
		sa, sb := 1, 1
		if idx := len(a) - rank + i; idx >= 0 {
			sa = a[idx]
		}
		if idx := len(b) - rank + i; idx >= 0 {
			sb = b[idx]
		}
		switch {
		case sa == sb:
			out[i] = sa
		case sa == 1:
			out[i] = sb
		case sb == 1:
			out[i] = sa
		default:
			panic(&core.DimensionError{Cause: fmt.Sprintf("cannot broadcast sizes %v and %v", a, b)})
		}
	}
	return out
}

// broadcastStrides returns the strides of an operand relative to the output
// sizes, with stride 0 on virtually expanded axes.
func broadcastStrides(opSizes, outSizes []int) []int {
	opStrides := core.ComputeStrides(opSizes)
	out := make([]int, len(outSizes))
	shift := len(outSizes) - len(opSizes)
	for i := range outSizes {
		j := i - shift
		if j < 0 || opSizes[j] == 1 {
			out[i] = 0
		} else {
			out[i] = opStrides[j]
		}
	}
	return out
}

// forEachPair visits every output element of a broadcast binary operation,
// yielding the flat indices into both operands.
func forEachPair(aSizes, bSizes, outSizes []int, visit func(outIdx, aIdx, bIdx int)) {
	strideA := broadcastStrides(aSizes, outSizes)
	strideB := broadcastStrides(bSizes, outSizes)
	n := 1
	for _, s := range outSizes {
		n *= s
	}
	idx := make([]int, len(outSizes))
	aIdx, bIdx := 0, 0
	for out := 0; out < n; out++ {
		visit(out, aIdx, bIdx)
		for axis := len(outSizes) - 1; axis >= 0; axis-- {
			idx[axis]++
			aIdx += strideA[axis]
			bIdx += strideB[axis]
			if idx[axis] < outSizes[axis] {
				break
			}
			idx[axis] = 0
			aIdx -= strideA[axis] * outSizes[axis]
			bIdx -= strideB[axis] * outSizes[axis]
		}
	}
}
