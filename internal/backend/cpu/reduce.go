package cpu

import (
	"math"

	"github.com/simflux-ml/simflux/internal/core"
)

// normalizeAxes resolves negative axes and defaults nil/empty to all axes.
func normalizeAxes(axes []int, rank int) []int {
	if len(axes) == 0 {
		all := make([]int, rank)
		for i := range all {
			all[i] = i
		}
		return all
	}
	out := make([]int, len(axes))
	for i, a := range axes {
		if a < 0 {
			a += rank
		}
		out[i] = a
	}
	return out
}

func reducedSizes(sizes, axes []int, keepDims bool) []int {
	reduced := make([]bool, len(sizes))
	for _, a := range axes {
		reduced[a] = true
	}
	out := make([]int, 0, len(sizes))
	for i, s := range sizes {
		switch {
		case !reduced[i]:
			out = append(out, s)
		case keepDims:
			out = append(out, 1)
		}
	}
	return out
}

// forEachReduce visits every input element together with the flat index of
// the output element it accumulates into.
func forEachReduce(sizes, axes []int, visit func(inIdx, outIdx int)) {
	reduced := make([]bool, len(sizes))
	for _, a := range axes {
		reduced[a] = true
	}
	keep := make([]int, len(sizes))
	for i, s := range sizes {
		if reduced[i] {
			keep[i] = 1
		} else {
			keep[i] = s
		}
	}
	outStrides := core.ComputeStrides(keep)
	for i := range outStrides {
		if reduced[i] {
			outStrides[i] = 0
		}
	}
	n := 1
	for _, s := range sizes {
		n *= s
	}
	idx := make([]int, len(sizes))
	outIdx := 0
	for in := 0; in < n; in++ {
		visit(in, outIdx)
		for axis := len(sizes) - 1; axis >= 0; axis-- {
			idx[axis]++
			outIdx += outStrides[axis]
			if idx[axis] < sizes[axis] {
				break
			}
			idx[axis] = 0
			outIdx -= outStrides[axis] * sizes[axis]
		}
	}
}

// reduceCount returns the number of input elements folded into each output
// element.
func reduceCount(sizes, axes []int) int {
	n := 1
	for _, a := range axes {
		n *= sizes[a]
	}
	return n
}

// sumInto accumulates x into per-output accumulators in the dtype's domain
// and finishes each accumulator with the given transforms.
func (c *CPUBackend) sumInto(x any, axes []int, keepDims bool,
	finishFloat func(acc float64, count int) float64,
	finishComplex func(acc complex128, count int) complex128) any {
	r := c.raw(x)
	if r.DType().Kind == core.Bool {
		r = c.Cast(r, core.Int64T).(*core.Raw)
	}
	axes = normalizeAxes(axes, len(r.Sizes()))
	outSizes := reducedSizes(r.Sizes(), axes, keepDims)
	count := reduceCount(r.Sizes(), axes)
	out := core.MustRaw(outSizes, r.DType())
	switch r.DType().Kind {
	case core.Complex:
		acc := make([]complex128, out.NumElements())
		at := complexAt(r)
		forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] += at(in) })
		dst := setComplex(out)
		for i, v := range acc {
			dst(i, finishComplex(v, count))
		}
	case core.Int:
		acc := make([]int64, out.NumElements())
		at := intAt(r)
		forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] += at(in) })
		dst := setInt(out)
		for i, v := range acc {
			dst(i, int64(finishFloat(float64(v), count)))
		}
	default:
		acc := make([]float64, out.NumElements())
		at := floatAt(r)
		forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] += at(in) })
		dst := setFloat(out)
		for i, v := range acc {
			dst(i, finishFloat(v, count))
		}
	}
	return out
}

func (c *CPUBackend) Sum(x any, axes []int, keepDims bool) any {
	return c.sumInto(x, axes, keepDims,
		func(acc float64, count int) float64 { return acc },
		func(acc complex128, count int) complex128 { return acc })
}

func (c *CPUBackend) Mean(x any, axes []int, keepDims bool) any {
	r := c.raw(x)
	if r.DType().Kind != core.Complex && r.DType().Kind != core.Float {
		r = c.Cast(r, core.FloatType()).(*core.Raw)
	}
	return c.sumInto(r, axes, keepDims,
		func(acc float64, count int) float64 { return acc / float64(count) },
		func(acc complex128, count int) complex128 { return acc / complex(float64(count), 0) })
}

func (c *CPUBackend) Prod(x any, axes []int, keepDims bool) any {
	r := c.raw(x)
	if r.DType().Kind == core.Bool {
		r = c.Cast(r, core.Int64T).(*core.Raw)
	}
	axes = normalizeAxes(axes, len(r.Sizes()))
	outSizes := reducedSizes(r.Sizes(), axes, keepDims)
	out := core.MustRaw(outSizes, r.DType())
	switch r.DType().Kind {
	case core.Complex:
		acc := make([]complex128, out.NumElements())
		for i := range acc {
			acc[i] = 1
		}
		at := complexAt(r)
		forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] *= at(in) })
		dst := setComplex(out)
		for i, v := range acc {
			dst(i, v)
		}
	case core.Int:
		acc := make([]int64, out.NumElements())
		for i := range acc {
			acc[i] = 1
		}
		at := intAt(r)
		forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] *= at(in) })
		dst := setInt(out)
		for i, v := range acc {
			dst(i, v)
		}
	default:
		acc := make([]float64, out.NumElements())
		for i := range acc {
			acc[i] = 1
		}
		at := floatAt(r)
		forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] *= at(in) })
		dst := setFloat(out)
		for i, v := range acc {
			dst(i, v)
		}
	}
	return out
}

func (c *CPUBackend) extremum(x any, axes []int, keepDims bool, better func(candidate, current float64) bool) any {
	r := c.raw(x)
	if r.DType().Kind == core.Complex {
		panic(&core.TypeMismatchError{DTypes: []core.DType{r.DType()}})
	}
	axes = normalizeAxes(axes, len(r.Sizes()))
	outSizes := reducedSizes(r.Sizes(), axes, keepDims)
	out := core.MustRaw(outSizes, r.DType())
	acc := make([]float64, out.NumElements())
	seen := make([]bool, out.NumElements())
	at := floatAt(r)
	forEachReduce(r.Sizes(), axes, func(in, o int) {
		v := at(in)
		if !seen[o] || better(v, acc[o]) {
			acc[o] = v
			seen[o] = true
		}
	})
	switch r.DType().Kind {
	case core.Int:
		dst := setInt(out)
		for i, v := range acc {
			dst(i, int64(v))
		}
	case core.Bool:
		for i, v := range acc {
			out.Bools()[i] = v != 0
		}
	default:
		dst := setFloat(out)
		for i, v := range acc {
			dst(i, v)
		}
	}
	return out
}

func (c *CPUBackend) Max(x any, axes []int, keepDims bool) any {
	return c.extremum(x, axes, keepDims, func(candidate, current float64) bool { return candidate > current })
}

func (c *CPUBackend) Min(x any, axes []int, keepDims bool) any {
	return c.extremum(x, axes, keepDims, func(candidate, current float64) bool { return candidate < current })
}

func (c *CPUBackend) boolReduce(x any, axes []int, keepDims bool, init bool, fold func(acc, v bool) bool) any {
	r := c.raw(x)
	if r.DType() != core.BoolT {
		r = c.Cast(r, core.BoolT).(*core.Raw)
	}
	axes = normalizeAxes(axes, len(r.Sizes()))
	outSizes := reducedSizes(r.Sizes(), axes, keepDims)
	out := core.MustRaw(outSizes, core.BoolT)
	acc := out.Bools()
	for i := range acc {
		acc[i] = init
	}
	data := r.Bools()
	forEachReduce(r.Sizes(), axes, func(in, o int) { acc[o] = fold(acc[o], data[in]) })
	return out
}

func (c *CPUBackend) Any(x any, axes []int, keepDims bool) any {
	return c.boolReduce(x, axes, keepDims, false, func(acc, v bool) bool { return acc || v })
}

func (c *CPUBackend) All(x any, axes []int, keepDims bool) any {
	return c.boolReduce(x, axes, keepDims, true, func(acc, v bool) bool { return acc && v })
}

// Std computes the population standard deviation along the given axes.
func (c *CPUBackend) Std(x any, axes []int, keepDims bool) any {
	r := c.raw(x)
	if r.DType().Kind != core.Float {
		r = c.Cast(r, core.FloatType()).(*core.Raw)
	}
	axes = normalizeAxes(axes, len(r.Sizes()))
	count := reduceCount(r.Sizes(), axes)
	outSizes := reducedSizes(r.Sizes(), axes, keepDims)
	out := core.MustRaw(outSizes, r.DType())
	sums := make([]float64, out.NumElements())
	squares := make([]float64, out.NumElements())
	at := floatAt(r)
	forEachReduce(r.Sizes(), axes, func(in, o int) {
		v := at(in)
		sums[o] += v
		squares[o] += v * v
	})
	dst := setFloat(out)
	for i := range sums {
		mean := sums[i] / float64(count)
		variance := squares[i]/float64(count) - mean*mean
		if variance < 0 {
			variance = 0
		}
		dst(i, math.Sqrt(variance))
	}
	return out
}
