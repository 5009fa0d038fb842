package cpu

import (
	"math"
	"math/cmplx"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
	"github.com/simflux-ml/simflux/internal/parallel"
)

// par splits large elementwise loops across cores. Every kernel below
// writes disjoint output indices, which is what makes the split safe.
var par = parallel.DefaultConfig()

// binary applies a broadcast elementwise operation after auto-casting both
// operands to their combined dtype. The op is supplied per computation
// domain; a nil op for the resolved domain means the dtype combination is
// unsupported for this operation.
func (c *CPUBackend) binary(op string, a, b any,
	fop func(x, y float64) float64,
	iop func(x, y int64) int64,
	cop func(x, y complex128) complex128,
	bop func(x, y bool) bool) any {
	cast := backend.AutoCast(c, c.raw(a), c.raw(b))
	ra, rb := cast[0].(*core.Raw), cast[1].(*core.Raw)
	dt := ra.DType()
	outSizes := broadcastSizes(ra.Sizes(), rb.Sizes())
	out := core.MustRaw(outSizes, dt)
	switch dt.Kind {
	case core.Float:
		if fop == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{dt}})
		}
		atA, atB, dst := floatAt(ra), floatAt(rb), setFloat(out)
		forEachPair(ra.Sizes(), rb.Sizes(), outSizes, func(o, i, j int) {
			dst(o, fop(atA(i), atB(j)))
		})
	case core.Int:
		if iop == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{dt}})
		}
		atA, atB, dst := intAt(ra), intAt(rb), setInt(out)
		forEachPair(ra.Sizes(), rb.Sizes(), outSizes, func(o, i, j int) {
			dst(o, iop(atA(i), atB(j)))
		})
	case core.Complex:
		if cop == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{dt}})
		}
		atA, atB, dst := complexAt(ra), complexAt(rb), setComplex(out)
		forEachPair(ra.Sizes(), rb.Sizes(), outSizes, func(o, i, j int) {
			dst(o, cop(atA(i), atB(j)))
		})
	case core.Bool:
		if bop == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{dt}})
		}
		dataA, dataB, dataOut := ra.Bools(), rb.Bools(), out.Bools()
		forEachPair(ra.Sizes(), rb.Sizes(), outSizes, func(o, i, j int) {
			dataOut[o] = bop(dataA[i], dataB[j])
		})
	}
	return out
}

// compare applies a broadcast comparison after auto-casting, producing a
// bool array.
func (c *CPUBackend) compare(op string, a, b any,
	fcmp func(x, y float64) bool,
	ccmp func(x, y complex128) bool) any {
	cast := backend.AutoCast(c, c.raw(a), c.raw(b))
	ra, rb := cast[0].(*core.Raw), cast[1].(*core.Raw)
	outSizes := broadcastSizes(ra.Sizes(), rb.Sizes())
	out := core.MustRaw(outSizes, core.BoolT)
	dataOut := out.Bools()
	if ra.DType().Kind == core.Complex {
		if ccmp == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{ra.DType()}})
		}
		atA, atB := complexAt(ra), complexAt(rb)
		forEachPair(ra.Sizes(), rb.Sizes(), outSizes, func(o, i, j int) {
			dataOut[o] = ccmp(atA(i), atB(j))
		})
		return out
	}
	atA, atB := floatAt(ra), floatAt(rb)
	forEachPair(ra.Sizes(), rb.Sizes(), outSizes, func(o, i, j int) {
		dataOut[o] = fcmp(atA(i), atB(j))
	})
	return out
}

// unary applies an elementwise operation in the input's domain. With
// toFloat, bool and int inputs are first cast to the canonical float type.
func (c *CPUBackend) unary(op string, x any, toFloat bool,
	fop func(float64) float64,
	iop func(int64) int64,
	cop func(complex128) complex128) any {
	r := c.raw(x)
	if toFloat && (r.DType().Kind == core.Bool || r.DType().Kind == core.Int) {
		r = c.Cast(r, core.FloatType()).(*core.Raw)
	}
	out := core.MustRaw(r.Sizes(), r.DType())
	n := r.NumElements()
	switch r.DType().Kind {
	case core.Float:
		at, dst := floatAt(r), setFloat(out)
		parallel.For(n, par, func(i int) {
			dst(i, fop(at(i)))
		})
	case core.Int:
		if iop == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{r.DType()}})
		}
		at, dst := intAt(r), setInt(out)
		parallel.For(n, par, func(i int) {
			dst(i, iop(at(i)))
		})
	case core.Complex:
		if cop == nil {
			panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{r.DType()}})
		}
		at, dst := complexAt(r), setComplex(out)
		parallel.For(n, par, func(i int) {
			dst(i, cop(at(i)))
		})
	case core.Bool:
		panic(&core.TypeMismatchError{Op: op, DTypes: []core.DType{r.DType()}})
	}
	return out
}

func (c *CPUBackend) Add(a, b any) any {
	return c.binary("Add", a, b,
		func(x, y float64) float64 { return x + y },
		func(x, y int64) int64 { return x + y },
		func(x, y complex128) complex128 { return x + y },
		func(x, y bool) bool { return x || y })
}

func (c *CPUBackend) Sub(a, b any) any {
	return c.binary("Sub", a, b,
		func(x, y float64) float64 { return x - y },
		func(x, y int64) int64 { return x - y },
		func(x, y complex128) complex128 { return x - y },
		nil)
}

func (c *CPUBackend) Mul(a, b any) any {
	return c.binary("Mul", a, b,
		func(x, y float64) float64 { return x * y },
		func(x, y int64) int64 { return x * y },
		func(x, y complex128) complex128 { return x * y },
		func(x, y bool) bool { return x && y })
}

func (c *CPUBackend) Div(a, b any) any {
	return c.binary("Div", a, b,
		func(x, y float64) float64 { return x / y },
		func(x, y int64) int64 { return x / y },
		func(x, y complex128) complex128 { return x / y },
		nil)
}

func (c *CPUBackend) Pow(a, b any) any {
	return c.binary("Pow", a, b,
		math.Pow,
		func(x, y int64) int64 {
			result := int64(1)
			for ; y > 0; y-- {
				result *= x
			}
			return result
		},
		cmplx.Pow,
		nil)
}

func (c *CPUBackend) Mod(a, b any) any {
	return c.binary("Mod", a, b,
		math.Mod,
		func(x, y int64) int64 { return x % y },
		nil,
		nil)
}

func (c *CPUBackend) Maximum(a, b any) any {
	return c.binary("Maximum", a, b,
		math.Max,
		func(x, y int64) int64 {
			if x > y {
				return x
			}
			return y
		},
		nil,
		nil)
}

func (c *CPUBackend) Minimum(a, b any) any {
	return c.binary("Minimum", a, b,
		math.Min,
		func(x, y int64) int64 {
			if x < y {
				return x
			}
			return y
		},
		nil,
		nil)
}

func (c *CPUBackend) DivideNoNan(a, b any) any {
	return c.binary("DivideNoNan", a, b,
		func(x, y float64) float64 {
			if y == 0 {
				return 0
			}
			return x / y
		},
		func(x, y int64) int64 {
			if y == 0 {
				return 0
			}
			return x / y
		},
		func(x, y complex128) complex128 {
			if y == 0 {
				return 0
			}
			return x / y
		},
		nil)
}

func (c *CPUBackend) Equal(a, b any) any {
	return c.compare("Equal", a, b,
		func(x, y float64) bool { return x == y },
		func(x, y complex128) bool { return x == y })
}

func (c *CPUBackend) NotEqual(a, b any) any {
	return c.compare("NotEqual", a, b,
		func(x, y float64) bool { return x != y },
		func(x, y complex128) bool { return x != y })
}

func (c *CPUBackend) Greater(a, b any) any {
	return c.compare("Greater", a, b,
		func(x, y float64) bool { return x > y },
		nil)
}

func (c *CPUBackend) GreaterEqual(a, b any) any {
	return c.compare("GreaterEqual", a, b,
		func(x, y float64) bool { return x >= y },
		nil)
}

func (c *CPUBackend) Neg(x any) any {
	return c.unary("Neg", x, false,
		func(v float64) float64 { return -v },
		func(v int64) int64 { return -v },
		func(v complex128) complex128 { return -v })
}

func (c *CPUBackend) Abs(x any) any {
	return c.unary("Abs", x, false,
		math.Abs,
		func(v int64) int64 {
			if v < 0 {
				return -v
			}
			return v
		},
		nil)
}

func (c *CPUBackend) Sign(x any) any {
	return c.unary("Sign", x, false,
		func(v float64) float64 {
			switch {
			case v > 0:
				return 1
			case v < 0:
				return -1
			}
			return 0
		},
		func(v int64) int64 {
			switch {
			case v > 0:
				return 1
			case v < 0:
				return -1
			}
			return 0
		},
		nil)
}

func (c *CPUBackend) Round(x any) any {
	return c.unary("Round", x, false, math.Round, func(v int64) int64 { return v }, nil)
}

func (c *CPUBackend) Ceil(x any) any {
	return c.unary("Ceil", x, false, math.Ceil, func(v int64) int64 { return v }, nil)
}

func (c *CPUBackend) Floor(x any) any {
	return c.unary("Floor", x, false, math.Floor, func(v int64) int64 { return v }, nil)
}

func (c *CPUBackend) Sqrt(x any) any {
	return c.unary("Sqrt", x, true, math.Sqrt, nil, cmplx.Sqrt)
}

func (c *CPUBackend) Exp(x any) any {
	return c.unary("Exp", x, true, math.Exp, nil, cmplx.Exp)
}

func (c *CPUBackend) Log(x any) any {
	return c.unary("Log", x, true, math.Log, nil, cmplx.Log)
}

func (c *CPUBackend) Sin(x any) any {
	return c.unary("Sin", x, true, math.Sin, nil, cmplx.Sin)
}

func (c *CPUBackend) Cos(x any) any {
	return c.unary("Cos", x, true, math.Cos, nil, cmplx.Cos)
}

// IsFinite returns a bool array marking elements that are neither NaN nor
// infinite. Bool and int inputs are finite by construction.
func (c *CPUBackend) IsFinite(x any) any {
	r := c.raw(x)
	out := core.MustRaw(r.Sizes(), core.BoolT)
	dataOut := out.Bools()
	n := r.NumElements()
	switch r.DType().Kind {
	case core.Complex:
		at := complexAt(r)
		for i := 0; i < n; i++ {
			v := at(i)
			dataOut[i] = !cmplx.IsNaN(v) && !cmplx.IsInf(v)
		}
	case core.Float:
		at := floatAt(r)
		for i := 0; i < n; i++ {
			v := at(i)
			dataOut[i] = !math.IsNaN(v) && !math.IsInf(v, 0)
		}
	default:
		for i := 0; i < n; i++ {
			dataOut[i] = true
		}
	}
	return out
}
