// Package cpu implements the built-in eager execution engine on plain Go
// memory. It is the reference implementation of the backend contract: every
// abstract operation is supported, values are always available, and results
// are computed synchronously.
package cpu

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
)

// CPUBackend executes operations eagerly on *core.Raw arrays.
type CPUBackend struct {
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a CPU backend without registering it.
func New() *CPUBackend {
	return &CPUBackend{rng: rand.New(rand.NewSource(1))}
}

var (
	defaultOnce sync.Once
	defaultCPU  *CPUBackend
)

// Default returns the shared CPU backend, registering it as the built-in
// engine on first use.
func Default() *CPUBackend {
	defaultOnce.Do(func() {
		defaultCPU = New()
		backend.Register(defaultCPU)
	})
	return defaultCPU
}

// Compile-time check that the engine satisfies the full contract.
var _ backend.Backend = (*CPUBackend)(nil)

// Name returns the engine name.
func (c *CPUBackend) Name() string {
	return "cpu"
}

// IsNative reports whether x is accepted by this engine. Only *core.Raw is
// a true native; Go numbers and slices are accepted as convertible tensors
// unless onlyNative is set.
func (c *CPUBackend) IsNative(x any, onlyNative bool) bool {
	if _, ok := x.(*core.Raw); ok {
		return true
	}
	if onlyNative {
		return false
	}
	switch x.(type) {
	case bool, int, int32, int64, float32, float64, complex64, complex128,
		[]bool, []int, []int32, []int64, []float32, []float64, []complex64, []complex128:
		return true
	}
	return false
}

// AsNative converts tensor-like values to *core.Raw. Natives pass through
// unmodified; Go numbers become scalars, slices become vectors.
func (c *CPUBackend) AsNative(x any) (any, error) {
	switch v := x.(type) {
	case *core.Raw:
		return v, nil
	case bool:
		r := core.MustRaw(nil, core.BoolT)
		r.Bools()[0] = v
		return r, nil
	case int:
		r := core.MustRaw(nil, core.Int64T)
		r.Int64s()[0] = int64(v)
		return r, nil
	case int32:
		r := core.MustRaw(nil, core.Int32T)
		r.Int32s()[0] = v
		return r, nil
	case int64:
		r := core.MustRaw(nil, core.Int64T)
		r.Int64s()[0] = v
		return r, nil
	case float32:
		r := core.MustRaw(nil, core.Float32T)
		r.Float32s()[0] = v
		return r, nil
	case float64:
		r := core.MustRaw(nil, core.Float64T)
		r.Float64s()[0] = v
		return r, nil
	case complex64:
		r := core.MustRaw(nil, core.Complex64T)
		r.Complex64s()[0] = v
		return r, nil
	case complex128:
		r := core.MustRaw(nil, core.Complex128T)
		r.Complex128s()[0] = v
		return r, nil
	case []float64:
		return c.FromFloat64s(v, []int{len(v)}), nil
	case []float32:
		r := core.MustRaw([]int{len(v)}, core.Float32T)
		copy(r.Float32s(), v)
		return r, nil
	case []int:
		r := core.MustRaw([]int{len(v)}, core.Int64T)
		dst := r.Int64s()
		for i, n := range v {
			dst[i] = int64(n)
		}
		return r, nil
	case []int32:
		r := core.MustRaw([]int{len(v)}, core.Int32T)
		copy(r.Int32s(), v)
		return r, nil
	case []int64:
		r := core.MustRaw([]int{len(v)}, core.Int64T)
		copy(r.Int64s(), v)
		return r, nil
	case []bool:
		r := core.MustRaw([]int{len(v)}, core.BoolT)
		copy(r.Bools(), v)
		return r, nil
	case []complex64:
		r := core.MustRaw([]int{len(v)}, core.Complex64T)
		copy(r.Complex64s(), v)
		return r, nil
	case []complex128:
		r := core.MustRaw([]int{len(v)}, core.Complex128T)
		copy(r.Complex128s(), v)
		return r, nil
	}
	return nil, fmt.Errorf("cpu: cannot convert %T to a native array", x)
}

// Available always reports true: this engine is eager.
func (c *CPUBackend) Available(x any) bool {
	return true
}

// Float64s returns the flattened values of a native as float64.
func (c *CPUBackend) Float64s(x any) []float64 {
	r := c.raw(x)
	out := make([]float64, r.NumElements())
	at := floatAt(r)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

// DTypeOf returns the element type of a native.
func (c *CPUBackend) DTypeOf(x any) core.DType {
	return c.raw(x).DType()
}

// SizesOf returns the dimension sizes of a native.
func (c *CPUBackend) SizesOf(x any) []int {
	return c.raw(x).Sizes()
}

// Copy returns a deep copy of a native.
func (c *CPUBackend) Copy(x any) any {
	r := c.raw(x)
	out := core.MustRaw(r.Sizes(), r.DType())
	copy(out.Data(), r.Data())
	return out
}

// Cast converts a native to the given dtype.
func (c *CPUBackend) Cast(x any, to core.DType) any {
	r := c.raw(x)
	if r.DType() == to {
		return r
	}
	out := core.MustRaw(r.Sizes(), to)
	n := r.NumElements()
	switch {
	case to.Kind == core.Complex:
		src := complexAt(r)
		dst := setComplex(out)
		for i := 0; i < n; i++ {
			dst(i, src(i))
		}
	case to.Kind == core.Bool:
		src := floatAt(r)
		for i := 0; i < n; i++ {
			out.Bools()[i] = src(i) != 0
		}
	case to.Kind == core.Int:
		src := floatAt(r)
		dst := setInt(out)
		for i := 0; i < n; i++ {
			dst(i, int64(src(i)))
		}
	default:
		src := floatAt(r)
		dst := setFloat(out)
		for i := 0; i < n; i++ {
			dst(i, src(i))
		}
	}
	return out
}

// Zeros allocates a zero-filled native.
func (c *CPUBackend) Zeros(sizes []int, dt core.DType) any {
	return core.MustRaw(sizes, dt)
}

// Ones allocates a one-filled native.
func (c *CPUBackend) Ones(sizes []int, dt core.DType) any {
	return c.Full(sizes, 1, dt)
}

// Full allocates a native filled with a constant.
func (c *CPUBackend) Full(sizes []int, value float64, dt core.DType) any {
	r := core.MustRaw(sizes, dt)
	n := r.NumElements()
	switch dt.Kind {
	case core.Complex:
		dst := setComplex(r)
		for i := 0; i < n; i++ {
			dst(i, complex(value, 0))
		}
	case core.Bool:
		for i := 0; i < n; i++ {
			r.Bools()[i] = value != 0
		}
	case core.Int:
		dst := setInt(r)
		for i := 0; i < n; i++ {
			dst(i, int64(value))
		}
	default:
		dst := setFloat(r)
		for i := 0; i < n; i++ {
			dst(i, value)
		}
	}
	return r
}

// FromFloat64s builds a native of the canonical float type from values.
func (c *CPUBackend) FromFloat64s(data []float64, sizes []int) any {
	r := core.MustRaw(sizes, core.FloatType())
	if r.NumElements() != len(data) {
		panic(fmt.Sprintf("cpu: sizes %v require %d elements, got %d", sizes, r.NumElements(), len(data)))
	}
	dst := setFloat(r)
	for i, v := range data {
		dst(i, v)
	}
	return r
}

// Range builds a 1-D native with values from start to limit (exclusive).
func (c *CPUBackend) Range(start, limit, delta float64, dt core.DType) any {
	var values []float64
	if delta > 0 {
		for v := start; v < limit; v += delta {
			values = append(values, v)
		}
	} else if delta < 0 {
		for v := start; v > limit; v += delta {
			values = append(values, v)
		}
	}
	return c.Cast(c.FromFloat64s(values, []int{len(values)}), dt)
}

// RandomUniform samples U(0, 1) values at the canonical float type.
func (c *CPUBackend) RandomUniform(sizes []int) any {
	r := core.MustRaw(sizes, core.FloatType())
	dst := setFloat(r)
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	for i := 0; i < r.NumElements(); i++ {
		dst(i, c.rng.Float64())
	}
	return r
}

// RandomNormal samples N(0, 1) values at the canonical float type.
func (c *CPUBackend) RandomNormal(sizes []int) any {
	r := core.MustRaw(sizes, core.FloatType())
	dst := setFloat(r)
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	for i := 0; i < r.NumElements(); i++ {
		dst(i, c.rng.NormFloat64())
	}
	return r
}

// raw asserts or converts x to the native array type.
func (c *CPUBackend) raw(x any) *core.Raw {
	if r, ok := x.(*core.Raw); ok {
		return r
	}
	native, err := c.AsNative(x)
	if err != nil {
		panic(err)
	}
	return native.(*core.Raw)
}
