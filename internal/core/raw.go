package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// rawBuffer is a reference-counted shared buffer for copy-on-write semantics.
type rawBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

func newRawBuffer(size int) *rawBuffer {
	buf := &rawBuffer{data: make([]byte, size)}
	buf.refCount.Store(1)
	return buf
}

func (rb *rawBuffer) addRef() {
	rb.refCount.Add(1)
}

func (rb *rawBuffer) release() {
	if rb.refCount.Add(-1) == 0 {
		rb.mu.Lock()
		defer rb.mu.Unlock()
		rb.data = nil
	}
}

func (rb *rawBuffer) isUnique() bool {
	return rb.refCount.Load() == 1
}

// Raw is the built-in engine's native array: a flat, dtype-tagged buffer with
// row-major strides. Buffers are reference-counted so logical tensors never
// alias each other implicitly; sharing happens only through copy-on-write.
type Raw struct {
	buffer *rawBuffer
	sizes  []int
	stride []int
	dtype  DType
	offset int
}

// ComputeStrides calculates row-major strides for the given sizes.
func ComputeStrides(sizes []int) []int {
	strides := make([]int, len(sizes))
	if len(sizes) == 0 {
		return strides
	}
	strides[len(sizes)-1] = 1
	for i := len(sizes) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * sizes[i+1]
	}
	return strides
}

// NewRaw allocates a zero-initialized native array.
func NewRaw(sizes []int, dtype DType) (*Raw, error) {
	n := 1
	for i, size := range sizes {
		if size < 0 {
			return nil, fmt.Errorf("invalid size at axis %d: %d (must be >= 0)", i, size)
		}
		n *= size
	}
	return &Raw{
		buffer: newRawBuffer(n * dtype.SizeBytes()),
		sizes:  append([]int(nil), sizes...),
		stride: ComputeStrides(sizes),
		dtype:  dtype,
	}, nil
}

// MustRaw is NewRaw panicking on error.
func MustRaw(sizes []int, dtype DType) *Raw {
	r, err := NewRaw(sizes, dtype)
	if err != nil {
		panic(err)
	}
	return r
}

// Sizes returns the dimension sizes.
func (r *Raw) Sizes() []int {
	return r.sizes
}

// Strides returns the memory strides.
func (r *Raw) Strides() []int {
	return r.stride
}

// DType returns the element type.
func (r *Raw) DType() DType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *Raw) NumElements() int {
	n := 1
	for _, size := range r.sizes {
		n *= size
	}
	return n
}

// ByteSize returns the total memory size in bytes.
func (r *Raw) ByteSize() int {
	return r.NumElements() * r.dtype.SizeBytes()
}

// Data returns the raw byte slice.
func (r *Raw) Data() []byte {
	return r.buffer.data[r.offset:]
}

func (r *Raw) typedSlice(want DType) unsafe.Pointer {
	if r.dtype != want {
		panic(fmt.Sprintf("native dtype is %s, not %s", r.dtype, want))
	}
	data := r.buffer.data[r.offset:]
	if len(data) == 0 {
		// Volume-0 arrays (an all-false mask, say) carry no storage.
		return nil
	}
	return unsafe.Pointer(&data[0])
}

// Float32s interprets the data as []float32. Panics on dtype mismatch.
func (r *Raw) Float32s() []float32 {
	return unsafe.Slice((*float32)(r.typedSlice(Float32T)), r.NumElements())
}

// Float64s interprets the data as []float64. Panics on dtype mismatch.
func (r *Raw) Float64s() []float64 {
	return unsafe.Slice((*float64)(r.typedSlice(Float64T)), r.NumElements())
}

// Int32s interprets the data as []int32. Panics on dtype mismatch.
func (r *Raw) Int32s() []int32 {
	return unsafe.Slice((*int32)(r.typedSlice(Int32T)), r.NumElements())
}

// Int64s interprets the data as []int64. Panics on dtype mismatch.
func (r *Raw) Int64s() []int64 {
	return unsafe.Slice((*int64)(r.typedSlice(Int64T)), r.NumElements())
}

// Complex64s interprets the data as []complex64. Panics on dtype mismatch.
func (r *Raw) Complex64s() []complex64 {
	return unsafe.Slice((*complex64)(r.typedSlice(Complex64T)), r.NumElements())
}

// Complex128s interprets the data as []complex128. Panics on dtype mismatch.
func (r *Raw) Complex128s() []complex128 {
	return unsafe.Slice((*complex128)(r.typedSlice(Complex128T)), r.NumElements())
}

// Bools interprets the data as []bool. Panics on dtype mismatch.
func (r *Raw) Bools() []bool {
	return unsafe.Slice((*bool)(r.typedSlice(BoolT)), r.NumElements())
}

// Clone creates a shallow copy sharing the buffer under reference counting.
// The buffer is only duplicated when a writer needs exclusive access.
func (r *Raw) Clone() *Raw {
	r.buffer.addRef()
	return &Raw{
		buffer: r.buffer,
		sizes:  append([]int(nil), r.sizes...),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		offset: r.offset,
	}
}

// Release decrements the reference count and deallocates at zero.
func (r *Raw) Release() {
	r.buffer.release()
}

// IsUnique reports whether this is the only reference to the buffer, in
// which case engines may modify it in place.
func (r *Raw) IsUnique() bool {
	return r.buffer.isUnique()
}

// ForceNonUnique temporarily raises the refcount so in-place optimizations
// are disabled. The returned func MUST be called to restore it (use defer).
// The autodiff decorator uses this to keep recorded inputs intact.
func (r *Raw) ForceNonUnique() func() {
	r.buffer.addRef()
	return r.buffer.release
}

// String returns a short description like "float32[2 3]".
func (r *Raw) String() string {
	return fmt.Sprintf("%s%v", r.dtype, r.sizes)
}
