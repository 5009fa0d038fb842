//go:build windows

// Package webgpu implements a GPU execution engine on WebGPU compute
// shaders. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU
// bindings. The engine supports a float32 elementwise subset; everything
// else reports NotSupported at call time so callers can fall back to the
// CPU engine.
package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
)

// GPUTensor is the engine's native value: a storage buffer on the device
// plus its sizes. Elements are always float32.
type GPUTensor struct {
	buffer *wgpu.Buffer
	sizes  []int
}

// Sizes returns the dimension sizes.
func (t *GPUTensor) Sizes() []int { return t.sizes }

// NumElements returns the element count.
func (t *GPUTensor) NumElements() int {
	n := 1
	for _, s := range t.sizes {
		n *= s
	}
	return n
}

// Release frees the device buffer.
func (t *GPUTensor) Release() {
	if t.buffer != nil {
		t.buffer.Release()
		t.buffer = nil
	}
}

// WebGPUBackend executes the supported subset on the GPU.
type WebGPUBackend struct {
	backend.Unsupported

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	mu        sync.RWMutex
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
}

// New initializes the WebGPU engine. Returns an error if no adapter or
// device is available.
func New() (b *WebGPUBackend, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &WebGPUBackend{
		Unsupported: backend.Unsupported{BackendName: "webgpu"},
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
	}, nil
}

var registerOnce sync.Once

// Register initializes the engine and adds it to the registry. Machines
// without a usable GPU return the initialization error and register
// nothing.
func Register() (*WebGPUBackend, error) {
	var (
		b       *WebGPUBackend
		initErr error
	)
	registerOnce.Do(func() {
		b, initErr = New()
		if initErr == nil {
			backend.Register(b)
		}
	})
	return b, initErr
}

var _ backend.Backend = (*WebGPUBackend)(nil)

// Name returns the engine name.
func (b *WebGPUBackend) Name() string { return "webgpu" }

// IsNative accepts only this engine's GPU tensors.
func (b *WebGPUBackend) IsNative(x any, onlyNative bool) bool {
	_, ok := x.(*GPUTensor)
	return ok
}

// AsNative uploads float32 CPU arrays to the device; GPU tensors pass
// through.
func (b *WebGPUBackend) AsNative(x any) (any, error) {
	switch v := x.(type) {
	case *GPUTensor:
		return v, nil
	case *core.Raw:
		if v.DType() != core.Float32T {
			return nil, fmt.Errorf("webgpu: only float32 is supported, got %s", v.DType())
		}
		return b.upload(v.Data(), v.Sizes()), nil
	case []float32:
		raw := core.MustRaw([]int{len(v)}, core.Float32T)
		copy(raw.Float32s(), v)
		return b.upload(raw.Data(), raw.Sizes()), nil
	}
	return nil, fmt.Errorf("webgpu: cannot convert %T to a GPU tensor", x)
}

// Available reports true: results are materialized on the device when the
// operation returns.
func (b *WebGPUBackend) Available(x any) bool { return true }

// DTypeOf returns float32, the only element type this engine holds.
func (b *WebGPUBackend) DTypeOf(x any) core.DType { return core.Float32T }

// SizesOf returns the dimension sizes of a GPU tensor.
func (b *WebGPUBackend) SizesOf(x any) []int { return b.gpu(x).sizes }

// Float64s reads a GPU tensor back to host memory.
func (b *WebGPUBackend) Float64s(x any) []float64 {
	t := b.gpu(x)
	data, err := b.readBuffer(t.buffer, uint64(t.NumElements()*4))
	if err != nil {
		panic("webgpu: Float64s: " + err.Error())
	}
	values := unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(data))), t.NumElements())
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Copy duplicates a GPU tensor with a buffer-to-buffer copy.
func (b *WebGPUBackend) Copy(x any) any {
	t := b.gpu(x)
	size := uint64(t.NumElements() * 4)
	dst := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(t.buffer, 0, dst, 0, size)
	b.queue.Submit(encoder.Finish(nil))
	return &GPUTensor{buffer: dst, sizes: append([]int(nil), t.sizes...)}
}

// Zeros allocates a zero-filled GPU tensor. Only the float32 dtype is
// accepted.
func (b *WebGPUBackend) Zeros(sizes []int, dt core.DType) any {
	return b.Full(sizes, 0, dt)
}

// Ones allocates a one-filled GPU tensor.
func (b *WebGPUBackend) Ones(sizes []int, dt core.DType) any {
	return b.Full(sizes, 1, dt)
}

// Full allocates a constant-filled GPU tensor.
func (b *WebGPUBackend) Full(sizes []int, value float64, dt core.DType) any {
	if dt != core.Float32T {
		backend.NotSupported("Full", "webgpu")
	}
	raw := core.MustRaw(sizes, core.Float32T)
	data := raw.Float32s()
	for i := range data {
		data[i] = float32(value)
	}
	return b.upload(raw.Data(), sizes)
}

// FromFloat64s uploads values as a float32 GPU tensor.
func (b *WebGPUBackend) FromFloat64s(data []float64, sizes []int) any {
	raw := core.MustRaw(sizes, core.Float32T)
	dst := raw.Float32s()
	if len(dst) != len(data) {
		panic(fmt.Sprintf("webgpu: sizes %v require %d elements, got %d", sizes, len(dst), len(data)))
	}
	for i, v := range data {
		dst[i] = float32(v)
	}
	return b.upload(raw.Data(), sizes)
}

func (b *WebGPUBackend) gpu(x any) *GPUTensor {
	native, err := b.AsNative(x)
	if err != nil {
		panic(err)
	}
	return native.(*GPUTensor)
}

// upload creates a storage buffer initialized with data.
func (b *WebGPUBackend) upload(data []byte, sizes []int) *GPUTensor {
	buffer := b.createBuffer(data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	return &GPUTensor{buffer: buffer, sizes: append([]int(nil), sizes...)}
}

// compileShader compiles WGSL shader code, caching by name.
func (b *WebGPUBackend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()
	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates one with
// auto layout.
func (b *WebGPUBackend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()
	return pipeline
}

// createBuffer creates a GPU buffer and uploads initial data through a
// mapped-at-creation range.
func (b *WebGPUBackend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := buffer.GetMappedRange(0, size)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()
	return buffer
}

// createUniformBuffer creates a uniform buffer padded to 16-byte alignment.
func (b *WebGPUBackend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()
	return buffer
}

// readBuffer copies a storage buffer to host memory via a staging buffer,
// since storage buffers cannot be mapped directly.
func (b *WebGPUBackend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	stagingBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer stagingBuffer.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	stagingBuffer.Unmap()
	return result, nil
}
