//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/simflux-ml/simflux/internal/backend"
)

// runBinaryOp executes an elementwise binary shader over two equal-size GPU
// tensors.
func (b *WebGPUBackend) runBinaryOp(x, y *GPUTensor, shaderName, shaderCode string) (*GPUTensor, error) {
	if !sameSizes(x.sizes, y.sizes) {
		return nil, fmt.Errorf("webgpu: size mismatch: %v vs %v", x.sizes, y.sizes)
	}
	numElements := x.NumElements()
	resultSize := uint64(numElements * 4)

	shader := b.compileShader(shaderName, shaderCode)
	pipeline := b.getOrCreatePipeline(shaderName, shader)

	bufferResult := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  resultSize,
	})

	// Uniform params: element count, 16-byte aligned.
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(numElements))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, x.buffer, 0, resultSize),
		wgpu.BufferBindingEntry(1, y.buffer, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	workgroups := uint32((numElements + workgroupSize - 1) / workgroupSize)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()
	b.queue.Submit(encoder.Finish(nil))

	return &GPUTensor{buffer: bufferResult, sizes: append([]int(nil), x.sizes...)}, nil
}

// runUnaryOp executes an elementwise unary shader.
func (b *WebGPUBackend) runUnaryOp(x *GPUTensor, shaderName, shaderCode string) (*GPUTensor, error) {
	numElements := x.NumElements()
	resultSize := uint64(numElements * 4)

	shader := b.compileShader(shaderName, shaderCode)
	pipeline := b.getOrCreatePipeline(shaderName, shader)

	bufferResult := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  resultSize,
	})

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(numElements))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, x.buffer, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	workgroups := uint32((numElements + workgroupSize - 1) / workgroupSize)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()
	b.queue.Submit(encoder.Finish(nil))

	return &GPUTensor{buffer: bufferResult, sizes: append([]int(nil), x.sizes...)}, nil
}

// Add performs element-wise addition on GPU.
func (b *WebGPUBackend) Add(x, y any) any {
	result, err := b.runBinaryOp(b.gpu(x), b.gpu(y), "add", addShader)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return result
}

// Sub performs element-wise subtraction on GPU.
func (b *WebGPUBackend) Sub(x, y any) any {
	result, err := b.runBinaryOp(b.gpu(x), b.gpu(y), "sub", subShader)
	if err != nil {
		panic("webgpu: Sub: " + err.Error())
	}
	return result
}

// Mul performs element-wise multiplication on GPU.
func (b *WebGPUBackend) Mul(x, y any) any {
	result, err := b.runBinaryOp(b.gpu(x), b.gpu(y), "mul", mulShader)
	if err != nil {
		panic("webgpu: Mul: " + err.Error())
	}
	return result
}

// Div performs element-wise division on GPU.
func (b *WebGPUBackend) Div(x, y any) any {
	result, err := b.runBinaryOp(b.gpu(x), b.gpu(y), "div", divShader)
	if err != nil {
		panic("webgpu: Div: " + err.Error())
	}
	return result
}

// Neg performs element-wise negation on GPU.
func (b *WebGPUBackend) Neg(x any) any {
	result, err := b.runUnaryOp(b.gpu(x), "neg", negShader)
	if err != nil {
		panic("webgpu: Neg: " + err.Error())
	}
	return result
}

// Sqrt performs element-wise square root on GPU.
func (b *WebGPUBackend) Sqrt(x any) any {
	result, err := b.runUnaryOp(b.gpu(x), "sqrt", sqrtShader)
	if err != nil {
		panic("webgpu: Sqrt: " + err.Error())
	}
	return result
}

// Sum reduces over all axes. Per-workgroup partial sums are computed on the
// GPU; the host adds the partials. Partial-axis reductions are not
// supported on this engine.
func (b *WebGPUBackend) Sum(x any, axes []int, keepDims bool) any {
	t := b.gpu(x)
	if len(axes) != 0 && len(axes) != len(t.sizes) {
		backend.NotSupported("Sum", "webgpu")
	}
	numElements := t.NumElements()
	workgroups := (numElements + workgroupSize - 1) / workgroupSize

	shader := b.compileShader("sum", sumShader)
	pipeline := b.getOrCreatePipeline("sum", shader)

	partialSize := uint64(workgroups * 4)
	bufferPartials := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:  partialSize,
	})
	defer bufferPartials.Release()

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(numElements))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, t.buffer, 0, uint64(numElements*4)),
		wgpu.BufferBindingEntry(1, bufferPartials, 0, partialSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(uint32(workgroups), 1, 1)
	computePass.End()
	b.queue.Submit(encoder.Finish(nil))

	data, err := b.readBuffer(bufferPartials, partialSize)
	if err != nil {
		panic("webgpu: Sum: " + err.Error())
	}
	partials := unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(data))), workgroups)
	var total float64
	for _, v := range partials {
		total += float64(v)
	}

	var sizes []int
	if keepDims {
		sizes = make([]int, len(t.sizes))
		for i := range sizes {
			sizes[i] = 1
		}
	}
	return b.FromFloat64s([]float64{total}, sizes)
}

// Reshape reinterprets the buffer under new sizes of equal volume. The data
// stays on the device.
func (b *WebGPUBackend) Reshape(x any, sizes []int) any {
	t := b.gpu(x)
	n := 1
	for _, s := range sizes {
		n *= s
	}
	if n != t.NumElements() {
		panic(fmt.Sprintf("webgpu: cannot reshape %v into %v", t.sizes, sizes))
	}
	dup := b.Copy(t).(*GPUTensor)
	dup.sizes = append([]int(nil), sizes...)
	return dup
}

func sameSizes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
