package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
	"github.com/simflux-ml/simflux/internal/parallel"
)

// MatMul multiplies matrices over the last two axes. Accepted forms are
// matrix-matrix, matrix-vector, and batched matrices with matching leading
// axes. Float inputs go through gonum; int and complex inputs use direct
// loops in their own domain.
func (c *CPUBackend) MatMul(a, b any) any {
	cast := backend.AutoCast(c, c.raw(a), c.raw(b))
	ra, rb := cast[0].(*core.Raw), cast[1].(*core.Raw)
	dt := ra.DType()

	// Matrix-vector: promote the vector to a column, drop the axis after.
	if len(ra.Sizes()) >= 2 && len(rb.Sizes()) == 1 {
		col := c.Reshape(rb, []int{rb.Sizes()[0], 1})
		prod := c.MatMul(ra, col).(*core.Raw)
		return c.Reshape(prod, prod.Sizes()[:len(prod.Sizes())-1])
	}
	if len(ra.Sizes()) < 2 || len(rb.Sizes()) < 2 {
		panic(&core.DimensionError{Cause: fmt.Sprintf("matmul needs matrices, got sizes %v and %v", ra.Sizes(), rb.Sizes())})
	}

	m := ra.Sizes()[len(ra.Sizes())-2]
	k := ra.Sizes()[len(ra.Sizes())-1]
	k2 := rb.Sizes()[len(rb.Sizes())-2]
	n := rb.Sizes()[len(rb.Sizes())-1]
	if k != k2 {
		panic(&core.DimensionError{Cause: fmt.Sprintf("matmul inner sizes differ: %v and %v", ra.Sizes(), rb.Sizes())})
	}
	batchA := volume(ra.Sizes()[:len(ra.Sizes())-2])
	batchB := volume(rb.Sizes()[:len(rb.Sizes())-2])
	batch := batchA
	if batchB > batch {
		batch = batchB
	}
	if batchA != batchB && batchA != 1 && batchB != 1 {
		panic(&core.DimensionError{Cause: fmt.Sprintf("matmul batch sizes differ: %v and %v", ra.Sizes(), rb.Sizes())})
	}

	outSizes := make([]int, 0, len(ra.Sizes()))
	if batchA >= batchB {
		outSizes = append(outSizes, ra.Sizes()[:len(ra.Sizes())-2]...)
	} else {
		outSizes = append(outSizes, rb.Sizes()[:len(rb.Sizes())-2]...)
	}
	outSizes = append(outSizes, m, n)

	if dt.Kind == core.Complex {
		return c.matMulComplex(ra, rb, outSizes, batch, batchA, batchB, m, k, n)
	}
	if dt.Kind == core.Int {
		return c.matMulInt(ra, rb, outSizes, batch, batchA, batchB, m, k, n)
	}

	dataA := c.Float64s(ra)
	dataB := c.Float64s(rb)
	result := make([]float64, batch*m*n)
	parallel.ForBatches(batch, par, func(bi int) {
		ma := mat.NewDense(m, k, dataA[(bi%batchA)*m*k:(bi%batchA+1)*m*k])
		mb := mat.NewDense(k, n, dataB[(bi%batchB)*k*n:(bi%batchB+1)*k*n])
		var prod mat.Dense
		prod.Mul(ma, mb)
		copy(result[bi*m*n:(bi+1)*m*n], prod.RawMatrix().Data)
	})
	if dt.Kind == core.Bool {
		return c.Cast(c.FromFloat64s(result, outSizes), dt)
	}
	// Write straight into a buffer of the operand dtype; rebuilding through
	// the canonical float type would truncate float64 products at 32-bit
	// precision.
	out := core.MustRaw(outSizes, dt)
	dst := setFloat(out)
	for i, v := range result {
		dst(i, v)
	}
	return out
}

func (c *CPUBackend) matMulInt(ra, rb *core.Raw, outSizes []int, batch, batchA, batchB, m, k, n int) any {
	out := core.MustRaw(outSizes, ra.DType())
	atA, atB, dst := intAt(ra), intAt(rb), setInt(out)
	parallel.ForBatches(batch, par, func(bi int) {
		offA := (bi % batchA) * m * k
		offB := (bi % batchB) * k * n
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				var sum int64
				for p := 0; p < k; p++ {
					sum += atA(offA+i*k+p) * atB(offB+p*n+j)
				}
				dst(bi*m*n+i*n+j, sum)
			}
		}
	})
	return out
}

func (c *CPUBackend) matMulComplex(ra, rb *core.Raw, outSizes []int, batch, batchA, batchB, m, k, n int) any {
	out := core.MustRaw(outSizes, ra.DType())
	atA, atB, dst := complexAt(ra), complexAt(rb), setComplex(out)
	for bi := 0; bi < batch; bi++ {
		offA := (bi % batchA) * m * k
		offB := (bi % batchB) * k * n
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				var sum complex128
				for p := 0; p < k; p++ {
					sum += atA(offA+i*k+p) * atB(offB+p*n+j)
				}
				dst(bi*m*n+i*n+j, sum)
			}
		}
	}
	return out
}

// Dot is the inner product of two equal-length flattened arrays, as a
// scalar native.
func (c *CPUBackend) Dot(a, b any) any {
	cast := backend.AutoCast(c, c.raw(a), c.raw(b))
	ra, rb := cast[0].(*core.Raw), cast[1].(*core.Raw)
	if ra.NumElements() != rb.NumElements() {
		panic(&core.DimensionError{Cause: fmt.Sprintf("dot operands differ in length: %d and %d", ra.NumElements(), rb.NumElements())})
	}
	dt := ra.DType()
	if dt.Kind == core.Complex {
		atA, atB := complexAt(ra), complexAt(rb)
		var sum complex128
		for i := 0; i < ra.NumElements(); i++ {
			sum += atA(i) * atB(i)
		}
		out := core.MustRaw(nil, dt)
		setComplex(out)(0, sum)
		return out
	}
	sum := mat.Dot(mat.NewVecDense(ra.NumElements(), c.Float64s(ra)), mat.NewVecDense(rb.NumElements(), c.Float64s(rb)))
	out := core.MustRaw(nil, dt)
	switch dt.Kind {
	case core.Int:
		setInt(out)(0, int64(sum))
	case core.Bool:
		out.Bools()[0] = sum != 0
	default:
		setFloat(out)(0, sum)
	}
	return out
}

func volume(sizes []int) int {
	n := 1
	for _, s := range sizes {
		n *= s
	}
	return n
}
