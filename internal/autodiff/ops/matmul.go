package ops

import "github.com/simflux-ml/simflux/internal/backend"

// MatMulOp records output = A @ B for matrices.
//
// d(A@B)/dA = grad @ Bᵀ and d(A@B)/dB = Aᵀ @ grad.
type MatMulOp struct {
	inputs []any
	output any
}

// NewMatMulOp creates a MatMulOp record.
func NewMatMulOp(a, b, output any) *MatMulOp {
	return &MatMulOp{inputs: []any{a, b}, output: output}
}

func (op *MatMulOp) Backward(outputGrad any, b backend.Backend) []any {
	a, c := op.inputs[0], op.inputs[1]
	// A vector right operand was treated as a column; lift the gradient the
	// same way so the matrix algebra below holds.
	grad := outputGrad
	vectorB := len(b.SizesOf(c)) == 1
	if vectorB {
		grad = b.ExpandDims(grad, -1)
	}
	ct := c
	if vectorB {
		ct = b.ExpandDims(c, -1)
	}
	gradA := b.MatMul(grad, transposed(b, ct))
	gradB := b.MatMul(transposed(b, a), grad)
	if vectorB {
		gradB = b.Reshape(gradB, b.SizesOf(c))
	}
	return []any{gradA, gradB}
}

func (op *MatMulOp) Inputs() []any { return op.inputs }
func (op *MatMulOp) Output() any   { return op.output }

// transposed swaps the last two axes.
func transposed(b backend.Backend, x any) any {
	rank := len(b.SizesOf(x))
	perm := make([]int, rank)
	for i := range perm {
		perm[i] = i
	}
	perm[rank-2], perm[rank-1] = perm[rank-1], perm[rank-2]
	return b.Transpose(x, perm)
}
