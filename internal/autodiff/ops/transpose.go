package ops

import "github.com/simflux-ml/simflux/internal/backend"

// TransposeOp records output = Transpose(x, perm). The gradient applies the
// inverse permutation.
type TransposeOp struct {
	input  any
	output any
	perm   []int
}

// NewTransposeOp creates a TransposeOp record.
func NewTransposeOp(x, output any, perm []int) *TransposeOp {
	return &TransposeOp{input: x, output: output, perm: append([]int(nil), perm...)}
}

func (op *TransposeOp) Backward(outputGrad any, b backend.Backend) []any {
	inverse := make([]int, len(op.perm))
	for i, p := range op.perm {
		inverse[p] = i
	}
	return []any{b.Transpose(outputGrad, inverse)}
}

func (op *TransposeOp) Inputs() []any { return []any{op.input} }
func (op *TransposeOp) Output() any   { return op.output }
