package ops

import "github.com/simflux-ml/simflux/internal/backend"

// MulOp records output = a * b.
//
// d(a*b)/da = b and d(a*b)/db = a.
type MulOp struct {
	inputs []any
	output any
}

// NewMulOp creates a MulOp record.
func NewMulOp(a, b, output any) *MulOp {
	return &MulOp{inputs: []any{a, b}, output: output}
}

func (op *MulOp) Backward(outputGrad any, b backend.Backend) []any {
	a, c := op.inputs[0], op.inputs[1]
	return []any{
		reduceBroadcast(b.Mul(outputGrad, c), b.SizesOf(a), b),
		reduceBroadcast(b.Mul(outputGrad, a), b.SizesOf(c), b),
	}
}

func (op *MulOp) Inputs() []any { return op.inputs }
func (op *MulOp) Output() any   { return op.output }
