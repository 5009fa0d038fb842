package ops

import "github.com/simflux-ml/simflux/internal/backend"

// AddOp records output = a + b.
//
// d(a+b)/da = d(a+b)/db = 1, so the output gradient flows to both inputs,
// reduced along any broadcast axes.
type AddOp struct {
	inputs []any
	output any
}

// NewAddOp creates an AddOp record.
func NewAddOp(a, b, output any) *AddOp {
	return &AddOp{inputs: []any{a, b}, output: output}
}

func (op *AddOp) Backward(outputGrad any, b backend.Backend) []any {
	return []any{
		reduceBroadcast(outputGrad, b.SizesOf(op.inputs[0]), b),
		reduceBroadcast(outputGrad, b.SizesOf(op.inputs[1]), b),
	}
}

func (op *AddOp) Inputs() []any { return op.inputs }
func (op *AddOp) Output() any   { return op.output }
