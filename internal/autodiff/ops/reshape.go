package ops

import "github.com/simflux-ml/simflux/internal/backend"

// ReshapeOp records output = Reshape(x, sizes). The gradient is the output
// gradient reshaped back.
type ReshapeOp struct {
	input  any
	output any
}

// NewReshapeOp creates a ReshapeOp record.
func NewReshapeOp(x, output any) *ReshapeOp {
	return &ReshapeOp{input: x, output: output}
}

func (op *ReshapeOp) Backward(outputGrad any, b backend.Backend) []any {
	return []any{b.Reshape(outputGrad, b.SizesOf(op.input))}
}

func (op *ReshapeOp) Inputs() []any { return []any{op.input} }
func (op *ReshapeOp) Output() any   { return op.output }
