package ops

import "github.com/simflux-ml/simflux/internal/backend"

// SubOp records output = a - b. The gradient of b is negated.
type SubOp struct {
	inputs []any
	output any
}

// NewSubOp creates a SubOp record.
func NewSubOp(a, b, output any) *SubOp {
	return &SubOp{inputs: []any{a, b}, output: output}
}

func (op *SubOp) Backward(outputGrad any, b backend.Backend) []any {
	return []any{
		reduceBroadcast(outputGrad, b.SizesOf(op.inputs[0]), b),
		reduceBroadcast(b.Neg(outputGrad), b.SizesOf(op.inputs[1]), b),
	}
}

func (op *SubOp) Inputs() []any { return op.inputs }
func (op *SubOp) Output() any   { return op.output }
