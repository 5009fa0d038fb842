package ops

import "github.com/simflux-ml/simflux/internal/backend"

// WhereOp records output = Where(cond, x, y). The gradient routes to x
// where cond holds and to y elsewhere; the condition itself gets none.
type WhereOp struct {
	inputs []any
	output any
}

// NewWhereOp creates a WhereOp record.
func NewWhereOp(cond, x, y, output any) *WhereOp {
	return &WhereOp{inputs: []any{cond, x, y}, output: output}
}

func (op *WhereOp) Backward(outputGrad any, b backend.Backend) []any {
	cond, x, y := op.inputs[0], op.inputs[1], op.inputs[2]
	zero := b.Zeros(b.SizesOf(outputGrad), b.DTypeOf(outputGrad))
	gradX := reduceBroadcast(b.Where(cond, outputGrad, zero), b.SizesOf(x), b)
	gradY := reduceBroadcast(b.Where(cond, zero, outputGrad), b.SizesOf(y), b)
	return []any{nil, gradX, gradY}
}

func (op *WhereOp) Inputs() []any { return op.inputs }
func (op *WhereOp) Output() any   { return op.output }
