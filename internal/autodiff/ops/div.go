package ops

import "github.com/simflux-ml/simflux/internal/backend"

// DivOp records output = a / b.
//
// d(a/b)/da = 1/b and d(a/b)/db = -a/b².
type DivOp struct {
	inputs []any
	output any
}

// NewDivOp creates a DivOp record.
func NewDivOp(a, b, output any) *DivOp {
	return &DivOp{inputs: []any{a, b}, output: output}
}

func (op *DivOp) Backward(outputGrad any, b backend.Backend) []any {
	a, c := op.inputs[0], op.inputs[1]
	gradA := b.Div(outputGrad, c)
	// grad_b = -outputGrad * a / b² = -gradA * (a/b)
	gradB := b.Neg(b.Mul(gradA, b.Div(a, c)))
	return []any{
		reduceBroadcast(gradA, b.SizesOf(a), b),
		reduceBroadcast(gradB, b.SizesOf(c), b),
	}
}

func (op *DivOp) Inputs() []any { return op.inputs }
func (op *DivOp) Output() any   { return op.output }

// DivideNoNanOp records output = a / b with 0 wherever b is 0.
//
// Both gradients carry the same mask and vanish where b is 0.
type DivideNoNanOp struct {
	inputs []any
	output any
}

// NewDivideNoNanOp creates a DivideNoNanOp record.
func NewDivideNoNanOp(a, b, output any) *DivideNoNanOp {
	return &DivideNoNanOp{inputs: []any{a, b}, output: output}
}

func (op *DivideNoNanOp) Backward(outputGrad any, b backend.Backend) []any {
	a, c := op.inputs[0], op.inputs[1]
	gradA := b.DivideNoNan(outputGrad, c)
	// grad_b = -outputGrad * a / b² where b != 0, else 0; the mask rides
	// along through gradA.
	gradB := b.Neg(b.Mul(gradA, b.DivideNoNan(a, c)))
	return []any{
		reduceBroadcast(gradA, b.SizesOf(a), b),
		reduceBroadcast(gradB, b.SizesOf(c), b),
	}
}

func (op *DivideNoNanOp) Inputs() []any { return op.inputs }
func (op *DivideNoNanOp) Output() any   { return op.output }
