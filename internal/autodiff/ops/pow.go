package ops

import "github.com/simflux-ml/simflux/internal/backend"

// PowOp records output = a^b.
//
// d(a^b)/da = b * a^(b-1) and d(a^b)/db = a^b * log(a).
type PowOp struct {
	inputs []any
	output any
}

// NewPowOp creates a PowOp record.
func NewPowOp(a, b, output any) *PowOp {
	return &PowOp{inputs: []any{a, b}, output: output}
}

func (op *PowOp) Backward(outputGrad any, b backend.Backend) []any {
	base, exponent := op.inputs[0], op.inputs[1]
	one := b.Ones(b.SizesOf(exponent), b.DTypeOf(exponent))
	gradBase := b.Mul(outputGrad, b.Mul(exponent, b.Pow(base, b.Sub(exponent, one))))
	gradExp := b.Mul(outputGrad, b.Mul(op.output, b.Log(base)))
	return []any{
		reduceBroadcast(gradBase, b.SizesOf(base), b),
		reduceBroadcast(gradExp, b.SizesOf(exponent), b),
	}
}

func (op *PowOp) Inputs() []any { return op.inputs }
func (op *PowOp) Output() any   { return op.output }
