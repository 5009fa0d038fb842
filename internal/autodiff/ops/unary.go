package ops

import "github.com/simflux-ml/simflux/internal/backend"

// UnaryOp records an elementwise unary operation whose local derivative can
// be expressed from the input and output natives. One record type covers
// Neg, Sqrt, Exp, Log, Sin and Cos.
type UnaryOp struct {
	name   string
	input  any
	output any
	// grad maps (input, output, outputGrad) to the input gradient.
	grad func(b backend.Backend, input, output, outputGrad any) any
}

func newUnaryOp(name string, input, output any,
	grad func(b backend.Backend, input, output, outputGrad any) any) *UnaryOp {
	return &UnaryOp{name: name, input: input, output: output, grad: grad}
}

// NewNegOp records output = -x.
func NewNegOp(x, output any) *UnaryOp {
	return newUnaryOp("Neg", x, output, func(b backend.Backend, _, _, g any) any {
		return b.Neg(g)
	})
}

// NewSqrtOp records output = sqrt(x); d/dx = 1/(2*sqrt(x)) = 1/(2*output).
func NewSqrtOp(x, output any) *UnaryOp {
	return newUnaryOp("Sqrt", x, output, func(b backend.Backend, _, out, g any) any {
		return b.Div(g, b.Mul(b.Full(b.SizesOf(out), 2, b.DTypeOf(out)), out))
	})
}

// NewExpOp records output = exp(x); d/dx = output.
func NewExpOp(x, output any) *UnaryOp {
	return newUnaryOp("Exp", x, output, func(b backend.Backend, _, out, g any) any {
		return b.Mul(g, out)
	})
}

// NewLogOp records output = log(x); d/dx = 1/x.
func NewLogOp(x, output any) *UnaryOp {
	return newUnaryOp("Log", x, output, func(b backend.Backend, in, _, g any) any {
		return b.Div(g, in)
	})
}

// NewSinOp records output = sin(x); d/dx = cos(x).
func NewSinOp(x, output any) *UnaryOp {
	return newUnaryOp("Sin", x, output, func(b backend.Backend, in, _, g any) any {
		return b.Mul(g, b.Cos(in))
	})
}

// NewCosOp records output = cos(x); d/dx = -sin(x).
func NewCosOp(x, output any) *UnaryOp {
	return newUnaryOp("Cos", x, output, func(b backend.Backend, in, _, g any) any {
		return b.Neg(b.Mul(g, b.Sin(in)))
	})
}

func (op *UnaryOp) Backward(outputGrad any, b backend.Backend) []any {
	return []any{op.grad(b, op.input, op.output, outputGrad)}
}

func (op *UnaryOp) Inputs() []any { return []any{op.input} }
func (op *UnaryOp) Output() any   { return op.output }
