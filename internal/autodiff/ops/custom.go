package ops

import "github.com/simflux-ml/simflux/internal/backend"

// CustomOp records an operation whose gradient rule was supplied by the
// caller through WithCustomGradient. This is how linear solves attach
// implicit-function gradients instead of differentiating through their
// iteration loops.
type CustomOp struct {
	name   string
	inputs []any
	output any
	grad   func(inputs []any, output, outputGrad any) []any
}

// NewCustomOp creates a CustomOp record.
func NewCustomOp(name string, inputs []any, output any,
	grad func(inputs []any, output, outputGrad any) []any) *CustomOp {
	return &CustomOp{name: name, inputs: inputs, output: output, grad: grad}
}

// Name returns the caller-supplied operation name.
func (op *CustomOp) Name() string { return op.name }

func (op *CustomOp) Backward(outputGrad any, b backend.Backend) []any {
	return op.grad(op.inputs, op.output, outputGrad)
}

func (op *CustomOp) Inputs() []any { return op.inputs }
func (op *CustomOp) Output() any   { return op.output }
