package ops

import "github.com/simflux-ml/simflux/internal/backend"

// SumOp records output = Sum(x, axes, keepDims). The gradient broadcasts
// the output gradient back over the reduced axes.
type SumOp struct {
	input    any
	output   any
	axes     []int
	keepDims bool
	// scale divides the broadcast gradient, 1 for Sum and the reduced
	// element count for Mean.
	scale float64
}

// NewSumOp creates a SumOp record.
func NewSumOp(x, output any, axes []int, keepDims bool) *SumOp {
	return &SumOp{input: x, output: output, axes: axes, keepDims: keepDims, scale: 1}
}

// NewMeanOp creates a record for Mean, which is Sum scaled by the reduced
// element count.
func NewMeanOp(x, output any, axes []int, keepDims bool, b backend.Backend) *SumOp {
	sizes := b.SizesOf(x)
	axes = resolveAxes(axes, len(sizes))
	count := 1
	for _, a := range axes {
		count *= sizes[a]
	}
	return &SumOp{input: x, output: output, axes: axes, keepDims: keepDims, scale: float64(count)}
}

func (op *SumOp) Backward(outputGrad any, b backend.Backend) []any {
	inSizes := b.SizesOf(op.input)
	axes := resolveAxes(op.axes, len(inSizes))

	grad := outputGrad
	if !op.keepDims {
		// Reinsert the reduced axes as size 1 so broadcasting can expand them.
		withOnes := append([]int(nil), inSizes...)
		for _, a := range axes {
			withOnes[a] = 1
		}
		grad = b.Reshape(grad, withOnes)
	}
	expanded := b.Add(grad, b.Zeros(inSizes, b.DTypeOf(grad)))
	if op.scale != 1 {
		expanded = b.Div(expanded, b.Full(nil, op.scale, b.DTypeOf(expanded)))
	}
	return []any{expanded}
}

func (op *SumOp) Inputs() []any { return []any{op.input} }
func (op *SumOp) Output() any   { return op.output }

func resolveAxes(axes []int, rank int) []int {
	if len(axes) == 0 {
		all := make([]int, rank)
		for i := range all {
			all[i] = i
		}
		return all
	}
	out := make([]int, len(axes))
	for i, a := range axes {
		if a < 0 {
			a += rank
		}
		out[i] = a
	}
	return out
}
