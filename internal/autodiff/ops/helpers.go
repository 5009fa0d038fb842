package ops

import "github.com/simflux-ml/simflux/internal/backend"

// reduceBroadcast sums a gradient over the axes that were virtually
// expanded when the forward operation broadcast its operand to the output
// sizes, so the gradient matches the operand again.
func reduceBroadcast(grad any, operandSizes []int, b backend.Backend) any {
	gradSizes := b.SizesOf(grad)
	if equalSizes(gradSizes, operandSizes) {
		return grad
	}

	// Leading axes the operand never had are summed away entirely.
	extra := len(gradSizes) - len(operandSizes)
	if extra > 0 {
		axes := make([]int, extra)
		for i := range axes {
			axes[i] = i
		}
		grad = b.Sum(grad, axes, false)
		gradSizes = b.SizesOf(grad)
	}

	// Size-1 operand axes were expanded; sum them keeping the axis.
	var axes []int
	for i, s := range operandSizes {
		if s == 1 && gradSizes[i] != 1 {
			axes = append(axes, i)
		}
	}
	if len(axes) > 0 {
		grad = b.Sum(grad, axes, true)
	}
	return grad
}

func equalSizes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
