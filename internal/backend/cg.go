package backend

import "math"

// CG is the reference conjugate-gradient loop expressed entirely in Backend
// operations, so it runs on any eager engine and, when b is a
// differentiating decorator, leaves every iteration on its tape (the
// "autodiff" gradient mode). y and x0 are vectors or (batch, vector)
// arrays; A is a native matrix or a callable operator.
//
// Iteration stops when norm(residual) <= max(relativeTolerance*norm(y),
// absoluteTolerance) for every batch entry, or after maxIterations
// (negative means unlimited). Non-convergence is reported via the returned
// flag. callback, if non-nil, observes the iterate once per iteration and
// must not influence the result.
func CG(b Backend, A any, y, x0 any, params SolveParams, callback func(x any)) (bool, any, int) {
	apply := OperatorOf(b, A)
	lastAxis := []int{NDims(b, y) - 1}

	x := b.Copy(x0)
	if params.MaxIterations == 0 {
		return false, x, 0
	}
	r := b.Sub(y, apply(x))
	p := b.Copy(r)
	rs := b.Sum(b.Mul(r, r), lastAxis, true)

	normY := b.Float64s(b.Sum(b.Mul(y, y), lastAxis, true))
	thresholds := make([]float64, len(normY))
	for i, ny := range normY {
		thresholds[i] = math.Max(params.RelativeTolerance*math.Sqrt(ny), params.AbsoluteTolerance)
	}
	belowThreshold := func(squaredNorms any) bool {
		for i, sq := range b.Float64s(squaredNorms) {
			if math.Sqrt(sq) > thresholds[i] {
				return false
			}
		}
		return true
	}

	if belowThreshold(rs) {
		return true, x, 0
	}
	for iteration := 1; params.MaxIterations < 0 || iteration <= params.MaxIterations; iteration++ {
		ap := apply(p)
		alpha := b.DivideNoNan(rs, b.Sum(b.Mul(p, ap), lastAxis, true))
		x = b.Add(x, b.Mul(alpha, p))
		r = b.Sub(r, b.Mul(alpha, ap))
		rsNew := b.Sum(b.Mul(r, r), lastAxis, true)
		if callback != nil {
			callback(x)
		}
		if belowThreshold(rsNew) {
			return true, x, iteration
		}
		p = b.Add(r, b.Mul(b.DivideNoNan(rsNew, rs), p))
		rs = rsNew
	}
	return false, x, params.MaxIterations
}
