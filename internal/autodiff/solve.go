package autodiff

import (
	"github.com/simflux-ml/simflux/internal/backend"
)

// ConjugateGradient solves A·x = y with gradient propagation per the
// requested mode.
//
// In autodiff mode the reference loop runs on this decorator, so every
// iteration lands on the tape and gradients flow through the unrolled
// sequence. In implicit and inverse mode the solve runs on the wrapped
// engine and a custom gradient is recorded instead: the backward pass
// solves the adjoint system A'·z = dL/dx, which is the derivative the
// solution owes its right-hand side. Implicit mode treats the operator as
// self-adjoint; inverse mode transposes a matrix operand.
func (b *AutodiffBackend[B]) ConjugateGradient(A any, y, x0 any, params backend.SolveParams, callback func(x any)) (bool, any, int) {
	if params.GradientMode == backend.GradientAutodiff {
		return backend.CG(b, A, y, x0, params, callback)
	}

	adjoint := A
	if params.GradientMode == backend.GradientInverse {
		if _, isOperator := A.(func(x any) any); !isOperator {
			adjoint = transposedMatrix(b.inner, A)
		}
	}

	var (
		converged  bool
		iterations int
	)
	x := b.WithCustomGradient("ConjugateGradient", []any{y}, func(inputs []any) any {
		var solution any
		converged, solution, iterations = b.inner.ConjugateGradient(A, inputs[0], x0, params, callback)
		return solution
	}, func(inputs []any, output, outputGrad any) []any {
		guess := b.inner.Zeros(b.inner.SizesOf(outputGrad), b.inner.DTypeOf(outputGrad))
		_, z, _ := b.inner.ConjugateGradient(adjoint, outputGrad, guess, params, nil)
		return []any{z}
	})
	return converged, x, iterations
}

func transposedMatrix(b backend.Backend, A any) any {
	native, err := b.AsNative(A)
	if err != nil {
		panic(err)
	}
	rank := len(b.SizesOf(native))
	if rank < 2 {
		return native
	}
	perm := make([]int, rank)
	for i := range perm {
		perm[i] = i
	}
	perm[rank-2], perm[rank-1] = perm[rank-1], perm[rank-2]
	return b.Transpose(native, perm)
}
