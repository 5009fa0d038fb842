package cpu

import (
	"github.com/simflux-ml/simflux/internal/backend"
)

// WhileLoop runs body on vars while cond holds, up to maxIterations
// (negative means unlimited). The loop is fully eager.
func (c *CPUBackend) WhileLoop(cond func([]any) bool, body func([]any) []any, vars []any, maxIterations int) []any {
	for i := 0; (maxIterations < 0 || i < maxIterations) && cond(vars); i++ {
		vars = body(vars)
	}
	return vars
}

// WithCustomGradient evaluates forward immediately; the backward function is
// only meaningful under a differentiating engine.
func (c *CPUBackend) WithCustomGradient(op string, inputs []any, forward func([]any) any,
	backward func(inputs []any, output, outputGrad any) []any) any {
	return forward(inputs)
}

// ConjugateGradient solves A x = y with the shared reference loop.
func (c *CPUBackend) ConjugateGradient(A any, y, x0 any, params backend.SolveParams, callback func(x any)) (bool, any, int) {
	return backend.CG(c, A, y, x0, params, callback)
}
