// Package solve bridges linear solves into the backend layer. A Solve
// value describes the method, tolerances and gradient mode; the bridge runs
// the solve on the tensor's engine, registers the gradient rule the mode
// asks for, and records introspectable metadata on an optional SolveTape.
package solve

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/simflux-ml/simflux/internal/backend"
)

// Solve describes one linear solve.
type Solve struct {
	// Method names the algorithm; "CG" is the only built-in.
	Method            string
	RelativeTolerance float64
	AbsoluteTolerance float64
	// MaxIterations bounds the iteration count; 0 forbids iterating and
	// negative means unlimited.
	MaxIterations int
	// InitialGuess is a native starting point, zeros when nil.
	InitialGuess any
	GradientMode backend.GradientMode
	// Tape, when set, receives a Result per executed solve.
	Tape *SolveTape
}

// Result is the introspectable outcome of one solve.
type Result struct {
	Method            string
	RelativeTolerance float64
	AbsoluteTolerance float64
	Iterations        int
	Converged         bool
}

// SolveTape collects solve results for introspection. Recording a result
// never changes the solve's outcome.
type SolveTape struct {
	mu      sync.Mutex
	results []Result
}

// Record appends a result.
func (t *SolveTape) Record(r Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, r)
}

// Results returns the recorded results, oldest first.
func (t *SolveTape) Results() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Result(nil), t.results...)
}

// LinearOperator is the A of A·x = y: either a dense matrix (an engine
// native or a gonum mat.Matrix) or a callable with an optional adjoint.
type LinearOperator struct {
	Matrix any
	Apply  func(x any) any
	// Adjoint applies Aᵀ; nil means the operator is treated as
	// self-adjoint where an adjoint is needed.
	Adjoint func(x any) any
}

// Dense wraps a matrix operand.
func Dense(matrix any) LinearOperator {
	return LinearOperator{Matrix: matrix}
}

// Operator wraps a callable operand.
func Operator(apply, adjoint func(x any) any) LinearOperator {
	return LinearOperator{Apply: apply, Adjoint: adjoint}
}

// forward returns the operand in the form backend.CG accepts.
func (op LinearOperator) forward(b backend.Backend) any {
	if op.Apply != nil {
		return op.Apply
	}
	return matrixNative(b, op.Matrix)
}

// adjoint returns the operand for the transposed system.
func (op LinearOperator) adjoint(b backend.Backend) any {
	if op.Adjoint != nil {
		return op.Adjoint
	}
	if op.Apply != nil {
		// Self-adjoint by assumption.
		return op.Apply
	}
	m := matrixNative(b, op.Matrix)
	rank := len(b.SizesOf(m))
	perm := make([]int, rank)
	for i := range perm {
		perm[i] = i
	}
	perm[rank-2], perm[rank-1] = perm[rank-1], perm[rank-2]
	return b.Transpose(m, perm)
}

// matrixNative converts a matrix operand to an engine native, accepting
// gonum matrices directly.
func matrixNative(b backend.Backend, matrix any) any {
	if m, ok := matrix.(mat.Matrix); ok {
		dense := mat.DenseCopyOf(m)
		rows, cols := dense.Dims()
		return b.FromFloat64s(dense.RawMatrix().Data, []int{rows, cols})
	}
	native, err := b.AsNative(matrix)
	if err != nil {
		panic(err)
	}
	return native
}

// ConjugateGradient solves A·x = y on the given engine.
//
// Convergence requires norm(residual) <= max(rtol·norm(y), atol) per batch
// entry. MaxIterations of zero returns the initial guess unconverged
// without applying A. callback, when non-nil, observes each iterate and
// must not influence the result. Non-convergence is reported in the
// Result, never as an error.
//
// Under a differentiating engine the gradient mode decides what reaches
// the tape: autodiff unrolls the iterations, implicit and inverse register
// a custom gradient that solves the adjoint system instead.
func ConjugateGradient(b backend.Backend, A LinearOperator, y any, s Solve, callback func(x any)) (any, Result) {
	params := backend.SolveParams{
		RelativeTolerance: s.RelativeTolerance,
		AbsoluteTolerance: s.AbsoluteTolerance,
		MaxIterations:     s.MaxIterations,
		GradientMode:      s.GradientMode,
	}
	x0 := s.InitialGuess
	if x0 == nil {
		x0 = b.Zeros(b.SizesOf(y), b.DTypeOf(y))
	}

	var (
		converged  bool
		x          any
		iterations int
	)
	if s.GradientMode == backend.GradientAutodiff {
		converged, x, iterations = backend.CG(b, A.forward(b), y, x0, params, callback)
	} else {
		adjointOp := A.adjoint(b)
		x = b.WithCustomGradient("ConjugateGradient", []any{y}, func(inputs []any) any {
			var solution any
			converged, solution, iterations = backend.CG(b, A.forward(b), inputs[0], x0, params, callback)
			return solution
		}, func(inputs []any, output, outputGrad any) []any {
			guess := b.Zeros(b.SizesOf(outputGrad), b.DTypeOf(outputGrad))
			_, z, _ := backend.CG(b, adjointOp, outputGrad, guess, params, nil)
			return []any{z}
		})
	}

	method := s.Method
	if method == "" {
		method = "CG"
	}
	result := Result{
		Method:            method,
		RelativeTolerance: s.RelativeTolerance,
		AbsoluteTolerance: s.AbsoluteTolerance,
		Iterations:        iterations,
		Converged:         converged,
	}
	if s.Tape != nil {
		s.Tape.Record(result)
	}
	return x, result
}
