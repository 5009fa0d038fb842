package solve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/simflux-ml/simflux/internal/autodiff"
	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
	"github.com/simflux-ml/simflux/internal/solve"
)

func solveSettings() solve.Solve {
	return solve.Solve{
		RelativeTolerance: 1e-10,
		MaxIterations:     50,
	}
}

func TestConjugateGradient_Identity(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	A := b.FromFloat64s([]float64{1, 0, 0, 1}, []int{2, 2})
	y := b.FromFloat64s([]float64{3, -1}, []int{2})

	x, result := solve.ConjugateGradient(b, solve.Dense(A), y, solveSettings(), nil)
	require.True(t, result.Converged)
	assert.LessOrEqual(t, result.Iterations, 1)
	assert.Equal(t, "CG", result.Method)
	assert.InDeltaSlice(t, []float64{3, -1}, b.Float64s(x), 1e-10)
}

func TestConjugateGradient_GonumMatrix(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	A := mat.NewDense(2, 2, []float64{4, 1, 1, 3})
	y := b.FromFloat64s([]float64{1, 2}, []int{2})

	x, result := solve.ConjugateGradient(b, solve.Dense(A), y, solveSettings(), nil)
	require.True(t, result.Converged)
	assert.InDeltaSlice(t, []float64{1.0 / 11, 7.0 / 11}, b.Float64s(x), 1e-8)
}

func TestConjugateGradient_CallableOperator(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	y := b.FromFloat64s([]float64{2, 4}, []int{2})

	op := solve.Operator(func(x any) any {
		return b.Mul(x, b.Full(nil, 2, b.DTypeOf(x)))
	}, nil)
	x, result := solve.ConjugateGradient(b, op, y, solveSettings(), nil)
	require.True(t, result.Converged)
	assert.InDeltaSlice(t, []float64{1, 2}, b.Float64s(x), 1e-8)
}

func TestConjugateGradient_ZeroIterations(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	A := b.FromFloat64s([]float64{1, 0, 0, 1}, []int{2, 2})
	y := b.FromFloat64s([]float64{1, 2}, []int{2})

	s := solveSettings()
	s.MaxIterations = 0
	x, result := solve.ConjugateGradient(b, solve.Dense(A), y, s, nil)
	assert.False(t, result.Converged)
	assert.Equal(t, 0, result.Iterations)
	assert.Equal(t, []float64{0, 0}, b.Float64s(x))
}

func TestConjugateGradient_InitialGuess(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	A := b.FromFloat64s([]float64{1, 0, 0, 1}, []int{2, 2})
	y := b.FromFloat64s([]float64{1, 2}, []int{2})

	s := solveSettings()
	s.InitialGuess = b.FromFloat64s([]float64{1, 2}, []int{2})
	_, result := solve.ConjugateGradient(b, solve.Dense(A), y, s, nil)
	assert.True(t, result.Converged)
	assert.Equal(t, 0, result.Iterations)
}

func TestConjugateGradient_RecordsOnTape(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	A := b.FromFloat64s([]float64{4, 1, 1, 3}, []int{2, 2})
	y := b.FromFloat64s([]float64{1, 2}, []int{2})

	tape := &solve.SolveTape{}
	s := solveSettings()
	s.Method = "poisson-step"
	s.Tape = tape
	solve.ConjugateGradient(b, solve.Dense(A), y, s, nil)
	solve.ConjugateGradient(b, solve.Dense(A), y, s, nil)

	results := tape.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "poisson-step", results[0].Method)
	assert.True(t, results[0].Converged)
	assert.Equal(t, 1e-10, results[0].RelativeTolerance)
}

func TestConjugateGradient_Callback(t *testing.T) {
	defer core.SetPrecision(64)()
	b := cpu.New()
	A := b.FromFloat64s([]float64{4, 1, 1, 3}, []int{2, 2})
	y := b.FromFloat64s([]float64{1, 2}, []int{2})

	var iterates int
	_, result := solve.ConjugateGradient(b, solve.Dense(A), y, solveSettings(), func(x any) {
		iterates++
	})
	assert.Equal(t, result.Iterations, iterates)
}

// solveGradient solves A x = y under the given mode on a fresh
// differentiating engine and returns d sum(x) / d y.
func solveGradient(t *testing.T, mode backend.GradientMode) []float64 {
	t.Helper()
	ad := autodiff.New(cpu.New())
	ad.Tape().StartRecording()

	A := ad.FromFloat64s([]float64{4, 1, 1, 3}, []int{2, 2})
	y := ad.FromFloat64s([]float64{1, 2}, []int{2})

	s := solveSettings()
	s.GradientMode = mode
	x, result := solve.ConjugateGradient(ad, solve.Dense(A), y, s, nil)
	require.True(t, result.Converged)

	grads := ad.Gradients(x, y)
	require.NotNil(t, grads[0])
	return ad.Float64s(grads[0])
}

func TestConjugateGradient_GradientModesAgree(t *testing.T) {
	defer core.SetPrecision(64)()

	// For the symmetric matrix all three modes must produce A^{-1} @ ones.
	expected := []float64{2.0 / 11, 3.0 / 11}
	assert.InDeltaSlice(t, expected, solveGradient(t, backend.GradientImplicit), 1e-6)
	assert.InDeltaSlice(t, expected, solveGradient(t, backend.GradientInverse), 1e-6)
	assert.InDeltaSlice(t, expected, solveGradient(t, backend.GradientAutodiff), 1e-6)
}

func TestOperator_ExplicitAdjointUsedInBackward(t *testing.T) {
	defer core.SetPrecision(64)()
	ad := autodiff.New(cpu.New())
	ad.Tape().StartRecording()

	y := ad.FromFloat64s([]float64{2, 4}, []int{2})
	adjointCalled := false
	op := solve.Operator(func(x any) any {
		return ad.Mul(x, ad.Full(nil, 2, ad.DTypeOf(x)))
	}, func(x any) any {
		adjointCalled = true
		return ad.Mul(x, ad.Full(nil, 2, ad.DTypeOf(x)))
	})

	s := solveSettings()
	s.GradientMode = backend.GradientImplicit
	x, result := solve.ConjugateGradient(ad, op, y, s, nil)
	require.True(t, result.Converged)

	grads := ad.Gradients(x, y)
	assert.True(t, adjointCalled)
	// d x / d y = 1/2 elementwise for the scaling operator.
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, ad.Float64s(grads[0]), 1e-8)
}
