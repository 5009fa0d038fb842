// Package ops defines the differentiable operation records walked by the
// gradient tape.
//
// Each operation stores the natives that participated in the forward pass
// and knows how to turn the gradient of its output into gradients of its
// inputs. The forward computation itself always happens on the wrapped
// engine; these records only exist for the reverse walk.
package ops

import "github.com/simflux-ml/simflux/internal/backend"

// Operation is one recorded step of the forward pass.
type Operation interface {
	// Backward computes gradients for the inputs given the output gradient,
	// in input order. A nil entry means the input does not receive a
	// gradient (integer indices, conditions).
	Backward(outputGrad any, b backend.Backend) []any

	// Inputs returns the input natives of this operation.
	Inputs() []any

	// Output returns the native produced by this operation.
	Output() any
}
