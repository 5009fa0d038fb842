package autodiff

import (
	"github.com/simflux-ml/simflux/internal/autodiff/ops"
	"github.com/simflux-ml/simflux/internal/backend"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode differentiation.
//
// Usage:
//
//	b := autodiff.New(cpu.Default())
//	b.Tape().StartRecording()
//	// ... run forward operations on b ...
//	grads := b.Tape().Backward(output, b)
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates an empty tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{operations: make([]ops.Operation, 0, 64)}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() { t.recording = true }

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() { t.recording = false }

// IsRecording reports whether forward operations are being recorded.
func (t *GradientTape) IsRecording() bool { return t.recording }

// Record appends an operation if the tape is recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int { return len(t.operations) }

// Clear drops all recorded operations, preserving the recording state.
func (t *GradientTape) Clear() { t.operations = t.operations[:0] }

// Backward walks the tape in reverse, propagating outputGrad from the given
// output native back to every native that contributed to it. Gradients for
// natives used more than once accumulate by addition.
//
// The returned map is keyed by the forward natives.
func (t *GradientTape) Backward(output, outputGrad any, b backend.Backend) map[any]any {
	grads := make(map[any]any)
	if len(t.operations) == 0 {
		return grads
	}

	// Gradient operations must not land on the tape themselves.
	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	grads[output] = outputGrad
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		g, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(g, b)
		for j, input := range op.Inputs() {
			if inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = b.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}
