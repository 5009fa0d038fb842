package autodiff

// Gradients seeds the backward pass with ones over output and returns the
// gradient for each input, in order. Inputs the output does not depend on
// get a nil entry.
func (b *AutodiffBackend[B]) Gradients(output any, inputs ...any) []any {
	if b.tape.NumOps() == 0 {
		panic("autodiff: no operations recorded (did you forget Tape().StartRecording()?)")
	}
	seed := b.inner.Ones(b.inner.SizesOf(output), b.inner.DTypeOf(output))
	grads := b.tape.Backward(output, seed, b.inner)
	out := make([]any, len(inputs))
	for i, input := range inputs {
		out[i] = grads[input]
	}
	return out
}
