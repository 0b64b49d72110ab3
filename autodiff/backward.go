package autodiff

import (
	"fmt"

	"github.com/pde-ml/pdenet/tensor"
)

// BackwardCapable is the interface for backends that can run a backward
// pass. AutodiffBackend implements it; generic code over loss and
// training functions constrains its backend parameter to this.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// Attached reports whether t was produced by a recorded operation, i.e.
// whether back-propagating from it can reach any parameter. Training
// closures use this to silently skip the backward pass when the loss
// was computed outside the differentiation context.
func Attached[T tensor.Float, B BackwardCapable](t *tensor.Tensor[T, B], backend B) bool {
	return backend.GetTape().Produced(t.Raw())
}

// Backward computes gradients of a scalar tensor with respect to every
// tensor it depends on, seeding with ones. This is the terminal pass of
// a training closure: no graph is created for the gradient computation.
//
// Panics if nothing was recorded: calling it outside a differentiation
// context is a programming error, matching the tape's contract.
func Backward[T tensor.Float, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("autodiff: no operations recorded (is the tape recording?)")
	}
	return tape.BackwardFrom(t.Raw(), onesSeed(t.Raw(), backend), backend, false)
}

// Grad differentiates output with respect to a single tensor, keeping
// the result attached to the graph so it can be differentiated again.
//
// For a network evaluated on a coordinate batch this yields the batch
// of input derivatives: network rows are independent, so seeding with
// ones gives each row's gradient without cross-row mixing. Calling Grad
// on the result again produces second derivatives.
//
// Panics if the tape holds no operations (differentiation disabled) or
// if output does not depend on wrt.
func Grad[T tensor.Float, B BackwardCapable](output, wrt *tensor.Tensor[T, B], backend B) *tensor.Tensor[T, B] {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("autodiff: no operations recorded (is the tape recording?)")
	}
	grads := tape.BackwardFrom(output.Raw(), onesSeed(output.Raw(), backend), backend, true)
	raw, ok := grads[wrt.Raw()]
	if !ok {
		panic(fmt.Sprintf("autodiff: output does not depend on the requested tensor (shape %v)", wrt.Shape()))
	}
	return tensor.New[T, B](raw, backend)
}

// onesSeed builds the all-ones seed gradient for a backward pass.
func onesSeed(root *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	seed := tensor.MustRaw(root.Shape(), root.DType(), backend.Device())
	switch root.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	}
	return seed
}
