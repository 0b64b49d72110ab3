package nn

import "github.com/pde-ml/pdenet/tensor"

// Parameter represents a trainable parameter: a tensor plus the
// gradient most recently computed for it.
//
// The training closure writes gradients here after its backward pass;
// optimizers read them and update the parameter tensor in place.
type Parameter[T tensor.Float, B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[T, B]
	grad   *tensor.Tensor[T, B]
}

// NewParameter creates a new trainable parameter. The gradient starts
// nil and is set by the first backward pass.
func NewParameter[T tensor.Float, B tensor.Backend](name string, t *tensor.Tensor[T, B]) *Parameter[T, B] {
	return &Parameter[T, B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[T, B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[T, B]) Tensor() *tensor.Tensor[T, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil if none has been computed.
func (p *Parameter[T, B]) Grad() *tensor.Tensor[T, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[T, B]) SetGrad(grad *tensor.Tensor[T, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient. Called before each closure invocation
// so repeated invocations within one optimizer step never see stale
// gradients.
func (p *Parameter[T, B]) ZeroGrad() {
	p.grad = nil
}
