// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores its input and output RawTensors from the forward
// pass and knows how to turn an output gradient into input gradients.
// Every backward pass is expressed exclusively through tensor.Backend
// calls. That property is load-bearing: when the tape keeps recording
// during a backward walk, the gradient computation lands on the tape as
// ordinary operations and can itself be differentiated, which is what
// lets PDE residuals take second (and higher) derivatives of a network
// with respect to its input coordinates.
package ops

import "github.com/pde-ml/pdenet/tensor"

// Operation represents one differentiable step in the computation graph.
type Operation interface {
	// Backward computes gradients for the inputs given the output
	// gradient, using only backend operations.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors of this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor this operation produced.
	Output() *tensor.RawTensor
}
