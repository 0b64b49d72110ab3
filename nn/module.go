// Package nn implements the neural-network approximators.
//
// It provides:
//   - Module interface: base interface for NN components
//   - Parameter: trainable parameters with gradient storage
//   - Linear: fully connected layer
//   - Network: the tanh MLP used to approximate a PDE solution or the
//     PDE operator itself
//
// Design follows PyTorch's nn.Module, adapted for Go generics.
package nn

import "github.com/pde-ml/pdenet/tensor"

// Module is the base interface for all neural network components.
type Module[T tensor.Float, B tensor.Backend] interface {
	// Forward computes the output of the module for an input tensor.
	Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B]

	// Parameters returns all trainable parameters of this module,
	// including nested ones. Modules without trainable parameters
	// return an empty slice.
	Parameters() []*Parameter[T, B]
}

// Mode distinguishes training from evaluation behavior. The networks
// here have no mode-dependent layers yet, but the orchestration layer
// forces the mode on every entry and tests assert it, so the flag is a
// first-class part of the approximator contract.
type Mode int

// Approximator modes.
const (
	Training Mode = iota
	Evaluation
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Training:
		return "training"
	case Evaluation:
		return "evaluation"
	default:
		return "unknown"
	}
}
