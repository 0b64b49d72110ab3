package nn

import (
	"fmt"
	"math/rand"

	"github.com/pde-ml/pdenet/tensor"
)

// Network is the function approximator: a multilayer perceptron with
// tanh activations mapping a coordinate batch [N, inputDim] to a scalar
// output per row [N, 1].
//
// The same type approximates both a PDE solution u(t, x₁…x_d) (input
// width 1+d) and the PDE operator f(u, u_x…, u_xx…) (input width 1+2d).
//
// A Network is in exactly one of {Training, Evaluation} at any time.
// Orchestrators force the mode they need on entry and never restore the
// previous one; callers must not assume the mode persists across calls.
type Network[T tensor.Float, B tensor.Backend] struct {
	layers []*Linear[T, B]
	mode   Mode
}

// NetworkConfig describes a Network's architecture.
type NetworkConfig struct {
	// InputDim is the number of input features per row.
	InputDim int
	// Hidden lists the widths of the hidden tanh layers, e.g.
	// {20, 20, 20, 20, 20}. May be empty for a purely linear map.
	Hidden []int
}

// NewNetwork creates a Network with Xavier-initialized layers.
// A nil rng falls back to the shared math/rand source.
func NewNetwork[T tensor.Float, B tensor.Backend](cfg NetworkConfig, rng *rand.Rand, backend B) (*Network[T, B], error) {
	if cfg.InputDim < 1 {
		return nil, fmt.Errorf("network: input dimension must be at least 1, got %d", cfg.InputDim)
	}
	for i, w := range cfg.Hidden {
		if w < 1 {
			return nil, fmt.Errorf("network: hidden layer %d has width %d, must be at least 1", i, w)
		}
	}
	widths := append([]int{cfg.InputDim}, cfg.Hidden...)
	widths = append(widths, 1)
	layers := make([]*Linear[T, B], 0, len(widths)-1)
	for i := 0; i < len(widths)-1; i++ {
		layers = append(layers, NewLinear[T, B](widths[i], widths[i+1], rng, backend))
	}
	return &Network[T, B]{layers: layers, mode: Training}, nil
}

// Forward evaluates the network on a coordinate batch [N, inputDim] and
// returns [N, 1]. All hidden layers apply tanh; the output layer is
// linear. The output participates in further differentiation whenever
// the backend records.
func (n *Network[T, B]) Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	x := input
	last := len(n.layers) - 1
	for i, layer := range n.layers {
		x = layer.Forward(x)
		if i != last {
			x = x.Tanh()
		}
	}
	return x
}

// Parameters returns all trainable parameters of every layer.
func (n *Network[T, B]) Parameters() []*Parameter[T, B] {
	params := make([]*Parameter[T, B], 0, 2*len(n.layers))
	for _, layer := range n.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Layers returns the network's layers, first to last.
func (n *Network[T, B]) Layers() []*Linear[T, B] {
	return n.layers
}

// InputDim returns the expected input width.
func (n *Network[T, B]) InputDim() int {
	return n.layers[0].InFeatures()
}

// Train switches the network to training mode.
func (n *Network[T, B]) Train() {
	n.mode = Training
}

// Eval switches the network to evaluation mode.
func (n *Network[T, B]) Eval() {
	n.mode = Evaluation
}

// Mode reports the network's current mode.
func (n *Network[T, B]) Mode() Mode {
	return n.mode
}

// Training reports whether the network is in training mode.
func (n *Network[T, B]) Training() bool {
	return n.mode == Training
}
