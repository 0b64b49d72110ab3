// Package train implements the training and testing orchestrators for
// the two learning modes:
//
//   - Discovery: the governing equation is unknown; a solution network
//     and a PDE network are fit jointly against observed data and
//     collocation residuals.
//   - PINNs: the equation's structure is enforced through initial and
//     periodic boundary conditions plus collocation residuals.
//
// Training performs exactly one optimizer step, driven by a closure the
// optimizer may invoke any number of times. Testing evaluates each loss
// term once, with no parameter updates, and returns plain scalars for
// monitoring.
//
// Both entry points force the networks' mode on entry (training mode
// for training, evaluation mode for testing) and never restore the
// previous mode. Testing must run with the ambient differentiation
// context enabled: the collocation evaluator differentiates through the
// solution network and panics without it, and that panic propagates to
// the caller unchanged.
package train

import (
	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// backpropagate runs the backward pass from loss and stores the
// resulting gradients on the parameters of both networks. Parameters
// the loss does not depend on are left untouched.
func backpropagate[T tensor.Float, B autodiff.BackwardCapable](
	loss *tensor.Tensor[T, B],
	backend B,
	networks ...*nn.Network[T, B],
) {
	grads := autodiff.Backward(loss, backend)
	for _, net := range networks {
		for _, p := range net.Parameters() {
			if raw, ok := grads[p.Tensor().Raw()]; ok {
				p.SetGrad(tensor.New[T, B](raw, backend))
			}
		}
	}
}
