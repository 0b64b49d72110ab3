package train

import (
	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/loss"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/optim"
	"github.com/pde-ml/pdenet/tensor"
)

// Discovery performs one optimization step of the discovery mode: the
// solution network is fit to observed data while the PDE network learns
// the governing equation from the collocation residual.
//
// The composite loss is Collocation + Data. Parameters of both networks
// are updated in place; nothing else is returned or mutated. The
// closure handed to the optimizer clears stale gradients, recomputes
// the loss, and back-propagates only when the loss is attached to the
// tape, so probing the closure outside a differentiation context yields
// the scalar without a parameter-update side effect.
func Discovery[T tensor.Float, B autodiff.BackwardCapable](
	solNN, pdeNN *nn.Network[T, B],
	collocCoords, dataCoords, dataValues *tensor.Tensor[T, B],
	opt optim.Optimizer[T, B],
) {
	solNN.Train()
	pdeNN.Train()
	backend := collocCoords.Backend()
	tape := backend.GetTape()

	opt.Step(func() *tensor.Tensor[T, B] {
		if tape.IsRecording() {
			opt.ZeroGrad()
			tape.Clear()
		}
		l := loss.Collocation(solNN, pdeNN, collocCoords).
			Add(loss.Data(solNN, dataCoords, dataValues))
		if autodiff.Attached(l, backend) {
			backpropagate(l, backend, solNN, pdeNN)
		}
		return l
	})
}

// DiscoveryTest evaluates the discovery-mode loss terms once and
// returns (collocationLoss, dataLoss) as plain scalars. Both networks
// are switched to evaluation mode; no parameters are mutated.
//
// Must be called with the differentiation context enabled.
func DiscoveryTest[T tensor.Float, B autodiff.BackwardCapable](
	solNN, pdeNN *nn.Network[T, B],
	collocCoords, dataCoords, dataValues *tensor.Tensor[T, B],
) (T, T) {
	solNN.Eval()
	pdeNN.Eval()
	collocLoss := loss.Collocation(solNN, pdeNN, collocCoords).Item()
	dataLoss := loss.Data(solNN, dataCoords, dataValues).Item()
	return collocLoss, dataLoss
}
