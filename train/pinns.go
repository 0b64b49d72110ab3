package train

import (
	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/loss"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/optim"
	"github.com/pde-ml/pdenet/tensor"
)

// PINNs performs one optimization step of the physics-informed mode.
//
// The composite loss is IC + PeriodicBC + Collocation: the solution
// network is constrained by the initial condition at t₀, by periodicity
// of the solution and its spatial derivatives up to order-1 between the
// paired lower/upper boundary rows, and by the PDE residual at the
// collocation points. Optimization protocol as in Discovery.
func PINNs[T tensor.Float, B autodiff.BackwardCapable](
	solNN, pdeNN *nn.Network[T, B],
	icCoords, icValues *tensor.Tensor[T, B],
	lower, upper *tensor.Tensor[T, B],
	order int,
	collocCoords *tensor.Tensor[T, B],
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
		l := loss.IC(solNN, icCoords, icValues).
			Add(loss.PeriodicBC(solNN, lower, upper, order)).
			Add(loss.Collocation(solNN, pdeNN, collocCoords))
		if autodiff.Attached(l, backend) {
			backpropagate(l, backend, solNN, pdeNN)
		}
		return l
	})
}

// PINNsTest evaluates the three physics-informed loss terms once and
// returns (icLoss, bcLoss, collocationLoss) as plain scalars. Both
// networks are switched to evaluation mode; no parameters are mutated.
//
// Must be called with the differentiation context enabled.
func PINNsTest[T tensor.Float, B autodiff.BackwardCapable](
	solNN, pdeNN *nn.Network[T, B],
	icCoords, icValues *tensor.Tensor[T, B],
	lower, upper *tensor.Tensor[T, B],
	order int,
	collocCoords *tensor.Tensor[T, B],
) (T, T, T) {
	solNN.Eval()
	pdeNN.Eval()
	icLoss := loss.IC(solNN, icCoords, icValues).Item()
	bcLoss := loss.PeriodicBC(solNN, lower, upper, order).Item()
	collocLoss := loss.Collocation(solNN, pdeNN, collocCoords).Item()
	return icLoss, bcLoss, collocLoss
}
