package loss

import (
	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// Collocation enforces the PDE at a batch of collocation points.
//
// For coordinates [N, 1+d] it evaluates u = solNN(coords), differentiates
// u with respect to the coordinates to obtain u_t and the first spatial
// derivatives, differentiates those again for the (diagonal) second
// spatial derivatives, and feeds the feature batch
//
//	[u, u_x₁ … u_x_d, u_x₁x₁ … u_x_dx_d]   (width 1+2d)
//
// to pdeNN. The residual is u_t - pdeNN(features); the loss is its mean
// square. All derivative tensors are built in create-graph mode, so the
// loss remains differentiable with respect to both networks' parameters.
//
// Requires the differentiation context to be enabled; panics otherwise.
func Collocation[T tensor.Float, B autodiff.BackwardCapable](
	solNN, pdeNN *nn.Network[T, B],
	collocCoords *tensor.Tensor[T, B],
) *tensor.Tensor[T, B] {
	backend := collocCoords.Backend()
	d := collocCoords.Shape()[1] - 1

	u := solNN.Forward(collocCoords)
	du := autodiff.Grad(u, collocCoords, backend)
	ut := du.Narrow(1, 0, 1)

	features := make([]*tensor.Tensor[T, B], 0, 1+2*d)
	features = append(features, u)

	firstOrder := make([]*tensor.Tensor[T, B], 0, d)
	for j := 1; j <= d; j++ {
		ux := du.Narrow(1, j, 1)
		firstOrder = append(firstOrder, ux)
		features = append(features, ux)
	}
	for j := 1; j <= d; j++ {
		dux := autodiff.Grad(firstOrder[j-1], collocCoords, backend)
		features = append(features, dux.Narrow(1, j, 1))
	}

	rhs := pdeNN.Forward(tensor.Cat(features, 1))
	return meanSquare(ut.Sub(rhs))
}
