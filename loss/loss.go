// Package loss implements the four loss evaluators combined by the
// training and testing orchestrators.
//
// Every evaluator is a pure function of its arguments returning one
// single-element, tape-attached tensor: a mean-squared residual, hence
// non-negative. Evaluators that form derivatives of the solution
// network with respect to its input coordinates (collocation, periodic
// boundary) require the ambient differentiation context to be enabled
// and panic otherwise; that failure propagates to the caller unchanged.
//
// Row-count agreement between coordinate and value tensors is a caller
// obligation and is not validated here.
package loss

import (
	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// Data measures how far the approximate solution is from known values:
// mean((u(coords) - values)²). coords is [N, 1+d], values is [N, 1].
func Data[T tensor.Float, B autodiff.BackwardCapable](
	solNN *nn.Network[T, B],
	dataCoords, dataValues *tensor.Tensor[T, B],
) *tensor.Tensor[T, B] {
	u := solNN.Forward(dataCoords)
	return meanSquare(u.Sub(dataValues))
}

// IC enforces the initial condition: mean((u(coords) - values)²) over a
// batch of t = t₀ coordinates. Structurally a data-fit loss; it is kept
// separate because the PINNs mode reports it as its own term.
func IC[T tensor.Float, B autodiff.BackwardCapable](
	solNN *nn.Network[T, B],
	icCoords, icValues *tensor.Tensor[T, B],
) *tensor.Tensor[T, B] {
	u := solNN.Forward(icCoords)
	return meanSquare(u.Sub(icValues))
}

// meanSquare reduces a residual batch to mean(x²).
func meanSquare[T tensor.Float, B tensor.Backend](x *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	return x.Mul(x).Mean()
}
