package loss

import (
	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// PeriodicBC enforces periodic boundary conditions: the solution and
// its spatial derivatives up to order highestOrder-1 must agree between
// paired rows of the lower and upper domain boundaries.
//
// lower and upper are [N, 1+d] coordinate batches whose i-th rows share
// a time coordinate and sit on opposite boundary faces. For each
// spatial axis, successive derivatives along that axis are compared;
// every mismatch contributes its mean square to the total.
//
// highestOrder 1 compares only the solution values; values below 1 are
// treated as 1. Orders above 1 require the differentiation context and
// panic without it.
func PeriodicBC[T tensor.Float, B autodiff.BackwardCapable](
	solNN *nn.Network[T, B],
	lower, upper *tensor.Tensor[T, B],
	highestOrder int,
) *tensor.Tensor[T, B] {
	backend := lower.Backend()
	d := lower.Shape()[1] - 1

	uLower := solNN.Forward(lower)
	uUpper := solNN.Forward(upper)
	total := meanSquare(uLower.Sub(uUpper))

	for j := 1; j <= d; j++ {
		derivLower, derivUpper := uLower, uUpper
		for k := 1; k < highestOrder; k++ {
			derivLower = autodiff.Grad(derivLower, lower, backend).Narrow(1, j, 1)
			derivUpper = autodiff.Grad(derivUpper, upper, backend).Narrow(1, j, 1)
			total = total.Add(meanSquare(derivLower.Sub(derivUpper)))
		}
	}
	return total
}
