// Package optim implements optimization algorithms over network
// parameters.
//
// All optimizers follow the closure protocol: Step receives a
// zero-argument closure that re-evaluates the composite loss,
// back-propagates, and returns the loss tensor. The optimizer may
// invoke the closure any number of times, including zero. Quasi-Newton
// line searches re-evaluate the objective several times before
// committing a parameter update. Gradients travel through the
// parameters themselves: the closure stores them with Parameter.SetGrad
// and the optimizer reads Parameter.Grad.
//
// Example:
//
//	opt := optim.NewLBFGS(net.Parameters(), optim.LBFGSConfig{LR: 1})
//	opt.Step(func() *tensor.Tensor[float64, B] {
//	    if tape.IsRecording() {
//	        opt.ZeroGrad()
//	        tape.Clear()
//	    }
//	    l := computeLoss()
//	    backpropagate(l)
//	    return l
//	})
package optim

import (
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// Closure re-evaluates the objective. Each invocation is expected to
// clear previously accumulated gradients (when differentiation is
// enabled), recompute the loss, back-propagate, and return the loss.
type Closure[T tensor.Float, B tensor.Backend] func() *tensor.Tensor[T, B]

// Optimizer is the base interface for all optimization algorithms.
type Optimizer[T tensor.Float, B tensor.Backend] interface {
	// Step performs one optimization step, driving the closure as its
	// algorithm requires, and returns the last loss the closure
	// produced (nil if the closure was never invoked).
	Step(closure Closure[T, B]) *tensor.Tensor[T, B]

	// ZeroGrad clears the gradients of all tracked parameters.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// zeroGrads clears gradients on a parameter list.
func zeroGrads[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// flatParams copies all parameter values into one float64 vector.
func flatParams[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B]) []float64 {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	out := make([]float64, 0, n)
	for _, p := range params {
		for _, v := range p.Tensor().Data() {
			out = append(out, float64(v))
		}
	}
	return out
}

// flatGrads copies all parameter gradients into one float64 vector.
// Returns false if no parameter carries a gradient (the closure skipped
// its backward pass); parameters without gradients contribute zeros.
func flatGrads[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B]) ([]float64, bool) {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	out := make([]float64, 0, n)
	any := false
	for _, p := range params {
		if g := p.Grad(); g != nil {
			any = true
			for _, v := range g.Data() {
				out = append(out, float64(v))
			}
		} else {
			out = append(out, make([]float64, p.Tensor().NumElements())...)
		}
	}
	return out, any
}

// setFlatParams writes a flat float64 vector back into the parameters.
func setFlatParams[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B], flat []float64) {
	i := 0
	for _, p := range params {
		data := p.Tensor().Data()
		for j := range data {
			data[j] = T(flat[i])
			i++
		}
	}
}
