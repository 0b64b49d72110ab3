package ops

import "github.com/pde-ml/pdenet/tensor"

// reduceBroadcast reduces a gradient back to the shape of an input that
// was broadcast during the forward pass. Uses backend reductions only,
// so the reduction itself stays differentiable.
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}
	// A scalar target absorbs everything.
	if target.NumElements() == 1 {
		return backend.Reshape(backend.Sum(grad), target)
	}
	out := grad
	// Collapse leading dimensions the input never had.
	for len(out.Shape()) > len(target) {
		out = backend.SumDim(out, 0, false)
	}
	// Collapse dimensions the input held at size 1.
	for d := 0; d < len(target); d++ {
		if target[d] == 1 && out.Shape()[d] != 1 {
			out = backend.SumDim(out, d, true)
		}
	}
	if !out.Shape().Equal(target) {
		out = backend.Reshape(out, target)
	}
	return out
}

// onesLike creates a constant tensor of ones with x's shape and dtype.
// Constants are leaves: they carry no gradient history.
func onesLike(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	out := tensor.MustRaw(x.Shape(), x.DType(), backend.Device())
	switch x.DType() {
	case tensor.Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	}
	return out
}
