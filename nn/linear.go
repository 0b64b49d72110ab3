package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pde-ml/pdenet/tensor"
)

// Linear implements a fully connected layer: y = x @ Wᵀ + b.
//
//   - x: [batch, in]
//   - W: [out, in], Xavier/Glorot uniform initialized
//   - b: [out], zero initialized
//   - y: [batch, out]
type Linear[T tensor.Float, B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[T, B]
	bias        *Parameter[T, B]
}

// NewLinear creates a new Linear layer. A nil rng falls back to the
// shared math/rand source.
func NewLinear[T tensor.Float, B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[T, B] {
	weight := xavierUniform[T, B](inFeatures, outFeatures, rng, backend)
	bias := tensor.Zeros[T, B](tensor.Shape{outFeatures}, backend)
	return &Linear[T, B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
	}
}

// Forward computes y = x @ Wᵀ + b for x of shape [batch, in].
func (l *Linear[T, B]) Forward(input *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected rank-2 input [batch, features], got %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected %d input features, got %d", l.inFeatures, shape[1]))
	}
	output := input.MatMul(l.weight.Tensor().T())
	// Reshape the bias to [1, out] so it broadcasts over the batch.
	return output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
}

// Parameters returns [weight, bias].
func (l *Linear[T, B]) Parameters() []*Parameter[T, B] {
	return []*Parameter[T, B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[T, B]) Weight() *Parameter[T, B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[T, B]) Bias() *Parameter[T, B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[T, B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[T, B]) OutFeatures() int {
	return l.outFeatures
}

// xavierUniform initializes a [out, in] weight tensor from
// U(-limit, limit) with limit = sqrt(6 / (in + out)).
func xavierUniform[T tensor.Float, B tensor.Backend](in, out int, rng *rand.Rand, backend B) *tensor.Tensor[T, B] {
	limit := math.Sqrt(6.0 / float64(in+out))
	return tensor.Uniform[T, B](tensor.Shape{out, in}, -limit, limit, rng, backend)
}
