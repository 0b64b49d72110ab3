package tensor

// Backend defines the interface all compute backends must implement.
// Backends perform the actual numeric work on RawTensors; the autodiff
// layer decorates a backend to record operations for differentiation.
//
// Every operation allocates a fresh output tensor. Element-wise binary
// operations support NumPy-style broadcasting (needed for bias rows and
// scalar losses).
type Backend interface {
	// Element-wise binary operations (broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by a scalar.
	MulScalar(x *RawTensor, s float64) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Tanh applies the hyperbolic tangent element-wise.
	Tanh(x *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor                           // total sum, shape [1]
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along one dimension
	Mean(x *RawTensor) *RawTensor                          // total mean, shape [1]

	// Expand broadcasts x to the given shape (dims of size 1 repeat).
	Expand(x *RawTensor, shape Shape) *RawTensor

	// Narrow selects length entries of dim starting at start.
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Pad is Narrow's adjoint: embeds x into a zero tensor whose dim has
	// size total, placing x at offset start.
	Pad(x *RawTensor, dim, start, total int) *RawTensor

	// Cat concatenates tensors along dim.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Name returns the backend name.
	Name() string

	// Device returns the compute device.
	Device() Device
}
