package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/backend/cpu"
	"github.com/pde-ml/pdenet/tensor"
)

// numericalGradient approximates df/dx with a central difference.
func numericalGradient(f func(float64) float64, x, eps float64) float64 {
	return (f(x+eps) - f(x-eps)) / (2 * eps)
}

func TestGradientCheck_TanhChain(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(x) = x * tanh(x)
	point := 0.7
	x, err := tensor.FromSlice([]float64{point}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	y := x.Mul(x.Tanh())

	grads := autodiff.Backward(y, backend)
	got := grads[x.Raw()].AsFloat64()[0]

	want := numericalGradient(func(v float64) float64 { return v * math.Tanh(v) }, point, 1e-6)
	assert.InDelta(t, want, got, 1e-8)
}

func TestGradientCheck_Division(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(a, b) = a / b at (3, 4): df/da = 1/b, df/db = -a/b²
	a, _ := tensor.FromSlice([]float64{3}, tensor.Shape{1}, backend)
	b, _ := tensor.FromSlice([]float64{4}, tensor.Shape{1}, backend)
	y := a.Div(b)

	grads := autodiff.Backward(y, backend)
	assert.InDelta(t, 0.25, grads[a.Raw()].AsFloat64()[0], 1e-12)
	assert.InDelta(t, -3.0/16.0, grads[b.Raw()].AsFloat64()[0], 1e-12)
}

func TestSecondDerivative_Square(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(x) = x², f' = 2x, f'' = 2
	x, _ := tensor.FromSlice([]float64{3}, tensor.Shape{1}, backend)
	y := x.Mul(x)

	first := autodiff.Grad(y, x, backend)
	assert.InDelta(t, 6.0, first.Item(), 1e-12)

	second := autodiff.Grad(first, x, backend)
	assert.InDelta(t, 2.0, second.Item(), 1e-12)
}

func TestSecondDerivative_Tanh(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(x) = tanh(x), f'' = -2·tanh·(1 - tanh²)
	point := 0.5
	x, _ := tensor.FromSlice([]float64{point}, tensor.Shape{1}, backend)
	y := x.Tanh()

	first := autodiff.Grad(y, x, backend)
	th := math.Tanh(point)
	assert.InDelta(t, 1-th*th, first.Item(), 1e-12)

	second := autodiff.Grad(first, x, backend)
	assert.InDelta(t, -2*th*(1-th*th), second.Item(), 1e-10)
}

func TestThirdDerivative_Cube(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(x) = x³, f''' = 6
	x, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, backend)
	y := x.Mul(x).Mul(x)

	first := autodiff.Grad(y, x, backend)
	assert.InDelta(t, 12.0, first.Item(), 1e-12)

	second := autodiff.Grad(first, x, backend)
	assert.InDelta(t, 12.0, second.Item(), 1e-12)

	third := autodiff.Grad(second, x, backend)
	assert.InDelta(t, 6.0, third.Item(), 1e-12)
}

// Per-row input gradients: seeding a [N, 1] output with ones yields each
// row's derivative because rows pass through the computation
// independently.
func TestPerRowGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	x, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3, 1}, backend)
	y := x.Mul(x) // per row: x², derivative 2x

	g := autodiff.Grad(y, x, backend)
	assert.Equal(t, tensor.Shape{3, 1}, g.Shape())
	assert.Equal(t, []float64{2, 4, 6}, g.Data())
}

func TestGradientCheck_NarrowCat(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// Slicing a column out and concatenating it back must route the
	// gradient to the right positions.
	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	left := x.Narrow(1, 0, 1)
	right := x.Narrow(1, 1, 1)
	y := tensor.Cat([]*tensor.Tensor[float64, *autodiff.AutodiffBackend[*cpu.CPUBackend]]{
		left, right.MulScalar(10),
	}, 1).Sum()

	grads := autodiff.Backward(y, backend)
	assert.Equal(t, []float64{1, 10, 1, 10}, grads[x.Raw()].AsFloat64())
}
