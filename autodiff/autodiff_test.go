package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/backend/cpu"
	"github.com/pde-ml/pdenet/tensor"
)

func TestBackward_Composite(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(x) = (x + 2) * 3, df/dx = 3
	x, err := tensor.FromSlice([]float64{5}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	two, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, backend)

	y := x.Add(two).MulScalar(3)
	grads := autodiff.Backward(y, backend)

	require.Contains(t, grads, x.Raw())
	assert.Equal(t, 3.0, grads[x.Raw()].AsFloat64()[0])
}

func TestBackward_SharedInputAccumulates(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	// f(x) = x * x, df/dx = 2x
	x, _ := tensor.FromSlice([]float64{3}, tensor.Shape{1}, backend)
	y := x.Mul(x)
	grads := autodiff.Backward(y, backend)

	assert.Equal(t, 6.0, grads[x.Raw()].AsFloat64()[0])
}

func TestBackward_PanicsWithoutRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())

	x, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1}, backend)
	y := x.MulScalar(2) // not recorded

	assert.Panics(t, func() { autodiff.Backward(y, backend) })
}

func TestAttached(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	x, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1}, backend)
	off := x.MulScalar(2)
	assert.False(t, autodiff.Attached(off, backend), "op before recording must not attach")

	tape.StartRecording()
	defer tape.StopRecording()
	on := x.MulScalar(2)
	assert.True(t, autodiff.Attached(on, backend))
	assert.False(t, autodiff.Attached(x, backend), "leaves are not produced by any op")
}

func TestGrad_PanicsWhenIndependent(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	x, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1}, backend)
	z, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1}, backend)
	y := x.MulScalar(2)

	assert.Panics(t, func() { autodiff.Grad(y, z, backend) })
}

func TestGrad_StaysAttached(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	x, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, backend)
	y := x.Mul(x)

	g := autodiff.Grad(y, x, backend)
	assert.Equal(t, 4.0, g.Item())
	assert.True(t, autodiff.Attached(g, backend),
		"create-graph gradients must be differentiable again")
}

func TestTapeClear(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	x, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1}, backend)
	y := x.MulScalar(2)
	require.True(t, autodiff.Attached(y, backend))

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.False(t, autodiff.Attached(y, backend))
	assert.True(t, tape.IsRecording(), "Clear keeps the recording flag")
}

func TestBackward_MatMul(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b, _ := tensor.FromSlice([]float64{5, 6, 7, 8}, tensor.Shape{2, 2}, backend)

	y := a.MatMul(b).Sum()
	grads := autodiff.Backward(y, backend)

	// d(sum(A·B))/dA = ones·Bᵀ, d/dB = Aᵀ·ones
	assert.Equal(t, []float64{11, 15, 11, 15}, grads[a.Raw()].AsFloat64())
	assert.Equal(t, []float64{4, 4, 6, 6}, grads[b.Raw()].AsFloat64())
}
