package loss_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pde-ml/pdenet/autodiff"
	"github.com/pde-ml/pdenet/backend/cpu"
	"github.com/pde-ml/pdenet/loss"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

type cpuAD = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newNet(t *testing.T, inputDim int, hidden []int, seed int64, backend cpuAD) *nn.Network[float64, cpuAD] {
	t.Helper()
	net, err := nn.NewNetwork[float64](nn.NetworkConfig{InputDim: inputDim, Hidden: hidden},
		rand.New(rand.NewSource(seed)), backend)
	require.NoError(t, err)
	return net
}

// zeroOut sets every parameter of a network to zero, making it the
// constant zero function.
func zeroOut(net *nn.Network[float64, cpuAD]) {
	for _, p := range net.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = 0
		}
	}
}

func coords(t *testing.T, rows [][]float64, backend cpuAD) *tensor.Tensor[float64, cpuAD] {
	t.Helper()
	x, err := tensor.FromRows(rows, backend)
	require.NoError(t, err)
	return x
}

func TestData_ZeroAtPerfectFit(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{4}, 1, backend)
	zeroOut(solNN)

	c := coords(t, [][]float64{{0, 0}, {0.5, 0.5}}, backend)
	v := coords(t, [][]float64{{0}, {0}}, backend)

	l := loss.Data(solNN, c, v)
	assert.Equal(t, 0.0, l.Item())
	assert.True(t, autodiff.Attached(l, backend))
}

func TestData_NonNegativeAndAttached(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{6}, 2, backend)
	c := coords(t, [][]float64{{0, 0.1}, {0.2, -0.3}, {0.7, 0.9}}, backend)
	v := coords(t, [][]float64{{1}, {-1}, {0.5}}, backend)

	l := loss.Data(solNN, c, v)
	val := l.Item()
	assert.False(t, math.IsNaN(val) || math.IsInf(val, 0))
	assert.GreaterOrEqual(t, val, 0.0)
	assert.Equal(t, tensor.Shape{1}, l.Shape())
	assert.True(t, autodiff.Attached(l, backend))
}

func TestCollocation_FiniteNonNegative(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{8}, 3, backend) // d=1: inputs (t, x)
	pdeNN := newNet(t, 3, []int{4}, 4, backend) // inputs (u, u_x, u_xx)

	rng := rand.New(rand.NewSource(5))
	rows := make([][]float64, 10)
	for i := range rows {
		rows[i] = []float64{rng.Float64(), 2*rng.Float64() - 1}
	}
	c := coords(t, rows, backend)

	l := loss.Collocation(solNN, pdeNN, c)
	val := l.Item()
	assert.False(t, math.IsNaN(val) || math.IsInf(val, 0))
	assert.GreaterOrEqual(t, val, 0.0)
	assert.True(t, autodiff.Attached(l, backend))
}

func TestCollocation_ZeroForZeroNetworks(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{4}, 1, backend)
	pdeNN := newNet(t, 3, []int{4}, 2, backend)
	zeroOut(solNN)
	zeroOut(pdeNN)

	c := coords(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, backend)
	l := loss.Collocation(solNN, pdeNN, c)
	assert.Equal(t, 0.0, l.Item())
}

func TestCollocation_PanicsWithoutDifferentiation(t *testing.T) {
	backend := autodiff.New(cpu.New())

	solNN := newNet(t, 2, []int{4}, 1, backend)
	pdeNN := newNet(t, 3, []int{4}, 2, backend)
	c := coords(t, [][]float64{{0.1, 0.2}}, backend)

	assert.Panics(t, func() { loss.Collocation(solNN, pdeNN, c) })
}

func TestCollocation_TwoSpatialDims(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 3, []int{6}, 6, backend) // (t, x, y)
	pdeNN := newNet(t, 5, []int{4}, 7, backend) // (u, u_x, u_y, u_xx, u_yy)

	c := coords(t, [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}, {0.7, 0.8, 0.9}}, backend)
	l := loss.Collocation(solNN, pdeNN, c)
	val := l.Item()
	assert.False(t, math.IsNaN(val) || math.IsInf(val, 0))
	assert.GreaterOrEqual(t, val, 0.0)
}

func TestPeriodicBC_Order1_IdenticalBoundaries(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{6}, 8, backend)

	rows := [][]float64{{0.1, -1}, {0.5, -1}}
	lower := coords(t, rows, backend)
	upper := coords(t, rows, backend)

	l := loss.PeriodicBC(solNN, lower, upper, 1)
	assert.Equal(t, 0.0, l.Item())
}

func TestPeriodicBC_Order2(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{6}, 9, backend)

	lower := coords(t, [][]float64{{0.1, -1}, {0.5, -1}}, backend)
	upper := coords(t, [][]float64{{0.1, 1}, {0.5, 1}}, backend)

	l := loss.PeriodicBC(solNN, lower, upper, 2)
	val := l.Item()
	assert.False(t, math.IsNaN(val) || math.IsInf(val, 0))
	assert.GreaterOrEqual(t, val, 0.0)
	assert.True(t, autodiff.Attached(l, backend))
}

func TestPeriodicBC_HigherOrderNeedsMismatch(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{6}, 10, backend)
	lower := coords(t, [][]float64{{0.2, -1}}, backend)
	upper := coords(t, [][]float64{{0.2, 1}}, backend)

	// The derivative terms add residual the order-1 loss cannot see.
	l1 := loss.PeriodicBC(solNN, lower, upper, 1).Item()
	l3 := loss.PeriodicBC(solNN, lower, upper, 3).Item()
	assert.GreaterOrEqual(t, l3, l1)
}

func TestIC_MatchesDataForm(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	solNN := newNet(t, 2, []int{6}, 11, backend)
	c := coords(t, [][]float64{{0, -0.5}, {0, 0.5}}, backend)
	v := coords(t, [][]float64{{0.3}, {-0.3}}, backend)

	ic := loss.IC(solNN, c, v).Item()
	data := loss.Data(solNN, c, v).Item()
	assert.InDelta(t, data, ic, 1e-15)
}
