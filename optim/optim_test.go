package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pde-ml/pdenet/backend/cpu"
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/optim"
	"github.com/pde-ml/pdenet/tensor"
)

func newParam(t *testing.T, name string, vals []float64, backend *cpu.CPUBackend) *nn.Parameter[float64, *cpu.CPUBackend] {
	t.Helper()
	x, err := tensor.FromSlice(vals, tensor.Shape{len(vals)}, backend)
	require.NoError(t, err)
	return nn.NewParameter(name, x)
}

func setGrad(t *testing.T, p *nn.Parameter[float64, *cpu.CPUBackend], vals []float64, backend *cpu.CPUBackend) {
	t.Helper()
	g, err := tensor.FromSlice(vals, tensor.Shape{len(vals)}, backend)
	require.NoError(t, err)
	p.SetGrad(g)
}

func scalarLoss(t *testing.T, v float64, backend *cpu.CPUBackend) *tensor.Tensor[float64, *cpu.CPUBackend] {
	t.Helper()
	l, err := tensor.FromSlice([]float64{v}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	return l
}

func TestSGD_SimpleUpdate(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{2}, backend)

	opt := optim.NewSGD([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.SGDConfig{LR: 0.1})

	calls := 0
	opt.Step(func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		calls++
		setGrad(t, p, []float64{1}, backend)
		return scalarLoss(t, 1, backend)
	})

	assert.Equal(t, 1, calls, "SGD invokes the closure exactly once")
	assert.InDelta(t, 1.9, p.Tensor().Data()[0], 1e-12)
}

func TestSGD_Momentum(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{2}, backend)

	opt := optim.NewSGD([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	closure := func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		setGrad(t, p, []float64{1}, backend)
		return scalarLoss(t, 1, backend)
	}

	opt.Step(closure)
	assert.InDelta(t, 1.9, p.Tensor().Data()[0], 1e-12)

	// Second step: v = 0.9·1 + 1 = 1.9, x = 1.9 - 0.1·1.9 = 1.71
	opt.Step(closure)
	assert.InDelta(t, 1.71, p.Tensor().Data()[0], 1e-12)
}

func TestSGD_SkipsMissingGradient(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{2}, backend)

	opt := optim.NewSGD([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.SGDConfig{LR: 0.1})
	opt.Step(func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		return scalarLoss(t, 1, backend)
	})

	assert.Equal(t, 2.0, p.Tensor().Data()[0], "no gradient, no update")
}

func TestZeroGrad(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{2}, backend)
	setGrad(t, p, []float64{1}, backend)

	opt := optim.NewSGD([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.SGDConfig{LR: 0.1})
	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestAdam_FirstStep(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{2}, backend)

	opt := optim.NewAdam([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.AdamConfig{LR: 0.01})
	opt.Step(func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		setGrad(t, p, []float64{1}, backend)
		return scalarLoss(t, 1, backend)
	})

	// Bias correction makes the first step ≈ lr regardless of gradient
	// magnitude: mHat = g, vHat = g², update = lr·g/(|g| + eps).
	assert.InDelta(t, 2-0.01, p.Tensor().Data()[0], 1e-6)
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{5}, backend)

	opt := optim.NewAdam([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.AdamConfig{LR: 0.1})

	// f(x) = (x - 3)²
	closure := func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		x := p.Tensor().Data()[0]
		setGrad(t, p, []float64{2 * (x - 3)}, backend)
		return scalarLoss(t, (x-3)*(x-3), backend)
	}
	for i := 0; i < 500; i++ {
		opt.Step(closure)
	}
	assert.InDelta(t, 3.0, p.Tensor().Data()[0], 1e-2)
}

func TestLBFGS_QuadraticConverges(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{4, -2}, backend)
	target := []float64{1, 2}

	opt := optim.NewLBFGS([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.LBFGSConfig{
		LR:            1,
		HistorySize:   5,
		MaxLineSearch: 10,
	})

	// f(x) = Σ (x_i - c_i)²
	closure := func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		x := p.Tensor().Data()
		f := 0.0
		g := make([]float64, len(x))
		for i := range x {
			d := x[i] - target[i]
			f += d * d
			g[i] = 2 * d
		}
		setGrad(t, p, g, backend)
		return scalarLoss(t, f, backend)
	}

	for i := 0; i < 20; i++ {
		opt.Step(closure)
	}
	assert.InDelta(t, target[0], p.Tensor().Data()[0], 1e-6)
	assert.InDelta(t, target[1], p.Tensor().Data()[1], 1e-6)
}

func TestLBFGS_LineSearchReinvokesClosure(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{10}, backend)

	opt := optim.NewLBFGS([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.LBFGSConfig{
		LR:            1,
		MaxLineSearch: 10,
	})

	calls := 0
	opt.Step(func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		calls++
		x := p.Tensor().Data()[0]
		setGrad(t, p, []float64{2 * x}, backend)
		return scalarLoss(t, x*x, backend)
	})

	assert.Greater(t, calls, 1, "line search must probe trial points")
}

func TestLBFGS_NoGradientIsNoOp(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{7}, backend)

	opt := optim.NewLBFGS([]*nn.Parameter[float64, *cpu.CPUBackend]{p}, optim.LBFGSConfig{LR: 1})
	loss := opt.Step(func() *tensor.Tensor[float64, *cpu.CPUBackend] {
		return scalarLoss(t, 42, backend)
	})

	require.NotNil(t, loss)
	assert.Equal(t, 42.0, loss.Item())
	assert.Equal(t, 7.0, p.Tensor().Data()[0])
}

func TestGetLR(t *testing.T) {
	backend := cpu.New()
	p := newParam(t, "x", []float64{1}, backend)
	params := []*nn.Parameter[float64, *cpu.CPUBackend]{p}

	assert.Equal(t, 0.5, optim.NewSGD(params, optim.SGDConfig{LR: 0.5}).GetLR())
	assert.Equal(t, 0.01, optim.NewAdam(params, optim.AdamConfig{LR: 0.01}).GetLR())
	assert.Equal(t, 1.0, optim.NewLBFGS(params, optim.LBFGSConfig{}).GetLR())
}
