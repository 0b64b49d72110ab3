package optim

import (
	"math"

	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// AdamConfig configures the Adam optimizer. Zero-valued fields fall
// back to the usual defaults (beta1 0.9, beta2 0.999, eps 1e-8).
type AdamConfig struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

// Adam implements the Adam optimizer with bias-corrected first and
// second moment estimates. Step invokes the closure exactly once.
type Adam[T tensor.Float, B tensor.Backend] struct {
	params []*nn.Parameter[T, B]
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	step   int

	m map[*nn.Parameter[T, B]][]float64
	v map[*nn.Parameter[T, B]][]float64
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B], cfg AdamConfig) *Adam[T, B] {
	if cfg.Beta1 == 0 {
		cfg.Beta1 = 0.9
	}
	if cfg.Beta2 == 0 {
		cfg.Beta2 = 0.999
	}
	if cfg.Eps == 0 {
		cfg.Eps = 1e-8
	}
	return &Adam[T, B]{
		params: params,
		lr:     cfg.LR,
		beta1:  cfg.Beta1,
		beta2:  cfg.Beta2,
		eps:    cfg.Eps,
		m:      make(map[*nn.Parameter[T, B]][]float64),
		v:      make(map[*nn.Parameter[T, B]][]float64),
	}
}

func (a *Adam[T, B]) Step(closure Closure[T, B]) *tensor.Tensor[T, B] {
	loss := closure()
	a.step++
	bc1 := 1 - math.Pow(a.beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.beta2, float64(a.step))
	for _, p := range a.params {
		g := p.Grad()
		if g == nil {
			continue
		}
		data := p.Tensor().Data()
		grad := g.Data()
		m, ok := a.m[p]
		if !ok {
			m = make([]float64, len(data))
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v = make([]float64, len(data))
			a.v[p] = v
		}
		for i := range data {
			gi := float64(grad[i])
			m[i] = a.beta1*m[i] + (1-a.beta1)*gi
			v[i] = a.beta2*v[i] + (1-a.beta2)*gi*gi
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			data[i] -= T(a.lr * mHat / (math.Sqrt(vHat) + a.eps))
		}
	}
	return loss
}

func (a *Adam[T, B]) ZeroGrad() {
	zeroGrads(a.params)
}

func (a *Adam[T, B]) GetLR() float64 { return a.lr }
