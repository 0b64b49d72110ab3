package optim

import (
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// SGDConfig configures stochastic gradient descent.
type SGDConfig struct {
	LR       float64 // learning rate
	Momentum float64 // momentum coefficient, 0 disables momentum
}

// SGD implements stochastic gradient descent with optional momentum.
// Step invokes the closure exactly once.
type SGD[T tensor.Float, B tensor.Backend] struct {
	params   []*nn.Parameter[T, B]
	lr       float64
	momentum float64

	// velocity buffers, lazily allocated per parameter
	velocity map[*nn.Parameter[T, B]][]float64
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B], cfg SGDConfig) *SGD[T, B] {
	return &SGD[T, B]{
		params:   params,
		lr:       cfg.LR,
		momentum: cfg.Momentum,
		velocity: make(map[*nn.Parameter[T, B]][]float64),
	}
}

func (s *SGD[T, B]) Step(closure Closure[T, B]) *tensor.Tensor[T, B] {
	loss := closure()
	for _, p := range s.params {
		g := p.Grad()
		if g == nil {
			continue
		}
		data := p.Tensor().Data()
		grad := g.Data()
		if s.momentum != 0 {
			v, ok := s.velocity[p]
			if !ok {
				v = make([]float64, len(data))
				s.velocity[p] = v
			}
			for i := range data {
				v[i] = s.momentum*v[i] + float64(grad[i])
				data[i] -= T(s.lr * v[i])
			}
		} else {
			for i := range data {
				data[i] -= T(s.lr * float64(grad[i]))
			}
		}
	}
	return loss
}

func (s *SGD[T, B]) ZeroGrad() {
	zeroGrads(s.params)
}

func (s *SGD[T, B]) GetLR() float64 { return s.lr }
