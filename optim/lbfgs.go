package optim

import (
	"github.com/pde-ml/pdenet/nn"
	"github.com/pde-ml/pdenet/tensor"
)

// LBFGSConfig configures the L-BFGS optimizer.
type LBFGSConfig struct {
	LR            float64 // initial step length (1 is standard)
	HistorySize   int     // number of (s, y) curvature pairs to keep, default 10
	MaxLineSearch int     // Armijo backtracking iterations, 0 takes a fixed step
}

// LBFGS implements the limited-memory BFGS quasi-Newton method with the
// standard two-loop recursion and optional Armijo backtracking line
// search. Each line search trial re-invokes the closure at the trial
// point, so a single Step may evaluate the objective several times.
type LBFGS[T tensor.Float, B tensor.Backend] struct {
	params        []*nn.Parameter[T, B]
	lr            float64
	historySize   int
	maxLineSearch int

	sHist [][]float64 // parameter displacements, oldest first
	yHist [][]float64 // gradient displacements, oldest first

	prevX    []float64
	prevGrad []float64
}

// NewLBFGS creates an L-BFGS optimizer over the given parameters.
func NewLBFGS[T tensor.Float, B tensor.Backend](params []*nn.Parameter[T, B], cfg LBFGSConfig) *LBFGS[T, B] {
	if cfg.LR == 0 {
		cfg.LR = 1
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = 10
	}
	return &LBFGS[T, B]{
		params:        params,
		lr:            cfg.LR,
		historySize:   cfg.HistorySize,
		maxLineSearch: cfg.MaxLineSearch,
	}
}

func (l *LBFGS[T, B]) Step(closure Closure[T, B]) *tensor.Tensor[T, B] {
	loss := closure()
	grad, ok := flatGrads(l.params)
	if !ok {
		// The closure skipped its backward pass; nothing to update.
		return loss
	}
	x := flatParams(l.params)

	if l.prevX != nil {
		s := vsub(x, l.prevX)
		y := vsub(grad, l.prevGrad)
		// Keep the pair only when curvature is positive, otherwise the
		// two-loop recursion can produce an ascent direction.
		if vdot(s, y) > 1e-10 {
			l.sHist = append(l.sHist, s)
			l.yHist = append(l.yHist, y)
			if len(l.sHist) > l.historySize {
				l.sHist = l.sHist[1:]
				l.yHist = l.yHist[1:]
			}
		}
	}
	l.prevX = x
	l.prevGrad = grad

	dir := l.direction(grad)

	if l.maxLineSearch <= 0 {
		setFlatParams(l.params, vaxpy(x, l.lr, dir))
		return loss
	}

	f0 := float64(loss.Item())
	g0 := vdot(grad, dir) // negative for a descent direction
	t := l.lr
	for i := 0; i < l.maxLineSearch; i++ {
		setFlatParams(l.params, vaxpy(x, t, dir))
		trial := closure()
		if float64(trial.Item()) <= f0+1e-4*t*g0 {
			return trial
		}
		loss = trial
		t *= 0.5
	}
	// Sufficient decrease never held; the parameters sit at the last
	// (smallest-step) trial point.
	return loss
}

// direction computes the quasi-Newton descent direction -H·grad via the
// two-loop recursion over the stored curvature pairs. With an empty
// history this is plain steepest descent.
func (l *LBFGS[T, B]) direction(grad []float64) []float64 {
	q := make([]float64, len(grad))
	copy(q, grad)
	k := len(l.sHist)
	alpha := make([]float64, k)
	rho := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		rho[i] = 1 / vdot(l.yHist[i], l.sHist[i])
		alpha[i] = rho[i] * vdot(l.sHist[i], q)
		for j := range q {
			q[j] -= alpha[i] * l.yHist[i][j]
		}
	}
	if k > 0 {
		s, y := l.sHist[k-1], l.yHist[k-1]
		gamma := vdot(s, y) / vdot(y, y)
		for j := range q {
			q[j] *= gamma
		}
	}
	for i := 0; i < k; i++ {
		beta := rho[i] * vdot(l.yHist[i], q)
		for j := range q {
			q[j] += l.sHist[i][j] * (alpha[i] - beta)
		}
	}
	for j := range q {
		q[j] = -q[j]
	}
	return q
}

func (l *LBFGS[T, B]) ZeroGrad() {
	zeroGrads(l.params)
}

func (l *LBFGS[T, B]) GetLR() float64 { return l.lr }

func vdot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func vsub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// vaxpy returns a + t*d.
func vaxpy(a []float64, t float64, d []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + t*d[i]
	}
	return out
}
