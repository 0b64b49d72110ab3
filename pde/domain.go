// Package pde describes space-time computation domains and samples the
// coordinate batches the loss evaluators consume: collocation points in
// the interior, an initial-condition slice at t₀, and paired rows on
// opposite boundary faces for periodicity.
//
// All sampling is deterministic under a caller-supplied random source.
package pde

import "fmt"

// Domain is a space-time box [T0, T1] × Π_j [XLow[j], XHigh[j]].
type Domain struct {
	T0, T1 float64
	XLow   []float64
	XHigh  []float64
}

// SpatialDims returns the number of spatial axes d.
func (d Domain) SpatialDims() int { return len(d.XLow) }

// Validate checks the box is well formed: at least one spatial axis,
// matching bound lengths, and every lower bound strictly below its
// upper bound.
func (d Domain) Validate() error {
	if len(d.XLow) == 0 {
		return fmt.Errorf("pde: domain has no spatial axes")
	}
	if len(d.XLow) != len(d.XHigh) {
		return fmt.Errorf("pde: %d lower bounds but %d upper bounds", len(d.XLow), len(d.XHigh))
	}
	if d.T0 >= d.T1 {
		return fmt.Errorf("pde: empty time interval [%v, %v]", d.T0, d.T1)
	}
	for j := range d.XLow {
		if d.XLow[j] >= d.XHigh[j] {
			return fmt.Errorf("pde: empty spatial interval [%v, %v] on axis %d", d.XLow[j], d.XHigh[j], j)
		}
	}
	return nil
}
