package pde

import (
	"math/rand"

	"github.com/pde-ml/pdenet/tensor"
)

// CollocationPoints draws n interior points uniformly over the domain,
// returning an [n, 1+d] coordinate batch with time in column 0.
func CollocationPoints[T tensor.Float, B tensor.Backend](
	dom Domain, n int, rng *rand.Rand, backend B,
) *tensor.Tensor[T, B] {
	rows := make([][]T, n)
	for i := range rows {
		rows[i] = randomRow[T](dom, rng)
	}
	return mustFromRows(rows, backend)
}

// InitialSlice draws n points on the t = T0 face of the domain,
// returning an [n, 1+d] coordinate batch.
func InitialSlice[T tensor.Float, B tensor.Backend](
	dom Domain, n int, rng *rand.Rand, backend B,
) *tensor.Tensor[T, B] {
	rows := make([][]T, n)
	for i := range rows {
		row := randomRow[T](dom, rng)
		row[0] = T(dom.T0)
		rows[i] = row
	}
	return mustFromRows(rows, backend)
}

// BoundaryPairs draws n paired rows on opposite boundary faces: the
// i-th rows of the two returned [n, 1+d] batches agree in every
// coordinate except one spatial axis, which is pinned to its lower
// bound in the first batch and its upper bound in the second. The
// pinned axis cycles over the spatial axes.
func BoundaryPairs[T tensor.Float, B tensor.Backend](
	dom Domain, n int, rng *rand.Rand, backend B,
) (lower, upper *tensor.Tensor[T, B]) {
	d := dom.SpatialDims()
	lowerRows := make([][]T, n)
	upperRows := make([][]T, n)
	for i := 0; i < n; i++ {
		row := randomRow[T](dom, rng)
		axis := i % d
		lo := append([]T(nil), row...)
		hi := append([]T(nil), row...)
		lo[1+axis] = T(dom.XLow[axis])
		hi[1+axis] = T(dom.XHigh[axis])
		lowerRows[i] = lo
		upperRows[i] = hi
	}
	return mustFromRows(lowerRows, backend), mustFromRows(upperRows, backend)
}

// Solution evaluates a true solution u(t, x) on a coordinate batch,
// returning an [n, 1] value tensor. Used to build data-fit and
// initial-condition targets from a known reference solution.
func Solution[T tensor.Float, B tensor.Backend](
	coords *tensor.Tensor[T, B],
	u func(coord []float64) float64,
	backend B,
) *tensor.Tensor[T, B] {
	shape := coords.Shape()
	n, width := shape[0], shape[1]
	data := coords.Data()
	rows := make([][]T, n)
	coord := make([]float64, width)
	for i := 0; i < n; i++ {
		for j := 0; j < width; j++ {
			coord[j] = float64(data[i*width+j])
		}
		rows[i] = []T{T(u(coord))}
	}
	return mustFromRows(rows, backend)
}

// randomRow draws one [t, x₁ … x_d] coordinate uniformly from the box.
func randomRow[T tensor.Float](dom Domain, rng *rand.Rand) []T {
	unit := func() float64 {
		if rng != nil {
			return rng.Float64()
		}
		return rand.Float64()
	}
	row := make([]T, 1+dom.SpatialDims())
	row[0] = T(dom.T0 + (dom.T1-dom.T0)*unit())
	for j := range dom.XLow {
		row[1+j] = T(dom.XLow[j] + (dom.XHigh[j]-dom.XLow[j])*unit())
	}
	return row
}

func mustFromRows[T tensor.Float, B tensor.Backend](rows [][]T, backend B) *tensor.Tensor[T, B] {
	t, err := tensor.FromRows(rows, backend)
	if err != nil {
		panic(err)
	}
	return t
}
