package tensor

import (
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T Float, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T Float, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T Float, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values from a standard normal distribution.
// A nil rng falls back to the shared math/rand source.
func Randn[T Float, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	normFloat := func() float64 {
		if rng != nil {
			return rng.NormFloat64()
		}
		return rand.NormFloat64()
	}
	for i := range data {
		data[i] = T(normFloat())
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [low, high).
func Uniform[T Float, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	unit := func() float64 {
		if rng != nil {
			return rng.Float64()
		}
		return rand.Float64()
	}
	for i := range data {
		data[i] = T(low + (high-low)*unit())
	}
	return t
}

// Linspace creates a rank-1 tensor of n evenly spaced values in [low, high].
func Linspace[T Float, B Backend](low, high float64, n int, b B) *Tensor[T, B] {
	if n < 1 {
		panic("Linspace: n must be at least 1")
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	if n == 1 {
		data[0] = T(low)
		return t
	}
	step := (high - low) / float64(n-1)
	for i := range data {
		data[i] = T(low + float64(i)*step)
	}
	// Pin the endpoint against accumulated rounding.
	data[n-1] = T(high)
	return t
}
