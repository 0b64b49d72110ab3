// Package cpu implements the pure-Go CPU backend.
//
// Kernels operate on RawTensors and support float32 and float64 via a
// dtype switch. Every operation allocates a fresh output; inputs are
// never mutated, which the autodiff tape relies on.
package cpu

import (
	"fmt"
	"math"

	"github.com/pde-ml/pdenet/tensor"
)

// CPUBackend implements tensor.Backend with straightforward Go loops.
type CPUBackend struct{}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// Name returns the backend name.
func (c *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *CPUBackend) Device() tensor.Device {
	return tensor.CPU
}

// Add performs element-wise addition with broadcasting.
func (c *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp(a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (c *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp(a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (c *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp(a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (c *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp(a, b, func(x, y float64) float64 { return x / y })
}

// MulScalar multiplies every element by a scalar.
func (c *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return c.unaryOp(x, func(v float64) float64 { return v * s })
}

// Tanh applies the hyperbolic tangent element-wise.
func (c *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp(x, math.Tanh)
}

// MatMul performs 2D matrix multiplication.
func (c *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("MatMul: need rank-2 tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("MatMul: inner dimensions disagree: %v @ %v", as, bs))
	}
	m, k, n := as[0], as[1], bs[1]
	out := tensor.MustRaw(tensor.Shape{m, n}, a.DType(), c.Device())

	switch a.DType() {
	case tensor.Float32:
		av, bv, ov := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		for i := 0; i < m; i++ {
			for p := 0; p < k; p++ {
				aip := av[i*k+p]
				if aip == 0 {
					continue
				}
				for j := 0; j < n; j++ {
					ov[i*n+j] += aip * bv[p*n+j]
				}
			}
		}
	case tensor.Float64:
		av, bv, ov := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i := 0; i < m; i++ {
			for p := 0; p < k; p++ {
				aip := av[i*k+p]
				if aip == 0 {
					continue
				}
				for j := 0; j < n; j++ {
					ov[i*n+j] += aip * bv[p*n+j]
				}
			}
		}
	}
	return out
}

// Reshape returns a copy of t with a new shape.
func (c *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("Reshape: cannot reshape %v to %v", t.Shape(), newShape))
	}
	out := tensor.MustRaw(newShape, t.DType(), c.Device())
	copy(out.Bytes(), t.Bytes())
	return out
}

// Transpose returns the 2D transpose of t.
func (c *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Transpose: need a rank-2 tensor, got %v", shape))
	}
	rows, cols := shape[0], shape[1]
	out := tensor.MustRaw(tensor.Shape{cols, rows}, t.DType(), c.Device())

	switch t.DType() {
	case tensor.Float32:
		in, ov := t.AsFloat32(), out.AsFloat32()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				ov[j*rows+i] = in[i*cols+j]
			}
		}
	case tensor.Float64:
		in, ov := t.AsFloat64(), out.AsFloat64()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				ov[j*rows+i] = in[i*cols+j]
			}
		}
	}
	return out
}

// Sum reduces all elements to a single-element tensor.
func (c *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.MustRaw(tensor.Shape{1}, x.DType(), c.Device())
	switch x.DType() {
	case tensor.Float32:
		var acc float32
		for _, v := range x.AsFloat32() {
			acc += v
		}
		out.AsFloat32()[0] = acc
	case tensor.Float64:
		var acc float64
		for _, v := range x.AsFloat64() {
			acc += v
		}
		out.AsFloat64()[0] = acc
	}
	return out
}

// Mean reduces all elements to their mean as a single-element tensor.
func (c *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	return c.MulScalar(c.Sum(x), 1/float64(x.NumElements()))
}

// SumDim sums a rank-2 tensor along one dimension.
func (c *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SumDim: need a rank-2 tensor, got %v", shape))
	}
	if dim != 0 && dim != 1 {
		panic(fmt.Sprintf("SumDim: invalid dim %d", dim))
	}
	rows, cols := shape[0], shape[1]

	var outShape tensor.Shape
	switch {
	case dim == 0 && keepDim:
		outShape = tensor.Shape{1, cols}
	case dim == 0:
		outShape = tensor.Shape{cols}
	case keepDim:
		outShape = tensor.Shape{rows, 1}
	default:
		outShape = tensor.Shape{rows}
	}
	out := tensor.MustRaw(outShape, x.DType(), c.Device())

	accumulate := func(get func(int) float64, set func(int, float64)) {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := get(i*cols + j)
				if dim == 0 {
					set(j, v)
				} else {
					set(i, v)
				}
			}
		}
	}
	switch x.DType() {
	case tensor.Float32:
		in, ov := x.AsFloat32(), out.AsFloat32()
		accumulate(
			func(i int) float64 { return float64(in[i]) },
			func(i int, v float64) { ov[i] += float32(v) },
		)
	case tensor.Float64:
		in, ov := x.AsFloat64(), out.AsFloat64()
		accumulate(
			func(i int) float64 { return in[i] },
			func(i int, v float64) { ov[i] += v },
		)
	}
	return out
}

// Expand broadcasts x to the given shape.
func (c *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	broadcast, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !broadcast.Equal(shape) {
		panic(fmt.Sprintf("Expand: cannot expand %v to %v", x.Shape(), shape))
	}
	out := tensor.MustRaw(shape, x.DType(), c.Device())
	n := shape.NumElements()
	switch x.DType() {
	case tensor.Float32:
		in, ov := x.AsFloat32(), out.AsFloat32()
		for i := 0; i < n; i++ {
			ov[i] = in[broadcastIndex(i, shape, x.Shape())]
		}
	case tensor.Float64:
		in, ov := x.AsFloat64(), out.AsFloat64()
		for i := 0; i < n; i++ {
			ov[i] = in[broadcastIndex(i, shape, x.Shape())]
		}
	}
	return out
}

// Narrow selects length entries of dim starting at start.
func (c *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("Narrow: invalid dim %d for shape %v", dim, shape))
	}
	if start < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("Narrow: range [%d, %d) out of bounds for dim of size %d", start, start+length, shape[dim]))
	}
	outShape := shape.Clone()
	outShape[dim] = length
	out := tensor.MustRaw(outShape, x.DType(), c.Device())
	copyWindow(x, out, dim, start, false)
	return out
}

// Pad embeds x into a zero tensor whose dim has size total at offset start.
func (c *CPUBackend) Pad(x *tensor.RawTensor, dim, start, total int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("Pad: invalid dim %d for shape %v", dim, shape))
	}
	if start < 0 || start+shape[dim] > total {
		panic(fmt.Sprintf("Pad: window [%d, %d) out of bounds for dim of size %d", start, start+shape[dim], total))
	}
	outShape := shape.Clone()
	outShape[dim] = total
	out := tensor.MustRaw(outShape, x.DType(), c.Device())
	copyWindow(out, x, dim, start, true)
	return out
}

// Cat concatenates tensors along dim.
func (c *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("Cat: need at least one tensor")
	}
	first := tensors[0].Shape()
	if dim < 0 || dim >= len(first) {
		panic(fmt.Sprintf("Cat: invalid dim %d for shape %v", dim, first))
	}
	total := 0
	for _, t := range tensors {
		shape := t.Shape()
		if len(shape) != len(first) {
			panic("Cat: rank mismatch")
		}
		for d := range shape {
			if d != dim && shape[d] != first[d] {
				panic(fmt.Sprintf("Cat: shape mismatch at dim %d: %v vs %v", d, first, shape))
			}
		}
		total += shape[dim]
	}
	outShape := first.Clone()
	outShape[dim] = total
	out := tensor.MustRaw(outShape, tensors[0].DType(), c.Device())

	offset := 0
	for _, t := range tensors {
		copyWindow(out, t, dim, offset, true)
		offset += t.Shape()[dim]
	}
	return out
}
