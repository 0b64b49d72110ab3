package cpu

import (
	"fmt"

	"github.com/pde-ml/pdenet/tensor"
)

// unaryOp applies f element-wise, allocating a fresh output.
func (c *CPUBackend) unaryOp(x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	out := tensor.MustRaw(x.Shape(), x.DType(), c.Device())
	switch x.DType() {
	case tensor.Float32:
		in, ov := x.AsFloat32(), out.AsFloat32()
		for i, v := range in {
			ov[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		in, ov := x.AsFloat64(), out.AsFloat64()
		for i, v := range in {
			ov[i] = f(v)
		}
	}
	return out
}

// binaryOp applies f element-wise with NumPy-style broadcasting.
func (c *CPUBackend) binaryOp(a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("binary op: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err)
	}
	out := tensor.MustRaw(outShape, a.DType(), c.Device())
	n := outShape.NumElements()

	// Fast path: identical shapes need no index translation.
	sameShape := a.Shape().Equal(b.Shape()) && a.Shape().Equal(outShape)

	switch a.DType() {
	case tensor.Float32:
		av, bv, ov := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		if sameShape {
			for i := range ov {
				ov[i] = float32(f(float64(av[i]), float64(bv[i])))
			}
			return out
		}
		for i := 0; i < n; i++ {
			x := av[broadcastIndex(i, outShape, a.Shape())]
			y := bv[broadcastIndex(i, outShape, b.Shape())]
			ov[i] = float32(f(float64(x), float64(y)))
		}
	case tensor.Float64:
		av, bv, ov := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		if sameShape {
			for i := range ov {
				ov[i] = f(av[i], bv[i])
			}
			return out
		}
		for i := 0; i < n; i++ {
			x := av[broadcastIndex(i, outShape, a.Shape())]
			y := bv[broadcastIndex(i, outShape, b.Shape())]
			ov[i] = f(x, y)
		}
	}
	return out
}

// broadcastIndex maps a flat index into outShape onto the flat index of
// the (possibly lower-rank, possibly size-1-dim) input shape.
func broadcastIndex(flat int, outShape, inShape tensor.Shape) int {
	inStrides := inShape.ComputeStrides()
	idx := 0
	rem := flat
	outStrides := outShape.ComputeStrides()
	offset := len(outShape) - len(inShape)
	for d := 0; d < len(outShape); d++ {
		coord := rem / outStrides[d]
		rem %= outStrides[d]
		in := d - offset
		if in < 0 {
			continue
		}
		if inShape[in] == 1 {
			continue
		}
		idx += coord * inStrides[in]
	}
	return idx
}

// copyWindow copies between a tensor and a window of a larger tensor
// along dim. With intoBig true the small tensor is written into big at
// offset start; otherwise the window of big is read into small.
func copyWindow(big, small *tensor.RawTensor, dim, start int, intoBig bool) {
	smallShape := small.Shape()
	bigStrides := big.Shape().ComputeStrides()
	smallStrides := smallShape.ComputeStrides()
	n := smallShape.NumElements()

	bigIndex := func(flat int) int {
		rem := flat
		idx := 0
		for d := 0; d < len(smallShape); d++ {
			coord := rem / smallStrides[d]
			rem %= smallStrides[d]
			if d == dim {
				coord += start
			}
			idx += coord * bigStrides[d]
		}
		return idx
	}

	switch big.DType() {
	case tensor.Float32:
		bv, sv := big.AsFloat32(), small.AsFloat32()
		for i := 0; i < n; i++ {
			if intoBig {
				bv[bigIndex(i)] = sv[i]
			} else {
				sv[i] = bv[bigIndex(i)]
			}
		}
	case tensor.Float64:
		bv, sv := big.AsFloat64(), small.AsFloat64()
		for i := 0; i < n; i++ {
			if intoBig {
				bv[bigIndex(i)] = sv[i]
			} else {
				sv[i] = bv[bigIndex(i)]
			}
		}
	}
}
