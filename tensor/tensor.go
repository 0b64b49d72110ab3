package tensor

import "fmt"

// Tensor is a generic tensor with element type T and backend B.
//
// Type Parameters:
//   - T: element type (float32 or float64); this is how numeric
//     precision is selected for a whole model
//   - B: computation backend (plain CPU, or an autodiff decorator)
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	coords := tensor.Zeros[float64](tensor.Shape{10, 2}, backend)
type Tensor[T Float, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New creates a Tensor from a RawTensor and backend.
// Panics if the raw dtype does not match T.
func New[T Float, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	var dummy T
	if raw.DType() != inferDataType(dummy) {
		panic(fmt.Sprintf("raw tensor dtype %s does not match element type", raw.DType()))
	}
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice creates a tensor from a Go slice. The data is copied.
func FromSlice[T Float, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// FromRows creates a rank-2 tensor from a slice of equally-sized rows.
// This is the natural constructor for coordinate batches.
func FromRows[T Float, B Backend](rows [][]T, b B) (*Tensor[T, B], error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("FromRows: need at least one row")
	}
	width := len(rows[0])
	flat := make([]T, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("FromRows: row %d has %d entries, want %d", i, len(row), width)
		}
		flat = append(flat, row...)
	}
	return FromSlice(flat, Shape{len(rows), width}, b)
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor[T, B]) DType() DataType {
	return t.raw.DType()
}

// Device returns the tensor's compute device.
func (t *Tensor[T, B]) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor[T, B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor[T, B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B {
	return t.backend
}

// Data returns a typed view of the tensor's storage.
func (t *Tensor[T, B]) Data() []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	default:
		panic("unsupported element type")
	}
}

// Item extracts the value of a single-element tensor as a plain scalar.
// This is how loss terms become reportable numbers; the result carries
// no differentiability.
func (t *Tensor[T, B]) Item() T {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item: tensor has %d elements, want 1", t.NumElements()))
	}
	return t.Data()[0]
}

// At returns the element at row i, column j of a rank-2 tensor.
func (t *Tensor[T, B]) At(i, j int) T {
	shape := t.Shape()
	if len(shape) != 2 {
		panic("At: tensor is not rank-2")
	}
	return t.Data()[i*shape[1]+j]
}
