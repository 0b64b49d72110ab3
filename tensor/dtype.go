// Package tensor provides the core tensor types for the pdenet framework.
package tensor

// Float is a constraint for supported tensor element types.
// PDE work needs real arithmetic only, in single or double precision.
type Float interface {
	~float32 | ~float64
}

// DataType represents runtime precision information for tensors.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseDataType maps a configuration string to a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32", "f32", "single":
		return Float32, true
	case "float64", "f64", "double":
		return Float64, true
	default:
		return Float32, false
	}
}

// inferDataType infers DataType from a generic element type T.
func inferDataType[T Float](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported element type")
	}
}
