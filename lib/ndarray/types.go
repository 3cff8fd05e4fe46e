package ndarray

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Data Types
// --------------------------------------------------------------------------

// DataType is the element type of an array
type DataType int

const (
	Int8 DataType = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
)

// dataTypeInfo maps every supported data type to its wire name and element size
var dataTypeInfo = map[DataType]struct {
	name string
	size int
}{
	Int8:    {"int8", 1},
	UInt8:   {"uint8", 1},
	Int16:   {"int16", 2},
	UInt16:  {"uint16", 2},
	Int32:   {"int32", 4},
	UInt32:  {"uint32", 4},
	Int64:   {"int64", 8},
	UInt64:  {"uint64", 8},
	Float32: {"float32", 4},
	Float64: {"float64", 8},
}

// Name returns the lowercase type name used on the wire.
// The second return value is false for data types without a mapping.
func (d DataType) Name() (string, bool) {
	info, ok := dataTypeInfo[d]
	return info.name, ok
}

// ElementSize returns the size of one element in bytes (0 for unsupported types)
func (d DataType) ElementSize() int {
	return dataTypeInfo[d].size
}

// Supported returns true if the data type has a wire mapping
func (d DataType) Supported() bool {
	_, ok := dataTypeInfo[d]
	return ok
}

func (d DataType) String() string {
	if name, ok := d.Name(); ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// ParseDataType converts a wire name (e.g. "uint16") into a DataType
func ParseDataType(name string) (DataType, error) {
	for dt, info := range dataTypeInfo {
		if info.name == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// --------------------------------------------------------------------------
// Dimensions
// --------------------------------------------------------------------------

// Dimension describes one axis of an array.
// Axes are ordered fastest-varying first (x, y, z, ...).
type Dimension struct {
	Size    int
	Offset  int
	Binning int
}

// Dims is a convenience constructor for a list of dimensions with the given sizes
func Dims(sizes ...int) []Dimension {
	dims := make([]Dimension, len(sizes))
	for i, size := range sizes {
		dims[i] = Dimension{Size: size, Binning: 1}
	}
	return dims
}

// NumElements returns the product of all dimension sizes (0 for no dimensions)
func NumElements(dims []Dimension) int {
	if len(dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		n *= d.Size
	}
	return n
}
