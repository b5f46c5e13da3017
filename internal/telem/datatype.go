// Package telem implements the Arc runtime's core data model: typed sample
// series, channel batches ("frames"), and the data types that describe them.
package telem

import "fmt"

// DataType identifies the element type stored in a Series.
type DataType string

// Supported element types. Fixed types carry a density (bytes per sample);
// variable types (String, JSON) carry no density and are newline-terminated
// on the wire.
const (
	Uint8     DataType = "uint8"
	Uint16    DataType = "uint16"
	Uint32    DataType = "uint32"
	Uint64    DataType = "uint64"
	Int8      DataType = "int8"
	Int16     DataType = "int16"
	Int32     DataType = "int32"
	Int64     DataType = "int64"
	Float32   DataType = "float32"
	Float64   DataType = "float64"
	Timestamp DataType = "timestamp"
	String    DataType = "string"
	JSON      DataType = "json"
	Unknown   DataType = "unknown"
)

var densities = map[DataType]int{
	Uint8:     1,
	Uint16:    2,
	Uint32:    4,
	Uint64:    8,
	Int8:      1,
	Int16:     2,
	Int32:     4,
	Int64:     8,
	Float32:   4,
	Float64:   8,
	Timestamp: 8,
}

// IsVariable reports whether the type has no fixed per-sample density.
func (dt DataType) IsVariable() bool {
	switch dt {
	case String, JSON:
		return true
	default:
		return false
	}
}

// Density returns the number of bytes a single sample of this type
// occupies. It panics for variable-width types; callers must check
// IsVariable first.
func (dt DataType) Density() int {
	d, ok := densities[dt]
	if !ok {
		panic(fmt.Sprintf("telem: data type %q has no fixed density", dt))
	}
	return d
}

// Valid reports whether dt is a recognized, non-Unknown data type.
func (dt DataType) Valid() bool {
	if dt == String || dt == JSON {
		return true
	}
	_, ok := densities[dt]
	return ok
}
