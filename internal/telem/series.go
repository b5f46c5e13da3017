package telem

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// NewlineTerminator separates variable-width elements (string, json) on the
// wire and inside a Series' raw buffer.
const NewlineTerminator = byte('\n')

// TimeRange is the optional [Start, End) span of time a Series' samples
// occupy. The zero value means "unset".
type TimeRange struct {
	Start int64 // unix nanoseconds, inclusive
	End   int64 // unix nanoseconds, exclusive
}

// IsZero reports whether the range has never been set.
func (tr TimeRange) IsZero() bool { return tr.Start == 0 && tr.End == 0 }

// SampleValue is a type-erased single sample: one of the Go numeric types
// matching a DataType, an int64 nanosecond timestamp, or a string.
type SampleValue = any

// Series is a strongly typed, contiguous sample buffer. It is owned by
// exactly one holder at a time: pass by Move to transfer ownership, or call
// DeepCopy to share data without aliasing. The density (byte size) of a
// fixed-width Series never changes after construction.
type Series struct {
	dataType  DataType
	data      []byte
	size      int // number of samples currently written
	capacity  int // capacity in samples; 0 for variable-width series
	TimeRange TimeRange
	Alignment uint32
}

// NewSeries allocates an empty series of the given type and capacity. For
// fixed-density types, cap is a sample count; for variable-width types, cap
// is a byte count for the backing buffer.
func NewSeries(dt DataType, cap int) *Series {
	s := &Series{dataType: dt}
	if dt.IsVariable() {
		s.data = make([]byte, 0, cap)
	} else {
		s.data = make([]byte, 0, cap*dt.Density())
		s.capacity = cap
	}
	return s
}

// NewSeriesFromBytes wraps an already-populated raw buffer as a Series,
// used by the wire codec to reconstruct a decoded series without copying
// through the Write* append path one sample at a time. For fixed-density
// types size is derived from len(data); for variable-width types size is
// the element count the caller already counted while scanning terminators.
func NewSeriesFromBytes(dt DataType, data []byte, size int) *Series {
	s := &Series{dataType: dt, data: data}
	if dt.IsVariable() {
		s.size = size
	} else {
		s.size = len(data) / dt.Density()
		s.capacity = s.size
	}
	return s
}

// DataType returns the series' element type.
func (s *Series) DataType() DataType { return s.dataType }

// Len returns the number of samples in the series.
func (s *Series) Len() int { return s.size }

// Cap returns the capacity in samples (0 for variable-width series, where
// capacity is tracked in bytes instead).
func (s *Series) Cap() int { return s.capacity }

// Empty reports whether the series holds no samples.
func (s *Series) Empty() bool { return s.size == 0 }

// Bytes returns the raw backing buffer. Callers must not retain it beyond
// the series' lifetime or mutate it directly except through Series methods.
func (s *Series) Bytes() []byte { return s.data }

// ByteSize returns the size of the written data in bytes.
func (s *Series) ByteSize() int { return len(s.data) }

// DeepCopy returns a new Series with its own copy of the backing buffer.
// This is the only sanctioned way to share series data between holders.
func (s *Series) DeepCopy() *Series {
	cp := &Series{
		dataType:  s.dataType,
		size:      s.size,
		capacity:  s.capacity,
		TimeRange: s.TimeRange,
		Alignment: s.Alignment,
	}
	cp.data = make([]byte, len(s.data), cap(s.data))
	copy(cp.data, s.data)
	return cp
}

// At returns the sample at index i (negative indexes from the end) as a
// type-erased SampleValue. It panics on out-of-bounds access; callers at the
// WASM boundary must bounds-check before calling this.
func (s *Series) At(i int) SampleValue {
	idx := s.resolveIndex(i)
	switch s.dataType {
	case Uint8:
		return s.data[idx]
	case Uint16:
		return binary.LittleEndian.Uint16(s.data[idx*2:])
	case Uint32:
		return binary.LittleEndian.Uint32(s.data[idx*4:])
	case Uint64:
		return binary.LittleEndian.Uint64(s.data[idx*8:])
	case Int8:
		return int8(s.data[idx])
	case Int16:
		return int16(binary.LittleEndian.Uint16(s.data[idx*2:]))
	case Int32:
		return int32(binary.LittleEndian.Uint32(s.data[idx*4:]))
	case Int64:
		return int64(binary.LittleEndian.Uint64(s.data[idx*8:]))
	case Timestamp:
		return int64(binary.LittleEndian.Uint64(s.data[idx*8:]))
	case Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(s.data[idx*4:]))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(s.data[idx*8:]))
	case String, JSON:
		return s.stringAt(idx)
	default:
		panic(fmt.Sprintf("telem: At unsupported for data type %q", s.dataType))
	}
}

func (s *Series) stringAt(idx int) string {
	start := 0
	n := 0
	for i, b := range s.data {
		if b == NewlineTerminator {
			if n == idx {
				return string(s.data[start:i])
			}
			n++
			start = i + 1
		}
	}
	return ""
}

// Strings returns the series' elements as a slice of strings. Only valid for
// String/JSON series.
func (s *Series) Strings() []string {
	if !s.dataType.IsVariable() {
		panic("telem: Strings called on fixed-width series")
	}
	if len(s.data) == 0 {
		return nil
	}
	raw := strings.Split(string(s.data), string(NewlineTerminator))
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	return raw
}

// WriteString appends a string element; no-op (returns false) once capacity
// (in bytes, for variable-width series) is exhausted.
func (s *Series) WriteString(v string) bool {
	if !s.dataType.IsVariable() {
		panic("telem: WriteString called on fixed-width series")
	}
	if s.capacity > 0 && len(s.data)+len(v)+1 > s.capacity {
		return false
	}
	s.data = append(s.data, v...)
	s.data = append(s.data, NewlineTerminator)
	s.size++
	return true
}

// WriteUint appends a fixed-width unsigned sample, truncating v to the
// series' density. It panics if called on a variable-width or signed/float
// series.
func (s *Series) WriteUint(v uint64) {
	switch s.dataType {
	case Uint8:
		s.data = append(s.data, byte(v))
	case Uint16:
		s.data = binary.LittleEndian.AppendUint16(s.data, uint16(v))
	case Uint32:
		s.data = binary.LittleEndian.AppendUint32(s.data, uint32(v))
	case Uint64:
		s.data = binary.LittleEndian.AppendUint64(s.data, v)
	default:
		panic(fmt.Sprintf("telem: WriteUint unsupported for data type %q", s.dataType))
	}
	s.size++
}

// WriteInt appends a fixed-width signed sample, truncating v to the series'
// density. Timestamp series are written the same way as Int64.
func (s *Series) WriteInt(v int64) {
	switch s.dataType {
	case Int8:
		s.data = append(s.data, byte(int8(v)))
	case Int16:
		s.data = binary.LittleEndian.AppendUint16(s.data, uint16(int16(v)))
	case Int32:
		s.data = binary.LittleEndian.AppendUint32(s.data, uint32(int32(v)))
	case Int64, Timestamp:
		s.data = binary.LittleEndian.AppendUint64(s.data, uint64(v))
	default:
		panic(fmt.Sprintf("telem: WriteInt unsupported for data type %q", s.dataType))
	}
	s.size++
}

// WriteFloat appends a fixed-width floating-point sample.
func (s *Series) WriteFloat(v float64) {
	switch s.dataType {
	case Float32:
		s.data = binary.LittleEndian.AppendUint32(s.data, math.Float32bits(float32(v)))
	case Float64:
		s.data = binary.LittleEndian.AppendUint64(s.data, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("telem: WriteFloat unsupported for data type %q", s.dataType))
	}
	s.size++
}

// SetUint overwrites the fixed-width unsigned sample at index i in place.
func (s *Series) SetUint(i int, v uint64) {
	idx := s.resolveIndex(i)
	switch s.dataType {
	case Uint8:
		s.data[idx] = byte(v)
	case Uint16:
		binary.LittleEndian.PutUint16(s.data[idx*2:], uint16(v))
	case Uint32:
		binary.LittleEndian.PutUint32(s.data[idx*4:], uint32(v))
	case Uint64:
		binary.LittleEndian.PutUint64(s.data[idx*8:], v)
	default:
		panic(fmt.Sprintf("telem: SetUint unsupported for data type %q", s.dataType))
	}
}

// SetInt overwrites the fixed-width signed sample at index i in place.
func (s *Series) SetInt(i int, v int64) {
	idx := s.resolveIndex(i)
	switch s.dataType {
	case Int8:
		s.data[idx] = byte(int8(v))
	case Int16:
		binary.LittleEndian.PutUint16(s.data[idx*2:], uint16(int16(v)))
	case Int32:
		binary.LittleEndian.PutUint32(s.data[idx*4:], uint32(int32(v)))
	case Int64, Timestamp:
		binary.LittleEndian.PutUint64(s.data[idx*8:], uint64(v))
	default:
		panic(fmt.Sprintf("telem: SetInt unsupported for data type %q", s.dataType))
	}
}

// SetFloat overwrites the fixed-width floating-point sample at index i in
// place.
func (s *Series) SetFloat(i int, v float64) {
	idx := s.resolveIndex(i)
	switch s.dataType {
	case Float32:
		binary.LittleEndian.PutUint32(s.data[idx*4:], math.Float32bits(float32(v)))
	case Float64:
		binary.LittleEndian.PutUint64(s.data[idx*8:], math.Float64bits(v))
	default:
		panic(fmt.Sprintf("telem: SetFloat unsupported for data type %q", s.dataType))
	}
}

// AsUint reinterprets At(i) as a uint64, converting from whatever concrete
// numeric type the series holds. It panics for variable-width series.
func (s *Series) AsUint(i int) uint64 {
	switch v := s.At(i).(type) {
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case int8:
		return uint64(v)
	case int16:
		return uint64(v)
	case int32:
		return uint64(v)
	case int64:
		return uint64(v)
	case float32:
		return uint64(v)
	case float64:
		return uint64(v)
	default:
		panic(fmt.Sprintf("telem: AsUint unsupported for data type %q", s.dataType))
	}
}

// AsFloat reinterprets At(i) as a float64, converting from whatever concrete
// numeric type the series holds. It panics for variable-width series.
func (s *Series) AsFloat(i int) float64 {
	switch v := s.At(i).(type) {
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		panic(fmt.Sprintf("telem: AsFloat unsupported for data type %q", s.dataType))
	}
}

func (s *Series) resolveIndex(i int) int {
	idx := i
	if idx < 0 {
		idx += s.size
	}
	if idx < 0 || idx >= s.size {
		panic(fmt.Sprintf("telem: index %d out of bounds for series of size %d", i, s.size))
	}
	return idx
}
