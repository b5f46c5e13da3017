// Package wire implements the on-the-wire codec for Frame/Series: a
// fixed-layout, size-checked binary format, following the teacher's
// internal/uapi technique of explicit field-by-field marshal/unmarshal
// rather than reflection or a generic serialization library.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// MarshalError is a sentinel error type for codec failures, mirroring
// uapi.MarshalError.
type MarshalError string

func (e MarshalError) Error() string { return string(e) }

// ErrInsufficientData is returned whenever a Decode call runs out of bytes
// before finishing a length-prefixed field.
const ErrInsufficientData MarshalError = "wire: insufficient data for unmarshaling"

// ErrUnknownDataType is returned when a decoded type-name string does not
// name a recognized telem.DataType.
const ErrUnknownDataType MarshalError = "wire: unknown data type name"

// Encode serializes a Frame as parallel arrays: a u32 count, then count
// ChannelKeys (u32 each), then count encoded Series.
func Encode(f *telem.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}

	buf := make([]byte, 4, 4+f.Len()*16)
	binary.LittleEndian.PutUint32(buf, uint32(f.Len()))

	for _, k := range f.Keys {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(k))
	}
	for _, s := range f.Series {
		encoded, err := encodeSeries(s)
		if err != nil {
			return nil, err
		}
		buf = append(buf, encoded...)
	}
	return buf, nil
}

// encodeSeries writes one series as (u32 type-name length, type-name bytes,
// u32 raw-byte length, raw bytes). Fixed-density types' raw bytes are the
// series' own byte buffer; variable-width types are already newline
// terminated in that buffer, so no extra framing is needed there.
func encodeSeries(s *telem.Series) ([]byte, error) {
	name := string(s.DataType())
	raw := s.Bytes()

	buf := make([]byte, 0, 8+len(name)+len(raw))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(raw)))
	buf = append(buf, raw...)
	return buf, nil
}

// Decode reconstructs a Frame from bytes produced by Encode.
func Decode(data []byte) (*telem.Frame, error) {
	if len(data) < 4 {
		return nil, ErrInsufficientData
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]

	if len(data) < int(count)*4 {
		return nil, ErrInsufficientData
	}
	keys := make([]telem.ChannelKey, count)
	for i := range keys {
		keys[i] = telem.ChannelKey(binary.LittleEndian.Uint32(data))
		data = data[4:]
	}

	frame := telem.NewFrameWithCapacity(int(count))
	for i := uint32(0); i < count; i++ {
		s, rest, err := decodeSeries(data)
		if err != nil {
			return nil, err
		}
		frame.Append(keys[i], s)
		data = rest
	}
	return frame, nil
}

func decodeSeries(data []byte) (*telem.Series, []byte, error) {
	if len(data) < 4 {
		return nil, nil, ErrInsufficientData
	}
	nameLen := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if len(data) < int(nameLen) {
		return nil, nil, ErrInsufficientData
	}
	name := telem.DataType(data[:nameLen])
	data = data[nameLen:]

	if !name.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDataType, name)
	}

	if len(data) < 4 {
		return nil, nil, ErrInsufficientData
	}
	rawLen := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if len(data) < int(rawLen) {
		return nil, nil, ErrInsufficientData
	}
	raw := make([]byte, rawLen)
	copy(raw, data[:rawLen])
	data = data[rawLen:]

	size := countElements(name, raw)
	return telem.NewSeriesFromBytes(name, raw, size), data, nil
}

// countElements reports how many samples raw holds: a direct division by
// density for fixed-width types, a newline scan for variable-width types.
func countElements(dt telem.DataType, raw []byte) int {
	if !dt.IsVariable() {
		return len(raw) / dt.Density()
	}
	if len(raw) == 0 {
		return 0
	}
	n := 0
	for _, b := range raw {
		if b == telem.NewlineTerminator {
			n++
		}
	}
	return n
}
