// Package buffer mirrors CPU-side collections of plain-old-data values in GPU buffers.
package buffer

import (
	"encoding/binary"
	"math"
)

// Buffered is implemented by values with a fixed-layout byte representation that can be copied
// directly into GPU memory.
type Buffered interface {
	// Size returns the number of bytes Marshal produces. It must be the same for every value of a type.
	//
	// Returns:
	//   - int: the byte size of the projection
	Size() int

	// Marshal returns the little-endian byte projection of the value. It must not have side effects.
	//
	// Returns:
	//   - []byte: exactly Size() bytes
	Marshal() []byte
}

// Project concatenates the projections of values in order.
//
// Parameters:
//   - values: the values to project
//
// Returns:
//   - []byte: the concatenated bytes, len(values)*stride long
func Project[T Buffered](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	out := make([]byte, 0, len(values)*values[0].Size())
	for _, v := range values {
		out = append(out, v.Marshal()...)
	}
	return out
}

// U16 is a 16-bit index value.
type U16 uint16

func (U16) Size() int { return 2 }

func (v U16) Marshal() []byte {
	return binary.LittleEndian.AppendUint16(nil, uint16(v))
}

// U32 is a 32-bit index value.
type U32 uint32

func (U32) Size() int { return 4 }

func (v U32) Marshal() []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

// F32 is a single float uniform such as reflectance.
type F32 float32

func (F32) Size() int { return 4 }

func (v F32) Marshal() []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(v)))
}

// Vec4 is a four component float uniform such as a color.
type Vec4 [4]float32

func (Vec4) Size() int { return 16 }

func (v Vec4) Marshal() []byte {
	return MarshalFloats(v[:])
}

// Mat4 is a column-major 4x4 matrix.
type Mat4 [16]float32

func (Mat4) Size() int { return 64 }

func (m Mat4) Marshal() []byte {
	return MarshalFloats(m[:])
}

// MarshalFloats encodes fs as little-endian float32 values.
func MarshalFloats(fs []float32) []byte {
	out := make([]byte, 0, len(fs)*4)
	for _, f := range fs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}
