package fbx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BinaryReader is a cursor over an immutable byte buffer. Every read
// advances the cursor by the width of the value read.
//
// Reads past the end of the buffer panic; ParseBinary recovers the panic
// and reports ErrTruncated.
type BinaryReader struct {
	data   []byte
	offset int
	order  binary.ByteOrder
	little bool
}

// NewBinaryReader creates a reader over data in the given byte order.
func NewBinaryReader(data []byte, littleEndian bool) *BinaryReader {
	r := &BinaryReader{data: data, little: littleEndian, order: binary.BigEndian}
	if littleEndian {
		r.order = binary.LittleEndian
	}
	return r
}

// Offset returns the cursor position.
func (r *BinaryReader) Offset() int { return r.offset }

// Size returns the buffer length.
func (r *BinaryReader) Size() int { return len(r.data) }

// Skip advances the cursor by n bytes.
func (r *BinaryReader) Skip(n int) { r.offset += n }

// Remaining returns the number of unread bytes.
func (r *BinaryReader) Remaining() int { return len(r.data) - r.offset }

func (r *BinaryReader) take(n int) []byte {
	if n < 0 || n > r.Remaining() {
		panic(fmt.Sprintf("read of %d bytes at offset %d past end of %d-byte buffer", n, r.offset, len(r.data)))
	}
	b := r.data[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return b
}

// Bool reads one byte and reports whether its low bit is set.
func (r *BinaryReader) Bool() bool { return r.Uint8()&1 == 1 }

// Uint8 reads an unsigned byte.
func (r *BinaryReader) Uint8() uint8 { return r.take(1)[0] }

// Int8 reads a signed byte.
func (r *BinaryReader) Int8() int8 { return int8(r.Uint8()) }

// Int16 reads a signed 16-bit integer.
func (r *BinaryReader) Int16() int16 { return int16(r.order.Uint16(r.take(2))) }

// Uint16 reads an unsigned 16-bit integer.
func (r *BinaryReader) Uint16() uint16 { return r.order.Uint16(r.take(2)) }

// Int32 reads a signed 32-bit integer.
func (r *BinaryReader) Int32() int32 { return int32(r.order.Uint32(r.take(4))) }

// Uint32 reads an unsigned 32-bit integer.
func (r *BinaryReader) Uint32() uint32 { return r.order.Uint32(r.take(4)) }

// words reads two 32-bit halves and returns them as (high, low).
func (r *BinaryReader) words() (high, low uint32) {
	if r.little {
		low = r.Uint32()
		high = r.Uint32()
	} else {
		high = r.Uint32()
		low = r.Uint32()
	}
	return high, low
}

// Int64 reads a signed 64-bit integer assembled from two 32-bit halves.
// Negative values are recovered by explicit two's complement negation.
func (r *BinaryReader) Int64() int64 {
	high, low := r.words()
	if high&0x80000000 == 0 {
		return int64(high)*0x100000000 + int64(low)
	}
	high, low = ^high, ^low
	if low == 0xFFFFFFFF {
		high++
	}
	low++
	return -(int64(high)*0x100000000 + int64(low))
}

// Uint64 reads an unsigned 64-bit integer assembled from two 32-bit halves.
func (r *BinaryReader) Uint64() uint64 {
	high, low := r.words()
	return uint64(high)*0x100000000 + uint64(low)
}

// Float32 reads an IEEE 754 single.
func (r *BinaryReader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// Float64 reads an IEEE 754 double.
func (r *BinaryReader) Float64() float64 {
	return math.Float64frombits(r.order.Uint64(r.take(8)))
}

// Bytes returns a copy of the next n bytes.
func (r *BinaryReader) Bytes(n int) []byte {
	out := make([]byte, n)
	copy(out, r.take(n))
	return out
}

// String reads size bytes and returns the text before the first NUL.
// The remainder of the field is skipped.
func (r *BinaryReader) String(size int) string {
	b := r.take(size)
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// BoolArray reads n booleans.
func (r *BinaryReader) BoolArray(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = r.Bool()
	}
	return out
}

// Int32Array reads n signed 32-bit integers.
func (r *BinaryReader) Int32Array(n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = r.Int32()
	}
	return out
}

// Int64Array reads n signed 64-bit integers.
func (r *BinaryReader) Int64Array(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = r.Int64()
	}
	return out
}

// Float32Array reads n singles.
func (r *BinaryReader) Float32Array(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = r.Float32()
	}
	return out
}

// Float64Array reads n doubles.
func (r *BinaryReader) Float64Array(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}
