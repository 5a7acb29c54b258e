package fbx

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryReaderScalars(t *testing.T) {
	buf := make([]byte, 0, 64)
	buf = append(buf, 0x01, 0xfe)
	buf = binary.LittleEndian.AppendUint16(buf, 0xfffe)
	buf = binary.LittleEndian.AppendUint32(buf, 0xfffffff0)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(1.5))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(-2.25))

	r := NewBinaryReader(buf, true)
	assert.True(t, r.Bool())
	assert.Equal(t, int8(-2), r.Int8())
	assert.Equal(t, int16(-2), r.Int16())
	assert.Equal(t, int32(-16), r.Int32())
	assert.Equal(t, float32(1.5), r.Float32())
	assert.Equal(t, -2.25, r.Float64())
	assert.Equal(t, len(buf), r.Offset())
}

func TestBinaryReaderBigEndian(t *testing.T) {
	buf := binary.BigEndian.AppendUint32(nil, 0x01020304)
	buf = binary.BigEndian.AppendUint64(buf, 0x0000000100000002)
	r := NewBinaryReader(buf, false)
	assert.Equal(t, uint32(0x01020304), r.Uint32())
	assert.Equal(t, uint64(0x0000000100000002), r.Uint64())
}

func TestBinaryReaderInt64(t *testing.T) {
	tests := []int64{0, 1, -1, 1 << 40, -(1 << 40), math.MaxInt32 + 7, -123456789012}
	for _, want := range tests {
		buf := binary.LittleEndian.AppendUint64(nil, uint64(want))
		got := NewBinaryReader(buf, true).Int64()
		assert.Equal(t, want, got)
	}
}

func TestBinaryReaderString(t *testing.T) {
	r := NewBinaryReader([]byte("abc\x00defXY"), true)
	assert.Equal(t, "abc", r.String(7))
	assert.Equal(t, 7, r.Offset(), "the remainder of a fixed-size field is skipped")
	assert.Equal(t, "XY", r.String(2))
}

func TestBinaryReaderBytesCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	b := NewBinaryReader(src, true).Bytes(3)
	b[0] = 9
	assert.Equal(t, byte(1), src[0])
}

func TestBinaryReaderArrays(t *testing.T) {
	var buf []byte
	for _, v := range []int32{-1, 2, 3} {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	r := NewBinaryReader(buf, true)
	assert.Equal(t, []int32{-1, 2, 3}, r.Int32Array(3))
}

func TestBinaryReaderPastEndPanics(t *testing.T) {
	r := NewBinaryReader([]byte{1, 2}, true)
	require.Panics(t, func() { r.Uint32() })

	// Spare capacity behind the slice is never read.
	buf := make([]byte, 2, 64)
	r = NewBinaryReader(buf, true)
	assert.Equal(t, 2, r.Remaining())
	require.Panics(t, func() { r.Uint32() })
	require.Panics(t, func() { r.Float64Array(1) })
}
