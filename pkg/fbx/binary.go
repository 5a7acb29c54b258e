package fbx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	// binaryHeaderSize covers the 23-byte magic; the version follows.
	binaryHeaderSize = 23
	// footerSize is the fixed part of the binary footer.
	footerSize = 160
)

// ParseBinary parses a binary-dialect FBX document.
func ParseBinary(data []byte) (tree *Tree, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if !IsBinary(data) {
		return nil, ErrUnknownFormat
	}

	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = fmt.Errorf("%w: %v", ErrTruncated, r)
		}
	}()

	if len(data) < binaryHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d-byte header", ErrTruncated, len(data))
	}

	r := NewBinaryReader(data, true)
	r.Skip(binaryHeaderSize)
	version := FormatVersion(r.Uint32())
	if !version.Supported() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	p := &binaryParser{r: r, wide: version.WideHeaders()}
	root := &record{}
	for !p.endOfContent() {
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		if rec != nil {
			root.children = append(root.children, rec)
		}
	}

	return &Tree{
		Root:    buildNode(root),
		Format:  FormatBinary,
		Version: version,
	}, nil
}

type binaryParser struct {
	r    *BinaryReader
	wide bool
}

// endOfContent detects the footer: 160 bytes plus alignment to 16 bytes.
func (p *binaryParser) endOfContent() bool {
	size := p.r.Size()
	offset := p.r.Offset()
	if size%16 == 0 {
		return ((offset + footerSize + 16) &^ 0xf) >= size
	}
	return offset+footerSize+16 >= size
}

func (p *binaryParser) headerField() uint64 {
	if p.wide {
		return p.r.Uint64()
	}
	return uint64(p.r.Uint32())
}

// parseRecord decodes one node record and its children. A NULL record
// (end offset 0) returns nil.
func (p *binaryParser) parseRecord() (*record, error) {
	endOffset := p.headerField()
	numProps := p.headerField()
	_ = p.headerField() // property list length
	nameLen := int(p.r.Uint8())
	name := p.r.String(nameLen)

	if endOffset == 0 {
		return nil, nil
	}
	if endOffset > uint64(p.r.Size()) {
		return nil, fmt.Errorf("%w: node %s ends at %d of %d bytes", ErrTruncated, name, endOffset, p.r.Size())
	}

	rec := &record{name: name, props: make([]Value, 0, numProps)}
	for i := uint64(0); i < numProps; i++ {
		v, err := p.parseProperty()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		rec.props = append(rec.props, v)
	}

	end := int(endOffset)
	if numProps == 1 && p.r.Offset() == end {
		rec.leaf = true
		return rec, nil
	}

	for p.r.Offset() < end {
		child, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		if child != nil {
			rec.children = append(rec.children, child)
		}
	}
	return rec, nil
}

func (p *binaryParser) parseProperty() (Value, error) {
	r := p.r
	tag := r.Uint8()
	switch tag {
	case 'F':
		return Float32Value(r.Float32()), nil
	case 'D':
		return Float64Value(r.Float64()), nil
	case 'L':
		return Int64Value(r.Int64()), nil
	case 'I':
		return Int32Value(r.Int32()), nil
	case 'Y':
		return Int16Value(r.Int16()), nil
	case 'C':
		return BoolValue(r.Bool()), nil
	case 'f', 'd', 'l', 'i', 'b':
		return p.parseArray(tag)
	case 'S':
		return StringValue(r.String(int(r.Uint32()))), nil
	case 'R':
		return RawValue(r.Bytes(int(r.Uint32()))), nil
	}
	return Value{}, fmt.Errorf("%w %q at offset %d", ErrUnknownPropertyType, tag, r.Offset()-1)
}

func (p *binaryParser) parseArray(tag byte) (Value, error) {
	length := int(p.r.Uint32())
	encoding := p.r.Uint32()
	compressedLen := int(p.r.Uint32())

	size := length * arrayElemSize(tag)
	src := p.r
	if encoding == 1 {
		if compressedLen > p.r.Remaining() {
			return Value{}, fmt.Errorf("%w: compressed array of %d bytes with %d left", ErrTruncated, compressedLen, p.r.Remaining())
		}
		inflated, err := inflate(p.r.Bytes(compressedLen), size)
		if err != nil {
			return Value{}, err
		}
		src = NewBinaryReader(inflated, true)
	} else if size > p.r.Remaining() {
		return Value{}, fmt.Errorf("%w: array of %d bytes with %d left", ErrTruncated, size, p.r.Remaining())
	}

	switch tag {
	case 'f':
		return Float32Array(src.Float32Array(length)), nil
	case 'd':
		return Float64Array(src.Float64Array(length)), nil
	case 'l':
		return Int64Array(src.Int64Array(length)), nil
	case 'i':
		return Int32Array(src.Int32Array(length)), nil
	default:
		return BoolArray(src.BoolArray(length)), nil
	}
}

func arrayElemSize(tag byte) int {
	switch tag {
	case 'd', 'l':
		return 8
	case 'f', 'i':
		return 4
	}
	return 1
}

func inflate(compressed []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArray, err)
	}
	defer zr.Close()

	// The declared size is not trusted for allocation.
	out, err := io.ReadAll(io.LimitReader(zr, int64(size)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArray, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: inflated %d of %d bytes", ErrCorruptArray, len(out), size)
	}
	return out, nil
}
