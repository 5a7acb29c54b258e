// Package fbxtest builds FBX documents in memory for tests.
package fbxtest

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Node is a record to encode. Props hold Go values mapped to FBX
// property tags: float32 F, float64 D, int64 L, int32 I, int16 Y, bool C,
// string S, []byte R and the slice types f, d, l, i, b.
type Node struct {
	Name     string
	Props    []any
	Children []*Node
}

// N creates a node with properties.
func N(name string, props ...any) *Node {
	return &Node{Name: name, Props: props}
}

// With appends children and returns n.
func (n *Node) With(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// P builds a Properties70 entry.
func P(name, typ, typ2, flag string, values ...any) *Node {
	props := append([]any{name, typ, typ2, flag}, values...)
	return N("P", props...)
}

// C builds a Connections entry.
func C(kind string, from, to int64, relationship ...string) *Node {
	props := []any{kind, from, to}
	for _, r := range relationship {
		props = append(props, r)
	}
	return N("C", props...)
}

// ObjectName joins a name and class the way binary documents store them.
func ObjectName(name, class string) string {
	return name + "\x00\x01" + class
}

// Encoder writes binary FBX documents.
type Encoder struct {
	Version uint32
	// Compress stores array properties zlib-deflated.
	Compress bool

	buf *bytes.Buffer
}

// EncodeBinary encodes nodes as a binary document of the given version.
func EncodeBinary(version uint32, compress bool, nodes ...*Node) []byte {
	e := &Encoder{Version: version, Compress: compress}
	return e.Encode(nodes...)
}

// Encode writes the header, the top-level nodes, a terminating NULL
// record and the footer.
func (e *Encoder) Encode(nodes ...*Node) []byte {
	e.buf = new(bytes.Buffer)

	e.buf.WriteString("Kaydara FBX Binary  \x00")
	e.buf.WriteByte(0x1a)
	e.buf.WriteByte(0x00)
	binary.Write(e.buf, binary.LittleEndian, e.Version)

	for _, n := range nodes {
		e.writeNode(n)
	}
	e.writeNull()

	// Footer: pad to 16 bytes, then a fixed 160-byte block.
	for e.buf.Len()%16 != 0 {
		e.buf.WriteByte(0)
	}
	footer := make([]byte, 160)
	binary.LittleEndian.PutUint32(footer[20:], e.Version)
	copy(footer[144:], []byte{0xf8, 0x5a, 0x8c, 0x6a, 0xde, 0xf5, 0xd9, 0x7e, 0xec, 0xe9, 0x0c, 0xe3, 0x75, 0x8f, 0x29, 0x0b})
	e.buf.Write(footer)

	return e.buf.Bytes()
}

func (e *Encoder) wide() bool {
	return e.Version >= 7500
}

func (e *Encoder) writeHeaderField(v uint64) {
	if e.wide() {
		binary.Write(e.buf, binary.LittleEndian, v)
		return
	}
	binary.Write(e.buf, binary.LittleEndian, uint32(v))
}

func (e *Encoder) patchHeaderField(at int, v uint64) {
	b := e.buf.Bytes()
	if e.wide() {
		binary.LittleEndian.PutUint64(b[at:], v)
		return
	}
	binary.LittleEndian.PutUint32(b[at:], uint32(v))
}

func (e *Encoder) fieldSize() int {
	if e.wide() {
		return 8
	}
	return 4
}

func (e *Encoder) writeNull() {
	for i := 0; i < 3; i++ {
		e.writeHeaderField(0)
	}
	e.buf.WriteByte(0)
}

func (e *Encoder) writeNode(n *Node) {
	start := e.buf.Len()
	e.writeHeaderField(0) // end offset, patched below
	e.writeHeaderField(uint64(len(n.Props)))
	e.writeHeaderField(0) // property list length, patched below
	e.buf.WriteByte(byte(len(n.Name)))
	e.buf.WriteString(n.Name)

	propStart := e.buf.Len()
	for _, p := range n.Props {
		e.writeProperty(p)
	}
	propLen := e.buf.Len() - propStart

	if len(n.Children) > 0 {
		for _, c := range n.Children {
			e.writeNode(c)
		}
		e.writeNull()
	}

	e.patchHeaderField(start, uint64(e.buf.Len()))
	e.patchHeaderField(start+2*e.fieldSize(), uint64(propLen))
}

func (e *Encoder) writeProperty(p any) {
	le := binary.LittleEndian
	switch v := p.(type) {
	case float32:
		e.buf.WriteByte('F')
		binary.Write(e.buf, le, v)
	case float64:
		e.buf.WriteByte('D')
		binary.Write(e.buf, le, v)
	case int64:
		e.buf.WriteByte('L')
		binary.Write(e.buf, le, v)
	case int:
		e.buf.WriteByte('L')
		binary.Write(e.buf, le, int64(v))
	case int32:
		e.buf.WriteByte('I')
		binary.Write(e.buf, le, v)
	case int16:
		e.buf.WriteByte('Y')
		binary.Write(e.buf, le, v)
	case bool:
		e.buf.WriteByte('C')
		if v {
			e.buf.WriteByte(1)
		} else {
			e.buf.WriteByte(0)
		}
	case string:
		e.buf.WriteByte('S')
		binary.Write(e.buf, le, uint32(len(v)))
		e.buf.WriteString(v)
	case []byte:
		e.buf.WriteByte('R')
		binary.Write(e.buf, le, uint32(len(v)))
		e.buf.Write(v)
	case []float32:
		e.writeArray('f', len(v), v)
	case []float64:
		e.writeArray('d', len(v), v)
	case []int64:
		e.writeArray('l', len(v), v)
	case []int32:
		e.writeArray('i', len(v), v)
	case []bool:
		raw := make([]byte, len(v))
		for i, b := range v {
			if b {
				raw[i] = 1
			}
		}
		e.writeArray('b', len(v), raw)
	default:
		panic(fmt.Sprintf("fbxtest: unsupported property type %T", p))
	}
}

func (e *Encoder) writeArray(tag byte, length int, data any) {
	raw := new(bytes.Buffer)
	binary.Write(raw, binary.LittleEndian, data)
	payload := raw.Bytes()

	encoding := uint32(0)
	if e.Compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(payload)
		zw.Close()
		payload = z.Bytes()
		encoding = 1
	}

	e.buf.WriteByte(tag)
	binary.Write(e.buf, binary.LittleEndian, uint32(length))
	binary.Write(e.buf, binary.LittleEndian, encoding)
	binary.Write(e.buf, binary.LittleEndian, uint32(len(payload)))
	e.buf.Write(payload)
}
