package fbx

import (
	"fmt"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNone Kind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindRaw
	KindBoolArray
	KindInt32Array
	KindInt64Array
	KindFloat32Array
	KindFloat64Array
	KindTyped
	KindConnections
)

var kindNames = [...]string{
	"none", "bool", "int16", "int32", "int64", "float32", "float64", "string", "raw",
	"bool[]", "int32[]", "int64[]", "float32[]", "float64[]", "typed", "connections",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an immutable property value. The zero Value has KindNone.
type Value struct {
	kind Kind
	v    any
}

// TypedProperty is a Properties70 record: P: name, type, type2, flag, value...
type TypedProperty struct {
	Type  string
	Type2 string
	Flag  string
	Value Value
}

// Connection links a child object (From) to its parent (To).
type Connection struct {
	Kind         string // OO, OP, PO or PP
	From         int64
	To           int64
	Relationship string
}

// Value constructors.

func BoolValue(b bool) Value {
	return Value{KindBool, b}
}

func Int16Value(n int16) Value {
	return Value{KindInt16, n}
}

func Int32Value(n int32) Value {
	return Value{KindInt32, n}
}

func Int64Value(n int64) Value {
	return Value{KindInt64, n}
}

func Float32Value(f float32) Value {
	return Value{KindFloat32, f}
}

func Float64Value(f float64) Value {
	return Value{KindFloat64, f}
}

func StringValue(s string) Value {
	return Value{KindString, s}
}

func RawValue(b []byte) Value {
	return Value{KindRaw, b}
}

func BoolArray(a []bool) Value {
	return Value{KindBoolArray, a}
}

func Int32Array(a []int32) Value {
	return Value{KindInt32Array, a}
}

func Int64Array(a []int64) Value {
	return Value{KindInt64Array, a}
}

func Float32Array(a []float32) Value {
	return Value{KindFloat32Array, a}
}

func Float64Array(a []float64) Value {
	return Value{KindFloat64Array, a}
}

func TypedValue(p *TypedProperty) Value {
	return Value{KindTyped, p}
}

func ConnectionsValue(c []Connection) Value {
	return Value{KindConnections, c}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v holds nothing.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsArray reports whether v holds one of the array variants.
func (v Value) IsArray() bool {
	return v.kind >= KindBoolArray && v.kind <= KindFloat64Array
}

// IsNumeric reports whether v holds a numeric or boolean scalar.
func (v Value) IsNumeric() bool {
	return v.kind >= KindBool && v.kind <= KindFloat64
}

// Typed returns the Properties70 record held by v.
func (v Value) Typed() (*TypedProperty, bool) {
	p, ok := v.v.(*TypedProperty)
	return p, ok
}

// Connections returns the connection list held by v.
func (v Value) Connections() []Connection {
	c, _ := v.v.([]Connection)
	return c
}

// Bytes returns the raw byte span held by v.
func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok
}

// Inner unwraps a typed property to its value. Other values are returned as-is.
func (v Value) Inner() Value {
	if p, ok := v.Typed(); ok {
		return p.Value
	}
	return v
}

// Len returns the element count of an array value, 1 for a scalar and 0 for none.
func (v Value) Len() int {
	switch a := v.v.(type) {
	case []bool:
		return len(a)
	case []int32:
		return len(a)
	case []int64:
		return len(a)
	case []float32:
		return len(a)
	case []float64:
		return len(a)
	case []Connection:
		return len(a)
	case nil:
		return 0
	}
	return 1
}

func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "<none>"
	case KindRaw:
		b, _ := v.Bytes()
		return fmt.Sprintf("<raw %d bytes>", len(b))
	case KindTyped:
		p, _ := v.Typed()
		return fmt.Sprintf("%s(%s)", p.Type, p.Value)
	case KindString:
		return strconv.Quote(v.v.(string))
	}
	if v.IsArray() && v.Len() > 8 {
		return fmt.Sprintf("<%s len=%d>", v.kind, v.Len())
	}
	return fmt.Sprint(v.v)
}
