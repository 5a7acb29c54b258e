package fbx

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
)

// record is the raw node shape both parsers emit before promotion.
type record struct {
	name     string
	props    []Value
	children []*record
	// leaf marks a single-value assignment: a text "Name: value" line or a
	// binary node with exactly one property and no children.
	leaf bool
}

var propertiesBlock = regexp.MustCompile(`^Properties\d+$`)

// buildNode turns a raw record into a tree node, applying the promotion
// rules shared by the text and binary parsers:
//
//   - children of Properties\d+ blocks become typed properties of the node
//   - C records under Connections collect into properties["connections"]
//   - leaves holding an array become a sub-node whose "a" property is the array
//   - other leaves become plain properties
func buildNode(r *record) *Node {
	n := newNode(r.name)
	applyAttributes(n, r.props)

	var conns []Connection
	isConnections := r.name == "Connections"

	for _, c := range r.children {
		switch {
		case propertiesBlock.MatchString(c.name):
			for _, p := range c.children {
				if p.name != "P" && p.name != "Property" {
					continue
				}
				name, tp, ok := typedProperty(p)
				if ok {
					n.SetProp(name, TypedValue(tp))
				}
			}
		case isConnections && (c.name == "C" || c.name == "Connect"):
			if conn, ok := connection(c.props); ok {
				conns = append(conns, conn)
			}
		case c.leaf:
			var v Value
			if len(c.props) > 0 {
				v = c.props[0]
			}
			// The text dialect already nests arrays as "Name: *N { a: ... }".
			if v.IsArray() && c.name != "a" {
				sub := newNode(c.name)
				sub.Key = "*" + strconv.Itoa(v.Len())
				sub.SetProp("a", v)
				n.AddChild(sub)
				continue
			}
			n.SetProp(c.name, v)
		default:
			n.AddChild(buildNode(c))
		}
	}

	if isConnections {
		n.SetProp("connections", ConnectionsValue(conns))
	}
	return n
}

// applyAttributes reads id, name and type from the leading properties.
func applyAttributes(n *Node, props []Value) {
	if len(props) == 0 {
		return
	}
	switch first := props[0]; first.Kind() {
	case KindInt16, KindInt32, KindInt64:
		id, _ := first.Int()
		n.setID(id)
	case KindString:
		n.Key, _ = first.Text()
		// 6.x objects are keyed by "Class::Name" and carry only the type.
		if strings.Contains(n.Key, "::") || strings.Contains(n.Key, "\x00\x01") {
			n.AttrName = encoding.ObjectName(n.Key)
			if len(props) > 1 {
				n.AttrType, _ = props[1].Text()
			}
			return
		}
	}
	if len(props) > 1 {
		if s, ok := props[1].Text(); ok {
			n.AttrName = encoding.ObjectName(s)
		}
	}
	if len(props) > 2 {
		if s, ok := props[2].Text(); ok {
			n.AttrType = s
		}
	}
}

// typedProperty decodes a P (name, type, type2, flag, values...) or a
// legacy Property (name, type, flag, values...) record.
func typedProperty(r *record) (string, *TypedProperty, bool) {
	header := 4
	if r.name == "Property" {
		header = 3
	}
	if len(r.props) < header-1 {
		return "", nil, false
	}
	field := func(i int) string {
		if i >= len(r.props) {
			return ""
		}
		s, _ := r.props[i].Text()
		return s
	}

	name := underscoreFirstSpace(field(0))
	tp := &TypedProperty{Type: underscoreFirstSpace(field(1))}
	if header == 4 {
		tp.Type2 = underscoreFirstSpace(field(2))
	}
	tp.Flag = field(header - 1)

	var values []Value
	if len(r.props) > header {
		values = r.props[header:]
	}
	tp.Value = coerceTyped(tp.Type, values)
	return name, tp, name != ""
}

func underscoreFirstSpace(s string) string {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s
	}
	return s[:i] + "_" + s[i+1:]
}

// coerceTyped converts the value fields of a typed property according to
// its declared type so both dialects agree on the variant.
func coerceTyped(typ string, values []Value) Value {
	if len(values) == 0 {
		return Value{}
	}
	switch typ {
	case "Compound":
		return Value{}
	case "KString", "DateTime", "object", "Url", "XRefUrl", "charptr":
		if s, ok := values[0].Text(); ok {
			return StringValue(s)
		}
		return StringValue(values[0].String())
	case "int", "Integer", "enum", "Enum", "bool", "Bool", "KTime", "ULongLong", "Short", "UShort":
		if n, ok := values[0].Int(); ok {
			return Int64Value(n)
		}
		return values[0]
	case "ColorRGB", "Color", "Vector", "Vector3D", "Lcl_Translation", "Lcl_Rotation", "Lcl_Scaling":
		return Float64Array(numbers(values))
	}

	if len(values) == 1 {
		if values[0].Kind() == KindString {
			return values[0]
		}
		if f, ok := values[0].Float(); ok {
			return Float64Value(f)
		}
		return values[0]
	}
	return Float64Array(numbers(values))
}

func numbers(values []Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// connection decodes a C record: kind, child id, parent id, optional label.
func connection(props []Value) (Connection, bool) {
	if len(props) < 3 {
		logger.Warn("malformed connection record", zap.Int("fields", len(props)))
		return Connection{}, false
	}
	kind, _ := props[0].Text()
	from, okFrom := connectionID(props[1])
	to, okTo := connectionID(props[2])
	if !okFrom || !okTo {
		logger.Warn("connection references a non-numeric id",
			zap.Stringer("from", props[1]), zap.Stringer("to", props[2]))
		return Connection{}, false
	}
	conn := Connection{Kind: kind, From: from, To: to}
	if len(props) > 3 {
		conn.Relationship, _ = props[3].Text()
	}
	return conn, true
}

func connectionID(v Value) (int64, bool) {
	if v.Kind() == KindString {
		s, _ := v.Text()
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	return v.Int()
}
