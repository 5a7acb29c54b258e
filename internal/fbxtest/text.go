package fbxtest

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Header returns the FBXHeaderExtension node carrying version. Text
// documents need it for version detection.
func Header(version uint32) *Node {
	return N("FBXHeaderExtension").With(
		N("FBXHeaderVersion", int32(1003)),
		N("FBXVersion", int32(version)),
	)
}

// EncodeText renders nodes in the text dialect. Binary object names
// ("Cube\x00\x01Model") are written as "Model::Cube".
func EncodeText(version uint32, nodes ...*Node) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; FBX %d.%d.0 project file\n", version/1000, (version%1000)/100)
	sb.WriteString("; ----------------------------------------------------\n\n")
	for _, n := range nodes {
		writeTextNode(&sb, n, 0)
	}
	return []byte(sb.String())
}

func writeTextNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("\t", depth)

	if len(n.Children) == 0 && len(n.Props) == 1 {
		if arr, ok := textArray(n.Props[0]); ok {
			fmt.Fprintf(sb, "%s%s: *%d {\n%s\ta: %s\n%s}\n", indent, n.Name, arr.n, indent, arr.body, indent)
			return
		}
		fmt.Fprintf(sb, "%s%s: %s\n", indent, n.Name, textValue(n.Props[0]))
		return
	}

	if n.Name == "P" || n.Name == "C" {
		fmt.Fprintf(sb, "%s%s: %s\n", indent, n.Name, textProps(n.Props))
		return
	}

	fmt.Fprintf(sb, "%s%s: %s {\n", indent, n.Name, textProps(n.Props))
	for _, c := range n.Children {
		writeTextNode(sb, c, depth+1)
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}

func textProps(props []any) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = textValue(p)
	}
	return strings.Join(parts, ", ")
}

func textValue(p any) string {
	switch v := p.(type) {
	case string:
		if name, class, ok := strings.Cut(v, "\x00\x01"); ok {
			v = class + "::" + name
		}
		return strconv.Quote(v)
	case []byte:
		return `"` + base64.StdEncoding.EncodeToString(v) + `"`
	case float32:
		return textFloat(float64(v))
	case float64:
		return textFloat(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	}
	return fmt.Sprint(p)
}

func textFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type textArrayBody struct {
	n    int
	body string
}

func textArray(p any) (textArrayBody, bool) {
	var parts []string
	switch v := p.(type) {
	case []float32:
		for _, f := range v {
			parts = append(parts, textFloat(float64(f)))
		}
	case []float64:
		for _, f := range v {
			parts = append(parts, textFloat(f))
		}
	case []int32:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(int(n)))
		}
	case []int64:
		for _, n := range v {
			parts = append(parts, strconv.FormatInt(n, 10))
		}
	case []bool:
		for _, b := range v {
			parts = append(parts, textValue(b))
		}
	default:
		return textArrayBody{}, false
	}
	return textArrayBody{n: len(parts), body: strings.Join(parts, ",")}, true
}
