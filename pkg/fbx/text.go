package fbx

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
)

var (
	textNodeOpen  = regexp.MustCompile(`^\s*(\w+):\s*(.*?)\s*\{\s*$`)
	textProperty  = regexp.MustCompile(`^\s*(\w+):\s*(.*?)\s*$`)
	textVersion   = regexp.MustCompile(`FBXVersion:\s*(\d+)`)
	textHeaderTag = []byte("FBXHeaderExtension")
)

// IsText reports whether data looks like a text-dialect document.
func IsText(data []byte) bool {
	if IsBinary(data) {
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("; FBX")) ||
		bytes.Contains(data, textHeaderTag) ||
		textVersion.Match(data)
}

type textFrame struct {
	rec *record
	// tokenize is set inside Properties\d+ and Connections blocks, where
	// P and C lines are split into typed fields.
	tokenize bool
}

type textLeaf struct {
	rec   *record
	parts []string
}

type textParser struct {
	stack  []textFrame
	leaves []*textLeaf
	last   *textLeaf
}

// ParseText parses a text-dialect FBX document.
func ParseText(data []byte) (*Tree, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	version, err := textDocumentVersion(data)
	if err != nil {
		return nil, err
	}

	root := &record{}
	p := &textParser{stack: []textFrame{{rec: root}}}
	lines := strings.Split(string(data), "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}

		if m := textNodeOpen.FindStringSubmatch(line); m != nil {
			p.open(m[1], m[2])
			continue
		}

		if m := textProperty.FindStringSubmatch(line); m != nil {
			name, value := m[1], m[2]
			if name == "Content" && value == "," && i+1 < len(lines) {
				i++
				value = strings.TrimSpace(strings.ReplaceAll(lines[i], `"`, ""))
				value = strings.TrimSpace(strings.TrimSuffix(value, ","))
				p.property(name, `"`+value+`"`)
				continue
			}
			p.property(name, value)
			continue
		}

		if strings.HasPrefix(trimmed, "}") {
			p.close(indentLevel(line), i+1)
			continue
		}

		if c := line[0]; c != ' ' && c != '\t' && c != '}' && p.last != nil {
			p.last.parts = append(p.last.parts, trimmed)
			continue
		}

		logger.Debug("skipping unrecognized line", zap.Int("line", i+1))
	}

	if depth := len(p.stack) - 1; depth > 0 {
		logger.Warn("text document ended with open nodes", zap.Int("open", depth))
	}

	p.finish()

	return &Tree{
		Root:    buildNode(root),
		Format:  FormatText,
		Version: version,
	}, nil
}

func textDocumentVersion(data []byte) (FormatVersion, error) {
	m := textVersion.FindSubmatch(data)
	if m == nil {
		return 0, ErrVersionNotFound
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrVersionNotFound, m[1])
	}
	v := FormatVersion(n)
	if !v.Supported() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, n)
	}
	return v, nil
}

func (p *textParser) top() textFrame {
	return p.stack[len(p.stack)-1]
}

func (p *textParser) open(name, attrs string) {
	rec := &record{name: name, props: tokenize(attrs)}
	parent := p.top()
	parent.rec.children = append(parent.rec.children, rec)
	p.stack = append(p.stack, textFrame{
		rec:      rec,
		tokenize: propertiesBlock.MatchString(name) || name == "Connections",
	})
	p.last = nil
}

func (p *textParser) property(name, value string) {
	frame := p.top()
	rec := &record{name: name, leaf: true}
	frame.rec.children = append(frame.rec.children, rec)

	if frame.tokenize && (name == "P" || name == "Property" || name == "C" || name == "Connect") {
		rec.props = tokenize(value)
		rec.leaf = false
		p.last = nil
		return
	}

	leaf := &textLeaf{rec: rec, parts: []string{value}}
	p.leaves = append(p.leaves, leaf)
	p.last = leaf
}

func (p *textParser) close(indent, line int) {
	if len(p.stack) == 1 {
		logger.Warn("unbalanced closing brace", zap.Int("line", line))
		return
	}
	if want := len(p.stack) - 2; indent != want {
		logger.Debug("closing brace at unexpected indent",
			zap.Int("line", line), zap.Int("indent", indent), zap.Int("expected", want))
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.last = nil
}

// finish converts the accumulated raw strings of every leaf into values.
func (p *textParser) finish() {
	for _, leaf := range p.leaves {
		leaf.rec.props = []Value{textScalar(strings.Join(leaf.parts, ""))}
	}
}

// indentLevel counts leading tabs, or groups of four spaces.
func indentLevel(line string) int {
	tabs, spaces := 0, 0
	for _, c := range line {
		switch c {
		case '\t':
			tabs++
		case ' ':
			spaces++
		default:
			return tabs + spaces/4
		}
	}
	return tabs + spaces/4
}

// textScalar decodes a property value. Numeric comma lists become typed
// arrays like their binary counterparts; other lists stay raw strings.
func textScalar(s string) Value {
	s = strings.TrimSpace(s)
	if hasUnquotedComma(s) {
		if v, ok := textArray(s); ok {
			return v
		}
		return StringValue(s)
	}
	return textToken(s)
}

// textArray decodes a list of numbers. Lists of integers become Int64
// arrays, anything with a fractional or exponent field Float64 arrays.
func textArray(s string) (Value, bool) {
	fields := strings.Split(s, ",")
	ints := make([]int64, 0, len(fields))
	floats := make([]float64, 0, len(fields))
	integral := true
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		fl, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Value{}, false
		}
		floats = append(floats, fl)
		if integral {
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				integral = false
				continue
			}
			ints = append(ints, n)
		}
	}
	if integral {
		return Int64Array(ints), true
	}
	return Float64Array(floats), true
}

func textToken(tok string) Value {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return StringValue(tok[1 : len(tok)-1])
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Int64Value(n)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return Float64Value(f)
	}
	return StringValue(tok)
}

// tokenize splits a comma-separated attribute list, honouring quotes.
func tokenize(s string) []Value {
	var (
		out     []Value
		start   int
		inQuote bool
	)
	emit := func(tok string) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return
		}
		out = append(out, textToken(tok))
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				emit(s[start:i])
				start = i + 1
			}
		}
	}
	emit(s[start:])
	return out
}

func hasUnquotedComma(s string) bool {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				return true
			}
		}
	}
	return false
}
