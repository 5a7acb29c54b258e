// Package encoding provides string utilities for FBX object names and paths.
package encoding

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// binarySeparator splits "Name\x00\x01Class" pairs in binary documents.
const binarySeparator = "\x00\x01"

var classPrefix = regexp.MustCompile(`^\w+::`)

// NameDecoder converts legacy code page strings to UTF-8.
// A nil *NameDecoder passes strings through unchanged.
type NameDecoder struct {
	charset string
	enc     encoding.Encoding
}

// Charsets lists the accepted NewNameDecoder names.
var Charsets = []string{"utf-8", "windows-1252", "shift-jis", "euc-kr", "gbk"}

// NewNameDecoder returns a decoder for the named charset.
func NewNameDecoder(charset string) (*NameDecoder, error) {
	var enc encoding.Encoding
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252", "latin1":
		enc = charmap.Windows1252
	case "shift-jis", "shift_jis", "sjis":
		enc = japanese.ShiftJIS
	case "euc-kr", "cp949":
		enc = korean.EUCKR
	case "gbk", "cp936":
		enc = simplifiedchinese.GBK
	default:
		return nil, fmt.Errorf("unknown name encoding %q (supported: %s)", charset, strings.Join(Charsets, ", "))
	}
	return &NameDecoder{charset: charset, enc: enc}, nil
}

// Charset returns the configured charset name.
func (d *NameDecoder) Charset() string {
	if d == nil {
		return "utf-8"
	}
	return d.charset
}

// Decode converts s to UTF-8. Strings that are already valid UTF-8 are
// returned as-is, as are strings the decoder rejects.
func (d *NameDecoder) Decode(s string) string {
	if d == nil || utf8.ValidString(s) {
		return s
	}
	result, _, err := transform.String(d.enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return result
}

// ObjectName extracts the display name from a raw FBX object name.
// It handles both "Class::Name" and the binary "Name\x00\x01Class" form.
func ObjectName(raw string) string {
	if i := strings.Index(raw, binarySeparator); i >= 0 {
		raw = raw[:i]
	}
	return classPrefix.ReplaceAllString(raw, "")
}

// ModelName strips the first ':', '_' and '-' from name, in that order.
func ModelName(name string) string {
	for _, sep := range []string{":", "_", "-"} {
		name = strings.Replace(name, sep, "", 1)
	}
	return name
}

// TrackName drops everything up to the last ':' of a bone name.
func TrackName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// BaseName returns the last element of a path using either separator.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// IsAbsolutePath reports whether path is rooted or carries a drive letter.
func IsAbsolutePath(path string) bool {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return true
	}
	return len(path) >= 2 && path[1] == ':' && isLetter(path[0])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
