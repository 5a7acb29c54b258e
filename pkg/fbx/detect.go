package fbx

import (
	"bytes"

	"github.com/h2non/filetype"
)

// BinaryMagic is the signature that opens every binary document.
var BinaryMagic = []byte("Kaydara FBX Binary  \x00")

// binaryType is registered with filetype so generic sniffing recognises FBX.
var binaryType = filetype.NewType("fbx", "application/vnd.autodesk.fbx")

func init() {
	filetype.AddMatcher(binaryType, binaryMatcher)
}

func binaryMatcher(buf []byte) bool {
	return bytes.HasPrefix(buf, BinaryMagic[:20])
}

// IsBinary reports whether data starts with the 20-byte binary signature.
func IsBinary(data []byte) bool {
	return filetype.Is(data, binaryType.Extension)
}

// Format identifies the dialect a tree was parsed from.
type Format uint8

// Dialects.
const (
	FormatUnknown Format = iota
	FormatBinary
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	}
	return "unknown"
}

// DetectFormat sniffs the dialect of data.
func DetectFormat(data []byte) Format {
	switch {
	case IsBinary(data):
		return FormatBinary
	case IsText(data):
		return FormatText
	}
	return FormatUnknown
}
