package fbx

import "errors"

// Fatal structural errors. Everything else is logged and skipped.
var (
	ErrEmptyInput          = errors.New("empty FBX input")
	ErrUnknownFormat       = errors.New("not an FBX document")
	ErrVersionNotFound     = errors.New("FBX version not found")
	ErrUnsupportedVersion  = errors.New("unsupported FBX version")
	ErrTruncated           = errors.New("truncated FBX binary data")
	ErrUnknownPropertyType = errors.New("unknown FBX property type")
	ErrCorruptArray        = errors.New("corrupt FBX array property")
	ErrMissingObjects      = errors.New("FBX document has no Objects section")
	ErrMissingConnections  = errors.New("FBX document has no Connections section")
)
