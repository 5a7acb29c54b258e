// Package fbx decodes binary and text FBX documents into an attributed
// tree and resolves the connection graph between objects.
package fbx

// Parse sniffs the dialect of data and parses it.
func Parse(data []byte) (*Tree, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	switch DetectFormat(data) {
	case FormatBinary:
		return ParseBinary(data)
	case FormatText:
		return ParseText(data)
	}
	return nil, ErrUnknownFormat
}
