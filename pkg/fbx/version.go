package fbx

import (
	"fmt"
	"strconv"
)

// FormatVersion is the FBX file version (e.g. 7400) and answers every
// version-dependent policy question in one place.
type FormatVersion uint32

// MinVersion is the oldest version either parser accepts.
const MinVersion FormatVersion = 6000

// Supported reports whether the version can be parsed.
func (v FormatVersion) Supported() bool { return v >= MinVersion }

// Legacy reports a pre-7000 (FBX 6.x) document.
func (v FormatVersion) Legacy() bool { return v < 7000 }

// WideHeaders reports whether binary node headers use 64-bit fields.
func (v FormatVersion) WideHeaders() bool { return v >= 7500 }

// ObjectID resolves the id of an object node. Legacy documents key objects
// by the bucket key; later versions carry the id on the node itself.
func (v FormatVersion) ObjectID(n *Node) (int64, bool) {
	if v.Legacy() || !n.HasID {
		id, err := strconv.ParseInt(n.Key, 10, 64)
		return id, err == nil
	}
	return n.ID, true
}

// SkinToModelHops is the number of connection hops from a skin deformer
// up to the model it deforms: skin → model in 6.x, skin → geometry → model
// afterwards.
func (v FormatVersion) SkinToModelHops() int {
	if v.Legacy() {
		return 1
	}
	return 2
}

// SingleWeightSkinning reports whether vertices take only their strongest
// bone influence instead of the full weight table.
func (v FormatVersion) SingleWeightSkinning() bool { return v.Legacy() }

// String renders the version as major.minor (7400 → "7.4").
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/100)
}
