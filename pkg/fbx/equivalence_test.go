package fbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fbxscene/internal/fbxtest"
)

// canonical flattens a value to a dialect-neutral form: the two dialects
// disagree on integer widths and array encodings but not on content.
func canonical(v Value) any {
	switch v.Kind() {
	case KindNone:
		return nil
	case KindTyped:
		tp, _ := v.Typed()
		return []any{tp.Type, tp.Type2, tp.Flag, canonical(tp.Value)}
	case KindConnections:
		return v.Connections()
	case KindString:
		s, _ := v.Text()
		return s
	}
	return v.Float64s()
}

func assertSameShape(t *testing.T, path string, bin, text *Node) {
	t.Helper()
	assert.Equal(t, bin.Key, text.Key, "%s key", path)
	assert.Equal(t, bin.AttrName, text.AttrName, "%s attrName", path)
	assert.Equal(t, bin.AttrType, text.AttrType, "%s attrType", path)

	require.Equal(t, bin.PropNames(), text.PropNames(), "%s properties", path)
	for _, name := range bin.PropNames() {
		bv, _ := bin.Prop(name)
		tv, _ := text.Prop(name)
		assert.Equal(t, canonical(bv), canonical(tv), "%s.%s", path, name)
	}

	require.Equal(t, bin.SubNodeNames(), text.SubNodeNames(), "%s sub-nodes", path)
	for _, name := range bin.SubNodeNames() {
		bb, tb := bin.Bucket(name), text.Bucket(name)
		require.Equal(t, bb.Shape(), tb.Shape(), "%s.%s shape", path, name)
		require.Equal(t, bb.Len(), tb.Len(), "%s.%s length", path, name)
		for i := range bb.Nodes() {
			assertSameShape(t, path+"."+name, bb.Nodes()[i], tb.Nodes()[i])
		}
	}
}

func TestBinaryAndTextTreesMatch(t *testing.T) {
	for _, version := range []uint32{7400, 7500} {
		doc := sampleDocument(version)

		bin, err := ParseBinary(fbxtest.EncodeBinary(version, true, doc...))
		require.NoError(t, err)
		text, err := ParseText(fbxtest.EncodeText(version, doc...))
		require.NoError(t, err)

		assert.Equal(t, bin.Version, text.Version)
		assertSameShape(t, "root", bin.Root, text.Root)
	}
}
