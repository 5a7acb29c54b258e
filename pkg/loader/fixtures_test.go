package loader

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/fbxscene/internal/fbxtest"
	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// fbxDocument wraps objects and connections in a complete document.
func fbxDocument(version uint32, objects, conns []*fbxtest.Node, extra ...*fbxtest.Node) []*fbxtest.Node {
	nodes := []*fbxtest.Node{fbxtest.Header(version)}
	nodes = append(nodes, extra...)
	return append(nodes,
		fbxtest.N("Objects").With(objects...),
		fbxtest.N("Connections").With(conns...),
	)
}

func model(id int64, name, typ string, props ...*fbxtest.Node) *fbxtest.Node {
	n := fbxtest.N("Model", id, fbxtest.ObjectName(name, "Model"), typ).With(
		fbxtest.N("Version", int32(232)),
	)
	if len(props) > 0 {
		n.With(fbxtest.N("Properties70").With(props...))
	}
	return n
}

func meshGeometry(id int64, vertices []float64, indices []int32, children ...*fbxtest.Node) *fbxtest.Node {
	return fbxtest.N("Geometry", id, fbxtest.ObjectName("Geo", "Geometry"), "Mesh").With(
		fbxtest.N("Vertices", vertices),
		fbxtest.N("PolygonVertexIndex", indices),
	).With(children...)
}

func triangle(id int64) *fbxtest.Node {
	return meshGeometry(id, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int32{0, 1, -3})
}

func vec3P(name string, x, y, z float64) *fbxtest.Node {
	return fbxtest.P(name, name, "", "A", x, y, z)
}

func translation(x, y, z float64) []float64 {
	return []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, x, y, z, 1}
}

// parseDoc encodes nodes as a binary document and builds its scene.
func parseDoc(t *testing.T, version uint32, nodes []*fbxtest.Node) *scene.Scene {
	t.Helper()
	s, err := New(Options{}).Parse(fbxtest.EncodeBinary(version, true, nodes...))
	require.NoError(t, err)
	return s
}

// newTestDocument parses nodes into extraction state without building a
// scene.
func newTestDocument(t *testing.T, version uint32, nodes []*fbxtest.Node) *document {
	t.Helper()
	tree, err := fbx.Parse(fbxtest.EncodeBinary(version, false, nodes...))
	require.NoError(t, err)
	doc, err := newDocument(tree, Options{}, "")
	require.NoError(t, err)
	return doc
}

// observeLogs routes the global logger into an observer for the test.
func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })
	return logs
}
