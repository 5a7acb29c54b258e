package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/fbxscene/internal/fbxtest"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

func singleTriangleDoc(version uint32) []*fbxtest.Node {
	return fbxDocument(version,
		[]*fbxtest.Node{
			triangle(100),
			model(200, "Cube", "Mesh"),
		},
		[]*fbxtest.Node{
			fbxtest.C("OO", 100, 200),
			fbxtest.C("OO", 200, 0),
		},
	)
}

func assertSingleTriangle(t *testing.T, s *scene.Scene) {
	t.Helper()
	meshes := s.Meshes()
	require.Len(t, meshes, 1)

	mesh := meshes[0]
	assert.Equal(t, scene.KindMesh, mesh.Kind)
	assert.Equal(t, "Cube", mesh.Name)
	assert.Equal(t, int64(200), mesh.FBXID)
	assert.Same(t, s.Root, mesh.Parent)

	require.NotNil(t, mesh.Geometry)
	assert.Equal(t, 3, mesh.Geometry.VertexCount())
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, mesh.Geometry.Positions)
	assert.Equal(t, []scene.Group{{Start: 0, Count: 3, MaterialIndex: 0}}, mesh.Geometry.Groups)

	require.Len(t, mesh.Materials, 1)
	assert.Equal(t, scene.MaterialBasic, mesh.Materials[0].Kind)
	assert.Equal(t, scene.PlaceholderColor, mesh.Materials[0].Color)
}

func TestParseSingleTriangle(t *testing.T) {
	for _, version := range []uint32{7400, 7500} {
		s := parseDoc(t, version, singleTriangleDoc(version))
		assertSingleTriangle(t, s)
		assert.Empty(t, s.Animations)
		assert.Len(t, s.Bones, 1)
	}
}

func TestParseTextDocument(t *testing.T) {
	data := fbxtest.EncodeText(7400, singleTriangleDoc(7400)...)
	s, err := New(Options{}).Parse(data)
	require.NoError(t, err)
	assertSingleTriangle(t, s)
}

func TestParseStructuralErrors(t *testing.T) {
	l := New(Options{})

	_, err := l.Parse(nil)
	assert.ErrorIs(t, err, fbx.ErrEmptyInput)

	noObjects := fbxtest.EncodeBinary(7400, false,
		fbxtest.Header(7400),
		fbxtest.N("Connections"),
	)
	_, err = l.Parse(noObjects)
	assert.ErrorIs(t, err, fbx.ErrMissingObjects)

	noConnections := fbxtest.EncodeBinary(7400, false,
		fbxtest.Header(7400),
		fbxtest.N("Objects").With(triangle(100)),
	)
	_, err = l.Parse(noConnections)
	assert.ErrorIs(t, err, fbx.ErrMissingConnections)
}

func TestModelTransforms(t *testing.T) {
	nodes := fbxDocument(7400,
		[]*fbxtest.Node{
			model(200, "Root", "Null",
				vec3P("Lcl Translation", 1, 2, 3),
				vec3P("Lcl Rotation", 0, 0, 90),
				vec3P("Lcl Scaling", 2, 2, 2),
			),
			model(201, "Child", "Null",
				vec3P("Lcl Translation", 1, 0, 0),
			),
			model(202, "Pre", "Null",
				vec3P("PreRotation", 0, 0, 90),
			),
		},
		[]*fbxtest.Node{
			fbxtest.C("OO", 200, 0),
			fbxtest.C("OO", 201, 200),
			fbxtest.C("OO", 202, 0),
		},
	)
	s := parseDoc(t, 7400, nodes)

	root := s.Root.FindByName("Root")
	child := s.Root.FindByName("Child")
	pre := s.Root.FindByName("Pre")
	require.NotNil(t, root)
	require.NotNil(t, child)
	require.NotNil(t, pre)

	assert.Equal(t, scene.KindObject, root.Kind)
	assert.Equal(t, fmath.Vec3{X: 1, Y: 2, Z: 3}, root.Position)
	assert.Equal(t, fmath.Vec3{X: 2, Y: 2, Z: 2}, root.Scale)
	assert.Equal(t, fmath.OrderZYX, root.Rotation.Order)
	assert.InDelta(t, math32.Pi/2, root.Rotation.Z, 1e-5)

	half := math32.Sqrt(0.5)
	assert.InDelta(t, half, root.Quaternion.Z, 1e-5)
	assert.InDelta(t, half, root.Quaternion.W, 1e-5)

	assert.Same(t, root, child.Parent)
	// Child at local x=1 under a 90° turn, scaled by 2, offset by (1,2,3).
	world := child.MatrixWorld.TransformPoint(fmath.Vec3{})
	assert.InDelta(t, 1, world.X, 1e-4)
	assert.InDelta(t, 4, world.Y, 1e-4)
	assert.InDelta(t, 3, world.Z, 1e-4)

	assert.Equal(t, fmath.OrderZYX, pre.Rotation.Order)
	assert.InDelta(t, half, pre.Quaternion.Z, 1e-5)
	assert.InDelta(t, half, pre.Quaternion.W, 1e-5)
}

func TestAmbientLight(t *testing.T) {
	settings := func(r, g, b float64) *fbxtest.Node {
		return fbxtest.N("GlobalSettings").With(
			fbxtest.N("Properties70").With(
				fbxtest.P("AmbientColor", "ColorRGB", "Color", "", r, g, b),
			),
		)
	}

	s := parseDoc(t, 7400, fbxDocument(7400, nil, nil, settings(0.5, 0.25, 0)))
	require.Len(t, s.Root.Children, 1)
	light := s.Root.Children[0]
	assert.Equal(t, scene.KindAmbientLight, light.Kind)
	assert.Equal(t, fmath.Vec3{X: 0.5, Y: 0.25}, light.Color)
	assert.Equal(t, float32(1), light.Intensity)

	s = parseDoc(t, 7400, fbxDocument(7400, nil, nil, settings(0, 0, 0)))
	assert.Zero(t, s.Count()[scene.KindAmbientLight])
}

func TestNurbsLine(t *testing.T) {
	curve := fbxtest.N("Geometry", int64(150), fbxtest.ObjectName("Curve", "Geometry"), "NurbsCurve").With(
		fbxtest.N("Order", int32(3)),
		fbxtest.N("Form", "Open"),
		fbxtest.N("KnotVector", []float64{0, 0, 0, 1, 1, 1}),
		fbxtest.N("Points", []float64{0, 0, 0, 1, 1, 0, 0, 1, 2, 0, 0, 1}),
	)
	nodes := fbxDocument(7400,
		[]*fbxtest.Node{curve, model(250, "Path", "NurbsCurve")},
		[]*fbxtest.Node{fbxtest.C("OO", 150, 250), fbxtest.C("OO", 250, 0)},
	)
	data := fbxtest.EncodeBinary(7400, false, nodes...)

	eval := &lineEvaluator{}
	s, err := New(Options{Curves: eval}).Parse(data)
	require.NoError(t, err)

	line := s.Root.FindByName("Path")
	require.NotNil(t, line)
	assert.Equal(t, scene.KindLine, line.Kind)
	require.Len(t, line.Materials, 1)
	assert.Equal(t, scene.MaterialLineBasic, line.Materials[0].Kind)
	assert.Equal(t, float32(lineWidth), line.Materials[0].LineWidth)

	assert.Equal(t, 2, eval.curve.Degree)
	assert.Len(t, eval.curve.ControlPoints, 3)
	assert.Equal(t, 3*samplesPerControlPoint, eval.divisions)
	require.NotNil(t, line.Geometry)
	assert.Equal(t, eval.divisions+1, line.Geometry.VertexCount())

	logs := observeLogs(t, zapcore.ErrorLevel)
	s, err = New(Options{}).Parse(data)
	require.NoError(t, err)
	assert.Zero(t, s.Root.FindByName("Path").Geometry.VertexCount())
	assert.Equal(t, 1, logs.FilterMessage("NURBS geometry needs a curve evaluator").Len())
}

// lineEvaluator samples a straight line and records its input.
type lineEvaluator struct {
	curve     NurbsCurve
	divisions int
}

func (e *lineEvaluator) Points(curve NurbsCurve, divisions int) []fmath.Vec3 {
	e.curve, e.divisions = curve, divisions
	out := make([]fmath.Vec3, divisions+1)
	for i := range out {
		out[i] = fmath.Vec3{X: float32(i) / float32(divisions)}
	}
	return out
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.fbx")
	require.NoError(t, os.WriteFile(path, fbxtest.EncodeBinary(7400, true, singleTriangleDoc(7400)...), 0o644))

	s, err := New(Options{}).Load(context.Background(), path)
	require.NoError(t, err)
	assertSingleTriangle(t, s)

	_, err = New(Options{}).Load(context.Background(), filepath.Join(dir, "missing.fbx"))
	assert.Error(t, err)
}

func TestLoadTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.fbx")
	require.NoError(t, os.WriteFile(path, fbxtest.EncodeBinary(7500, false, singleTriangleDoc(7500)...), 0o644))

	tree, err := New(Options{}).LoadTree(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, fbx.FormatBinary, tree.Format)
	assert.Equal(t, fbx.FormatVersion(7500), tree.Version)

	objects, err := tree.Objects()
	require.NoError(t, err)
	assert.Equal(t, 1, objects.Bucket("Geometry").Len())
}

func TestLoadURL(t *testing.T) {
	doc := fbxtest.EncodeBinary(7400, true, singleTriangleDoc(7400)...)
	mux := http.NewServeMux()
	mux.HandleFunc("/models/cube.fbx", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(doc)
	})
	mux.HandleFunc("/models/empty.fbx", func(http.ResponseWriter, *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()

	s, err := New(Options{}).Load(ctx, srv.URL+"/models/cube.fbx")
	require.NoError(t, err)
	assertSingleTriangle(t, s)

	_, err = New(Options{}).Load(ctx, srv.URL+"/models/nothing.fbx")
	assert.ErrorContains(t, err, "404")

	_, err = New(Options{}).Load(ctx, srv.URL+"/models/empty.fbx")
	assert.ErrorIs(t, err, fbx.ErrEmptyInput)

	_, err = New(Options{MaxFetchBytes: 64}).Load(ctx, srv.URL+"/models/cube.fbx")
	assert.ErrorContains(t, err, "exceeds")
}

func TestResourceDir(t *testing.T) {
	assert.Equal(t, "http://host/models/", ResourceDir("http://host/models/cube.fbx?v=2"))
	assert.Equal(t, filepath.Join("assets", "models"), ResourceDir(filepath.Join("assets", "models", "cube.fbx")))

	assert.Equal(t, "http://host/models/tex/wood.png", resolvePath("http://host/models/", `tex\wood.png`))
	assert.Equal(t, filepath.Join("assets", "tex", "wood.png"), resolvePath("assets", "tex/wood.png"))
	assert.Equal(t, "/abs/wood.png", resolvePath("assets", "/abs/wood.png"))
	assert.Equal(t, "wood.png", resolvePath("", "wood.png"))
}
