package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/fbxscene/internal/fbxtest"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

func skinDeformer(id int64) *fbxtest.Node {
	return fbxtest.N("Deformer", id, fbxtest.ObjectName("Skin", "Deformer"), "Skin").With(
		fbxtest.N("Version", int32(101)),
	)
}

func cluster(id int64, indexes []int32, weights []float64) *fbxtest.Node {
	return fbxtest.N("Deformer", id, fbxtest.ObjectName("Cluster", "SubDeformer"), "Cluster").With(
		fbxtest.N("Version", int32(100)),
		fbxtest.N("Mode", "Total1"),
		fbxtest.N("Indexes", indexes),
		fbxtest.N("Weights", weights),
		fbxtest.N("Transform", translation(0, 0, 0)),
		fbxtest.N("TransformLink", translation(1, 2, 3)),
	)
}

func bindPose(id int64, matrices map[int64][]float64, order ...int64) *fbxtest.Node {
	pose := fbxtest.N("Pose", id, fbxtest.ObjectName("BindPose", "Pose"), "BindPose").With(
		fbxtest.N("Type", "BindPose"),
		fbxtest.N("NbPoseNodes", int32(len(order))),
	)
	for _, node := range order {
		pose.With(fbxtest.N("PoseNode").With(
			fbxtest.N("Node", node),
			fbxtest.N("Matrix", matrices[node]),
		))
	}
	return pose
}

// skinnedQuadDoc is a quad deformed by two bones. Bone1 owns vertex 0
// fully, vertices 1 and 2 are shared and Bone2 owns vertex 3.
func skinnedQuadDoc() []*fbxtest.Node {
	quad := meshGeometry(100,
		[]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		[]int32{0, 1, 2, -4},
	)
	return fbxDocument(7400,
		[]*fbxtest.Node{
			quad,
			model(200, "Body", "Mesh"),
			model(401, "Bone1", "LimbNode"),
			model(402, "Bone2", "LimbNode", vec3P("Lcl Translation", 0, 1, 0)),
			skinDeformer(300),
			cluster(301, []int32{0, 1, 2}, []float64{1, 0.25, 0.5}),
			cluster(302, []int32{1, 2, 3}, []float64{0.75, 0.5, 1}),
			bindPose(500, map[int64][]float64{
				200: translation(0, 0, 0),
				401: translation(1, 2, 3),
				402: translation(1, 3, 3),
			}, 200, 401, 402),
		},
		[]*fbxtest.Node{
			fbxtest.C("OO", 100, 200),
			fbxtest.C("OO", 200, 0),
			fbxtest.C("OO", 300, 100),
			fbxtest.C("OO", 301, 300),
			fbxtest.C("OO", 302, 300),
			fbxtest.C("OO", 401, 301),
			fbxtest.C("OO", 401, 0),
			fbxtest.C("OO", 402, 302),
			fbxtest.C("OO", 402, 401),
		},
	)
}

func TestSkinnedMesh(t *testing.T) {
	s := parseDoc(t, 7400, skinnedQuadDoc())

	body := s.Root.FindByName("Body")
	require.NotNil(t, body)
	assert.Equal(t, scene.KindSkinnedMesh, body.Kind)
	require.Len(t, body.Materials, 1)
	assert.True(t, body.Materials[0].Skinning)

	geo := body.Geometry
	require.NotNil(t, geo)
	// Two triangles from the fan: corners 0 1 2 and 0 2 3.
	require.Equal(t, 6, geo.VertexCount())
	require.Len(t, geo.SkinIndices, 6*maxInfluences)
	require.Len(t, geo.SkinWeights, 6*maxInfluences)

	assert.Equal(t, []uint16{0, 0, 0, 0}, geo.SkinIndices[0:4])
	assert.Equal(t, []float32{1, 0, 0, 0}, geo.SkinWeights[0:4])

	assert.Equal(t, []uint16{0, 1, 0, 0}, geo.SkinIndices[4:8])
	assert.Equal(t, []float32{0.25, 0.75, 0, 0}, geo.SkinWeights[4:8])

	// Last corner is vertex 3, owned by Bone2 alone.
	assert.Equal(t, []uint16{1, 0, 0, 0}, geo.SkinIndices[20:24])
	assert.Equal(t, []float32{1, 0, 0, 0}, geo.SkinWeights[20:24])
}

func TestSkeletonBinding(t *testing.T) {
	s := parseDoc(t, 7400, skinnedQuadDoc())

	body := s.Root.FindByName("Body")
	bone1 := s.Root.FindByName("Bone1")
	bone2 := s.Root.FindByName("Bone2")
	require.NotNil(t, body)
	require.NotNil(t, bone1)
	require.NotNil(t, bone2)

	assert.Equal(t, scene.KindBone, bone1.Kind)
	assert.Equal(t, scene.KindBone, bone2.Kind)
	assert.Same(t, bone1, bone2.Parent)
	assert.Same(t, s.Root, bone1.Parent)

	skel := body.Skeleton
	require.NotNil(t, skel)
	require.Len(t, skel.Bones, 2)
	assert.Same(t, bone1, skel.Bones[0])
	assert.Same(t, bone2, skel.Bones[1])

	// Inverses come from the bind pose, not the scene transforms.
	inv := fmath.Translate(-1, -2, -3)
	assert.True(t, skel.BoneInverses[0].ApproxEqual(inv, 1e-5), "got %v", skel.BoneInverses[0])
	inv = fmath.Translate(-1, -3, -3)
	assert.True(t, skel.BoneInverses[1].ApproxEqual(inv, 1e-5), "got %v", skel.BoneInverses[1])

	assert.True(t, body.BindMatrix.ApproxEqual(fmath.Identity(), 1e-6))

	// World matrices are recomputed from the hierarchy after binding.
	p := bone2.MatrixWorld.TransformPoint(fmath.Vec3{})
	assert.InDelta(t, 1, p.Y, 1e-6)

	assert.Len(t, s.Bones, 3)
}

func TestSkinWeightCapping(t *testing.T) {
	logs := observeLogs(t, zapcore.WarnLevel)

	weights := []float64{0.1, 0.4, 0.2, 0.5, 0.3}
	objects := []*fbxtest.Node{
		triangle(100),
		model(200, "Body", "Mesh"),
		skinDeformer(300),
	}
	conns := []*fbxtest.Node{
		fbxtest.C("OO", 100, 200),
		fbxtest.C("OO", 200, 0),
		fbxtest.C("OO", 300, 100),
	}
	for i, w := range weights {
		id := int64(310 + i)
		objects = append(objects, cluster(id, []int32{0, 1, 2}, []float64{w, w, w}))
		conns = append(conns, fbxtest.C("OO", id, 300))
	}

	doc := newTestDocument(t, 7400, fbxDocument(7400, objects, conns))
	skins := doc.parseDeformers()
	require.Len(t, skins.order, 1)
	require.Len(t, skins.order[0].SubDeformers, len(weights))

	geo := doc.parseGeometries(skins)[100]
	require.NotNil(t, geo)
	require.Len(t, geo.SkinWeights, 3*maxInfluences)

	for v := 0; v < 3; v++ {
		assert.Equal(t, []float32{0.5, 0.4, 0.3, 0.2}, geo.SkinWeights[v*4:v*4+4])
		assert.Equal(t, []uint16{3, 1, 4, 2}, geo.SkinIndices[v*4:v*4+4])
	}
	assert.Equal(t, 1, logs.FilterMessage("vertex has more than four skinning weights, keeping the four largest").Len())
}

func TestLegacySkinningKeepsStrongestInfluence(t *testing.T) {
	b := &meshBuilder{version: 6100}
	idx, w := b.skinInfluences([]influence{{bone: 0, weight: 0.3}, {bone: 2, weight: 0.6}, {bone: 1, weight: 0.1}})
	assert.Equal(t, [maxInfluences]uint16{2}, idx)
	assert.Equal(t, [maxInfluences]float32{0.6}, w)
}

func TestParseDeformersSkipsMissingClusters(t *testing.T) {
	doc := newTestDocument(t, 7400, fbxDocument(7400,
		[]*fbxtest.Node{
			skinDeformer(300),
			cluster(302, []int32{0}, []float64{1}),
		},
		[]*fbxtest.Node{
			fbxtest.C("OO", 301, 300),
			fbxtest.C("OO", 302, 300),
		},
	))

	skin := doc.parseDeformers().get(300)
	require.NotNil(t, skin)
	require.Len(t, skin.SubDeformers, 1)

	sub := skin.SubDeformers[0]
	assert.Equal(t, int64(302), sub.BoneID)
	assert.Equal(t, 0, sub.Index)
	assert.Equal(t, "Total1", sub.Mode)
	assert.Equal(t, []int{0}, sub.Indices)
	assert.Equal(t, []float64{1}, sub.Weights)
	require.NotNil(t, sub.TransformLink)
	assert.True(t, sub.TransformLink.ApproxEqual(fmath.Translate(1, 2, 3), 1e-6))
	assert.Len(t, skin.Bones, 1)
}
