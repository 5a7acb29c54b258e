package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

func TestAddReparents(t *testing.T) {
	a := NewNode(KindGroup, "a")
	b := NewNode(KindGroup, "b")
	c := NewNode(KindObject, "c")

	a.Add(c)
	require.Same(t, a, c.Parent)
	b.Add(c)
	assert.Same(t, b, c.Parent)
	assert.Empty(t, a.Children)
	assert.Equal(t, []*Node{c}, b.Children)

	b.Add(b)
	assert.Len(t, b.Children, 1, "a node cannot parent itself")
}

func TestUpdateMatrixWorld(t *testing.T) {
	root := NewNode(KindGroup, "root")
	parent := NewNode(KindObject, "parent")
	child := NewNode(KindObject, "child")
	root.Add(parent)
	parent.Add(child)

	parent.Position = fmath.Vec3{X: 1}
	parent.Scale = fmath.Vec3{X: 2, Y: 2, Z: 2}
	child.Position = fmath.Vec3{Y: 1}

	root.UpdateMatrixWorld()

	p := child.MatrixWorld.TransformPoint(fmath.Vec3{})
	assert.InDelta(t, 1, p.X, 1e-6)
	assert.InDelta(t, 2, p.Y, 1e-6)
}

func TestSetRotationSyncsQuaternion(t *testing.T) {
	n := NewNode(KindObject, "n")
	n.SetRotation(fmath.Euler{Z: 0.5, Order: fmath.OrderZYX})
	e := fmath.EulerFromQuat(n.Quaternion, fmath.OrderZYX)
	assert.InDelta(t, 0.5, e.Z, 1e-6)

	n.SetQuaternion(fmath.QuatFromEuler(fmath.Euler{X: 0.25, Order: fmath.OrderZYX}))
	assert.Equal(t, fmath.OrderZYX, n.Rotation.Order)
	assert.InDelta(t, 0.25, n.Rotation.X, 1e-6)
}

func TestBindAndSkeleton(t *testing.T) {
	bone := NewNode(KindBone, "hip")
	bone.Position = fmath.Vec3{Y: 3}
	bone.UpdateMatrixWorld()

	skel := NewSkeleton([]*Node{bone, nil})
	require.Len(t, skel.BoneInverses, 2)
	p := skel.BoneInverses[0].TransformPoint(fmath.Vec3{Y: 3})
	assert.InDelta(t, 0, p.Y, 1e-6)
	assert.Equal(t, fmath.Identity(), skel.BoneInverses[1])
	assert.Equal(t, 0, skel.BoneIndex(bone))
	assert.Equal(t, -1, skel.BoneIndex(NewNode(KindBone, "x")))

	mesh := NewMesh(&Geometry{SkinIndices: []uint16{0, 0, 0, 0}}, nil)
	assert.Equal(t, KindSkinnedMesh, mesh.Kind)
	mesh.Bind(skel, fmath.Translate(0, 1, 0))
	assert.Same(t, skel, mesh.Skeleton)
	assert.True(t, mesh.BindMatrix.Mul(mesh.BindMatrixInverse).ApproxEqual(fmath.Identity(), 1e-6))
}

func TestSceneQueries(t *testing.T) {
	s := New()
	mesh := NewMesh(&Geometry{}, nil)
	mesh.Name = "body"
	s.Root.Add(mesh)
	s.Root.Add(NewNode(KindBone, "hip"))
	s.Root.Add(NewAmbientLight(fmath.Vec3{X: 1}, 1))

	assert.Equal(t, []*Node{mesh}, s.Meshes())
	counts := s.Count()
	assert.Equal(t, 1, counts[KindMesh])
	assert.Equal(t, 1, counts[KindGroup])
	assert.Same(t, mesh, s.Root.FindByName("body"))
	assert.Nil(t, s.Root.FindByName("missing"))
}

func TestTrackSample(t *testing.T) {
	track := Track{Keys: []Keyframe{
		{Time: 0, Rotation: fmath.QuatIdentity(), Scale: fmath.Vec3{X: 1, Y: 1, Z: 1}},
		{Time: 1, Position: fmath.Vec3{X: 2}, Rotation: fmath.QuatIdentity(), Scale: fmath.Vec3{X: 3, Y: 1, Z: 1}},
	}}

	mid := track.Sample(0.5)
	assert.InDelta(t, 1, mid.Position.X, 1e-6)
	assert.InDelta(t, 2, mid.Scale.X, 1e-6)

	assert.Equal(t, float32(2), track.Sample(5).Position.X)
	assert.Equal(t, float32(0), track.Sample(-1).Position.X)

	empty := Track{}
	assert.Equal(t, fmath.QuatIdentity(), empty.Sample(1).Rotation)
}

func TestGeometryHelpers(t *testing.T) {
	g := &Geometry{Positions: make([]float32, 9)}
	g.AddGroup(0, 3, 0)
	assert.Equal(t, 3, g.VertexCount())
	assert.False(t, g.Skinned())
	assert.False(t, g.HasColors())
	assert.Equal(t, []Group{{Start: 0, Count: 3, MaterialIndex: 0}}, g.Groups)
}
