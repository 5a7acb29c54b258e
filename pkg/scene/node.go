// Package scene is the object model populated by the FBX loader: a tree
// of typed nodes carrying transforms, geometry buffers, materials,
// skeletons and animation clips.
package scene

import (
	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

// Kind identifies the role of a scene node.
type Kind uint8

// Node kinds.
const (
	KindGroup Kind = iota
	KindObject
	KindMesh
	KindSkinnedMesh
	KindBone
	KindLine
	KindAmbientLight
)

var kindNames = [...]string{"Group", "Object3D", "Mesh", "SkinnedMesh", "Bone", "Line", "AmbientLight"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a scene graph node. Each node has at most one parent.
type Node struct {
	Kind Kind
	Name string
	// FBXID is the id of the model record the node was built from.
	FBXID int64

	Position   fmath.Vec3
	Rotation   fmath.Euler
	Quaternion fmath.Quat
	Scale      fmath.Vec3

	Matrix      fmath.Mat4
	MatrixWorld fmath.Mat4

	Parent   *Node
	Children []*Node

	// Mesh, SkinnedMesh and Line.
	Geometry  *Geometry
	Materials []*Material

	// SkinnedMesh.
	Skeleton          *Skeleton
	BindMatrix        fmath.Mat4
	BindMatrixInverse fmath.Mat4

	// AmbientLight.
	Color     fmath.Vec3
	Intensity float32
}

// NewNode creates a node with an identity transform.
func NewNode(kind Kind, name string) *Node {
	return &Node{
		Kind:              kind,
		Name:              name,
		Quaternion:        fmath.QuatIdentity(),
		Scale:             fmath.Vec3{X: 1, Y: 1, Z: 1},
		Matrix:            fmath.Identity(),
		MatrixWorld:       fmath.Identity(),
		BindMatrix:        fmath.Identity(),
		BindMatrixInverse: fmath.Identity(),
	}
}

// NewMesh creates a mesh node. A skinned mesh is created when the
// geometry carries skin buffers.
func NewMesh(geometry *Geometry, materials []*Material) *Node {
	kind := KindMesh
	if geometry != nil && geometry.Skinned() {
		kind = KindSkinnedMesh
	}
	n := NewNode(kind, "")
	n.Geometry = geometry
	n.Materials = materials
	return n
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(color fmath.Vec3, intensity float32) *Node {
	n := NewNode(KindAmbientLight, "")
	n.Color = color
	n.Intensity = intensity
	return n
}

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.Parent != nil {
		child.Parent.Remove(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child from n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// SetRotation sets the Euler rotation and keeps the quaternion in sync.
func (n *Node) SetRotation(e fmath.Euler) {
	n.Rotation = e
	n.Quaternion = fmath.QuatFromEuler(e)
}

// SetQuaternion sets the quaternion and keeps the Euler rotation in sync,
// preserving the current rotation order.
func (n *Node) SetQuaternion(q fmath.Quat) {
	n.Quaternion = q
	n.Rotation = fmath.EulerFromQuat(q, n.Rotation.Order)
}

// UpdateMatrix recomposes the local matrix from position, quaternion
// and scale.
func (n *Node) UpdateMatrix() {
	n.Matrix = fmath.Compose(n.Position, n.Quaternion, n.Scale)
}

// UpdateMatrixWorld recomposes local matrices and propagates world
// matrices down the subtree.
func (n *Node) UpdateMatrixWorld() {
	n.UpdateMatrix()
	if n.Parent == nil {
		n.MatrixWorld = n.Matrix
	} else {
		n.MatrixWorld = n.Parent.MatrixWorld.Mul(n.Matrix)
	}
	for _, c := range n.Children {
		c.UpdateMatrixWorld()
	}
}

// Bind attaches skeleton to a skinned mesh with the given bind matrix.
func (n *Node) Bind(skeleton *Skeleton, bindMatrix fmath.Mat4) {
	n.Skeleton = skeleton
	n.BindMatrix = bindMatrix
	n.BindMatrixInverse = bindMatrix.Inverse()
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// FindByName returns the first node in the subtree called name.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}
