package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// lineWidth is the width of the material given to NURBS lines.
const lineWidth = 5

// parseScene instantiates a node per Model, wires the hierarchy and binds
// skeletons in their bind pose.
func (d *document) parseScene(skins *skinSet, geometries map[int64]*scene.Geometry, materials map[int64]*scene.Material) *scene.Scene {
	s := scene.New()

	var models []*scene.Node
	byID := make(map[int64]*scene.Node)
	records := make(map[int64]*fbx.Node)

	d.eachObject("Model", func(id int64, n *fbx.Node) {
		model := d.boneFor(id, skins)
		if model == nil {
			model = d.buildModel(id, n, geometries, materials)
		}
		model.Name = encoding.ModelName(d.names.Decode(n.AttrName))
		model.FBXID = id

		models = append(models, model)
		byID[id] = model
		records[id] = n
	})

	for _, model := range models {
		applyTransform(model, records[model.FBXID])

		for _, p := range d.graph.Parents(model.FBXID) {
			if parent := byID[p.ID]; parent != nil && parent != model {
				parent.Add(model)
				break
			}
		}
		if model.Parent == nil {
			s.Root.Add(model)
		}
	}

	s.Root.UpdateMatrixWorld()
	d.bindSkeletons(skins, geometries, byID)
	s.Root.UpdateMatrixWorld()

	s.Bones = models
	return s
}

// boneFor creates a Bone when a cluster of any skin is a parent of the
// model. A model bound by several clusters chains the earlier bone under
// the later one.
func (d *document) boneFor(id int64, skins *skinSet) *scene.Node {
	var bone *scene.Node
	for _, p := range d.graph.Parents(id) {
		for _, skin := range skins.order {
			sub := skin.ByBone[p.ID]
			if sub == nil {
				continue
			}
			prev := bone
			bone = scene.NewNode(scene.KindBone, "")
			skin.Bones[sub.Index] = bone
			if prev != nil {
				bone.Add(prev)
			}
		}
	}
	return bone
}

func (d *document) buildModel(id int64, n *fbx.Node, geometries map[int64]*scene.Geometry, materials map[int64]*scene.Material) *scene.Node {
	switch n.AttrType {
	case "Mesh":
		return d.buildMeshModel(id, geometries, materials)
	case "NurbsCurve":
		var geo *scene.Geometry
		for _, c := range d.graph.Children(id) {
			if g := geometries[c.ID]; g != nil {
				geo = g
			}
		}
		m := scene.NewMaterial(scene.MaterialLineBasic)
		m.Color = scene.PlaceholderColor
		m.LineWidth = lineWidth
		line := scene.NewNode(scene.KindLine, "")
		line.Geometry = geo
		line.Materials = []*scene.Material{m}
		return line
	}
	return scene.NewNode(scene.KindObject, "")
}

func (d *document) buildMeshModel(id int64, geometries map[int64]*scene.Geometry, materials map[int64]*scene.Material) *scene.Node {
	var geo *scene.Geometry
	var mats []*scene.Material
	for _, c := range d.graph.Children(id) {
		if g := geometries[c.ID]; g != nil {
			geo = g
		}
		if m := materials[c.ID]; m != nil {
			mats = append(mats, m)
		}
	}

	if geo == nil {
		// 6.x models carry their own geometry.
		geo = geometries[id]
	}
	if geo == nil {
		logger.Warn("mesh model has no geometry", zap.Int64("id", id))
		geo = &scene.Geometry{}
	}

	if len(mats) == 0 {
		logger.Debug("mesh model has no material, using default", zap.Int64("id", id))
		m := scene.NewMaterial(scene.MaterialBasic)
		m.Color = scene.PlaceholderColor
		mats = append(mats, m)
	}
	if geo.HasColors() {
		for _, m := range mats {
			m.VertexColors = true
		}
	}
	if geo.Skinned() {
		for _, m := range mats {
			m.Skinning = true
		}
	}
	return scene.NewMesh(geo, mats)
}

// applyTransform sets the local transform from Lcl_* properties. Rotations
// are degrees in ZYX order; PreRotation is composed in front.
func applyTransform(model *scene.Node, n *fbx.Node) {
	if v, ok := vec3Prop(n, "Lcl_Translation"); ok {
		model.Position = v
	}
	if v, ok := vec3Prop(n, "Lcl_Rotation"); ok {
		model.SetRotation(fmath.EulerFromVec3(fmath.DegToRadVec(v), fmath.OrderZYX))
	}
	if v, ok := vec3Prop(n, "Lcl_Scaling"); ok {
		model.Scale = v
	}
	if v, ok := vec3Prop(n, "PreRotation"); ok {
		pre := fmath.QuatFromEuler(fmath.EulerFromVec3(fmath.DegToRadVec(v), fmath.OrderZYX))
		model.Rotation.Order = fmath.OrderZYX
		model.SetQuaternion(pre.Mul(model.Quaternion))
	}
}

// addAmbientLight adds GlobalSettings.AmbientColor as a light when it is
// not black.
func (d *document) addAmbientLight(s *scene.Scene) {
	c, ok := vec3Prop(d.tree.GlobalSettings(), "AmbientColor")
	if !ok || c.IsZero() {
		return
	}
	s.Root.Add(scene.NewAmbientLight(c, 1))
}
