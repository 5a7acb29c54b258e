package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// bindPose returns the world matrix of every node in the first BindPose.
func (d *document) bindPose() map[int64]fmath.Mat4 {
	world := make(map[int64]fmath.Mat4)
	for _, pose := range d.objects.Bucket("Pose").Nodes() {
		if pose.AttrType != "BindPose" {
			continue
		}
		for _, pn := range pose.Bucket("PoseNode").Nodes() {
			id, ok := intProp(pn, "Node")
			if !ok {
				continue
			}
			if m := matrixArray(pn, "Matrix"); m != nil {
				world[id] = *m
			}
		}
		break
	}
	return world
}

// bindSkeletons moves every skin's bones into the bind pose, builds the
// skeleton and binds it to the meshes the skin deforms.
func (d *document) bindSkeletons(skins *skinSet, geometries map[int64]*scene.Geometry, models map[int64]*scene.Node) {
	if len(skins.order) == 0 {
		return
	}
	world := d.bindPose()

	for _, skin := range skins.order {
		for _, bone := range skin.Bones {
			if bone == nil {
				continue
			}
			m, ok := world[bone.FBXID]
			if !ok {
				logger.Debug("bone missing from bind pose", zap.Int64("bone", bone.FBXID))
				continue
			}
			bone.MatrixWorld = m
		}

		skin.Skeleton = scene.NewSkeleton(skin.Bones)

		for _, model := range d.skinnedModels(skin, geometries, models) {
			if model.Kind != scene.KindSkinnedMesh {
				logger.Warn("skin bound to a model without skinned geometry",
					zap.Int64("skin", skin.ID), zap.Int64("model", model.FBXID))
			}
			model.Bind(skin.Skeleton, model.MatrixWorld)
		}
	}
}

// skinnedModels finds the models a skin deforms: its direct model parents
// in 6.x documents, otherwise the first model above each geometry parent.
func (d *document) skinnedModels(skin *Skin, geometries map[int64]*scene.Geometry, models map[int64]*scene.Node) []*scene.Node {
	var out []*scene.Node
	for _, p := range d.graph.Parents(skin.ID) {
		if d.version.SkinToModelHops() == 1 {
			if model := models[p.ID]; model != nil {
				out = append(out, model)
			}
			continue
		}
		if geometries[p.ID] == nil {
			continue
		}
		for _, gp := range d.graph.Parents(p.ID) {
			if model := models[gp.ID]; model != nil {
				out = append(out, model)
				break
			}
		}
	}
	return out
}
