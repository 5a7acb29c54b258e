package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// SubDeformer is the weight record of one bone in a skin cluster.
type SubDeformer struct {
	// BoneID is the connection id of the cluster object.
	BoneID int64
	// Index is the bone's position in the skin's bone list.
	Index   int
	Indices []int
	Weights []float64
	// Transform and TransformLink are nil when the cluster omits them.
	Transform     *fmath.Mat4
	TransformLink *fmath.Mat4
	Mode          string
}

// Skin is a skin deformer and its clusters in discovery order.
type Skin struct {
	ID int64
	// ByBone indexes SubDeformers by BoneID.
	ByBone       map[int64]*SubDeformer
	SubDeformers []*SubDeformer
	// Bones is filled by scene assembly, indexed like SubDeformers.
	Bones    []*scene.Node
	Skeleton *scene.Skeleton
}

// skinSet keeps skins in document order.
type skinSet struct {
	byID  map[int64]*Skin
	order []*Skin
}

func (s *skinSet) get(id int64) *Skin {
	return s.byID[id]
}

// parseDeformers extracts Skin deformers and their clusters.
func (d *document) parseDeformers() *skinSet {
	set := &skinSet{byID: make(map[int64]*Skin)}
	d.eachObject("Deformer", func(id int64, n *fbx.Node) {
		if n.AttrType != "Skin" {
			return
		}
		skin := d.parseSkin(id)
		set.byID[id] = skin
		set.order = append(set.order, skin)
	})
	return set
}

func (d *document) parseSkin(id int64) *Skin {
	skin := &Skin{ID: id, ByBone: make(map[int64]*SubDeformer)}

	for _, child := range d.graph.Children(id) {
		node := d.object("Deformer", child.ID)
		if node == nil {
			logger.Warn("skin references a missing cluster",
				zap.Int64("skin", id), zap.Int64("cluster", child.ID))
			continue
		}

		sub := &SubDeformer{
			BoneID:        child.ID,
			Index:         len(skin.SubDeformers),
			Transform:     matrixArray(node, "Transform"),
			TransformLink: matrixArray(node, "TransformLink"),
		}
		if mode, ok := node.Prop("Mode"); ok {
			sub.Mode, _ = mode.Text()
		}
		if idx, ok := node.Array("Indexes"); ok {
			sub.Indices = idx.Ints()
			if w, ok := node.Array("Weights"); ok {
				sub.Weights = w.Float64s()
			}
		}

		skin.ByBone[child.ID] = sub
		skin.SubDeformers = append(skin.SubDeformers, sub)
	}

	skin.Bones = make([]*scene.Node, len(skin.SubDeformers))
	return skin
}

func matrixArray(n *fbx.Node, name string) *fmath.Mat4 {
	v, ok := n.Array(name)
	if !ok {
		return nil
	}
	m, ok := v.Mat4()
	if !ok {
		return nil
	}
	return &m
}
