package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// maxInfluences is the number of bone weights kept per vertex.
const maxInfluences = 4

// parseGeometries builds Mesh and NurbsCurve geometry. Legacy documents
// also embed mesh data in Model objects; those are keyed by model id.
func (d *document) parseGeometries(skins *skinSet) map[int64]*scene.Geometry {
	geometries := make(map[int64]*scene.Geometry)
	d.eachObject("Geometry", func(id int64, n *fbx.Node) {
		switch n.AttrType {
		case "Mesh":
			geometries[id] = d.buildMesh(id, n, d.skinOf(id, skins))
		case "NurbsCurve":
			geometries[id] = d.buildNurbs(id, n)
		default:
			logger.Debug("skipping geometry type",
				zap.Int64("id", id), zap.String("type", n.AttrType))
		}
	})

	if d.version.Legacy() {
		d.eachObject("Model", func(id int64, n *fbx.Node) {
			if n.AttrType != "Mesh" || geometries[id] != nil {
				return
			}
			if _, ok := n.Array("Vertices"); !ok {
				return
			}
			geometries[id] = d.buildMesh(id, n, d.skinOf(id, skins))
		})
	}
	return geometries
}

// skinOf returns the first skin deformer connected below id.
func (d *document) skinOf(id int64, skins *skinSet) *Skin {
	for _, child := range d.graph.Children(id) {
		if skin := skins.get(child.ID); skin != nil {
			return skin
		}
	}
	return nil
}

type influence struct {
	bone   int
	weight float64
}

type vertex struct {
	position    [3]float32
	normal      [3]float32
	uv          [2]float32
	color       [3]float32
	skinIndices [maxInfluences]uint16
	skinWeights [maxInfluences]float32
}

// meshBuilder expands an indexed polygon stream into triangle buffers.
type meshBuilder struct {
	version fbx.FormatVersion
	skin    *Skin

	positions []float64
	indices   []int
	normals   *layer
	uvs       *layer
	colors    *layer
	materials *layer
	weights   map[int][]influence

	scratch       [4]float64
	warnedWeights bool

	triangles       []vertex
	triangleMatIdxs []int
}

func (d *document) buildMesh(id int64, n *fbx.Node, skin *Skin) *scene.Geometry {
	geo := &scene.Geometry{ID: id, Name: d.names.Decode(n.AttrName)}

	verts, ok := n.Array("Vertices")
	if !ok {
		logger.Warn("mesh geometry has no vertices", zap.Int64("id", id))
		return geo
	}
	idx, ok := n.Array("PolygonVertexIndex")
	if !ok {
		logger.Warn("mesh geometry has no polygons", zap.Int64("id", id))
		return geo
	}

	b := &meshBuilder{
		version:   d.version,
		skin:      skin,
		positions: verts.Float64s(),
		indices:   idx.Ints(),
		normals:   normalLayer(n),
		uvs:       uvLayer(n),
		colors:    colorLayer(n),
		materials: materialLayer(n),
	}
	b.build()
	b.flatten(geo)

	logger.Debug("built mesh geometry",
		zap.Int64("id", id),
		zap.Int("vertices", geo.VertexCount()),
		zap.Int("groups", len(geo.Groups)),
		zap.Bool("skinned", geo.Skinned()))
	return geo
}

// weightTable maps control point index to its bone influences.
func (b *meshBuilder) weightTable() map[int][]influence {
	table := make(map[int][]influence)
	for _, sub := range b.skin.SubDeformers {
		for j, vi := range sub.Indices {
			w := 0.0
			if j < len(sub.Weights) {
				w = sub.Weights[j]
			}
			table[vi] = append(table[vi], influence{bone: sub.Index, weight: w})
		}
	}
	return table
}

func (b *meshBuilder) build() {
	if b.skin != nil {
		b.weights = b.weightTable()
	}

	var face []vertex
	polygonIndex := 0
	for pvi, vi := range b.indices {
		endOfFace := false
		if vi < 0 {
			vi = ^vi
			b.indices[pvi] = vi
			endOfFace = true
		}

		v := vertex{}
		if p := vi * 3; p >= 0 && p+2 < len(b.positions) {
			v.position = [3]float32{float32(b.positions[p]), float32(b.positions[p+1]), float32(b.positions[p+2])}
		}
		if b.skin != nil {
			v.skinIndices, v.skinWeights = b.skinInfluences(b.weights[vi])
		}
		if b.normals != nil {
			n := b.normals.get(b.scratch[:], pvi, polygonIndex, vi)
			v.normal = [3]float32{float32(n[0]), float32(n[1]), float32(n[2])}
		}
		if b.uvs != nil {
			uv := b.uvs.get(b.scratch[:], pvi, polygonIndex, vi)
			v.uv = [2]float32{float32(uv[0]), float32(uv[1])}
		}
		if b.colors != nil {
			c := b.colors.get(b.scratch[:], pvi, polygonIndex, vi)
			v.color = [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}
		}
		face = append(face, v)

		if endOfFace {
			materialIndex := 0
			if b.materials != nil {
				materialIndex = int(b.materials.get(b.scratch[:], pvi, polygonIndex, vi)[0])
			}
			b.addFace(face, materialIndex)
			face = face[:0]
			polygonIndex++
		}
	}
}

// skinInfluences selects up to four influences for one vertex.
func (b *meshBuilder) skinInfluences(in []influence) (idx [maxInfluences]uint16, w [maxInfluences]float32) {
	if len(in) == 0 {
		return idx, w
	}

	if b.version.SingleWeightSkinning() {
		best := in[0]
		for _, inf := range in[1:] {
			if inf.weight > best.weight {
				best = inf
			}
		}
		idx[0], w[0] = uint16(best.bone), float32(best.weight)
		return idx, w
	}

	if len(in) <= maxInfluences {
		for i, inf := range in {
			idx[i], w[i] = uint16(inf.bone), float32(inf.weight)
		}
		return idx, w
	}

	if !b.warnedWeights {
		logger.Warn("vertex has more than four skinning weights, keeping the four largest",
			zap.Int("weights", len(in)))
		b.warnedWeights = true
	}

	// Insert each weight into four running maxima, pushing smaller
	// entries down.
	var topBone [maxInfluences]int
	var topWeight [maxInfluences]float64
	for _, inf := range in {
		bone, weight := inf.bone, inf.weight
		for k := range topWeight {
			if weight > topWeight[k] {
				topWeight[k], weight = weight, topWeight[k]
				topBone[k], bone = bone, topBone[k]
			}
		}
	}
	for k := range topWeight {
		idx[k], w[k] = uint16(topBone[k]), float32(topWeight[k])
	}
	return idx, w
}

// addFace fan-triangulates a polygon from its first vertex.
func (b *meshBuilder) addFace(face []vertex, materialIndex int) {
	for i := 2; i < len(face); i++ {
		b.triangles = append(b.triangles, face[0], face[i-1], face[i])
		b.triangleMatIdxs = append(b.triangleMatIdxs, materialIndex)
	}
}

// flatten writes the triangle vertices into geometry buffers and derives
// material groups from runs of equal material index.
func (b *meshBuilder) flatten(geo *scene.Geometry) {
	n := len(b.triangles)
	geo.Positions = make([]float32, 0, n*3)
	if b.normals != nil {
		geo.Normals = make([]float32, 0, n*3)
	}
	if b.uvs != nil {
		geo.UVs = make([]float32, 0, n*2)
	}
	if b.colors != nil {
		geo.Colors = make([]float32, 0, n*3)
	}
	if b.skin != nil {
		geo.SkinIndices = make([]uint16, 0, n*maxInfluences)
		geo.SkinWeights = make([]float32, 0, n*maxInfluences)
	}

	materialIndices := make([]int, 0, n)
	for i, v := range b.triangles {
		geo.Positions = append(geo.Positions, v.position[:]...)
		if b.normals != nil {
			geo.Normals = append(geo.Normals, v.normal[:]...)
		}
		if b.uvs != nil {
			geo.UVs = append(geo.UVs, v.uv[:]...)
		}
		if b.colors != nil {
			geo.Colors = append(geo.Colors, v.color[:]...)
		}
		if b.skin != nil {
			geo.SkinIndices = append(geo.SkinIndices, v.skinIndices[:]...)
			geo.SkinWeights = append(geo.SkinWeights, v.skinWeights[:]...)
		}
		materialIndices = append(materialIndices, b.triangleMatIdxs[i/3])
	}

	if len(materialIndices) == 0 {
		return
	}
	start, current := 0, materialIndices[0]
	for i, mi := range materialIndices {
		if mi != current {
			geo.AddGroup(start, i-start, current)
			start, current = i, mi
		}
	}
	geo.AddGroup(start, len(materialIndices)-start, current)
}
