package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/fbx"
)

// mapping selects which running index addresses a layer.
type mapping uint8

const (
	byPolygonVertex mapping = iota
	byPolygon
	byVertex
	allSame
)

func parseMapping(s string) (mapping, bool) {
	switch s {
	case "ByPolygonVertex":
		return byPolygonVertex, true
	case "ByPolygon":
		return byPolygon, true
	case "ByVertice", "ByVertex":
		return byVertex, true
	case "AllSame":
		return allSame, true
	}
	return 0, false
}

// layer is one per-vertex attribute stream of a mesh (normals, uvs,
// colours or material indices).
type layer struct {
	size    int
	buffer  []float64
	indices []int
	mapping mapping
	// indexed is set for IndexToDirect references: the running index
	// is looked up in indices before addressing buffer.
	indexed bool
}

// get copies the element addressed by the running indices into dst,
// which must hold at least l.size values. Out of range elements read
// as zeros.
func (l *layer) get(dst []float64, polygonVertexIndex, polygonIndex, vertexIndex int) []float64 {
	var index int
	switch l.mapping {
	case byPolygonVertex:
		index = polygonVertexIndex
	case byPolygon:
		index = polygonIndex
	case byVertex:
		index = vertexIndex
	case allSame:
		index = 0
	}
	if l.indexed || l.mapping == allSame {
		if index < 0 || index >= len(l.indices) {
			index = -1
		} else {
			index = l.indices[index]
		}
	}

	dst = dst[:l.size]
	start := index * l.size
	for i := range dst {
		j := start + i
		if index >= 0 && j < len(l.buffer) {
			dst[i] = l.buffer[j]
		} else {
			dst[i] = 0
		}
	}
	return dst
}

// readLayer reads the first element of a LayerElement bucket.
func readLayer(geom *fbx.Node, element, data string, indexNames []string, size int) *layer {
	n := geom.Child(element)
	if n == nil {
		return nil
	}
	mappingName, _ := textProp(n, "MappingInformationType")
	referenceName, _ := textProp(n, "ReferenceInformationType")

	m, ok := parseMapping(mappingName)
	if !ok {
		logger.Warn("unsupported layer mapping",
			zap.String("layer", element), zap.String("mapping", mappingName))
		return nil
	}

	values, ok := n.Array(data)
	if !ok {
		logger.Warn("layer has no data", zap.String("layer", element))
		return nil
	}

	l := &layer{size: size, buffer: values.Float64s(), mapping: m}
	switch referenceName {
	case "IndexToDirect", "Index":
		l.indexed = true
		for _, name := range indexNames {
			if idx, ok := n.Array(name); ok {
				l.indices = idx.Ints()
				break
			}
		}
	case "Direct":
		if m == allSame {
			l.indices = []int{0}
		}
	default:
		logger.Warn("unsupported layer reference",
			zap.String("layer", element), zap.String("reference", referenceName))
		return nil
	}
	return l
}

func normalLayer(geom *fbx.Node) *layer {
	return readLayer(geom, "LayerElementNormal", "Normals", []string{"NormalIndex", "NormalsIndex"}, 3)
}

func uvLayer(geom *fbx.Node) *layer {
	return readLayer(geom, "LayerElementUV", "UV", []string{"UVIndex"}, 2)
}

func colorLayer(geom *fbx.Node) *layer {
	return readLayer(geom, "LayerElementColor", "Colors", []string{"ColorIndex"}, 4)
}

// materialLayer reads LayerElementMaterial. Its index array is the
// identity, so IndexToDirect addresses the material list directly.
func materialLayer(geom *fbx.Node) *layer {
	n := geom.Child("LayerElementMaterial")
	if n == nil {
		return nil
	}
	mappingName, _ := textProp(n, "MappingInformationType")
	referenceName, _ := textProp(n, "ReferenceInformationType")

	if mappingName == "NoMappingInformation" {
		return &layer{size: 1, buffer: []float64{0}, indices: []int{0}, mapping: allSame, indexed: true}
	}
	m, ok := parseMapping(mappingName)
	if !ok {
		logger.Warn("unsupported material mapping", zap.String("mapping", mappingName))
		return nil
	}
	values, ok := n.Array("Materials")
	if !ok {
		return nil
	}

	buffer := values.Float64s()
	indices := make([]int, len(buffer))
	for i := range indices {
		indices[i] = i
	}
	return &layer{
		size:    1,
		buffer:  buffer,
		indices: indices,
		mapping: m,
		indexed: referenceName == "IndexToDirect" || referenceName == "Index",
	}
}

func textProp(n *fbx.Node, name string) (string, bool) {
	v, ok := n.Prop(name)
	if !ok {
		return "", false
	}
	return v.Text()
}
