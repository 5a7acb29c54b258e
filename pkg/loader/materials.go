package loader

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// Texture slots FBX defines but the material model does not map.
var unsupportedSlots = map[string]bool{
	"AmbientColor":            true,
	"ShininessExponent":       true,
	"SpecularFactor":          true,
	"VectorDisplacementColor": true,
}

// parseMaterials extracts Material objects. Materials nothing connects
// to are skipped.
func (d *document) parseMaterials(textures map[int64]*scene.Texture) map[int64]*scene.Material {
	materials := make(map[int64]*scene.Material)
	d.eachObject("Material", func(id int64, n *fbx.Node) {
		if !d.graph.Connected(id) {
			logger.Debug("skipping unused material", zap.Int64("id", id))
			return
		}
		materials[id] = d.parseMaterial(id, n, textures)
	})
	return materials
}

func (d *document) parseMaterial(id int64, n *fbx.Node, textures map[int64]*scene.Texture) *scene.Material {
	shading, _ := d.text(n, "ShadingModel")

	var m *scene.Material
	switch strings.ToLower(shading) {
	case "phong":
		m = scene.NewMaterial(scene.MaterialPhong)
	case "lambert":
		m = scene.NewMaterial(scene.MaterialLambert)
	default:
		logger.Warn("unknown material shading model, using basic material",
			zap.Int64("id", id), zap.String("shadingModel", shading))
		m = scene.NewMaterial(scene.MaterialBasic)
		m.Color = scene.PlaceholderColor
		m.ID = id
		m.Name = d.names.Decode(n.AttrName)
		return m
	}

	m.ID = id
	m.Name = d.names.Decode(n.AttrName)
	d.materialParameters(m, n)
	d.materialTextures(m, textures)
	return m
}

func (d *document) materialParameters(m *scene.Material, n *fbx.Node) {
	if f, ok := floatProp(n, "BumpFactor"); ok {
		m.BumpScale = f
	}
	if c, ok := colorProp(n, "Diffuse", "DiffuseColor"); ok {
		m.Color = c
	}
	if f, ok := floatProp(n, "DisplacementFactor"); ok {
		m.DisplacementScale = f
	}
	if f, ok := floatProp(n, "ReflectionFactor"); ok {
		m.Reflectivity = f
	}
	if c, ok := colorProp(n, "Specular", "SpecularColor"); ok {
		m.Specular = c
	}
	if f, ok := floatProp(n, "Shininess"); ok {
		m.Shininess = f
	} else if f, ok := floatProp(n, "ShininessExponent"); ok {
		m.Shininess = f
	}
	if c, ok := colorProp(n, "Emissive", "EmissiveColor"); ok {
		m.Emissive = c
	}
	if f, ok := floatProp(n, "EmissiveFactor"); ok {
		m.EmissiveIntensity = f
	}
	if f, ok := floatProp(n, "Opacity"); ok {
		m.Opacity = f
		if f < 1 {
			m.Transparent = true
		}
	}
}

// materialTextures binds connected textures to slots by relationship label.
func (d *document) materialTextures(m *scene.Material, textures map[int64]*scene.Texture) {
	for _, child := range d.graph.Children(m.ID) {
		label := child.Relationship
		tex := textures[child.ID]
		if tex == nil {
			continue
		}
		if unsupportedSlots[label] {
			logger.Warn("texture slot not supported",
				zap.Int64("material", m.ID), zap.String("slot", label))
			continue
		}

		switch {
		case strings.Contains(label, "NormalMap"):
			m.NormalMap = tex
		case strings.Contains(label, "Bump"):
			m.BumpMap = tex
		case strings.Contains(label, "DiffuseColor"):
			m.Map = tex
		case strings.Contains(label, "DisplacementColor"):
			m.DisplacementMap = tex
		case strings.Contains(label, "EmissiveColor"):
			m.EmissiveMap = tex
		case strings.Contains(label, "ReflectionColor"):
			tex.Mapping = scene.MappingEquirectangularReflection
			m.EnvMap = tex
		case strings.Contains(label, "SpecularColor"):
			m.SpecularMap = tex
		case strings.Contains(label, "TransparentColor"), strings.Contains(label, "TransparencyFactor"):
			m.AlphaMap = tex
			m.Transparent = true
		default:
			logger.Warn("unknown texture slot",
				zap.Int64("material", m.ID), zap.String("slot", label))
		}
	}
}
