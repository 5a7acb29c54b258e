package scene

import (
	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

// MaterialKind selects the shading model.
type MaterialKind uint8

// Shading models.
const (
	MaterialBasic MaterialKind = iota
	MaterialLambert
	MaterialPhong
	MaterialLineBasic
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialLambert:
		return "MeshLambertMaterial"
	case MaterialPhong:
		return "MeshPhongMaterial"
	case MaterialLineBasic:
		return "LineBasicMaterial"
	}
	return "MeshBasicMaterial"
}

// PlaceholderColor is assigned to meshes and lines that have no material.
var PlaceholderColor = fmath.Vec3{X: 0x33 / 255.0, Y: 0, Z: 1}

// Material describes surface appearance.
type Material struct {
	ID   int64
	Name string
	Kind MaterialKind

	Color             fmath.Vec3
	Specular          fmath.Vec3
	Emissive          fmath.Vec3
	EmissiveIntensity float32
	Shininess         float32
	BumpScale         float32
	DisplacementScale float32
	Reflectivity      float32
	Opacity           float32
	LineWidth         float32

	Transparent  bool
	VertexColors bool
	Skinning     bool

	Map             *Texture
	BumpMap         *Texture
	DisplacementMap *Texture
	EmissiveMap     *Texture
	NormalMap       *Texture
	EnvMap          *Texture
	SpecularMap     *Texture
	AlphaMap        *Texture
}

// NewMaterial returns a material with default parameters.
func NewMaterial(kind MaterialKind) *Material {
	return &Material{
		Kind:              kind,
		Color:             fmath.Vec3{X: 1, Y: 1, Z: 1},
		Specular:          fmath.Vec3{X: 0x11 / 255.0, Y: 0x11 / 255.0, Z: 0x11 / 255.0},
		EmissiveIntensity: 1,
		Shininess:         30,
		BumpScale:         1,
		DisplacementScale: 1,
		Reflectivity:      1,
		Opacity:           1,
		LineWidth:         1,
	}
}

// Wrap is a texture addressing mode.
type Wrap uint8

// Wrap modes.
const (
	WrapRepeat Wrap = iota
	WrapClamp
)

func (w Wrap) String() string {
	if w == WrapClamp {
		return "clamp"
	}
	return "repeat"
}

// Mapping says how texture coordinates are produced.
type Mapping uint8

// Texture mappings.
const (
	MappingUV Mapping = iota
	MappingEquirectangularReflection
)

// Texture references an image file and its sampling parameters.
type Texture struct {
	ID       int64
	Name     string
	FileName string
	// Path is FileName resolved against the loader's resource directory.
	Path    string
	WrapS   Wrap
	WrapT   Wrap
	Repeat  fmath.Vec2
	Mapping Mapping
	// Image is the embedded media, if any.
	Image *Image
}

// Image is an embedded media blob. Pixels are not decoded.
type Image struct {
	ID       int64
	FileName string
	MimeType string
	Content  []byte
}
