package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fbxscene/internal/fbxtest"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func material(id int64, name, shading string, props ...*fbxtest.Node) *fbxtest.Node {
	return fbxtest.N("Material", id, fbxtest.ObjectName(name, "Material"), "").With(
		fbxtest.N("Version", int32(102)),
		fbxtest.N("ShadingModel", shading),
		fbxtest.N("Properties70").With(props...),
	)
}

func texture(id int64, name string, children ...*fbxtest.Node) *fbxtest.Node {
	return fbxtest.N("Texture", id, fbxtest.ObjectName(name, "Texture"), "").With(
		fbxtest.N("Type", "TextureVideoClip"),
	).With(children...)
}

func video(id int64, relative string, content []byte) *fbxtest.Node {
	n := fbxtest.N("Video", id, fbxtest.ObjectName("Clip", "Video"), "Clip").With(
		fbxtest.N("Type", "Clip"),
		fbxtest.N("RelativeFilename", relative),
	)
	if content != nil {
		n.With(fbxtest.N("Content", content))
	}
	return n
}

func materialDoc() []*fbxtest.Node {
	return fbxDocument(7400,
		[]*fbxtest.Node{
			triangle(100),
			model(200, "Cube", "Mesh"),
			material(700, "Wood", "Phong",
				fbxtest.P("DiffuseColor", "Color", "", "A", 0.25, 0.5, 0.75),
				fbxtest.P("SpecularColor", "Color", "", "A", 1.0, 1.0, 1.0),
				fbxtest.P("Shininess", "double", "Number", "", 20.0),
				fbxtest.P("Opacity", "double", "Number", "", 0.5),
				fbxtest.P("BumpFactor", "double", "Number", "", 0.3),
			),
			material(701, "Unused", "Lambert"),
			material(702, "Toon", "toon"),
			texture(800, "Diffuse",
				fbxtest.N("Properties70").With(
					fbxtest.P("WrapModeU", "enum", "", "", int32(1)),
					fbxtest.P("Scaling", "Vector", "", "A", 2.0, 3.0, 1.0),
				),
			),
			video(900, `textures\wood.png`, pngHeader),
			texture(801, "Bump",
				fbxtest.N("FileName", `C:\art\bump.jpg`),
				fbxtest.N("RelativeFilename", `C:\art\bump.jpg`),
			),
			texture(802, "Reflect", fbxtest.N("RelativeFilename", "env/sky.jpg")),
			texture(803, "Ambient", fbxtest.N("RelativeFilename", "ao.png")),
		},
		[]*fbxtest.Node{
			fbxtest.C("OO", 100, 200),
			fbxtest.C("OO", 200, 0),
			fbxtest.C("OO", 700, 200),
			fbxtest.C("OO", 702, 200),
			fbxtest.C("OO", 900, 800),
			fbxtest.C("OP", 800, 700, "DiffuseColor"),
			fbxtest.C("OP", 801, 700, "Bump"),
			fbxtest.C("OP", 802, 700, "ReflectionColor"),
			fbxtest.C("OP", 803, 700, "AmbientColor"),
		},
	)
}

func TestMaterials(t *testing.T) {
	data := fbxtest.EncodeBinary(7400, false, materialDoc()...)
	s, err := New(Options{ResourceDir: "assets"}).Parse(data)
	require.NoError(t, err)

	cube := s.Root.FindByName("Cube")
	require.NotNil(t, cube)
	require.Len(t, cube.Materials, 2)

	wood := cube.Materials[0]
	assert.Equal(t, scene.MaterialPhong, wood.Kind)
	assert.Equal(t, "Wood", wood.Name)
	assert.Equal(t, fmath.Vec3{X: 0.25, Y: 0.5, Z: 0.75}, wood.Color)
	assert.Equal(t, fmath.Vec3{X: 1, Y: 1, Z: 1}, wood.Specular)
	assert.Equal(t, float32(20), wood.Shininess)
	assert.Equal(t, float32(0.5), wood.Opacity)
	assert.True(t, wood.Transparent)
	assert.InDelta(t, 0.3, wood.BumpScale, 1e-6)

	require.NotNil(t, wood.Map)
	assert.Equal(t, `textures\wood.png`, wood.Map.FileName)
	assert.Equal(t, filepath.Join("assets", "textures", "wood.png"), wood.Map.Path)
	assert.Equal(t, scene.WrapClamp, wood.Map.WrapS)
	assert.Equal(t, scene.WrapRepeat, wood.Map.WrapT)
	assert.Equal(t, fmath.Vec2{X: 2, Y: 3}, wood.Map.Repeat)
	require.NotNil(t, wood.Map.Image)
	assert.Equal(t, "image/png", wood.Map.Image.MimeType)
	assert.Equal(t, pngHeader, wood.Map.Image.Content)

	require.NotNil(t, wood.BumpMap)
	assert.Equal(t, "bump.jpg", wood.BumpMap.FileName)

	require.NotNil(t, wood.EnvMap)
	assert.Equal(t, scene.MappingEquirectangularReflection, wood.EnvMap.Mapping)
	assert.Equal(t, "env/sky.jpg", wood.EnvMap.FileName)

	toon := cube.Materials[1]
	assert.Equal(t, scene.MaterialBasic, toon.Kind)
	assert.Equal(t, scene.PlaceholderColor, toon.Color)
}

func TestParseMaterialsSkipsUnconnected(t *testing.T) {
	doc := newTestDocument(t, 7400, materialDoc())
	textures := doc.parseTextures(doc.parseImages())
	materials := doc.parseMaterials(textures)

	assert.Contains(t, materials, int64(700))
	assert.Contains(t, materials, int64(702))
	assert.NotContains(t, materials, int64(701))
}

func TestShininessExponentFallback(t *testing.T) {
	doc := newTestDocument(t, 7400, fbxDocument(7400,
		[]*fbxtest.Node{
			model(200, "Cube", "Mesh"),
			material(710, "Exponent", "Phong",
				fbxtest.P("ShininessExponent", "double", "Number", "", 80.0),
			),
			material(711, "Both", "Phong",
				fbxtest.P("Shininess", "double", "Number", "", 12.0),
				fbxtest.P("ShininessExponent", "double", "Number", "", 80.0),
			),
		},
		[]*fbxtest.Node{
			fbxtest.C("OO", 710, 200),
			fbxtest.C("OO", 711, 200),
		},
	))
	materials := doc.parseMaterials(nil)
	require.Contains(t, materials, int64(710))
	require.Contains(t, materials, int64(711))

	assert.Equal(t, float32(80), materials[710].Shininess)
	assert.Equal(t, float32(12), materials[711].Shininess, "Shininess takes precedence")
}

func TestImages(t *testing.T) {
	doc := newTestDocument(t, 7400, fbxDocument(7400,
		[]*fbxtest.Node{
			video(900, "maps/wood.png", pngHeader),
			video(901, "maps/linked.tga", nil),
			video(902, "maps/odd.xyz", []byte{1, 2}),
		},
		nil,
	))
	images := doc.parseImages()
	require.Len(t, images, 3)

	assert.Equal(t, "maps/wood.png", images[900].FileName)
	assert.Equal(t, "image/png", images[900].MimeType)

	assert.Equal(t, "linked.tga", images[901].FileName)
	assert.Empty(t, images[901].Content)

	assert.Equal(t, mimeOctetStream, images[902].MimeType)
}

func TestImageContentText(t *testing.T) {
	data := fbxtest.EncodeText(7400, fbxDocument(7400,
		[]*fbxtest.Node{video(900, "wood.png", pngHeader)},
		nil,
	)...)
	tree, err := fbx.Parse(data)
	require.NoError(t, err)
	doc, err := newDocument(tree, Options{}, "")
	require.NoError(t, err)

	img := doc.parseImages()[900]
	require.NotNil(t, img)
	assert.Equal(t, pngHeader, img.Content)
	assert.Equal(t, "image/png", img.MimeType)
}
