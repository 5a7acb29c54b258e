// Package gltfexport converts loaded scenes to glTF 2.0 documents.
package gltfexport

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// Options selects what is exported besides the node hierarchy and meshes.
type Options struct {
	IncludeSkins      bool
	IncludeAnimations bool
}

type exporter struct {
	doc  *gltf.Document
	opts Options

	nodes     map[*scene.Node]uint32
	materials map[*scene.Material]uint32
	textures  map[*scene.Texture]uint32
	skinned   []*scene.Node
}

// Export builds a glTF document from s.
func Export(s *scene.Scene, opts Options) (*gltf.Document, error) {
	e := &exporter{
		doc:       gltf.NewDocument(),
		opts:      opts,
		nodes:     make(map[*scene.Node]uint32),
		materials: make(map[*scene.Material]uint32),
		textures:  make(map[*scene.Texture]uint32),
	}

	for _, child := range s.Root.Children {
		idx, ok, err := e.addNode(child)
		if err != nil {
			return nil, err
		}
		if ok {
			e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, idx)
		}
	}

	if opts.IncludeSkins {
		for _, n := range e.skinned {
			e.addSkin(n)
		}
	}
	if opts.IncludeAnimations {
		for _, clip := range s.Animations {
			e.addAnimation(clip, s.Bones)
		}
	}

	logger.Debug("exported glTF document",
		zap.Int("nodes", len(e.doc.Nodes)),
		zap.Int("meshes", len(e.doc.Meshes)),
		zap.Int("skins", len(e.doc.Skins)),
		zap.Int("animations", len(e.doc.Animations)))
	return e.doc, nil
}

// addNode appends n and its subtree. Lights have no core glTF
// representation and are skipped.
func (e *exporter) addNode(n *scene.Node) (uint32, bool, error) {
	if n.Kind == scene.KindAmbientLight {
		logger.Debug("skipping ambient light", zap.String("name", n.Name))
		return 0, false, nil
	}

	node := &gltf.Node{
		Name:        n.Name,
		Translation: n.Position.Array(),
		Rotation:    n.Quaternion.Array(),
		Scale:       n.Scale.Array(),
	}
	idx := uint32(len(e.doc.Nodes))
	e.doc.Nodes = append(e.doc.Nodes, node)
	e.nodes[n] = idx

	if n.Geometry != nil && n.Geometry.VertexCount() > 0 {
		mesh, err := e.addMesh(n)
		if err != nil {
			return 0, false, err
		}
		node.Mesh = gltf.Index(mesh)
		if n.Kind == scene.KindSkinnedMesh && n.Skeleton != nil {
			e.skinned = append(e.skinned, n)
		}
	}

	for _, child := range n.Children {
		ci, ok, err := e.addNode(child)
		if err != nil {
			return 0, false, err
		}
		if ok {
			node.Children = append(node.Children, ci)
		}
	}
	return idx, true, nil
}

// addMesh writes the vertex buffers of n once and emits one primitive per
// material group.
func (e *exporter) addMesh(n *scene.Node) (uint32, error) {
	geo := n.Geometry
	count := geo.VertexCount()

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(e.doc, vec3s(geo.Positions)),
	}
	if len(geo.Normals) == len(geo.Positions) {
		attributes["NORMAL"] = modeler.WriteNormal(e.doc, vec3s(geo.Normals))
	}
	if len(geo.UVs) == count*2 {
		uvs := make([][2]float32, count)
		for i := range uvs {
			// glTF texture space has v pointing down.
			uvs[i] = [2]float32{geo.UVs[i*2], 1 - geo.UVs[i*2+1]}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(e.doc, uvs)
	}
	if len(geo.Colors) == len(geo.Positions) {
		colors := make([][4]uint8, count)
		for i := range colors {
			colors[i] = [4]uint8{unorm8(geo.Colors[i*3]), unorm8(geo.Colors[i*3+1]), unorm8(geo.Colors[i*3+2]), 255}
		}
		attributes["COLOR_0"] = modeler.WriteColor(e.doc, colors)
	}
	if e.opts.IncludeSkins && n.Skeleton != nil && len(geo.SkinIndices) == count*4 {
		joints := make([][4]uint16, count)
		weights := make([][4]float32, count)
		for i := range joints {
			copy(joints[i][:], geo.SkinIndices[i*4:i*4+4])
			copy(weights[i][:], geo.SkinWeights[i*4:i*4+4])
		}
		attributes["JOINTS_0"] = modeler.WriteJoints(e.doc, joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(e.doc, weights)
	}

	mesh := &gltf.Mesh{Name: n.Name}
	groups := geo.Groups
	if len(groups) == 0 {
		groups = []scene.Group{{Start: 0, Count: count}}
	}
	for _, g := range groups {
		prim := &gltf.Primitive{Attributes: attributes}
		if n.Kind == scene.KindLine {
			prim.Mode = gltf.PrimitiveLineStrip
		} else {
			indices := make([]uint32, g.Count)
			for i := range indices {
				indices[i] = uint32(g.Start + i)
			}
			prim.Indices = gltf.Index(modeler.WriteIndices(e.doc, indices))
		}

		if m := groupMaterial(n.Materials, g.MaterialIndex); m != nil {
			mi, err := e.addMaterial(m)
			if err != nil {
				return 0, err
			}
			prim.Material = gltf.Index(mi)
		}
		mesh.Primitives = append(mesh.Primitives, prim)
	}

	e.doc.Meshes = append(e.doc.Meshes, mesh)
	return uint32(len(e.doc.Meshes) - 1), nil
}

func groupMaterial(materials []*scene.Material, index int) *scene.Material {
	if len(materials) == 0 {
		return nil
	}
	if index < 0 || index >= len(materials) {
		return materials[0]
	}
	return materials[index]
}

// addMaterial maps a material onto the metallic-roughness model. Phong
// shininess becomes roughness; everything else is fully rough.
func (e *exporter) addMaterial(m *scene.Material) (uint32, error) {
	if idx, ok := e.materials[m]; ok {
		return idx, nil
	}

	color := [4]float32{m.Color.X, m.Color.Y, m.Color.Z, m.Opacity}
	metallic := float32(0)
	roughness := float32(1)
	if m.Kind == scene.MaterialPhong {
		roughness = math32.Sqrt(2 / (m.Shininess + 2))
	}

	out := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
		EmissiveFactor: m.Emissive.Scale(m.EmissiveIntensity).Array(),
	}
	if m.Transparent {
		out.AlphaMode = gltf.AlphaBlend
	}

	if m.Map != nil {
		ti, err := e.addTexture(m.Map)
		if err != nil {
			return 0, err
		}
		out.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: ti}
	}
	if m.EmissiveMap != nil {
		ti, err := e.addTexture(m.EmissiveMap)
		if err != nil {
			return 0, err
		}
		out.EmissiveTexture = &gltf.TextureInfo{Index: ti}
	}

	idx := uint32(len(e.doc.Materials))
	e.doc.Materials = append(e.doc.Materials, out)
	e.materials[m] = idx
	return idx, nil
}

// addTexture embeds image content when the document carried it and
// references the file name otherwise.
func (e *exporter) addTexture(t *scene.Texture) (uint32, error) {
	if idx, ok := e.textures[t]; ok {
		return idx, nil
	}

	sampler := &gltf.Sampler{
		Name:      t.Name + "_sampler",
		MinFilter: gltf.MinLinear,
		MagFilter: gltf.MagLinear,
		WrapS:     wrap(t.WrapS),
		WrapT:     wrap(t.WrapT),
	}
	samplerIndex := uint32(len(e.doc.Samplers))
	e.doc.Samplers = append(e.doc.Samplers, sampler)

	var imageIndex uint32
	if t.Image != nil && len(t.Image.Content) > 0 {
		var err error
		imageIndex, err = modeler.WriteImage(e.doc, t.Name+"_image", t.Image.MimeType, bytes.NewReader(t.Image.Content))
		if err != nil {
			return 0, errors.Wrapf(err, "write image of texture %q", t.Name)
		}
	} else {
		imageIndex = uint32(len(e.doc.Images))
		e.doc.Images = append(e.doc.Images, &gltf.Image{
			Name: t.Name + "_image",
			URI:  filepath.ToSlash(strings.ReplaceAll(t.FileName, `\`, "/")),
		})
	}

	idx := uint32(len(e.doc.Textures))
	e.doc.Textures = append(e.doc.Textures, &gltf.Texture{
		Name:    t.Name,
		Sampler: gltf.Index(samplerIndex),
		Source:  gltf.Index(imageIndex),
	})
	e.textures[t] = idx
	return idx, nil
}

func wrap(w scene.Wrap) gltf.WrappingMode {
	if w == scene.WrapClamp {
		return gltf.WrapClampToEdge
	}
	return gltf.WrapRepeat
}

// addSkin binds n to its skeleton's joints. Skeletons with bones that were
// not exported are skipped.
func (e *exporter) addSkin(n *scene.Node) {
	skel := n.Skeleton
	joints := make([]uint32, len(skel.Bones))
	inverses := make([][4][4]float32, len(skel.Bones))
	for i, bone := range skel.Bones {
		idx, ok := e.nodes[bone]
		if bone == nil || !ok {
			logger.Warn("skeleton has a bone outside the scene, skipping skin",
				zap.String("mesh", n.Name), zap.Int("bone", i))
			return
		}
		joints[i] = idx
		m := skel.BoneInverses[i]
		for c := 0; c < 4; c++ {
			copy(inverses[i][c][:], m[c*4:c*4+4])
		}
	}

	skin := &gltf.Skin{
		Name:                n.Name,
		Joints:              joints,
		InverseBindMatrices: gltf.Index(modeler.WriteAccessor(e.doc, gltf.TargetNone, inverses)),
	}
	e.doc.Skins = append(e.doc.Skins, skin)
	e.doc.Nodes[e.nodes[n]].Skin = gltf.Index(uint32(len(e.doc.Skins) - 1))
}

// addAnimation writes one translation, rotation and scale channel per
// track. Tracks are indexed like bones.
func (e *exporter) addAnimation(clip *scene.AnimationClip, bones []*scene.Node) {
	anim := &gltf.Animation{Name: clip.Name}
	for i, track := range clip.Tracks {
		if i >= len(bones) || len(track.Keys) == 0 {
			continue
		}
		target, ok := e.nodes[bones[i]]
		if !ok {
			continue
		}

		times := make([]float32, len(track.Keys))
		translations := make([][3]float32, len(track.Keys))
		rotations := make([][4]float32, len(track.Keys))
		scales := make([][3]float32, len(track.Keys))
		for k, key := range track.Keys {
			times[k] = key.Time
			translations[k] = key.Position.Array()
			rotations[k] = key.Rotation.Array()
			scales[k] = key.Scale.Array()
		}

		input := modeler.WriteAccessor(e.doc, gltf.TargetNone, times)
		e.addChannel(anim, target, gltf.TRSTranslation, input, modeler.WriteAccessor(e.doc, gltf.TargetNone, translations))
		e.addChannel(anim, target, gltf.TRSRotation, input, modeler.WriteAccessor(e.doc, gltf.TargetNone, rotations))
		e.addChannel(anim, target, gltf.TRSScale, input, modeler.WriteAccessor(e.doc, gltf.TargetNone, scales))
	}
	if len(anim.Channels) == 0 {
		return
	}
	e.doc.Animations = append(e.doc.Animations, anim)
}

func (e *exporter) addChannel(anim *gltf.Animation, node uint32, path gltf.TRSProperty, input, output uint32) {
	anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(input),
		Output:        gltf.Index(output),
		Interpolation: gltf.InterpolationLinear,
	})
	anim.Channels = append(anim.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(anim.Samplers) - 1)),
		Target:  gltf.ChannelTarget{Node: gltf.Index(node), Path: path},
	})
}

func vec3s(flat []float32) [][3]float32 {
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out
}

func unorm8(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// Write encodes doc as JSON glTF, or as GLB when binary is set.
func Write(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		doc = withEmbeddedBuffers(doc)
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	return errors.Wrap(enc.Encode(doc), "encode glTF")
}

// Save writes doc to path. A .glb extension selects the binary container.
func Save(doc *gltf.Document, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return errors.Wrapf(gltf.SaveBinary(doc, path), "save %s", path)
	}
	return errors.Wrapf(gltf.Save(withEmbeddedBuffers(doc), path), "save %s", path)
}

// withEmbeddedBuffers returns a shallow copy of doc whose unnamed buffers
// are data URIs, so JSON output is self-contained.
func withEmbeddedBuffers(doc *gltf.Document) *gltf.Document {
	out := *doc
	out.Buffers = make([]*gltf.Buffer, len(doc.Buffers))
	for i, b := range doc.Buffers {
		cp := *b
		if cp.URI == "" {
			cp.EmbeddedResource()
		}
		out.Buffers[i] = &cp
	}
	return &out
}
