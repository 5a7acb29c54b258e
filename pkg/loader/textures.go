package loader

import (
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	fmath "github.com/Faultbox/fbxscene/pkg/math"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// parseTextures extracts Texture objects, resolving their files through
// connected images first.
func (d *document) parseTextures(images map[int64]*scene.Image) map[int64]*scene.Texture {
	textures := make(map[int64]*scene.Texture)
	d.eachObject("Texture", func(id int64, n *fbx.Node) {
		textures[id] = d.parseTexture(id, n, images)
	})
	return textures
}

func (d *document) parseTexture(id int64, n *fbx.Node, images map[int64]*scene.Image) *scene.Texture {
	tex := &scene.Texture{
		ID:     id,
		Name:   d.names.Decode(n.AttrName),
		Repeat: fmath.Vec2{X: 1, Y: 1},
	}

	children := d.graph.Children(id)
	relative, hasRelative := d.text(n, "RelativeFilename")
	switch {
	case len(children) > 0 && images[children[0].ID] != nil:
		img := images[children[0].ID]
		tex.Image = img
		tex.FileName = img.FileName
	case hasRelative && relative != "" && !encoding.IsAbsolutePath(relative):
		tex.FileName = relative
	default:
		path, _ := d.text(n, "FileName")
		tex.FileName = encoding.BaseName(path)
	}
	tex.Path = resolvePath(d.dir, tex.FileName)

	tex.WrapS = wrapMode(n, "WrapModeU")
	tex.WrapT = wrapMode(n, "WrapModeV")

	if v, ok := n.Prop("Scaling"); ok {
		if s := v.Float64s(); len(s) >= 2 {
			tex.Repeat = fmath.Vec2FromSlice(s, 0)
		}
	}
	return tex
}

func wrapMode(n *fbx.Node, name string) scene.Wrap {
	v, ok := n.Prop(name)
	if !ok {
		return scene.WrapRepeat
	}
	if mode, _ := v.Int(); mode != 0 {
		return scene.WrapClamp
	}
	return scene.WrapRepeat
}
