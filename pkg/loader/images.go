package loader

import (
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

const mimeOctetStream = "application/octet-stream"

var imageMimeTypes = map[string]string{
	"bmp":  "image/bmp",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// parseImages extracts Video objects. Embedded content is kept as bytes;
// images without content keep only the base name of their file.
func (d *document) parseImages() map[int64]*scene.Image {
	images := make(map[int64]*scene.Image)
	d.eachObject("Video", func(id int64, n *fbx.Node) {
		name, ok := d.text(n, "RelativeFilename")
		if !ok || name == "" {
			name, _ = d.text(n, "Filename")
		}

		img := &scene.Image{ID: id, FileName: name}
		if content, ok := n.Prop("Content"); ok {
			img.Content = imageContent(content)
		}
		if len(img.Content) == 0 {
			img.FileName = encoding.BaseName(name)
		} else {
			img.MimeType = imageMimeType(name)
		}
		images[id] = img
	})
	return images
}

// imageContent decodes a Content property: raw bytes in binary
// documents, base64 text in text documents.
func imageContent(v fbx.Value) []byte {
	if b, ok := v.Bytes(); ok {
		return b
	}
	s, ok := v.Text()
	if !ok || s == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		logger.Warn("invalid base64 image content", zap.Error(err))
		return nil
	}
	return data
}

func imageMimeType(name string) string {
	ext := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = name[i+1:]
	}
	if mime, ok := imageMimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	logger.Warn("unsupported embedded image type", zap.String("file", name))
	return mimeOctetStream
}
