// Package loader turns FBX documents into scene graphs: it extracts
// images, textures, materials, skin deformers and geometry, assembles
// the model hierarchy, binds skeletons and rebuilds animation clips.
package loader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

// Options configures a Loader.
type Options struct {
	// Names decodes legacy code page strings. Nil keeps strings as-is.
	Names *encoding.NameDecoder
	// ResourceDir is the base for texture file names. When empty, Load
	// uses the directory of the source.
	ResourceDir string
	// Curves evaluates NURBS curves. Without it NurbsCurve geometry is empty.
	Curves CurveEvaluator
	// Client fetches http(s) sources. Defaults to a client with FetchTimeout.
	Client       *http.Client
	FetchTimeout time.Duration
	// MaxFetchBytes caps the size of fetched documents. Zero means no cap.
	MaxFetchBytes int64
}

// Loader loads FBX documents. A Loader holds no per-document state and
// may be reused.
type Loader struct {
	opts Options
}

// New creates a loader.
func New(opts Options) *Loader {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.FetchTimeout}
	}
	return &Loader{opts: opts}
}

// Load reads source (a file path or an http(s) URL) and builds its scene.
func (l *Loader) Load(ctx context.Context, source string) (*scene.Scene, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	dir := l.opts.ResourceDir
	if dir == "" {
		dir = ResourceDir(source)
	}
	logger.Debug("loaded FBX source",
		zap.String("source", source),
		zap.Int("bytes", len(data)),
		zap.String("resourceDir", dir))

	return l.parse(data, dir)
}

// LoadTree reads source and returns its attributed tree without building
// a scene.
func (l *Loader) LoadTree(ctx context.Context, source string) (*fbx.Tree, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return fbx.Parse(data)
}

// Parse builds a scene from an in-memory document. Texture paths resolve
// against Options.ResourceDir.
func (l *Loader) Parse(data []byte) (*scene.Scene, error) {
	return l.parse(data, l.opts.ResourceDir)
}

func (l *Loader) parse(data []byte, dir string) (*scene.Scene, error) {
	tree, err := fbx.Parse(data)
	if err != nil {
		return nil, err
	}
	return l.Build(tree, dir)
}

// Build assembles a scene from an already parsed tree.
func (l *Loader) Build(tree *fbx.Tree, dir string) (*scene.Scene, error) {
	doc, err := newDocument(tree, l.opts, dir)
	if err != nil {
		return nil, err
	}

	logger.Debug("building scene",
		zap.Stringer("document", doc),
		zap.Int("objects", doc.graph.Len()))

	images := doc.parseImages()
	textures := doc.parseTextures(images)
	materials := doc.parseMaterials(textures)
	deformers := doc.parseDeformers()
	geometries := doc.parseGeometries(deformers)

	s := doc.parseScene(deformers, geometries, materials)
	s.Animations = doc.parseAnimations(s.Bones)
	doc.addAmbientLight(s)

	return s, nil
}

// document is the per-load state shared by the extraction stages.
type document struct {
	tree    *fbx.Tree
	version fbx.FormatVersion
	objects *fbx.Node
	graph   *fbx.Graph
	names   *encoding.NameDecoder
	curves  CurveEvaluator
	dir     string
}

func newDocument(tree *fbx.Tree, opts Options, dir string) (*document, error) {
	objects, err := tree.Objects()
	if err != nil {
		return nil, err
	}
	conns, err := tree.Connections()
	if err != nil {
		return nil, err
	}
	return &document{
		tree:    tree,
		version: tree.Version,
		objects: objects,
		graph:   fbx.NewGraph(conns, objects, tree.Version),
		names:   opts.Names,
		curves:  opts.Curves,
		dir:     dir,
	}, nil
}

// eachObject calls fn for every object in the named Objects bucket that
// has a numeric id, in document order.
func (d *document) eachObject(bucket string, fn func(id int64, n *fbx.Node)) {
	for _, n := range d.objects.Bucket(bucket).Nodes() {
		id, ok := d.version.ObjectID(n)
		if !ok {
			logger.Warn("skipping object without numeric id",
				zap.String("type", bucket), zap.String("key", n.Key))
			continue
		}
		fn(id, n)
	}
}

// object returns the object with id from the named bucket.
func (d *document) object(bucket string, id int64) *fbx.Node {
	b := d.objects.Bucket(bucket)
	if n := b.GetID(id); n != nil {
		return n
	}
	for _, n := range b.Nodes() {
		if oid, ok := d.version.ObjectID(n); ok && oid == id {
			return n
		}
	}
	return nil
}

// text returns a decoded string property.
func (d *document) text(n *fbx.Node, name string) (string, bool) {
	v, ok := n.Prop(name)
	if !ok {
		return "", false
	}
	s, ok := v.Text()
	if !ok {
		return "", false
	}
	return d.names.Decode(s), true
}

func (d *document) String() string {
	return fmt.Sprintf("%s FBX %s", d.tree.Format, d.version)
}
