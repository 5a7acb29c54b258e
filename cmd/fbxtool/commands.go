package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/config"
	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
	"github.com/Faultbox/fbxscene/pkg/gltfexport"
	"github.com/Faultbox/fbxscene/pkg/loader"
	"github.com/Faultbox/fbxscene/pkg/scene"
)

var errUsage = errors.New("missing arguments")

func usage(line string) error {
	fmt.Fprintln(os.Stderr, "Usage: "+line)
	return errUsage
}

// loadTree parses a source through the configured loader and converts
// object names to UTF-8 with the configured name encoding.
func loadTree(cfg *config.Config, source string) (*fbx.Tree, error) {
	ld, err := newLoader(cfg)
	if err != nil {
		return nil, err
	}
	tree, err := ld.LoadTree(context.Background(), source)
	if err != nil {
		return nil, err
	}
	names, err := encoding.NewNameDecoder(cfg.Loader.NameEncoding)
	if err != nil {
		return nil, err
	}
	decodeNames(tree.Root, names)
	return tree, nil
}

// decodeNames rewrites AttrName of n and its descendants in place.
func decodeNames(n *fbx.Node, names *encoding.NameDecoder) {
	n.AttrName = names.Decode(n.AttrName)
	for _, name := range n.SubNodeNames() {
		for _, child := range n.Bucket(name).Nodes() {
			decodeNames(child, names)
		}
	}
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usage("fbxtool info <file.fbx>")
	}

	ld, err := newLoader(cfg)
	if err != nil {
		return err
	}
	tree, err := ld.LoadTree(context.Background(), args[0])
	if err != nil {
		return err
	}
	objects, err := tree.Objects()
	if err != nil {
		return err
	}
	conns, err := tree.Connections()
	if err != nil {
		return err
	}

	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Format:      %s\n", tree.Format)
	fmt.Printf("Version:     %d\n", tree.Version)
	fmt.Printf("Connections: %d\n", len(conns))
	fmt.Println()
	fmt.Println("Objects:")
	for _, name := range objects.SubNodeNames() {
		fmt.Printf("  %-20s %d\n", name, objects.Bucket(name).Len())
	}

	s, err := ld.Build(tree, sourceDir(cfg, args[0]))
	if err != nil {
		return err
	}
	fmt.Println()
	printSceneSummary(os.Stdout, s)
	return nil
}

// printSceneSummary writes node counts by kind and clip totals.
func printSceneSummary(w io.Writer, s *scene.Scene) {
	counts := s.Count()
	kinds := make([]scene.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fmt.Fprintln(w, "Scene:")
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
	vertices := 0
	for _, m := range s.Meshes() {
		vertices += m.Geometry.VertexCount()
	}
	fmt.Fprintf(w, "  %-20s %d\n", "vertices", vertices)
	fmt.Fprintf(w, "  %-20s %d\n", "animations", len(s.Animations))
}

func cmdTree(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	depth := fs.Int("depth", 0, "Maximum depth to print (0 = all)")
	props := fs.Bool("props", false, "Print property values")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usage("fbxtool tree [-depth N] [-props] <file.fbx>")
	}

	tree, err := loadTree(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	printTree(os.Stdout, tree.Root, 0, *depth, *props)
	return nil
}

// printTree writes n and its descendants, indenting two spaces per level.
func printTree(w io.Writer, n *fbx.Node, level, maxDepth int, props bool) {
	for _, name := range n.SubNodeNames() {
		for _, child := range n.Bucket(name).Nodes() {
			indent := strings.Repeat("  ", level)
			fmt.Fprintf(w, "%s%s\n", indent, nodeLabel(child))
			if props {
				for _, p := range child.PropNames() {
					v, _ := child.Prop(p)
					fmt.Fprintf(w, "%s  .%s = %s\n", indent, p, truncate(v.String(), 80))
				}
			}
			if maxDepth == 0 || level+1 < maxDepth {
				printTree(w, child, level+1, maxDepth, props)
			}
		}
	}
}

func nodeLabel(n *fbx.Node) string {
	var b strings.Builder
	b.WriteString(n.Name)
	if n.HasID {
		b.WriteString(" #")
		b.WriteString(strconv.FormatInt(n.ID, 10))
	} else if n.Key != "" && n.Key != n.Name {
		b.WriteString(" [")
		b.WriteString(n.Key)
		b.WriteString("]")
	}
	if n.AttrName != "" {
		fmt.Fprintf(&b, " %q", n.AttrName)
	}
	if n.AttrType != "" {
		b.WriteString(" (")
		b.WriteString(n.AttrType)
		b.WriteString(")")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func cmdDump(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usage("fbxtool dump <file.fbx> [id]")
	}

	tree, err := loadTree(cfg, args[0])
	if err != nil {
		return err
	}

	dumper := spew.NewDefaultConfig()
	dumper.DisableCapacities = true
	dumper.DisablePointerAddresses = true

	if len(args) < 2 {
		dumper.Fdump(os.Stdout, tree.Root)
		return nil
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid object id %q", args[1])
	}
	n, err := findObject(tree, id)
	if err != nil {
		return err
	}
	dumper.Fdump(os.Stdout, n)
	return nil
}

// findObject looks id up in every bucket of the Objects section.
func findObject(tree *fbx.Tree, id int64) (*fbx.Node, error) {
	objects, err := tree.Objects()
	if err != nil {
		return nil, err
	}
	for _, name := range objects.SubNodeNames() {
		for _, n := range objects.Bucket(name).Nodes() {
			if oid, ok := tree.Version.ObjectID(n); ok && oid == id {
				return n, nil
			}
		}
	}
	return nil, errors.Errorf("object %d not found", id)
}

func cmdConns(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usage("fbxtool conns <file.fbx> [id]")
	}

	tree, err := loadTree(cfg, args[0])
	if err != nil {
		return err
	}
	conns, err := tree.Connections()
	if err != nil {
		return err
	}

	if len(args) < 2 {
		for _, c := range conns {
			fmt.Println(connectionLine(c))
		}
		return nil
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid object id %q", args[1])
	}
	objects, err := tree.Objects()
	if err != nil {
		return err
	}
	printLinks(os.Stdout, fbx.NewGraph(conns, objects, tree.Version), id)
	return nil
}

func connectionLine(c fbx.Connection) string {
	line := fmt.Sprintf("%s %d -> %d", c.Kind, c.From, c.To)
	if c.Relationship != "" {
		line += " (" + c.Relationship + ")"
	}
	return line
}

// printLinks writes the parent and child edges of id.
func printLinks(w io.Writer, g *fbx.Graph, id int64) {
	links := g.Get(id)
	if links == nil {
		fmt.Fprintf(w, "%d: no connections\n", id)
		return
	}
	fmt.Fprintf(w, "Parents of %d:\n", id)
	for _, e := range links.Parents {
		fmt.Fprintf(w, "  %s\n", edgeLine(e))
	}
	fmt.Fprintf(w, "Children of %d:\n", id)
	for _, e := range links.Children {
		fmt.Fprintf(w, "  %s\n", edgeLine(e))
	}
}

func edgeLine(e fbx.Edge) string {
	if e.Relationship == "" {
		return strconv.FormatInt(e.ID, 10)
	}
	return fmt.Sprintf("%d (%s)", e.ID, e.Relationship)
}

func cmdAnim(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usage("fbxtool anim <file.fbx>")
	}

	s, err := loadScene(cfg, args[0])
	if err != nil {
		return err
	}
	printAnimations(os.Stdout, s)
	return nil
}

func printAnimations(w io.Writer, s *scene.Scene) {
	if len(s.Animations) == 0 {
		fmt.Fprintln(w, "No animations")
		return
	}
	for _, clip := range s.Animations {
		keys := 0
		for _, t := range clip.Tracks {
			keys += len(t.Keys)
		}
		fmt.Fprintf(w, "%-24s %6.2fs @ %g fps  tracks=%d keys=%d\n",
			clip.Name, clip.Duration, clip.FPS, len(clip.Tracks), keys)
	}
}

func cmdConvert(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	noSkins := fs.Bool("no-skins", false, "Do not export skins")
	noAnims := fs.Bool("no-animations", false, "Do not export animations")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usage("fbxtool convert [-no-skins] [-no-animations] <file.fbx> [output]")
	}

	input := fs.Arg(0)
	output := fs.Arg(1)
	if output == "" {
		output = outputPath(input, cfg.Export.Binary)
	}

	s, err := loadScene(cfg, input)
	if err != nil {
		return err
	}
	doc, err := gltfexport.Export(s, gltfexport.Options{
		IncludeSkins:      cfg.Export.IncludeSkins && !*noSkins,
		IncludeAnimations: cfg.Export.IncludeAnimations && !*noAnims,
	})
	if err != nil {
		return err
	}
	if err := gltfexport.Save(doc, output); err != nil {
		return err
	}

	logger.Info("converted",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("animations", len(doc.Animations)))
	fmt.Printf("Wrote %s\n", output)
	return nil
}

func loadScene(cfg *config.Config, source string) (*scene.Scene, error) {
	ld, err := newLoader(cfg)
	if err != nil {
		return nil, err
	}
	return ld.Load(context.Background(), source)
}

func sourceDir(cfg *config.Config, source string) string {
	if cfg.Loader.ResourceDir != "" {
		return cfg.Loader.ResourceDir
	}
	return loader.ResourceDir(source)
}

// outputPath derives the glTF file name from the input's base name.
func outputPath(input string, binary bool) string {
	base := input
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "scene"
	}
	if binary {
		return base + ".glb"
	}
	return base + ".gltf"
}
