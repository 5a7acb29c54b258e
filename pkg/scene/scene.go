package scene

// Scene is the loader output.
type Scene struct {
	Root *Node
	// Bones lists every model node in document order, for animation
	// binding by track index.
	Bones      []*Node
	Animations []*AnimationClip
}

// New creates an empty scene with a root group.
func New() *Scene {
	return &Scene{Root: NewNode(KindGroup, "")}
}

// Meshes returns every mesh and skinned mesh in the scene.
func (s *Scene) Meshes() []*Node {
	var out []*Node
	s.Root.Traverse(func(n *Node) {
		if n.Kind == KindMesh || n.Kind == KindSkinnedMesh {
			out = append(out, n)
		}
	})
	return out
}

// Count returns the number of nodes of each kind.
func (s *Scene) Count() map[Kind]int {
	counts := make(map[Kind]int)
	s.Root.Traverse(func(n *Node) {
		counts[n.Kind]++
	})
	return counts
}
