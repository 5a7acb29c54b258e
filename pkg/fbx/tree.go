package fbx

// Tree is a parsed FBX document. Both dialects produce the same shape.
//
// A Tree is built and read by a single goroutine. The connection search
// helpers memoise into per-tree caches without locking.
type Tree struct {
	Root    *Node
	Format  Format
	Version FormatVersion

	parentCache   map[int64][]int64
	childrenCache map[int64][]int64
	typeCache     map[[2]int64]string
}

// Objects returns the Objects section.
func (t *Tree) Objects() (*Node, error) {
	objects := t.Root.Child("Objects")
	if objects == nil {
		return nil, ErrMissingObjects
	}
	return objects, nil
}

// Connections returns the flat connection list.
func (t *Tree) Connections() ([]Connection, error) {
	node := t.Root.Child("Connections")
	if node == nil {
		return nil, ErrMissingConnections
	}
	v, _ := node.Prop("connections")
	return v.Connections(), nil
}

// GlobalSettings returns the GlobalSettings section, or nil.
func (t *Tree) GlobalSettings() *Node {
	return t.Root.Child("GlobalSettings")
}

// SearchConnectionParent returns the parent ids of id. The scene root (0)
// is reported as -1, and an id without parents yields [-1].
func (t *Tree) SearchConnectionParent(id int64) []int64 {
	if cached, ok := t.parentCache[id]; ok {
		return cached
	}
	if t.parentCache == nil {
		t.parentCache = make(map[int64][]int64)
	}
	conns, _ := t.Connections()
	var results []int64
	for _, c := range conns {
		if c.From == id {
			results = append(results, normalizeRoot(c.To))
		}
	}
	if len(results) == 0 {
		results = []int64{-1}
	}
	t.parentCache[id] = results
	return results
}

// SearchConnectionChildren returns the child ids of id, with the same
// root normalisation as SearchConnectionParent.
func (t *Tree) SearchConnectionChildren(id int64) []int64 {
	if cached, ok := t.childrenCache[id]; ok {
		return cached
	}
	if t.childrenCache == nil {
		t.childrenCache = make(map[int64][]int64)
	}
	conns, _ := t.Connections()
	var results []int64
	for _, c := range conns {
		if c.To == id {
			results = append(results, normalizeRoot(c.From))
		}
	}
	if len(results) == 0 {
		results = []int64{-1}
	}
	t.childrenCache[id] = results
	return results
}

// SearchConnectionType returns the relationship label of the first
// connection from id to parent, or "".
func (t *Tree) SearchConnectionType(id, parent int64) string {
	key := [2]int64{id, parent}
	if cached, ok := t.typeCache[key]; ok {
		return cached
	}
	if t.typeCache == nil {
		t.typeCache = make(map[[2]int64]string)
	}
	conns, _ := t.Connections()
	label := ""
	for _, c := range conns {
		if c.From == id && c.To == parent {
			label = c.Relationship
			break
		}
	}
	t.typeCache[key] = label
	return label
}

func normalizeRoot(id int64) int64 {
	if id == 0 {
		return -1
	}
	return id
}
