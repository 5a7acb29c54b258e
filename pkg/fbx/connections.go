package fbx

import "sort"

// Edge is one end of a connection as seen from the other end.
type Edge struct {
	ID           int64
	Relationship string
}

// Links holds the parent and child edges of one object.
type Links struct {
	Parents  []Edge
	Children []Edge
}

// Graph is the bidirectional adjacency map built from the connection list.
// Ids are stored raw: the scene root stays 0.
type Graph struct {
	links map[int64]*Links
}

// NewGraph builds the adjacency map in a single pass over conns. Every
// object id under objects is registered even when it has no edges.
func NewGraph(conns []Connection, objects *Node, version FormatVersion) *Graph {
	g := &Graph{links: make(map[int64]*Links, len(conns))}
	for _, name := range objects.SubNodeNames() {
		for _, n := range objects.Bucket(name).Nodes() {
			if id, ok := version.ObjectID(n); ok {
				g.bucket(id)
			}
		}
	}
	for _, c := range conns {
		child := g.bucket(c.From)
		child.Parents = append(child.Parents, Edge{ID: c.To, Relationship: c.Relationship})
		parent := g.bucket(c.To)
		parent.Children = append(parent.Children, Edge{ID: c.From, Relationship: c.Relationship})
	}
	return g
}

func (g *Graph) bucket(id int64) *Links {
	l, ok := g.links[id]
	if !ok {
		l = &Links{}
		g.links[id] = l
	}
	return l
}

// Has reports whether id has a bucket.
func (g *Graph) Has(id int64) bool {
	_, ok := g.links[id]
	return ok
}

// Get returns the links of id, or nil.
func (g *Graph) Get(id int64) *Links {
	return g.links[id]
}

// Parents returns the parent edges of id.
func (g *Graph) Parents(id int64) []Edge {
	if l := g.links[id]; l != nil {
		return l.Parents
	}
	return nil
}

// Children returns the child edges of id.
func (g *Graph) Children(id int64) []Edge {
	if l := g.links[id]; l != nil {
		return l.Children
	}
	return nil
}

// Connected reports whether id has at least one edge.
func (g *Graph) Connected(id int64) bool {
	l := g.links[id]
	return l != nil && (len(l.Parents) > 0 || len(l.Children) > 0)
}

// Len returns the number of registered ids.
func (g *Graph) Len() int {
	return len(g.links)
}

// IDs returns every registered id in ascending order.
func (g *Graph) IDs() []int64 {
	ids := make([]int64, 0, len(g.links))
	for id := range g.links {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
