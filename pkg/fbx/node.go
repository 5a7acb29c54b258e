package fbx

import "strconv"

// Node is one entry of the attributed tree produced by both parsers.
type Node struct {
	// ID is the numeric object id, valid when HasID is set.
	ID    int64
	HasID bool
	// Key is the bucket key: the decimal ID, or the literal first
	// attribute for nodes such as "Vertices: *24".
	Key      string
	Name     string
	AttrName string
	AttrType string

	props     map[string]Value
	propOrder []string
	subs      map[string]*Bucket
	subOrder  []string
}

func newNode(name string) *Node {
	return &Node{Name: name}
}

func (n *Node) setID(id int64) {
	n.ID = id
	n.HasID = true
	n.Key = strconv.FormatInt(id, 10)
}

// Prop returns a property by name.
func (n *Node) Prop(name string) (Value, bool) {
	if n == nil {
		return Value{}, false
	}
	v, ok := n.props[name]
	return v, ok
}

// Has reports whether a property exists.
func (n *Node) Has(name string) bool {
	_, ok := n.Prop(name)
	return ok
}

// PropNames returns property names in insertion order.
func (n *Node) PropNames() []string {
	if n == nil {
		return nil
	}
	return n.propOrder
}

// SetProp stores a property, replacing any earlier value of the same name.
func (n *Node) SetProp(name string, v Value) {
	if n.props == nil {
		n.props = make(map[string]Value)
	}
	if _, exists := n.props[name]; !exists {
		n.propOrder = append(n.propOrder, name)
	}
	n.props[name] = v
}

// Bucket returns the sub-node bucket for name, or nil.
func (n *Node) Bucket(name string) *Bucket {
	if n == nil {
		return nil
	}
	return n.subs[name]
}

// Child returns the first sub-node called name, or nil.
func (n *Node) Child(name string) *Node {
	return n.Bucket(name).First()
}

// SubNodeNames returns the sub-node bucket names in insertion order.
func (n *Node) SubNodeNames() []string {
	if n == nil {
		return nil
	}
	return n.subOrder
}

// Array returns the "a" payload of the named array sub-node
// (e.g. Vertices, PolygonVertexIndex). Documents that write the array
// inline as "Vertices: 1,2,3" keep it as a plain property instead.
func (n *Node) Array(name string) (Value, bool) {
	if c := n.Child(name); c != nil {
		return c.Prop("a")
	}
	return n.Prop(name)
}

// AddChild appends c to the bucket for c.Name, promoting the bucket
// shape as siblings arrive.
func (n *Node) AddChild(c *Node) {
	if n.subs == nil {
		n.subs = make(map[string]*Bucket)
	}
	b, ok := n.subs[c.Name]
	if !ok {
		b = &Bucket{}
		n.subs[c.Name] = b
		n.subOrder = append(n.subOrder, c.Name)
	}
	b.add(c)
}

// Shape describes how same-named siblings are stored.
type Shape uint8

const (
	// ShapeSingle holds exactly one node.
	ShapeSingle Shape = iota
	// ShapeList holds id-less duplicates in arrival order.
	ShapeList
	// ShapeByKey holds nodes addressed by Key.
	ShapeByKey
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeByKey:
		return "map"
	}
	return "single"
}

// Bucket groups same-named sibling nodes. Iteration follows insertion
// order for every shape.
type Bucket struct {
	shape Shape
	nodes []*Node
	index map[string]int
}

func (b *Bucket) add(n *Node) {
	switch {
	case len(b.nodes) == 0:
		if n.HasID {
			b.shape = ShapeByKey
			b.put(n)
			return
		}
		b.shape = ShapeSingle
		b.nodes = append(b.nodes, n)
	case b.shape == ShapeSingle:
		if n.Key == "" {
			b.shape = ShapeList
			b.nodes = append(b.nodes, n)
			return
		}
		first := b.nodes[0]
		b.nodes = b.nodes[:0]
		b.shape = ShapeByKey
		b.put(first)
		b.put(n)
	case b.shape == ShapeList:
		b.nodes = append(b.nodes, n)
	default:
		b.put(n)
	}
}

func (b *Bucket) put(n *Node) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[n.Key]; ok {
		b.nodes[i] = n
		return
	}
	b.index[n.Key] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

// Shape returns the bucket shape.
func (b *Bucket) Shape() Shape { return b.shape }

// Len returns the number of nodes.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.nodes)
}

// Nodes returns the nodes in insertion order.
func (b *Bucket) Nodes() []*Node {
	if b == nil {
		return nil
	}
	return b.nodes
}

// First returns the first node, or nil.
func (b *Bucket) First() *Node {
	if b.Len() == 0 {
		return nil
	}
	return b.nodes[0]
}

// Get returns the node stored under key in a keyed bucket.
func (b *Bucket) Get(key string) *Node {
	if b == nil || b.index == nil {
		return nil
	}
	if i, ok := b.index[key]; ok {
		return b.nodes[i]
	}
	return nil
}

// GetID is Get for a numeric id.
func (b *Bucket) GetID(id int64) *Node {
	return b.Get(strconv.FormatInt(id, 10))
}

// Keys returns the keys of a keyed bucket in insertion order.
func (b *Bucket) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, len(b.nodes))
	for i, n := range b.nodes {
		keys[i] = n.Key
	}
	return keys
}
