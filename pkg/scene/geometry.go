package scene

// Group is a contiguous range of vertices drawn with one material.
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}

// Geometry holds non-indexed triangle buffers. Every triangle corner is
// its own vertex.
type Geometry struct {
	ID   int64
	Name string

	Positions   []float32 // 3 per vertex
	Normals     []float32 // 3 per vertex
	UVs         []float32 // 2 per vertex
	Colors      []float32 // 3 per vertex
	SkinIndices []uint16  // 4 per vertex
	SkinWeights []float32 // 4 per vertex

	Groups []Group
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Skinned reports whether the geometry carries skin buffers.
func (g *Geometry) Skinned() bool {
	return len(g.SkinIndices) > 0
}

// HasColors reports whether the geometry carries vertex colours.
func (g *Geometry) HasColors() bool {
	return len(g.Colors) > 0
}

// AddGroup appends a material group.
func (g *Geometry) AddGroup(start, count, materialIndex int) {
	g.Groups = append(g.Groups, Group{Start: start, Count: count, MaterialIndex: materialIndex})
}
