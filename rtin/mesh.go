package rtin

// Mesh is an indexed triangle mesh extracted from a Tile. Vertices are grid
// integer coordinates (x, y pairs); Triangles are 0-based indices into
// Vertices. Every triangle, in both root halves, has the same winding: for
// its vertices (a, b, c) in emitted order, the 2D cross product
// (b-a)×(c-a) in grid coordinates is negative. Callers that need the
// opposite orientation must reorient.
type Mesh struct {
	Vertices  []uint16
	Triangles []uint32
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.Vertices) / 2 }

// NumTriangles returns the triangle count.
func (m *Mesh) NumTriangles() int { return len(m.Triangles) / 3 }

// Vertex returns the (x, y) grid coordinate of vertex i.
func (m *Mesh) Vertex(i int) (x, y uint16) {
	return m.Vertices[2*i], m.Vertices[2*i+1]
}
