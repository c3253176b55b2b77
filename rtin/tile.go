package rtin

// Tile binds a heightfield sample buffer to a Grid, eagerly computing the
// per-pixel error field, then adaptively extracting indexed meshes from it
// on demand. A Tile is read-only after construction; GetMesh may be called
// any number of times, including concurrently, since each GetMesh call
// allocates its own index scratch buffer (Grid never needs to be locked out
// during extraction).
type Tile struct {
	grid    *Grid
	Terrain []float32
	Errors  []float32
}

// NewTile computes the error field for terrain against grid. terrain must
// have exactly grid.GridSize*grid.GridSize samples.
func NewTile(grid *Grid, terrain []float32) (*Tile, error) {
	expected := int(grid.GridSize) * int(grid.GridSize)
	if len(terrain) != expected {
		return nil, &TerrainSizeMismatchError{Expected: expected, Actual: len(terrain)}
	}

	t := &Tile{
		grid:    grid,
		Terrain: terrain,
		Errors:  make([]float32, expected),
	}
	t.computeErrors()
	return t, nil
}

func (t *Tile) computeErrors() {
	g := t.grid
	size := g.GridSize
	coords := g.Coords
	terrain := t.Terrain
	errors := t.Errors

	for i := int32(g.NumTriangles) - 1; i >= 0; i-- {
		k := uint32(i) * 4
		ax, ay := uint32(coords[k+0]), uint32(coords[k+1])
		bx, by := uint32(coords[k+2]), uint32(coords[k+3])
		mx, my, cx, cy := apex(ax, ay, bx, by)

		interpolated := (terrain[ay*size+ax] + terrain[by*size+bx]) / 2
		midIdx := my*size + mx
		localError := abs32(interpolated - terrain[midIdx])

		if localError > errors[midIdx] {
			errors[midIdx] = localError
		}

		if uint32(i) < g.NumParentTriangles {
			leftIdx := ((ay+cy)>>1)*size + ((ax+cx)>>1)
			rightIdx := ((by+cy)>>1)*size + ((bx+cx)>>1)
			if errors[leftIdx] > errors[midIdx] {
				errors[midIdx] = errors[leftIdx]
			}
			if errors[rightIdx] > errors[midIdx] {
				errors[midIdx] = errors[rightIdx]
			}
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// GetMesh extracts the coarsest crack-free mesh whose vertical error stays
// within maxError and whose leg length stays within maxLength. Pass
// maxLength <= 0 for no length constraint.
func (t *Tile) GetMesh(maxError, maxLength float32) *Mesh {
	size := t.grid.GridSize
	max := size - 1
	errors := t.Errors
	// Per-call scratch buffer, so concurrent calls share no mutable state.
	indices := make([]uint32, size*size)

	maxScale := int64(size)
	if maxLength > 0 {
		maxScale = int64(maxLength)
	}

	var numVertices, numTriangles uint32

	var countElements func(ax, ay, bx, by, cx, cy uint32)
	countElements = func(ax, ay, bx, by, cx, cy uint32) {
		mx := (ax + bx) >> 1
		my := (ay + by) >> 1
		legLength := absInt(int64(ax)-int64(cx)) + absInt(int64(ay)-int64(cy))

		if (legLength > 1 && errors[my*size+mx] > maxError) || legLength > maxScale {
			countElements(cx, cy, ax, ay, mx, my)
			countElements(bx, by, cx, cy, mx, my)
			return
		}

		markVertex := func(x, y uint32) {
			idx := y*size + x
			if indices[idx] == 0 {
				numVertices++
				indices[idx] = numVertices
			}
		}
		markVertex(ax, ay)
		markVertex(bx, by)
		markVertex(cx, cy)
		numTriangles++
	}
	countElements(0, 0, max, max, max, 0)
	countElements(max, max, 0, 0, 0, max)

	vertices := make([]uint16, numVertices*2)
	triangles := make([]uint32, numTriangles*3)
	triIndex := 0

	var processTriangle func(ax, ay, bx, by, cx, cy uint32)
	processTriangle = func(ax, ay, bx, by, cx, cy uint32) {
		mx := (ax + bx) >> 1
		my := (ay + by) >> 1
		legLength := absInt(int64(ax)-int64(cx)) + absInt(int64(ay)-int64(cy))

		if (legLength > 1 && errors[my*size+mx] > maxError) || legLength > maxScale {
			processTriangle(cx, cy, ax, ay, mx, my)
			processTriangle(bx, by, cx, cy, mx, my)
			return
		}

		a := indices[ay*size+ax] - 1
		b := indices[by*size+bx] - 1
		c := indices[cy*size+cx] - 1
		vertices[2*a], vertices[2*a+1] = uint16(ax), uint16(ay)
		vertices[2*b], vertices[2*b+1] = uint16(bx), uint16(by)
		vertices[2*c], vertices[2*c+1] = uint16(cx), uint16(cy)
		triangles[triIndex] = a
		triangles[triIndex+1] = b
		triangles[triIndex+2] = c
		triIndex += 3
	}
	processTriangle(0, 0, max, max, max, 0)
	processTriangle(max, max, 0, 0, 0, max)

	return &Mesh{Vertices: vertices, Triangles: triangles}
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
