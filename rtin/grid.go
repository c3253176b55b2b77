// Package rtin implements Right-Triangulated Irregular Network mesh
// simplification: adaptive triangle meshes for a square heightfield tile,
// built from an implicit binary triangle tree over a 2^n+1 grid.
package rtin

// Grid holds the precomputed geometry of the implicit binary triangle tree
// for a fixed tile size. It is immutable after construction and may be
// shared across any number of Tiles of the same GridSize, including
// concurrently.
type Grid struct {
	GridSize           uint32
	NumTriangles       uint32
	NumParentTriangles uint32

	// Coords stores (ax, ay, bx, by) per triangle, indexed by (id-2)*4.
	// The third vertex is never stored; see apex.
	Coords []uint16
}

// NewGrid precomputes the triangle tree for a tile of the given grid size.
// gridSize must satisfy gridSize = 2^n+1 for some n >= 1.
func NewGrid(gridSize uint32) (*Grid, error) {
	if gridSize < 3 {
		return nil, &InvalidGridSizeError{GridSize: gridSize}
	}
	tileSize := gridSize - 1
	if tileSize&(tileSize-1) != 0 {
		return nil, &InvalidGridSizeError{GridSize: gridSize}
	}

	numTriangles := tileSize*tileSize*2 - 2
	numParentTriangles := numTriangles - tileSize*tileSize

	g := &Grid{
		GridSize:           gridSize,
		NumTriangles:       numTriangles,
		NumParentTriangles: numParentTriangles,
		Coords:             make([]uint16, numTriangles*4),
	}

	for i := uint32(0); i < numTriangles; i++ {
		id := i + 2
		var ax, ay, bx, by, cx, cy uint32

		if id&1 != 0 {
			// bottom-left root: hypotenuse (0,0)-(T,T), right-angle apex
			// (T,0).
			bx, by, cx = tileSize, tileSize, tileSize
		} else {
			// top-right root: hypotenuse (T,T)-(0,0), right-angle apex
			// (0,T).
			ax, ay, cy = tileSize, tileSize, tileSize
		}

		for id >>= 1; id > 1; id >>= 1 {
			mx := (ax + bx) >> 1
			my := (ay + by) >> 1
			if id&1 != 0 {
				// left child
				bx, by = ax, ay
				ax, ay = cx, cy
			} else {
				// right child
				ax, ay = bx, by
				bx, by = cx, cy
			}
			cx, cy = mx, my
		}

		k := i * 4
		g.Coords[k+0] = uint16(ax)
		g.Coords[k+1] = uint16(ay)
		g.Coords[k+2] = uint16(bx)
		g.Coords[k+3] = uint16(by)
	}

	return g, nil
}

// CreateTile binds a heightfield sample buffer to this Grid.
func (g *Grid) CreateTile(terrain []float32) (*Tile, error) {
	return NewTile(g, terrain)
}

// apex recovers the right-angle apex c from a triangle's stored legs (a, b).
// It is a 90-degree rotation of (a - m) about the hypotenuse midpoint m, and
// is exact in integer arithmetic because every coordinate produced by the
// tree has even parity down to the leaves.
func apex(ax, ay, bx, by uint32) (mx, my, cx, cy uint32) {
	mx = (ax + bx) >> 1
	my = (ay + by) >> 1
	cx = mx + my - ay
	cy = my + ax - mx
	return
}
