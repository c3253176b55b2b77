package tileset

// TileID addresses a tile by quadtree coordinate, the XYZ scheme used by
// web map tile pyramids: Z is the zoom/subdivision level, X and Y are the
// column and row within that level.
type TileID struct {
	X, Y, Z uint32
}

// Valid reports whether the id lies within its level's 2^Z x 2^Z grid.
func (id TileID) Valid() bool {
	return id.Z < 32 && id.X < (1<<id.Z) && id.Y < (1<<id.Z)
}
