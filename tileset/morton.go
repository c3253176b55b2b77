package tileset

import "sync"

// expand2 spreads the low 16 bits of v so that a 1 appears in every other
// bit position, the 2D analogue of the voxel format's 3D expand3.
func expand2(v uint32) uint32 {
	v &= 0x0000ffff
	v = (v | (v << 8)) & 0x00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F
	v = (v | (v << 2)) & 0x33333333
	v = (v | (v << 1)) & 0x55555555
	return v
}

func morton2D(x, y uint32) uint32 {
	return expand2(x) | (expand2(y) << 1)
}

var (
	mortonCacheMu sync.Mutex
	mortonCache   = map[uint32][]int32{}
)

// mortonOrderFor returns order such that order[rank] is the row-major index
// of the sample at Morton rank `rank`, for a gridSize x gridSize grid.
// Dense-encoded tiles are stored in this order so spatially close samples
// land close together in the bitstream, which compresses better than raster
// order for smooth terrain. Built once per grid size and cached, the same
// way the voxel format precomputes its fixed 16^3 order once at init: an
// insertion sort is simple and, for the tile sizes this format targets
// (grid_size well under a few thousand), fast enough that a general sort
// buys nothing.
func mortonOrderFor(gridSize uint32) []int32 {
	mortonCacheMu.Lock()
	defer mortonCacheMu.Unlock()
	if order, ok := mortonCache[gridSize]; ok {
		return order
	}

	total := int(gridSize) * int(gridSize)
	type kv struct {
		key uint32
		i   int32
	}
	idx := make([]kv, total)
	i := 0
	for y := uint32(0); y < gridSize; y++ {
		for x := uint32(0); x < gridSize; x++ {
			idx[i] = kv{morton2D(x, y), int32(i)}
			i++
		}
	}
	for a := 1; a < len(idx); a++ {
		k := idx[a]
		b := a - 1
		for b >= 0 && idx[b].key > k.key {
			idx[b+1] = idx[b]
			b--
		}
		idx[b+1] = k
	}

	order := make([]int32, total)
	for rank, e := range idx {
		order[rank] = e.i
	}
	mortonCache[gridSize] = order
	return order
}
