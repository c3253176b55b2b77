// Package diff implements incremental terrain updates: a fixed-width
// bitstream diff format and a JSON patch path, both applied by rebuilding
// a terrain buffer that the caller then feeds back into rtin.Grid — the
// heightfield analogue of the teacher's VPI18 format and updatevopl.go.
package diff

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/rtinkit/rtintool/internal/bitio"
)

// Entry is one (index, height) update, the heightfield analogue of
// vopl.VPI18Entry (which pairs a 12-bit voxel index with a 6-bit color).
type Entry struct {
	Index  uint32
	Height float32
}

func indexWidth(gridSize uint32) uint8 {
	total := gridSize * gridSize
	if total == 0 {
		return 1
	}
	w := bits.Len32(total - 1)
	if w == 0 {
		w = 1
	}
	return uint8(w)
}

// EncodeDense16 packs entries into a bitstream of (index, quantized-height)
// pairs, index width sized to the grid (bits.Len(gridSize*gridSize-1),
// growing past VPI18's fixed 12 bits for grids larger than a 16^3 voxel
// chunk) and height quantized to quantBits against [min, max].
func EncodeDense16(gridSize uint32, entries []Entry, quantBits uint8, min, max float32) []byte {
	iw := indexWidth(gridSize)
	bw := bitio.NewWriter()
	for _, e := range entries {
		bw.WriteBits(uint64(e.Index), iw)
		level := quantizeHeight(e.Height, min, max, quantBits)
		bw.WriteBits(uint64(level), quantBits)
	}
	return bw.Bytes()
}

// DecodeDense16 is the inverse of EncodeDense16: it decodes entries and, if
// terrain is non-nil, applies each update directly onto it (the same
// apply-in-place role VPI18ApplyToGrid plays for voxel grids).
func DecodeDense16(gridSize uint32, data []byte, quantBits uint8, min, max float32, terrain []float32) ([]Entry, error) {
	iw := indexWidth(gridSize)
	total := gridSize * gridSize
	br := bitio.NewReader(data)
	var out []Entry
	for {
		idxBits, err := br.ReadBits(iw)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				return out, nil
			}
			return nil, err
		}
		levelBits, err := br.ReadBits(quantBits)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				// The index bits just read were the writer's zero padding.
				return out, nil
			}
			return nil, err
		}
		idx := uint32(idxBits)
		if idx >= total {
			return nil, fmt.Errorf("diff: index %d out of range for %dx%d grid", idx, gridSize, gridSize)
		}
		h := dequantizeHeight(uint32(levelBits), min, max, quantBits)
		out = append(out, Entry{Index: idx, Height: h})
		if terrain != nil {
			terrain[idx] = h
		}
	}
}

func quantizeHeight(v, min, max float32, bits uint8) uint32 {
	if max <= min {
		return 0
	}
	levels := float32((uint32(1) << bits) - 1)
	t := (v - min) / (max - min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint32(t*levels + 0.5)
}

func dequantizeHeight(level uint32, min, max float32, bits uint8) float32 {
	levels := float32((uint32(1) << bits) - 1)
	if levels == 0 {
		return min
	}
	return min + (float32(level)/levels)*(max-min)
}
