// Package tileset implements the on-disk .rtin tile format and the
// .rtinpack multi-tile container: quantized, bit-packed heightfield
// storage with Morton-ordered samples, dense/sparse encodings, and
// optional zlib/zstd compression, plus a content-defined-chunking pack
// layout for deduplicating repeated terrain across neighbouring tiles.
package tileset

import "fmt"

const magic = "RTIN"

// FormatVersion identifies the .rtin single-tile container layout.
const FormatVersion uint8 = 1

// Header carries the fields common to a single tile's on-disk encoding.
type Header struct {
	Ver      uint8
	GridSize uint8 // grid_size - 1 must be a power of two, checked by rtin.NewGrid
	BPP      uint8 // quantization bits per sample, 1..16
	QuantMin float32
	QuantMax float32
	Baseline float32 // background height the sparse encodings measure against
}

func (h Header) validate() error {
	if h.Ver != FormatVersion {
		return fmt.Errorf("tileset: unsupported format version %d", h.Ver)
	}
	if h.BPP < 1 || h.BPP > 16 {
		return fmt.Errorf("tileset: bpp out of range: %d", h.BPP)
	}
	if h.QuantMax < h.QuantMin {
		return fmt.Errorf("tileset: quant range inverted: min=%v max=%v", h.QuantMin, h.QuantMax)
	}
	return nil
}
