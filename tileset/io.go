package tileset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// EncodeTile quantizes terrain to bpp bits, picks the smallest of the
// dense/sparse/sparse-mask encodings (optionally compressed), and returns a
// complete .rtin file as bytes. baseline is the "background" height the
// sparse encodings measure against; pass the tile's most common sample
// (e.g. sea level, or the corner height) for best results. It is stored in
// the header so DecodeTile need not be told it again.
func EncodeTile(gridSize uint32, terrain []float32, bpp uint8, baseline float32) ([]byte, error) {
	expected := int(gridSize) * int(gridSize)
	if len(terrain) != expected {
		return nil, fmt.Errorf("tileset: expected %d samples, got %d", expected, len(terrain))
	}
	min, max := terrain[0], terrain[0]
	for _, v := range terrain {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		max = min + 1 // keep the quantizer's range non-degenerate
	}
	hdr := Header{Ver: FormatVersion, GridSize: uint8(gridSize), BPP: bpp, QuantMin: min, QuantMax: max, Baseline: baseline}
	if err := hdr.validate(); err != nil {
		return nil, err
	}
	enc := bestEncoding(terrain, hdr)
	return buildFile(hdr, uint8(enc.encoding), enc.payload), nil
}

// SaveTile writes a tile to disk at the given path with the given quantization.
func SaveTile(path string, gridSize uint32, terrain []float32, bpp uint8, baseline float32) error {
	data, err := EncodeTile(gridSize, terrain, bpp, baseline)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTile reads and decodes a .rtin file from disk.
func LoadTile(path string) (gridSize uint32, terrain []float32, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	return DecodeTile(data)
}

// DecodeTile parses a complete .rtin file from memory.
func DecodeTile(data []byte) (gridSize uint32, terrain []float32, err error) {
	hdr, encByte, payload, err := parseFile(data)
	if err != nil {
		return 0, nil, err
	}
	terrain, err = decodePayload(encByte, payload, hdr)
	if err != nil {
		return 0, nil, err
	}
	return uint32(hdr.GridSize), terrain, nil
}

// SplitTileFile parses a standalone .rtin file into its header, raw
// encoding byte, and payload, without decoding samples — the piece a pack
// builder needs to lift several .rtin files into PackEntry values sharing
// one header, the same role ParseVOPLHeaderFromBytes plays for the voxel
// packer.
func SplitTileFile(data []byte) (Header, uint8, []byte, error) {
	return parseFile(data)
}

// RebuildTileFile reassembles a standalone .rtin file from a pack's shared
// header plus one entry's own encoding byte and payload, the heightfield
// equivalent of the voxel format's BuildVOPLFromHeaderAndPayload.
func RebuildTileFile(h Header, enc uint8, payload []byte) []byte {
	return buildFile(h, enc, payload)
}

func buildFile(h Header, enc uint8, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, h.Ver)
	_ = binary.Write(&buf, binary.LittleEndian, enc)
	_ = binary.Write(&buf, binary.LittleEndian, h.GridSize)
	_ = binary.Write(&buf, binary.LittleEndian, h.BPP)
	_ = binary.Write(&buf, binary.LittleEndian, h.QuantMin)
	_ = binary.Write(&buf, binary.LittleEndian, h.QuantMax)
	_ = binary.Write(&buf, binary.LittleEndian, h.Baseline)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// parseFile splits a complete .rtin file into its header, raw encoding
// byte, and payload slice, without decompressing or decoding samples.
func parseFile(data []byte) (Header, uint8, []byte, error) {
	if len(data) < 4 || string(data[:4]) != magic {
		return Header{}, 0, nil, fmt.Errorf("tileset: not an RTIN tile")
	}
	r := bytes.NewReader(data[4:])
	var h Header
	var enc uint8
	var plen uint32
	if err := binary.Read(r, binary.LittleEndian, &h.Ver); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &enc); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.GridSize); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.BPP); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.QuantMin); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.QuantMax); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Baseline); err != nil {
		return Header{}, 0, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &plen); err != nil {
		return Header{}, 0, nil, err
	}
	payload := make([]byte, plen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Header{}, 0, nil, err
	}
	if err := h.validate(); err != nil {
		return Header{}, 0, nil, err
	}
	return h, enc, payload, nil
}

func decodePayload(encByte uint8, payload []byte, hdr Header) ([]float32, error) {
	payload, err := decompressPayload(encByte, payload)
	if err != nil {
		return nil, err
	}
	switch encByte & 0x3F {
	case encDense:
		return decodeDense(payload, hdr)
	case encSparse:
		return decodeSparse(payload, hdr)
	case encSparseMask:
		return decodeSparseMask(payload, hdr)
	default:
		return nil, fmt.Errorf("tileset: unknown encoding %d", encByte&0x3F)
	}
}

func decompressPayload(encByte uint8, payload []byte) ([]byte, error) {
	switch {
	case encByte&0x80 != 0:
		return zlibDecompress(payload)
	case encByte&0x40 != 0:
		return zstdDecompress(payload)
	default:
		return payload, nil
	}
}
