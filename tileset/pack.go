package tileset

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
)

// PackCompression indicates the compression used for a pack's content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
)

// PackLayout specifies how a pack's content section encodes entries.
type PackLayout uint8

const (
	// LayoutRaw stores each entry as an independent encoded blob.
	LayoutRaw PackLayout = 0
	// LayoutCDC stores a content-defined chunk dictionary shared across
	// entries, plus per-entry sequences of chunk references. Neighbouring
	// terrain tiles routinely share large flat or repeated regions, so
	// deduplicating chunks across a whole pack shrinks it well beyond what
	// per-tile compression alone can reach.
	LayoutCDC PackLayout = 1
)

const packMagic = "RTINPACK"

// PackEntry is a single encoded tile inside a Pack.
type PackEntry struct {
	ID      TileID
	Enc     uint8 // raw encoding byte as produced by bestEncoding (encoding | compression flags)
	Payload []byte
}

// Pack bundles the encoded tiles of a batch (e.g. one quadtree level, or a
// terrain source's output for one session) into a single .rtinpack file.
// All entries share GridSize/BPP/quantization range, parsed once per pack.
type Pack struct {
	Header  Header
	Entries []PackEntry
}

// Marshal encodes the pack using LayoutRaw and zlib compression.
func (p *Pack) Marshal() ([]byte, error) {
	return p.MarshalEx(LayoutRaw, PackCompZlib)
}

// MarshalEx encodes the pack with the given layout and compression.
func (p *Pack) MarshalEx(layout PackLayout, comp PackCompression) ([]byte, error) {
	if err := p.Header.validate(); err != nil {
		return nil, err
	}

	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, p.Header.Ver)
	_ = binary.Write(&content, binary.LittleEndian, p.Header.GridSize)
	_ = binary.Write(&content, binary.LittleEndian, p.Header.BPP)
	_ = binary.Write(&content, binary.LittleEndian, p.Header.QuantMin)
	_ = binary.Write(&content, binary.LittleEndian, p.Header.QuantMax)
	_ = binary.Write(&content, binary.LittleEndian, p.Header.Baseline)
	_ = binary.Write(&content, binary.LittleEndian, uint8(layout))

	switch layout {
	case LayoutRaw:
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
		for _, e := range p.Entries {
			writeTileID(&content, e.ID)
			_ = binary.Write(&content, binary.LittleEndian, e.Enc)
			_ = binary.Write(&content, binary.LittleEndian, uint32(len(e.Payload)))
			content.Write(e.Payload)
		}
	case LayoutCDC:
		target, minSz, maxSz := uint32(4096), uint32(1024), uint32(16384)
		_ = binary.Write(&content, binary.LittleEndian, target)
		_ = binary.Write(&content, binary.LittleEndian, minSz)
		_ = binary.Write(&content, binary.LittleEndian, maxSz)

		blocks, seqs := buildCDCIndex(p.Entries, int(target), int(minSz), int(maxSz))
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(blocks)))
		for _, b := range blocks {
			_ = binary.Write(&content, binary.LittleEndian, uint32(len(b)))
			content.Write(b)
		}
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
		for i, e := range p.Entries {
			writeTileID(&content, e.ID)
			_ = binary.Write(&content, binary.LittleEndian, e.Enc)
			_ = binary.Write(&content, binary.LittleEndian, uint32(len(e.Payload)))
			seq := seqs[i]
			_ = binary.Write(&content, binary.LittleEndian, uint32(len(seq)))
			for _, idx := range seq {
				_ = binary.Write(&content, binary.LittleEndian, uint32(idx))
			}
		}
	default:
		return nil, fmt.Errorf("tileset: unsupported pack layout %d", layout)
	}

	var finalContent []byte
	switch comp {
	case PackCompNone:
		finalContent = content.Bytes()
	case PackCompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(content.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		finalContent = buf.Bytes()
	default:
		return nil, fmt.Errorf("tileset: unsupported pack compression %d", comp)
	}

	var out bytes.Buffer
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	out.Write(finalContent)
	return out.Bytes(), nil
}

// UnmarshalPack parses a .rtinpack from bytes.
func UnmarshalPack(data []byte) (*Pack, error) {
	if len(data) < len(packMagic)+1 || string(data[:len(packMagic)]) != packMagic {
		return nil, fmt.Errorf("tileset: not a valid .rtinpack")
	}
	comp := PackCompression(data[len(packMagic)])
	content := data[len(packMagic)+1:]

	switch comp {
	case PackCompNone:
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		b, err := io.ReadAll(zr)
		if err != nil {
			return nil, err
		}
		content = b
	default:
		return nil, fmt.Errorf("tileset: unsupported pack compression %d", comp)
	}

	r := bytes.NewReader(content)
	var hdr Header
	if err := binary.Read(r, binary.LittleEndian, &hdr.Ver); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.GridSize); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.BPP); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.QuantMin); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.QuantMax); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.Baseline); err != nil {
		return nil, err
	}
	var layoutByte uint8
	if err := binary.Read(r, binary.LittleEndian, &layoutByte); err != nil {
		return nil, err
	}

	switch PackLayout(layoutByte) {
	case LayoutRaw:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		pack := &Pack{Header: hdr, Entries: make([]PackEntry, n)}
		for i := uint32(0); i < n; i++ {
			id, err := readTileID(r)
			if err != nil {
				return nil, err
			}
			var enc uint8
			if err := binary.Read(r, binary.LittleEndian, &enc); err != nil {
				return nil, err
			}
			var plen uint32
			if err := binary.Read(r, binary.LittleEndian, &plen); err != nil {
				return nil, err
			}
			payload := make([]byte, plen)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, err
			}
			pack.Entries[i] = PackEntry{ID: id, Enc: enc, Payload: payload}
		}
		return pack, nil

	case LayoutCDC:
		var target, minSz, maxSz uint32
		if err := binary.Read(r, binary.LittleEndian, &target); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &minSz); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &maxSz); err != nil {
			return nil, err
		}
		var nBlocks uint32
		if err := binary.Read(r, binary.LittleEndian, &nBlocks); err != nil {
			return nil, err
		}
		blocks := make([][]byte, nBlocks)
		for i := uint32(0); i < nBlocks; i++ {
			var blen uint32
			if err := binary.Read(r, binary.LittleEndian, &blen); err != nil {
				return nil, err
			}
			b := make([]byte, blen)
			if _, err := io.ReadFull(r, b); err != nil {
				return nil, err
			}
			blocks[i] = b
		}
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		pack := &Pack{Header: hdr, Entries: make([]PackEntry, n)}
		for i := uint32(0); i < n; i++ {
			id, err := readTileID(r)
			if err != nil {
				return nil, err
			}
			var enc uint8
			if err := binary.Read(r, binary.LittleEndian, &enc); err != nil {
				return nil, err
			}
			var rawLen uint32
			if err := binary.Read(r, binary.LittleEndian, &rawLen); err != nil {
				return nil, err
			}
			var seqLen uint32
			if err := binary.Read(r, binary.LittleEndian, &seqLen); err != nil {
				return nil, err
			}
			payload := make([]byte, 0, rawLen)
			for j := uint32(0); j < seqLen; j++ {
				var idx uint32
				if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
					return nil, err
				}
				if idx >= nBlocks {
					return nil, fmt.Errorf("tileset: invalid chunk index %d", idx)
				}
				payload = append(payload, blocks[idx]...)
			}
			if uint32(len(payload)) > rawLen {
				payload = payload[:rawLen]
			}
			pack.Entries[i] = PackEntry{ID: id, Enc: enc, Payload: payload}
		}
		return pack, nil

	default:
		return nil, fmt.Errorf("tileset: unknown pack layout %d", layoutByte)
	}
}

// BuildPackFromTileFiles combines several standalone .rtin files (already
// sharing GridSize/BPP/quantization range) into a Pack, addressed by the
// given ids, the heightfield analogue of CreatePack's file-to-.voplpack
// consolidation. All files must share GridSize, BPP, and quantization
// range; the first file's header becomes the pack's shared header.
func BuildPackFromTileFiles(tileFiles [][]byte, ids []TileID) (*Pack, error) {
	if len(tileFiles) == 0 {
		return nil, fmt.Errorf("tileset: no tile files provided")
	}
	if len(tileFiles) != len(ids) {
		return nil, fmt.Errorf("tileset: %d tile files but %d ids", len(tileFiles), len(ids))
	}

	entries := make([]PackEntry, len(tileFiles))
	var common Header
	for i, data := range tileFiles {
		hdr, enc, payload, err := SplitTileFile(data)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		if i == 0 {
			common = hdr
		} else if hdr.GridSize != common.GridSize || hdr.BPP != common.BPP ||
			hdr.QuantMin != common.QuantMin || hdr.QuantMax != common.QuantMax {
			return nil, fmt.Errorf("tile %d: header does not match pack's shared header", i)
		}
		entries[i] = PackEntry{ID: ids[i], Enc: enc, Payload: payload}
	}
	return &Pack{Header: common, Entries: entries}, nil
}

func writeTileID(w io.Writer, id TileID) {
	_ = binary.Write(w, binary.LittleEndian, id.X)
	_ = binary.Write(w, binary.LittleEndian, id.Y)
	_ = binary.Write(w, binary.LittleEndian, id.Z)
}

func readTileID(r io.Reader) (TileID, error) {
	var id TileID
	if err := binary.Read(r, binary.LittleEndian, &id.X); err != nil {
		return id, err
	}
	if err := binary.Read(r, binary.LittleEndian, &id.Y); err != nil {
		return id, err
	}
	if err := binary.Read(r, binary.LittleEndian, &id.Z); err != nil {
		return id, err
	}
	return id, nil
}

// buildCDCIndex performs content-defined chunking over all entry payloads,
// building a dictionary of unique chunks plus, per entry, the sequence of
// chunk indices that reconstructs it. Gear hashes are seeded deterministically
// via xxhash so the same pack always chunks identically.
func buildCDCIndex(entries []PackEntry, target, minSz, maxSz int) ([][]byte, [][]int) {
	gear := make([]uint64, 256)
	seed := xxhash.Sum64([]byte("rtin-cdc-gear-seed"))
	for i := 0; i < 256; i++ {
		var b [16]byte
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}

	blocks := make([][]byte, 0, 256)
	index := make(map[uint64]int, 1024)
	seqs := make([][]int, len(entries))

	pow := 1 << int(math.Round(math.Log2(float64(target))))
	if pow <= 0 {
		pow = 4096
	}
	mask := uint64(pow - 1)

	addBlock := func(b []byte) int {
		h := xxhash.Sum64(b)
		if idx, ok := index[h]; ok {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := len(blocks)
		blocks = append(blocks, append([]byte(nil), b...))
		index[h] = idx
		return idx
	}

	for i, e := range entries {
		data := e.Payload
		if len(data) == 0 {
			continue
		}
		var seq []int
		start := 0
		var h uint64
		for pos := 0; pos < len(data); pos++ {
			h = (h<<1 + gear[int(data[pos])])
			if pos-start+1 < minSz {
				continue
			}
			if (h&mask) == 0 || pos-start+1 >= maxSz {
				idx := addBlock(data[start : pos+1])
				seq = append(seq, idx)
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			idx := addBlock(data[start:])
			seq = append(seq, idx)
		}
		seqs[i] = seq
	}
	return blocks, seqs
}
