package tileset

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/rtinkit/rtintool/internal/bitio"
)

const (
	encDense      = 0
	encSparse     = 1
	encSparseMask = 2
)

type encoded struct {
	encoding int
	payload  []byte
}

func quantLevels(bpp uint8) uint32 { return (uint32(1) << bpp) - 1 }

func quantize(v, min, max float32, bpp uint8) uint32 {
	if max <= min {
		return 0
	}
	levels := float32(quantLevels(bpp))
	t := (v - min) / (max - min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint32(t*levels + 0.5)
}

func dequantize(level uint32, min, max float32, bpp uint8) float32 {
	levels := float32(quantLevels(bpp))
	if levels == 0 {
		return min
	}
	t := float32(level) / levels
	return min + t*(max-min)
}

// encodeDense bit-packs every sample, in Morton order, at hdr.BPP bits.
func encodeDense(terrain []float32, hdr Header) []byte {
	order := mortonOrderFor(uint32(hdr.GridSize))
	bw := bitio.NewWriter()
	for _, i := range order {
		level := quantize(terrain[i], hdr.QuantMin, hdr.QuantMax, hdr.BPP)
		bw.WriteBits(uint64(level), hdr.BPP)
	}
	return bw.Bytes()
}

func decodeDense(payload []byte, hdr Header) ([]float32, error) {
	order := mortonOrderFor(uint32(hdr.GridSize))
	out := make([]float32, len(order))
	br := bitio.NewReader(payload)
	for _, i := range order {
		v, err := br.ReadBits(hdr.BPP)
		if err != nil {
			return nil, err
		}
		out[i] = dequantize(uint32(v), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
	}
	return out, nil
}

// encodeSparse stores only samples that differ from baseline: a varint
// count, then each such sample's varint index, then their bpp-bit quantized
// values bit-packed in the same order — the heightfield analogue of the
// voxel format's "only nonzero voxels" scheme.
func encodeSparse(terrain []float32, hdr Header) []byte {
	baseline := hdr.Baseline
	var idxs []uint32
	for i, v := range terrain {
		if v != baseline {
			idxs = append(idxs, uint32(i))
		}
	}
	buf := make([]byte, 0, len(idxs)*3+4)
	buf = bitio.WriteUvarint(buf, uint32(len(idxs)))
	if len(idxs) == 0 {
		return buf
	}
	bw := bitio.NewWriter()
	for _, i := range idxs {
		buf = bitio.WriteUvarint(buf, i)
		level := quantize(terrain[i], hdr.QuantMin, hdr.QuantMax, hdr.BPP)
		bw.WriteBits(uint64(level), hdr.BPP)
	}
	return append(buf, bw.Bytes()...)
}

func decodeSparse(payload []byte, hdr Header) ([]float32, error) {
	baseline := hdr.Baseline
	total := int(hdr.GridSize) * int(hdr.GridSize)
	out := make([]float32, total)
	for i := range out {
		out[i] = baseline
	}
	pos := 0
	count, err := bitio.ReadUvarint(payload, &pos)
	if err != nil {
		return nil, err
	}
	idxs := make([]uint32, count)
	for i := range idxs {
		idx, err := bitio.ReadUvarint(payload, &pos)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	br := bitio.NewReader(payload[pos:])
	for _, idx := range idxs {
		v, err := br.ReadBits(hdr.BPP)
		if err != nil {
			return nil, err
		}
		out[idx] = dequantize(uint32(v), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
	}
	return out, nil
}

// encodeSparseMask stores an occupancy bitmap (1 bit/sample: "differs from
// baseline") followed by bit-packed quantized values for only the flagged
// samples — the heightfield analogue of the voxel format's occupancy
// bitmap + nonzero-value scheme.
func encodeSparseMask(terrain []float32, hdr Header) []byte {
	baseline := hdr.Baseline
	total := len(terrain)
	bitmapLen := (total + 7) / 8
	bitmap := make([]byte, bitmapLen)
	bw := bitio.NewWriter()
	any := false
	for i, v := range terrain {
		if v != baseline {
			bitmap[i>>3] |= 1 << uint(i&7)
			level := quantize(v, hdr.QuantMin, hdr.QuantMax, hdr.BPP)
			bw.WriteBits(uint64(level), hdr.BPP)
			any = true
		}
	}
	if !any {
		return append([]byte{}, bitmap...)
	}
	valueBytes := bw.Bytes()
	out := make([]byte, 0, bitmapLen+len(valueBytes))
	out = append(out, bitmap...)
	out = append(out, valueBytes...)
	return out
}

func decodeSparseMask(payload []byte, hdr Header) ([]float32, error) {
	baseline := hdr.Baseline
	total := int(hdr.GridSize) * int(hdr.GridSize)
	bitmapLen := (total + 7) / 8
	if len(payload) < bitmapLen {
		return nil, io.ErrUnexpectedEOF
	}
	bitmap := payload[:bitmapLen]
	br := bitio.NewReader(payload[bitmapLen:])
	out := make([]float32, total)
	for i := 0; i < total; i++ {
		bit := (bitmap[i>>3] >> uint(i&7)) & 1
		if bit == 0 {
			out[i] = baseline
			continue
		}
		v, err := br.ReadBits(hdr.BPP)
		if err != nil {
			return nil, err
		}
		out[i] = dequantize(uint32(v), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
	}
	return out, nil
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func zstdCompress(b []byte) []byte {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return b
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil)
}

func zstdDecompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}

// bestEncoding tries every encoding, each optionally zlib- or
// zstd-compressed, and keeps the smallest result, exactly as the voxel
// format's bestEncoding does for its dense/sparse/sparse-mask candidates.
func bestEncoding(terrain []float32, hdr Header) encoded {
	candidates := []encoded{
		{encDense, encodeDense(terrain, hdr)},
		{encSparse, encodeSparse(terrain, hdr)},
		{encSparseMask, encodeSparseMask(terrain, hdr)},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.payload) < len(best.payload) {
			best = c
		}
	}
	for _, c := range candidates {
		if zb := zlibCompress(c.payload); len(zb) < len(best.payload) {
			best = encoded{encoding: c.encoding | 0x80, payload: zb}
		}
		if zb := zstdCompress(c.payload); len(zb) < len(best.payload) {
			best = encoded{encoding: c.encoding | 0x40, payload: zb}
		}
	}
	return best
}
