package tileset

import "testing"

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	min, max := float32(-10), float32(50)
	for _, bpp := range []uint8{1, 4, 8, 12, 16} {
		levels := quantLevels(bpp)
		for level := uint32(0); level <= levels; level++ {
			v := dequantize(level, min, max, bpp)
			got := quantize(v, min, max, bpp)
			if got != level {
				t.Errorf("bpp=%d level=%d: round trip gave %d", bpp, level, got)
			}
		}
	}
}

func TestQuantizeClampsOutOfRange(t *testing.T) {
	if got := quantize(-100, 0, 10, 8); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
	if got := quantize(1000, 0, 10, 8); got != quantLevels(8) {
		t.Errorf("expected clamp to max level, got %d", got)
	}
}

func flatGridTerrain(gridSize uint32, h float32) []float32 {
	total := int(gridSize) * int(gridSize)
	out := make([]float32, total)
	for i := range out {
		out[i] = h
	}
	return out
}

func TestEncodeDenseDecodeDenseRoundTrip(t *testing.T) {
	hdr := Header{Ver: FormatVersion, GridSize: 5, BPP: 8, QuantMin: 0, QuantMax: 20}
	terrain := make([]float32, 25)
	for i := range terrain {
		terrain[i] = float32(i % 20)
	}
	payload := encodeDense(terrain, hdr)
	got, err := decodeDense(payload, hdr)
	if err != nil {
		t.Fatalf("decodeDense: %v", err)
	}
	for i, v := range got {
		want := dequantize(quantize(terrain[i], hdr.QuantMin, hdr.QuantMax, hdr.BPP), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
		if v != want {
			t.Errorf("sample %d: got %v, want %v", i, v, want)
		}
	}
}

func TestEncodeSparseRespectsBaseline(t *testing.T) {
	hdr := Header{Ver: FormatVersion, GridSize: 5, BPP: 8, QuantMin: 0, QuantMax: 20, Baseline: 5}
	terrain := flatGridTerrain(5, 5)
	terrain[12] = 18 // one sample differs from baseline

	payload := encodeSparse(terrain, hdr)
	got, err := decodeSparse(payload, hdr)
	if err != nil {
		t.Fatalf("decodeSparse: %v", err)
	}
	for i, v := range got {
		if i == 12 {
			continue
		}
		if v != 5 {
			t.Errorf("sample %d: expected baseline 5, got %v", i, v)
		}
	}
	want := dequantize(quantize(18, hdr.QuantMin, hdr.QuantMax, hdr.BPP), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
	if got[12] != want {
		t.Errorf("sample 12: got %v, want %v", got[12], want)
	}
}

func TestEncodeSparseMaskRespectsBaseline(t *testing.T) {
	hdr := Header{Ver: FormatVersion, GridSize: 5, BPP: 8, QuantMin: 0, QuantMax: 20, Baseline: -3}
	terrain := flatGridTerrain(5, -3)
	terrain[0] = 12
	terrain[24] = 7

	payload := encodeSparseMask(terrain, hdr)
	got, err := decodeSparseMask(payload, hdr)
	if err != nil {
		t.Fatalf("decodeSparseMask: %v", err)
	}
	for i, v := range got {
		switch i {
		case 0:
			want := dequantize(quantize(12, hdr.QuantMin, hdr.QuantMax, hdr.BPP), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
			if v != want {
				t.Errorf("sample 0: got %v, want %v", v, want)
			}
		case 24:
			want := dequantize(quantize(7, hdr.QuantMin, hdr.QuantMax, hdr.BPP), hdr.QuantMin, hdr.QuantMax, hdr.BPP)
			if v != want {
				t.Errorf("sample 24: got %v, want %v", v, want)
			}
		default:
			if v != -3 {
				t.Errorf("sample %d: expected baseline -3, got %v", i, v)
			}
		}
	}
}

func TestBestEncodingPicksSmallestForFlatTerrain(t *testing.T) {
	hdr := Header{Ver: FormatVersion, GridSize: 17, BPP: 8, QuantMin: 0, QuantMax: 1, Baseline: 0}
	terrain := flatGridTerrain(17, 0)
	enc := bestEncoding(terrain, hdr)
	// Fully flat, baseline-matching terrain should never pick dense: both
	// sparse encodings emit next to nothing for an all-baseline tile.
	if enc.encoding&0x3F == encDense {
		t.Errorf("expected sparse encoding to win for flat baseline terrain, got dense (len=%d)", len(enc.payload))
	}
}

func TestZlibZstdRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated, repeated, repeated")
	zb := zlibCompress(data)
	zout, err := zlibDecompress(zb)
	if err != nil || string(zout) != string(data) {
		t.Errorf("zlib round trip failed: err=%v out=%q", err, zout)
	}
	sb := zstdCompress(data)
	sout, err := zstdDecompress(sb)
	if err != nil || string(sout) != string(data) {
		t.Errorf("zstd round trip failed: err=%v out=%q", err, sout)
	}
}
