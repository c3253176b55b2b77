package tileset

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestEncodeDecodeTileRoundTripWithBaseline(t *testing.T) {
	const gridSize = 9
	const baseline = float32(100) // e.g. sea level, far from the terrain's own range
	terrain := make([]float32, gridSize*gridSize)
	for i := range terrain {
		terrain[i] = baseline
	}
	terrain[40] = 142.5 // single peak sample, differs from baseline

	data, err := EncodeTile(gridSize, terrain, 10, baseline)
	if err != nil {
		t.Fatalf("EncodeTile: %v", err)
	}

	gotSize, got, err := DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	if gotSize != gridSize {
		t.Fatalf("gridSize mismatch: got %d, want %d", gotSize, gridSize)
	}
	if len(got) != len(terrain) {
		t.Fatalf("terrain length mismatch: got %d, want %d", len(got), len(terrain))
	}

	// Quantization tolerance: range is min..max with 10 bits.
	min, max := terrain[0], terrain[0]
	for _, v := range terrain {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	tol := (max - min) / float32(quantLevels(10))
	if tol == 0 {
		tol = 0.01
	}
	for i, v := range got {
		if !approxEqual(v, terrain[i], tol*1.5) {
			t.Errorf("sample %d: got %v, want ~%v (tol %v)", i, v, terrain[i], tol)
		}
	}
}

func TestEncodeDecodeTileRoundTripVariedTerrain(t *testing.T) {
	const gridSize = 17
	terrain := make([]float32, gridSize*gridSize)
	for i := range terrain {
		terrain[i] = float32(50*math.Sin(float64(i)*0.3) + 50)
	}

	data, err := EncodeTile(gridSize, terrain, 12, 0)
	if err != nil {
		t.Fatalf("EncodeTile: %v", err)
	}
	_, got, err := DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
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
	tol := (max-min)/float32(quantLevels(12)) + 0.001
	for i, v := range got {
		if !approxEqual(v, terrain[i], tol*1.5) {
			t.Errorf("sample %d: got %v, want ~%v", i, v, terrain[i])
		}
	}
}

func TestEncodeTileRejectsMismatchedTerrain(t *testing.T) {
	if _, err := EncodeTile(5, make([]float32, 10), 8, 0); err == nil {
		t.Fatal("expected error for mismatched terrain length")
	}
}

func TestDecodeTileRejectsBadMagic(t *testing.T) {
	if _, _, err := DecodeTile([]byte("not a tile")); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestEncodeTileFlatTerrainWidensDegenerateRange(t *testing.T) {
	terrain := flatGridTerrain(5, 7)
	data, err := EncodeTile(5, terrain, 4, 7)
	if err != nil {
		t.Fatalf("EncodeTile: %v", err)
	}
	_, got, err := DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	for i, v := range got {
		if !approxEqual(v, 7, 0.5) {
			t.Errorf("sample %d: got %v, want ~7", i, v)
		}
	}
}
