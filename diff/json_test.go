package diff

import "testing"

func TestApplyJSONUpdatesTerrain(t *testing.T) {
	const gridSize = 5
	terrain := make([]float32, gridSize*gridSize)
	patch := []byte(`{"0": 1.5, "24": -3, "12": 100}`)
	if err := ApplyJSON(terrain, gridSize, patch); err != nil {
		t.Fatalf("ApplyJSON: %v", err)
	}
	if terrain[0] != 1.5 {
		t.Errorf("terrain[0] got %v, want 1.5", terrain[0])
	}
	if terrain[24] != -3 {
		t.Errorf("terrain[24] got %v, want -3", terrain[24])
	}
	if terrain[12] != 100 {
		t.Errorf("terrain[12] got %v, want 100", terrain[12])
	}
}

func TestApplyJSONRejectsOutOfRangeIndex(t *testing.T) {
	terrain := make([]float32, 25)
	patch := []byte(`{"25": 1}`)
	if err := ApplyJSON(terrain, 5, patch); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestApplyJSONRejectsInvalidJSON(t *testing.T) {
	terrain := make([]float32, 25)
	if err := ApplyJSON(terrain, 5, []byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestApplyJSONRejectsMismatchedTerrainLength(t *testing.T) {
	terrain := make([]float32, 10)
	if err := ApplyJSON(terrain, 5, []byte(`{}`)); err == nil {
		t.Fatal("expected error for mismatched terrain length")
	}
}
