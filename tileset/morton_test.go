package tileset

import "testing"

func TestMortonOrderIsPermutation(t *testing.T) {
	order := mortonOrderFor(9)
	seen := make(map[int32]bool, len(order))
	for _, i := range order {
		if i < 0 || int(i) >= 81 {
			t.Fatalf("index %d out of range for 9x9 grid", i)
		}
		if seen[i] {
			t.Fatalf("index %d repeated", i)
		}
		seen[i] = true
	}
	if len(seen) != 81 {
		t.Fatalf("expected 81 distinct indices, got %d", len(seen))
	}
}

func TestMortonOrderCached(t *testing.T) {
	a := mortonOrderFor(5)
	b := mortonOrderFor(5)
	if len(a) != len(b) {
		t.Fatalf("cached order length mismatch")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cached order mismatch at %d", i)
		}
	}
}

func TestMorton2DNeighborsClose(t *testing.T) {
	// (0,0) and (1,1) should be close in Morton order; (0,0) and (7,0)
	// should generally be farther, since Morton order groups quadrants.
	d00 := morton2D(0, 0)
	d11 := morton2D(1, 1)
	d70 := morton2D(7, 0)
	if d11 > d70 {
		t.Errorf("expected (1,1) morton rank below (7,0): got %d vs %d", d11, d70)
	}
	_ = d00
}
