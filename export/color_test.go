package export

import "testing"

func TestParseHexColorRGB(t *testing.T) {
	c, err := ParseHexColor("#ff0000")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c[0] != 1 || c[1] != 0 || c[2] != 0 || c[3] != 1 {
		t.Errorf("got %v, want opaque red", c)
	}
}

func TestParseHexColorRGBA(t *testing.T) {
	c, err := ParseHexColor("#00ff0080")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c[1] != 1 {
		t.Errorf("expected green channel 1, got %v", c[1])
	}
	if c[3] < 0.49 || c[3] > 0.51 {
		t.Errorf("expected alpha ~0.5, got %v", c[3])
	}
}

func TestParseHexColorRejectsInvalid(t *testing.T) {
	cases := []string{"", "ff0000", "#ff00", "#gggggg"}
	for _, s := range cases {
		if _, err := ParseHexColor(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestHeightRampInterpolates(t *testing.T) {
	ramp, err := NewHeightRamp([]ColorStop{
		{Height: 0, Color: [4]float32{0, 0, 0, 1}},
		{Height: 10, Color: [4]float32{1, 1, 1, 1}},
	})
	if err != nil {
		t.Fatalf("NewHeightRamp: %v", err)
	}
	mid := ramp.Sample(5)
	if mid[0] < 0.49 || mid[0] > 0.51 {
		t.Errorf("expected midpoint ~0.5, got %v", mid[0])
	}
	if got := ramp.Sample(-5); got != [4]float32{0, 0, 0, 1} {
		t.Errorf("expected clamp to first stop below range, got %v", got)
	}
	if got := ramp.Sample(50); got != [4]float32{1, 1, 1, 1} {
		t.Errorf("expected clamp to last stop above range, got %v", got)
	}
}

func TestNewHeightRampRejectsEmpty(t *testing.T) {
	if _, err := NewHeightRamp(nil); err == nil {
		t.Fatal("expected error for empty stop list")
	}
}

func TestDefaultTerrainRampOrdersLowToHigh(t *testing.T) {
	ramp := DefaultTerrainRamp(0, 100)
	low := ramp.Sample(0)
	high := ramp.Sample(100)
	if low == high {
		t.Error("expected different colors at range extremes")
	}
}
