package export

import (
	"fmt"
	"sort"
)

// ColorStop is one control point of a HeightRamp: samples at or below
// Height take Color, samples between two stops are linearly interpolated.
type ColorStop struct {
	Height float32
	Color  [4]float32 // RGBA, 0..1
}

// HeightRamp derives a vertex color from a sampled terrain height. Stops
// need not be sorted; NewHeightRamp sorts them once.
type HeightRamp struct {
	stops []ColorStop
}

// NewHeightRamp builds a ramp from stops, which must contain at least one entry.
func NewHeightRamp(stops []ColorStop) (*HeightRamp, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("export: height ramp needs at least one stop")
	}
	sorted := append([]ColorStop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })
	return &HeightRamp{stops: sorted}, nil
}

// Sample returns the interpolated RGBA color for height h.
func (r *HeightRamp) Sample(h float32) [4]float32 {
	if h <= r.stops[0].Height {
		return r.stops[0].Color
	}
	last := r.stops[len(r.stops)-1]
	if h >= last.Height {
		return last.Color
	}
	for i := 1; i < len(r.stops); i++ {
		a, b := r.stops[i-1], r.stops[i]
		if h <= b.Height {
			span := b.Height - a.Height
			if span <= 0 {
				return b.Color
			}
			t := (h - a.Height) / span
			var out [4]float32
			for c := 0; c < 4; c++ {
				out[c] = a.Color[c] + (b.Color[c]-a.Color[c])*t
			}
			return out
		}
	}
	return last.Color
}

// ParseHexColor parses a "#RRGGBB" or "#RRGGBBAA" string into RGBA floats
// in [0,1], the same format the teacher's voxel palette uses.
func ParseHexColor(s string) ([4]float32, error) {
	var out [4]float32
	out[3] = 1
	if len(s) == 0 || s[0] != '#' {
		return out, fmt.Errorf("export: invalid hex color %q", s)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return out, fmt.Errorf("export: invalid hex color %q", s)
	}
	var r, g, b, a uint8
	a = 255
	if _, err := fmt.Sscanf(hex[0:2], "%02x", &r); err != nil {
		return out, fmt.Errorf("export: invalid hex color %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(hex[2:4], "%02x", &g); err != nil {
		return out, fmt.Errorf("export: invalid hex color %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(hex[4:6], "%02x", &b); err != nil {
		return out, fmt.Errorf("export: invalid hex color %q: %w", s, err)
	}
	if len(hex) == 8 {
		if _, err := fmt.Sscanf(hex[6:8], "%02x", &a); err != nil {
			return out, fmt.Errorf("export: invalid hex color %q: %w", s, err)
		}
	}
	return [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}, nil
}

// DefaultTerrainRamp returns a low-to-high elevation ramp (water, sand,
// grass, rock, snow) suitable when a caller has no domain-specific palette.
func DefaultTerrainRamp(minHeight, maxHeight float32) *HeightRamp {
	span := maxHeight - minHeight
	if span <= 0 {
		span = 1
	}
	stop := func(t float32, hex string) ColorStop {
		c, _ := ParseHexColor(hex)
		return ColorStop{Height: minHeight + t*span, Color: c}
	}
	ramp, _ := NewHeightRamp([]ColorStop{
		stop(0.0, "#1b4f72"),
		stop(0.15, "#d4c99a"),
		stop(0.4, "#4f7942"),
		stop(0.75, "#7a6a53"),
		stop(1.0, "#f5f5f5"),
	})
	return ramp
}
