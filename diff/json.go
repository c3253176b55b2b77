package diff

import (
	"encoding/json"
	"fmt"
)

// ApplyJSON applies a JSON object of {"<index>": <height>} entries onto an
// existing terrain buffer, generalized from applyJSONToGrid's uint8 voxel
// colors to float32 heights. Indices are grid-linear (y*gridSize + x, per
// spec.md's terrain layout); out-of-bounds indices are rejected rather
// than silently ignored, since a heightfield diff has no room for a
// "harmless" out-of-range write the way a fixed-size voxel chunk does.
func ApplyJSON(terrain []float32, gridSize uint32, patch []byte) error {
	total := int(gridSize) * int(gridSize)
	if len(terrain) != total {
		return fmt.Errorf("diff: expected terrain of length %d, got %d", total, len(terrain))
	}

	var updates map[string]float64
	if err := json.Unmarshal(patch, &updates); err != nil {
		return fmt.Errorf("diff: invalid patch JSON: %w", err)
	}

	for idxStr, height := range updates {
		var idx int
		if _, err := fmt.Sscan(idxStr, &idx); err != nil {
			return fmt.Errorf("diff: invalid index %q: %w", idxStr, err)
		}
		if idx < 0 || idx >= total {
			return fmt.Errorf("diff: index %d out of range for %dx%d grid", idx, gridSize, gridSize)
		}
		terrain[idx] = float32(height)
	}
	return nil
}
