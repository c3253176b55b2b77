// Package synth generates synthetic heightfields sized to the RTIN grid
// constraint (2^n+1), the terrain analogue of the teacher's gennoise
// pipeline for exercising a mesh format without needing real scan data.
package synth

import (
	"fmt"
	"math"
	"math/rand"
)

// Flat returns a gridSize x gridSize heightfield with every sample set to height.
func Flat(gridSize uint32, height float32) ([]float32, error) {
	if err := checkGridSize(gridSize); err != nil {
		return nil, err
	}
	out := make([]float32, gridSize*gridSize)
	for i := range out {
		out[i] = height
	}
	return out, nil
}

// SinglePeak returns a heightfield that is 0 everywhere except a single
// sample at grid coordinate (cx, cy), which is set to amplitude — the
// exact shape spec scenarios S3/S4 exercise.
func SinglePeak(gridSize uint32, cx, cy int, amplitude float32) ([]float32, error) {
	if err := checkGridSize(gridSize); err != nil {
		return nil, err
	}
	if cx < 0 || cy < 0 || cx >= int(gridSize) || cy >= int(gridSize) {
		return nil, fmt.Errorf("synth: peak (%d,%d) outside %dx%d grid", cx, cy, gridSize, gridSize)
	}
	out := make([]float32, gridSize*gridSize)
	out[uint32(cy)*gridSize+uint32(cx)] = amplitude
	return out, nil
}

// DiamondSquare generates a fractal heightfield via the classic
// diamond-square algorithm. roughness in (0,1) controls how quickly
// displacement decays with each subdivision; seed makes generation
// deterministic, matching the teacher's rand.New(rand.NewSource(seed))
// pattern in noise.go.
func DiamondSquare(gridSize uint32, roughness float64, seed int64) ([]float32, error) {
	if err := checkGridSize(gridSize); err != nil {
		return nil, err
	}
	n := int(gridSize)
	h := make([][]float64, n)
	for i := range h {
		h[i] = make([]float64, n)
	}
	r := rand.New(rand.NewSource(seed))

	h[0][0] = r.Float64()*2 - 1
	h[0][n-1] = r.Float64()*2 - 1
	h[n-1][0] = r.Float64()*2 - 1
	h[n-1][n-1] = r.Float64()*2 - 1

	scale := 1.0
	for step := n - 1; step > 1; step /= 2 {
		half := step / 2

		for y := half; y < n; y += step {
			for x := half; x < n; x += step {
				avg := (h[y-half][x-half] + h[y-half][x+half] + h[y+half][x-half] + h[y+half][x+half]) / 4
				h[y][x] = avg + (r.Float64()*2-1)*scale
			}
		}

		for y := 0; y < n; y += half {
			for x := (y + half) % step; x < n; x += step {
				sum, count := 0.0, 0.0
				if x-half >= 0 {
					sum += h[y][x-half]
					count++
				}
				if x+half < n {
					sum += h[y][x+half]
					count++
				}
				if y-half >= 0 {
					sum += h[y-half][x]
					count++
				}
				if y+half < n {
					sum += h[y+half][x]
					count++
				}
				h[y][x] = sum/count + (r.Float64()*2-1)*scale
			}
		}

		scale *= math.Pow(2, -roughness)
	}

	out := make([]float32, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = float32(h[y][x])
		}
	}
	return out, nil
}

func checkGridSize(gridSize uint32) error {
	if gridSize < 2 {
		return fmt.Errorf("synth: grid size must be 2^n+1, got %d", gridSize)
	}
	t := gridSize - 1
	if t&(t-1) != 0 {
		return fmt.Errorf("synth: grid size must be 2^n+1, got %d", gridSize)
	}
	return nil
}
