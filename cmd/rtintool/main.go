// Command rtintool builds, packs, and exports RTIN terrain tiles, the
// terrain-domain analogue of the teacher's vopltool command dispatcher.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/rtinkit/rtintool/diff"
	"github.com/rtinkit/rtintool/export"
	"github.com/rtinkit/rtintool/internal/tlog"
	"github.com/rtinkit/rtintool/rtin"
	"github.com/rtinkit/rtintool/synth"
	"github.com/rtinkit/rtintool/tileset"
)

func usage() {
	fmt.Println("Usage: rtintool <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  mesh <tile.rtin> <out.glb> [maxError] [maxLength]      (extract a mesh and export it as .glb)")
	fmt.Println("  pack <out.rtinpack> <tile1.rtin> [tile2.rtin ...]      (bundle .rtin files into a .rtinpack)")
	fmt.Println("  unpack <in.rtinpack> <out_dir>                        (split a .rtinpack into .rtin files)")
	fmt.Println("  packglb <in.rtinpack> <out.glb> [maxError] [maxLength] (export every tile in a pack to one .glb scene)")
	fmt.Println("  genterrain <gridSize> <roughness> <seed> <out.rtin>    (generate a diamond-square tile)")
	fmt.Println("  diffapply <in.rtin> <patch.json> <out.rtin>            (apply a JSON height patch)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "mesh":
		err = runMesh(os.Args[2:])
	case "pack":
		err = runPack(os.Args[2:])
	case "unpack":
		err = runUnpack(os.Args[2:])
	case "packglb":
		err = runPackGLB(os.Args[2:])
	case "genterrain":
		err = runGenTerrain(os.Args[2:])
	case "diffapply":
		err = runDiffApply(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("Operation completed!")
}

func runMesh(args []string) error {
	if len(args) < 2 || len(args) > 4 {
		usage()
		os.Exit(1)
	}
	inPath, outPath := args[0], args[1]
	maxError, maxLength := float32(0), float32(0)
	if len(args) >= 3 {
		v, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			return fmt.Errorf("invalid maxError: %w", err)
		}
		maxError = float32(v)
	}
	if len(args) == 4 {
		v, err := strconv.ParseFloat(args[3], 32)
		if err != nil {
			return fmt.Errorf("invalid maxLength: %w", err)
		}
		maxLength = float32(v)
	}

	gridSize, terrain, err := tileset.LoadTile(inPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", inPath, err)
	}
	grid, err := rtin.NewGrid(gridSize)
	if err != nil {
		return err
	}
	tile, err := grid.CreateTile(terrain)
	if err != nil {
		return err
	}
	mesh := tile.GetMesh(maxError, maxLength)

	data, err := export.MeshToGLB(mesh, gridSize, terrain, nil, 1)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", outPath, err)
	}
	return os.WriteFile(outPath, data, 0o644)
}

func runPack(args []string) error {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	outPath := args[0]
	inputs := args[1:]

	logger := tlog.New("info", tlog.DefaultFileConfig(outPath+".log"))
	defer logger.Sync()

	files := make([][]byte, len(inputs))
	ids := make([]tileset.TileID, len(inputs))
	for i, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files[i] = data
		ids[i] = tileset.TileID{X: uint32(i), Y: 0, Z: 0}
		logger.Info("loaded tile", zap.String("path", path), zap.Int("bytes", len(data)))
	}

	pack, err := tileset.BuildPackFromTileFiles(files, ids)
	if err != nil {
		return err
	}
	data, err := pack.Marshal()
	if err != nil {
		return err
	}
	logger.Info("pack built", zap.String("path", outPath), zap.Int("bytes", len(data)))
	return os.WriteFile(outPath, data, 0o644)
}

func runUnpack(args []string) error {
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	inPath, outDir := args[0], args[1]
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	pack, err := tileset.UnmarshalPack(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, e := range pack.Entries {
		tileData := tileset.RebuildTileFile(pack.Header, e.Enc, e.Payload)
		name := fmt.Sprintf("tile_%d_%d_%d.rtin", e.ID.Z, e.ID.X, e.ID.Y)
		if err := os.WriteFile(filepath.Join(outDir, name), tileData, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func runPackGLB(args []string) error {
	if len(args) < 2 || len(args) > 4 {
		usage()
		os.Exit(1)
	}
	inPath, outPath := args[0], args[1]
	maxError, maxLength := float32(0), float32(0)
	if len(args) >= 3 {
		v, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			return fmt.Errorf("invalid maxError: %w", err)
		}
		maxError = float32(v)
	}
	if len(args) == 4 {
		v, err := strconv.ParseFloat(args[3], 32)
		if err != nil {
			return fmt.Errorf("invalid maxLength: %w", err)
		}
		maxLength = float32(v)
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	pack, err := tileset.UnmarshalPack(data)
	if err != nil {
		return err
	}
	glb, err := export.PackToGLB(pack, maxError, maxLength, nil)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, glb, 0o644)
}

func runGenTerrain(args []string) error {
	if len(args) != 4 {
		usage()
		os.Exit(1)
	}
	gridSize64, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid gridSize: %w", err)
	}
	roughness, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid roughness: %w", err)
	}
	seed, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}
	outPath := args[3]

	terrain, err := synth.DiamondSquare(uint32(gridSize64), roughness, seed)
	if err != nil {
		return err
	}
	return tileset.SaveTile(outPath, uint32(gridSize64), terrain, 12, 0)
}

func runDiffApply(args []string) error {
	if len(args) != 3 {
		usage()
		os.Exit(1)
	}
	inPath, patchPath, outPath := args[0], args[1], args[2]

	gridSize, terrain, err := tileset.LoadTile(inPath)
	if err != nil {
		return err
	}
	patch, err := os.ReadFile(patchPath)
	if err != nil {
		return err
	}
	if err := diff.ApplyJSON(terrain, gridSize, patch); err != nil {
		return err
	}
	return tileset.SaveTile(outPath, gridSize, terrain, 12, 0)
}
