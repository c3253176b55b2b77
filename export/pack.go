package export

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/rtinkit/rtintool/rtin"
	"github.com/rtinkit/rtintool/tileset"
)

// PackToGLB converts every tile in a Pack into one glTF scene, laid out on
// a grid by quadtree (X, Y) so neighbouring tiles abut exactly, mirroring
// voplpack2glb's per-entry node placement. maxError/maxLength are passed
// through to Tile.GetMesh for every entry.
func PackToGLB(pack *tileset.Pack, maxError, maxLength float32, ramp *HeightRamp) ([]byte, error) {
	if len(pack.Entries) == 0 {
		return nil, fmt.Errorf("export: pack has no entries")
	}
	gridSize := uint32(pack.Header.GridSize)
	grid, err := rtin.NewGrid(gridSize)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "rtintool"

	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	doc.Materials = []*gltf.Material{material}

	stepX := float32(gridSize - 1)
	stepZ := float32(gridSize - 1)

	if ramp == nil {
		ramp = DefaultTerrainRamp(pack.Header.QuantMin, pack.Header.QuantMax)
	}

	for i, e := range pack.Entries {
		terrain, err := decodePackEntry(pack.Header, e)
		if err != nil {
			return nil, fmt.Errorf("entry %d (tile %+v): %w", i, e.ID, err)
		}
		tile, err := grid.CreateTile(terrain)
		if err != nil {
			return nil, fmt.Errorf("entry %d (tile %+v): %w", i, e.ID, err)
		}
		mesh := tile.GetMesh(maxError, maxLength)

		nv := mesh.NumVertices()
		positions := make([][3]float32, nv)
		colors := make([][4]float32, nv)
		for vi := 0; vi < nv; vi++ {
			x, y := mesh.Vertex(vi)
			h := heightAt(terrain, gridSize, x, y)
			positions[vi] = [3]float32{float32(x), h, float32(y)}
			colors[vi] = ramp.Sample(h)
		}
		indices := make([]uint32, len(mesh.Triangles))
		copy(indices, mesh.Triangles)
		normalizeWinding(indices, positions)

		posAccessor := modeler.WritePosition(doc, positions)
		colorAccessor := modeler.WriteColor(doc, colors)
		indicesAccessor := modeler.WriteIndices(doc, indices)

		prim := &gltf.Primitive{
			Attributes: map[string]uint32{
				gltf.POSITION: uint32(posAccessor),
				gltf.COLOR_0:  uint32(colorAccessor),
			},
			Indices:  gltf.Index(uint32(indicesAccessor)),
			Material: gltf.Index(0),
		}

		name := fmt.Sprintf("tile_%d_%d_%d", e.ID.Z, e.ID.X, e.ID.Y)
		m := &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}}
		doc.Meshes = append(doc.Meshes, m)

		tx := float32(e.ID.X) * stepX
		tz := float32(e.ID.Y) * stepZ
		node := &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))}
		node.Translation = [3]float32{tx, 0, tz}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodePackEntry(hdr tileset.Header, e tileset.PackEntry) ([]float32, error) {
	full := tileset.RebuildTileFile(hdr, e.Enc, e.Payload)
	_, terrain, err := tileset.DecodeTile(full)
	return terrain, err
}
