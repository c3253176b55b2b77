// Package export converts extracted RTIN meshes into binary glTF, the way
// the teacher's api/utils packages turn a voxel VoxelGrid mesh into a .glb.
package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/rtinkit/rtintool/rtin"
)

// heightAt looks up the terrain sample under grid vertex (x, y).
func heightAt(terrain []float32, gridSize uint32, x, y uint16) float32 {
	return terrain[uint32(y)*gridSize+uint32(x)]
}

// normalizeWinding flips any triangle whose horizontal (x,z) winding is
// clockwise so every face in the output is counter-clockwise. rtin.Mesh
// gives every triangle the same winding, which is clockwise in this (x,z)
// sense (documented on rtin.Mesh), so every RTIN triangle is flipped before
// it reaches a glTF consumer.
func normalizeWinding(indices []uint32, positions [][3]float32) {
	for i := 0; i+2 < len(indices); i += 3 {
		p0, p1, p2 := positions[indices[i]], positions[indices[i+1]], positions[indices[i+2]]
		signedArea := (p1[0]-p0[0])*(p2[2]-p0[2]) - (p2[0]-p0[0])*(p1[2]-p0[2])
		if signedArea < 0 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
	}
}

// MeshToGLB converts an extracted RTIN Mesh into a binary glTF document,
// using terrain to place each vertex's height and ramp to derive its
// COLOR_0 attribute. horizontalScale converts grid-integer XY into world
// units; a value of 1 leaves them as raw grid coordinates.
func MeshToGLB(mesh *rtin.Mesh, gridSize uint32, terrain []float32, ramp *HeightRamp, horizontalScale float32) ([]byte, error) {
	if len(terrain) != int(gridSize)*int(gridSize) {
		return nil, fmt.Errorf("export: expected %d terrain samples, got %d", gridSize*gridSize, len(terrain))
	}
	if ramp == nil {
		min, max := terrain[0], terrain[0]
		for _, v := range terrain {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		ramp = DefaultTerrainRamp(min, max)
	}

	nv := mesh.NumVertices()
	positions := make([][3]float32, nv)
	colors := make([][4]float32, nv)
	for i := 0; i < nv; i++ {
		x, y := mesh.Vertex(i)
		h := heightAt(terrain, gridSize, x, y)
		positions[i] = [3]float32{float32(x) * horizontalScale, h, float32(y) * horizontalScale}
		colors[i] = ramp.Sample(h)
	}

	indices := make([]uint32, len(mesh.Triangles))
	copy(indices, mesh.Triangles)
	normalizeWinding(indices, positions)

	// Per-face normals, technique ported from the voxel exporter's normal
	// loop: cross product of two edge vectors, written to all three face
	// vertices. Vertices are shared between triangles, so a shared vertex
	// keeps the normal of the last triangle that references it; normals are
	// neither averaged nor split per face.
	normals := make([][3]float32, nv)
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		length := float32(math.Sqrt(float64(cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2])))
		if length > 0 {
			cross[0] /= length
			cross[1] /= length
			cross[2] /= length
		}
		normals[v0] = cross
		normals[v1] = cross
		normals[v2] = cross
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "rtintool"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices: gltf.Index(uint32(indicesAccessor)),
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	doc.Materials = []*gltf.Material{material}
	prim.Material = gltf.Index(0)

	meshGltf := &gltf.Mesh{Name: "TerrainTile", Primitives: []*gltf.Primitive{prim}}
	doc.Meshes = []*gltf.Mesh{meshGltf}
	node := &gltf.Node{Mesh: gltf.Index(0)}
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
