package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/config"
)

// GenerateTerrainMesh builds indexed triangle geometry from a height
// field at the requested detail index. Meshes of any two LODs emit
// their boundary ring at full resolution, so adjacent chunks tile
// without cracks regardless of their detail levels.
//
// The sample grid partitions into four vertex classes:
//
//   - skirt: one ring outside the renderable mesh, kept only so
//     boundary normals average over the neighbouring geometry;
//   - mesh edge: the outermost renderable ring, always full
//     resolution so neighbouring chunks match vertex-for-vertex;
//   - main: interior vertices sampled every skipIncrement cells, the
//     actual LOD reduction;
//   - edge connection: the ring just inside the edge ring, height-
//     interpolated between the two nearest main vertices so the seam
//     has no T-junction cracks.
//
// Pure function over its inputs; safe for concurrent worker calls.
func GenerateTerrainMesh(hf *HeightField, meshCfg config.MeshConfig, lod int) *MeshData {
	skipIncrement := 1
	if lod > 0 {
		skipIncrement = lod * 2
	}
	numVertsPerLine := meshCfg.NumVertsPerLine()
	worldSize := float32(meshCfg.WorldSize())

	topLeftX := -worldSize / 2
	topLeftZ := worldSize / 2

	scratch := newMeshScratch(numVertsPerLine, skipIncrement, meshCfg.FlatShaded)

	// First pass: assign every emitted grid vertex a slot, walking in
	// the same order the second pass appends.
	slots := make([][]vertexSlot, numVertsPerLine)
	for x := range slots {
		slots[x] = make([]vertexSlot, numVertsPerLine)
	}
	meshVertexIndex := 0
	skirtVertexIndex := 0
	for y := 0; y < numVertsPerLine; y++ {
		for x := 0; x < numVertsPerLine; x++ {
			if isSkirtVertex(x, y, numVertsPerLine) {
				slots[x][y] = vertexSlot{skirt: true, index: skirtVertexIndex}
				skirtVertexIndex++
			} else if !isSkippedVertex(x, y, numVertsPerLine, skipIncrement) {
				slots[x][y] = vertexSlot{index: meshVertexIndex}
				meshVertexIndex++
			}
		}
	}

	// Second pass: emit vertices and triangles.
	for y := 0; y < numVertsPerLine; y++ {
		for x := 0; x < numVertsPerLine; x++ {
			if isSkippedVertex(x, y, numVertsPerLine, skipIncrement) {
				continue
			}

			skirt := isSkirtVertex(x, y, numVertsPerLine)
			meshEdge := isMeshEdgeVertex(x, y, numVertsPerLine) && !skirt
			main := isMainVertex(x, y, skipIncrement) && !skirt && !meshEdge
			edgeConnection := isEdgeConnectionVertex(x, y, numVertsPerLine) && !skirt && !meshEdge && !main

			percentX := float32(x-1) / float32(numVertsPerLine-3)
			percentY := float32(y-1) / float32(numVertsPerLine-3)
			height := hf.Values[x][y]

			if edgeConnection {
				// Interpolate between the two nearest main vertices
				// along the axis perpendicular to the edge.
				vertical := x == 2 || x == numVertsPerLine-3
				along := x - 2
				if vertical {
					along = y - 2
				}
				dstToMainA := along % skipIncrement
				dstToMainB := skipIncrement - dstToMainA
				frac := float32(dstToMainA) / float32(skipIncrement)

				var heightA, heightB float32
				if vertical {
					heightA = hf.Values[x][y-dstToMainA]
					heightB = hf.Values[x][y+dstToMainB]
				} else {
					heightA = hf.Values[x-dstToMainA][y]
					heightB = hf.Values[x+dstToMainB][y]
				}
				height = heightA*(1-frac) + heightB*frac
			}

			pos := mgl32.Vec3{
				topLeftX + percentX*worldSize,
				height,
				topLeftZ - percentY*worldSize,
			}
			scratch.addVertex(pos, mgl32.Vec2{percentX, percentY}, slots[x][y])

			// Quads straddling the edge-connection rows are emitted by
			// the vertex on the main-grid side, so the seam keeps
			// stride 1 without duplicate quads.
			createTriangle := x < numVertsPerLine-1 && y < numVertsPerLine-1 &&
				(!edgeConnection || (x != 2 && y != 2))
			if createTriangle {
				stride := 1
				if main && x != numVertsPerLine-3 && y != numVertsPerLine-3 {
					stride = skipIncrement
				}

				a := slots[x][y]
				b := slots[x+stride][y]
				c := slots[x][y+stride]
				d := slots[x+stride][y+stride]
				scratch.addTriangle(a, d, c)
				scratch.addTriangle(d, a, b)
			}
		}
	}

	return scratch.finalize()
}

func isSkirtVertex(x, y, n int) bool {
	return y == 0 || y == n-1 || x == 0 || x == n-1
}

func isSkippedVertex(x, y, n, skip int) bool {
	return x > 2 && x < n-3 && y > 2 && y < n-3 &&
		((x-2)%skip != 0 || (y-2)%skip != 0)
}

func isMeshEdgeVertex(x, y, n int) bool {
	return y == 1 || y == n-2 || x == 1 || x == n-2
}

func isMainVertex(x, y, skip int) bool {
	return (x-2)%skip == 0 && (y-2)%skip == 0
}

func isEdgeConnectionVertex(x, y, n int) bool {
	return y == 2 || y == n-3 || x == 2 || x == n-3
}

// MeshBufferSizes reports the closed-form vertex and triangle counts
// for a smooth-shaded mesh at the given stride. The builder sizes its
// buffers with these so construction never reallocates.
func MeshBufferSizes(numVertsPerLine, skipIncrement int) (vertices, triangles int) {
	numMeshEdgeVertices := (numVertsPerLine-2)*4 - 4
	numEdgeConnectionVertices := (skipIncrement - 1) * (numVertsPerLine - 5) / skipIncrement * 4
	numMainVerticesPerLine := (numVertsPerLine-5)/skipIncrement + 1
	numMainVertices := numMainVerticesPerLine * numMainVerticesPerLine

	numMeshEdgeTriangles := 8 * (numVertsPerLine - 4)
	numMainTriangles := (numMainVerticesPerLine - 1) * (numMainVerticesPerLine - 1) * 2

	return numMeshEdgeVertices + numEdgeConnectionVertices + numMainVertices,
		numMeshEdgeTriangles + numMainTriangles
}
