package terrain

import "github.com/go-gl/mathgl/mgl32"

// MeshData is indexed triangle geometry for one chunk at one LOD.
// Immutable once GenerateTerrainMesh returns; it is cached per chunk
// per LOD and shared with the rendering and collision collaborators.
//
// Triangles reference only renderable vertices. The skirt ring that
// exists during construction for boundary-normal correctness never
// reaches these buffers.
type MeshData struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
	UVs       []mgl32.Vec2
	// Normals are baked per vertex for smooth shading, or duplicated
	// per face corner when FlatShaded is set.
	Normals    []mgl32.Vec3
	FlatShaded bool
}

// vertexSlot says where a sample-grid vertex landed: the renderable
// buffer or the out-of-mesh skirt ring. An explicit tag, so an index
// can never be misread across the two spaces.
type vertexSlot struct {
	skirt bool
	index int
}

// meshScratch accumulates geometry during construction, including the
// skirt ring that is dropped from the final payload.
type meshScratch struct {
	vertices  []mgl32.Vec3
	uvs       []mgl32.Vec2
	triangles []uint32

	skirtVertices  []mgl32.Vec3
	skirtTriangles [][3]vertexSlot

	flatShaded bool
}

func newMeshScratch(numVertsPerLine, skipIncrement int, flatShaded bool) *meshScratch {
	numMeshEdgeVertices := (numVertsPerLine-2)*4 - 4
	numEdgeConnectionVertices := (skipIncrement - 1) * (numVertsPerLine - 5) / skipIncrement * 4
	numMainVerticesPerLine := (numVertsPerLine-5)/skipIncrement + 1
	numMainVertices := numMainVerticesPerLine * numMainVerticesPerLine

	numMeshEdgeTriangles := 8 * (numVertsPerLine - 4)
	numMainTriangles := (numMainVerticesPerLine - 1) * (numMainVerticesPerLine - 1) * 2

	numVertices := numMeshEdgeVertices + numEdgeConnectionVertices + numMainVertices
	return &meshScratch{
		vertices:       make([]mgl32.Vec3, 0, numVertices),
		uvs:            make([]mgl32.Vec2, 0, numVertices),
		triangles:      make([]uint32, 0, (numMeshEdgeTriangles+numMainTriangles)*3),
		skirtVertices:  make([]mgl32.Vec3, 0, numVertsPerLine*4-4),
		skirtTriangles: make([][3]vertexSlot, 0, 8*(numVertsPerLine-2)),
		flatShaded:     flatShaded,
	}
}

// addVertex stores a vertex in the buffer its slot names. Slots are
// assigned in the same grid walk order as the calls, so the append
// position always matches the slot index.
func (m *meshScratch) addVertex(pos mgl32.Vec3, uv mgl32.Vec2, slot vertexSlot) {
	if slot.skirt {
		m.skirtVertices = append(m.skirtVertices, pos)
		return
	}
	m.vertices = append(m.vertices, pos)
	m.uvs = append(m.uvs, uv)
}

func (m *meshScratch) addTriangle(a, b, c vertexSlot) {
	if a.skirt || b.skirt || c.skirt {
		m.skirtTriangles = append(m.skirtTriangles, [3]vertexSlot{a, b, c})
		return
	}
	m.triangles = append(m.triangles, uint32(a.index), uint32(b.index), uint32(c.index))
}

func (m *meshScratch) position(s vertexSlot) mgl32.Vec3 {
	if s.skirt {
		return m.skirtVertices[s.index]
	}
	return m.vertices[s.index]
}

// bakeNormals accumulates per-triangle cross products into vertex
// normals. Skirt triangles contribute to their renderable corners so
// mesh-edge normals match the neighbouring chunk's.
func (m *meshScratch) bakeNormals() []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(m.vertices))

	for i := 0; i+2 < len(m.triangles); i += 3 {
		a := m.triangles[i]
		b := m.triangles[i+1]
		c := m.triangles[i+2]
		n := surfaceNormal(m.vertices[a], m.vertices[b], m.vertices[c])
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	for _, tri := range m.skirtTriangles {
		n := surfaceNormal(m.position(tri[0]), m.position(tri[1]), m.position(tri[2]))
		for _, s := range tri {
			if !s.skirt {
				normals[s.index] = normals[s.index].Add(n)
			}
		}
	}

	for i := range normals {
		normals[i] = safeNormalize(normals[i])
	}
	return normals
}

// finalize converts scratch state into an immutable payload, either
// baking smooth normals or exploding the buffers for flat shading.
func (m *meshScratch) finalize() *MeshData {
	if m.flatShaded {
		return m.flatShade()
	}
	return &MeshData{
		Vertices:  m.vertices,
		Triangles: m.triangles,
		UVs:       m.uvs,
		Normals:   m.bakeNormals(),
	}
}

// flatShade gives every triangle corner its own vertex with a hard
// per-face normal. No vertices are shared afterwards.
func (m *meshScratch) flatShade() *MeshData {
	n := len(m.triangles)
	vertices := make([]mgl32.Vec3, n)
	uvs := make([]mgl32.Vec2, n)
	normals := make([]mgl32.Vec3, n)
	triangles := make([]uint32, n)

	for i, idx := range m.triangles {
		vertices[i] = m.vertices[idx]
		uvs[i] = m.uvs[idx]
		triangles[i] = uint32(i)
	}
	for i := 0; i+2 < n; i += 3 {
		face := surfaceNormal(vertices[i], vertices[i+1], vertices[i+2])
		normals[i] = face
		normals[i+1] = face
		normals[i+2] = face
	}

	return &MeshData{
		Vertices:   vertices,
		Triangles:  triangles,
		UVs:        uvs,
		Normals:    normals,
		FlatShaded: true,
	}
}

func surfaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return safeNormalize(b.Sub(a).Cross(c.Sub(a)))
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-8 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}
