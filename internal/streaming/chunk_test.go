package streaming

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/terrain"
)

// fakeDispatcher runs producers synchronously on Drain so tests step
// the async machinery deterministically.
type fakeDispatcher struct {
	pending  []func()
	requests int
}

func (d *fakeDispatcher) Request(produce func() any, callback func(any)) {
	d.requests++
	d.pending = append(d.pending, func() { callback(produce()) })
}

func (d *fakeDispatcher) Drain() int {
	work := d.pending
	d.pending = nil
	for _, f := range work {
		f()
	}
	return len(work)
}

type visibleEvent struct {
	chunkID int64
	visible bool
}

type fakePresenter struct {
	meshes    []*terrain.MeshData
	meshIDs   []int64
	colliders []*terrain.MeshData
	visible   []visibleEvent
}

func (p *fakePresenter) SetMesh(chunkID int64, mesh *terrain.MeshData) {
	p.meshIDs = append(p.meshIDs, chunkID)
	p.meshes = append(p.meshes, mesh)
}

func (p *fakePresenter) SetCollider(chunkID int64, mesh *terrain.MeshData) {
	p.colliders = append(p.colliders, mesh)
}

func (p *fakePresenter) SetVisible(chunkID int64, visible bool) {
	p.visible = append(p.visible, visibleEvent{chunkID, visible})
}

func (p *fakePresenter) lastMesh() *terrain.MeshData {
	if len(p.meshes) == 0 {
		return nil
	}
	return p.meshes[len(p.meshes)-1]
}

type fakeHandle struct {
	active bool
	sets   int
}

func (h *fakeHandle) SetActive(a bool) {
	h.active = a
	h.sets++
}

type fakeSpawner struct {
	handles    []*fakeHandle
	placements []Placement
}

func (s *fakeSpawner) Spawn(chunkID int64, p Placement) (SpawnHandle, bool) {
	h := &fakeHandle{}
	s.handles = append(s.handles, h)
	s.placements = append(s.placements, p)
	return h, true
}

// fakeSurface always reports a hit owned by the configured chunk.
type fakeSurface struct {
	chunkID int64
	height  float32
}

func (s *fakeSurface) SurfaceAt(x, z float64) (SurfaceHit, bool) {
	return SurfaceHit{
		Point:   mgl32.Vec3{float32(x), s.height, float32(z)},
		Normal:  mgl32.Vec3{0, 1, 0},
		ChunkID: s.chunkID,
	}, true
}

// 53 verts per line, chunk world size exactly 240.
func testStreamConfig() *config.Config {
	cfg := config.Default()
	cfg.Noise.Octaves = 2
	cfg.Mesh = config.MeshConfig{Scale: 4.8, ChunkSizeIndex: 0}
	cfg.LODLevels = []config.LODLevel{{LOD: 0, VisibleDistance: 100}}
	cfg.Collider = config.ColliderConfig{LODIndex: 0, GenerationDistance: 50}
	cfg.Spawnables = nil
	return cfg
}

func testChunk(cfg *config.Config, deps chunkDeps) *Chunk {
	if deps.log == nil {
		deps.log = logger.Named("test")
	}
	return newChunk(7, GridCoord{X: 0, Z: 0}, cfg, deps)
}

func TestChunkHeightFieldThenMeshThenCollider(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	p := &fakePresenter{}

	c := testChunk(cfg, chunkDeps{dispatcher: d, presenter: p})
	c.load()

	if len(p.visible) != 0 {
		t.Fatal("visibility decided before the height field arrived")
	}

	// Height field delivery evaluates and requests the LOD 0 mesh.
	d.Drain()
	if len(p.visible) != 1 || !p.visible[0].visible {
		t.Fatalf("expected one visible=true event, got %v", p.visible)
	}
	if len(p.meshes) != 0 {
		t.Fatal("mesh installed before the worker produced it")
	}

	// Mesh delivery installs it and latches the collider.
	d.Drain()
	if len(p.meshes) != 1 {
		t.Fatalf("expected one installed mesh, got %d", len(p.meshes))
	}
	if p.meshIDs[0] != c.ID {
		t.Errorf("mesh installed under chunk %d, want %d", p.meshIDs[0], c.ID)
	}
	if len(p.colliders) != 1 {
		t.Fatalf("expected collider installed, got %d", len(p.colliders))
	}
	if !c.colliderSet {
		t.Error("collider latch not set")
	}

	mat, ok := c.Material()
	if !ok {
		t.Fatal("material unavailable after height field delivery")
	}
	if mat.MinHeight != c.heightField.Min || mat.MaxHeight != c.heightField.Max {
		t.Errorf("material range [%f,%f] does not match field [%f,%f]",
			mat.MinHeight, mat.MaxHeight, c.heightField.Min, c.heightField.Max)
	}
}

func TestChunkVisibilityFiresOncePerTransition(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	p := &fakePresenter{}

	c := testChunk(cfg, chunkDeps{dispatcher: d, presenter: p})
	c.load()
	d.Drain()

	for i := 0; i < 5; i++ {
		c.evaluate(0, 0)
	}
	if len(p.visible) != 1 {
		t.Fatalf("repeated evaluation fired %d visibility events, want 1", len(p.visible))
	}

	c.evaluate(10000, 0)
	if len(p.visible) != 2 || p.visible[1].visible {
		t.Fatalf("expected a single visible=false event, got %v", p.visible)
	}
	for i := 0; i < 5; i++ {
		c.evaluate(10000, 0)
	}
	if len(p.visible) != 2 {
		t.Fatalf("hidden re-evaluation fired extra events: %v", p.visible)
	}
}

func TestChunkLODSelectionInstallsOnReady(t *testing.T) {
	cfg := testStreamConfig()
	cfg.LODLevels = []config.LODLevel{
		{LOD: 0, VisibleDistance: 100},
		{LOD: 1, VisibleDistance: 200},
		{LOD: 2, VisibleDistance: 300},
	}
	d := &fakeDispatcher{}
	p := &fakePresenter{}

	c := testChunk(cfg, chunkDeps{dispatcher: d, presenter: p})
	c.load()
	d.Drain() // height field; viewer at origin requests LOD 0
	d.Drain() // LOD 0 mesh installs

	fullVerts, _ := terrain.MeshBufferSizes(cfg.Mesh.NumVertsPerLine(), 1)
	if got := len(p.lastMesh().Vertices); got != fullVerts {
		t.Fatalf("expected full-detail mesh (%d verts), got %d", fullVerts, got)
	}

	// 150 from the nearest edge: second threshold is the first match.
	c.evaluate(270, 0)
	if len(p.meshes) != 1 {
		t.Fatal("coarser mesh installed synchronously before the worker ran")
	}
	d.Drain()

	coarseVerts, _ := terrain.MeshBufferSizes(cfg.Mesh.NumVertsPerLine(), 2)
	if got := len(p.lastMesh().Vertices); got != coarseVerts {
		t.Fatalf("expected stride-2 mesh (%d verts), got %d", coarseVerts, got)
	}
	if c.previousLODIndex != 1 {
		t.Errorf("previousLODIndex = %d, want 1", c.previousLODIndex)
	}
}

func TestLODMeshRequestIdempotent(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	n := cfg.Mesh.NumVertsPerLine()
	hf := terrain.GenerateHeightField(n, n, cfg.Noise, cfg.Height, 0, 0)

	lm := &lodMesh{lod: 0}
	lm.request(d, hf, cfg.Mesh)
	lm.request(d, hf, cfg.Mesh)
	if d.requests != 1 {
		t.Fatalf("expected one submission, got %d", d.requests)
	}

	d.Drain()
	lm.request(d, hf, cfg.Mesh)
	if d.requests != 1 {
		t.Fatalf("request after ready submitted again: %d", d.requests)
	}
	if !lm.ready() {
		t.Fatal("mesh not ready after drain")
	}
}

func TestColliderOneWayLatch(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	p := &fakePresenter{}

	c := testChunk(cfg, chunkDeps{dispatcher: d, presenter: p})
	c.load()
	d.Drain()
	d.Drain()
	if len(p.colliders) != 1 {
		t.Fatalf("expected collider installed once, got %d", len(p.colliders))
	}

	// Retreat far away and return; the latch must hold.
	c.evaluate(5000, 0)
	c.evaluateCollision(5000, 0)
	c.evaluate(0, 0)
	c.evaluateCollision(0, 0)
	d.Drain()

	if len(p.colliders) != 1 {
		t.Fatalf("collider reinstalled after latch: %d installs", len(p.colliders))
	}
}

func TestPopulateSpawnsOnceAndGatesActivation(t *testing.T) {
	cfg := testStreamConfig()
	cfg.LODLevels = []config.LODLevel{
		{LOD: 0, VisibleDistance: 100},
		{LOD: 1, VisibleDistance: 400},
	}
	cfg.Spawnables = []config.SpawnableConfig{{
		Name:     "pine",
		Density:  20,
		ScaleMin: [3]float64{1, 1, 1},
		ScaleMax: [3]float64{1, 1, 1},
	}}

	d := &fakeDispatcher{}
	p := &fakePresenter{}
	sp := &fakeSpawner{}

	c := testChunk(cfg, chunkDeps{
		dispatcher: d,
		presenter:  p,
		spawner:    sp,
		surface:    &fakeSurface{chunkID: 7, height: 3},
	})
	c.load()
	d.Drain() // height field
	d.Drain() // LOD 0 mesh, collider, population

	if len(sp.handles) != 20 {
		t.Fatalf("expected 20 placements, got %d", len(sp.handles))
	}
	for i, h := range sp.handles {
		if !h.active {
			t.Fatalf("handle %d inactive at LOD 0", i)
		}
	}
	for _, pl := range sp.placements {
		if pl.Name != "pine" {
			t.Fatalf("unexpected spawnable %q", pl.Name)
		}
		if pl.Position.Y() != 3 {
			t.Fatalf("placement ignored surface height: %v", pl.Position)
		}
	}

	// Coarser LOD deactivates without destroying.
	c.evaluate(270, 0)
	d.Drain() // LOD 1 mesh installs, activation refreshes
	if len(sp.handles) != 20 {
		t.Fatalf("population re-ran: %d handles", len(sp.handles))
	}
	for i, h := range sp.handles {
		if h.active {
			t.Fatalf("handle %d still active at LOD 1", i)
		}
	}

	// Full detail again reactivates the same handles.
	c.evaluate(0, 0)
	if len(sp.handles) != 20 {
		t.Fatalf("population re-ran on return: %d handles", len(sp.handles))
	}
	for i, h := range sp.handles {
		if !h.active {
			t.Fatalf("handle %d not reactivated", i)
		}
	}
}

// A probe that lands on another chunk's geometry is skipped, but the
// chunk still counts as filled.
func TestPopulateSkipsForeignSurfaceHits(t *testing.T) {
	cfg := testStreamConfig()
	cfg.Spawnables = []config.SpawnableConfig{{Name: "pine", Density: 10}}

	d := &fakeDispatcher{}
	sp := &fakeSpawner{}
	c := testChunk(cfg, chunkDeps{
		dispatcher: d,
		presenter:  &fakePresenter{},
		spawner:    sp,
		surface:    &fakeSurface{chunkID: 999},
	})
	c.load()
	d.Drain()
	d.Drain()

	if len(sp.handles) != 0 {
		t.Fatalf("foreign hits produced %d spawns", len(sp.handles))
	}
	if !c.filled {
		t.Error("chunk not marked filled after population pass")
	}
}

func TestPopulateDeterministicPerCoordinate(t *testing.T) {
	cfg := testStreamConfig()
	cfg.Spawnables = []config.SpawnableConfig{{
		Name:          "rock",
		Density:       15,
		RotationRange: [2]float64{0, 360},
		ScaleMin:      [3]float64{0.5, 0.5, 0.5},
		ScaleMax:      [3]float64{2, 2, 2},
	}}

	run := func() []Placement {
		d := &fakeDispatcher{}
		sp := &fakeSpawner{}
		c := testChunk(cfg, chunkDeps{
			dispatcher: d,
			presenter:  &fakePresenter{},
			spawner:    sp,
			surface:    &fakeSurface{chunkID: 7},
		})
		c.load()
		d.Drain()
		d.Drain()
		return sp.placements
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("placement counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("placement %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
