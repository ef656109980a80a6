package streaming

import (
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/terrain"
)

// chunkDeps bundles the collaborators a chunk talks to. The manager
// owns them; chunks only borrow.
type chunkDeps struct {
	dispatcher Dispatcher
	presenter  Presenter
	spawner    Spawner
	surface    SurfaceQuerier
	observer   VisibilityObserver
	log        *zap.Logger
}

// Chunk owns one grid cell: its height field, its per-LOD mesh cache,
// its collision surface, its decorative population, and its
// visibility. Mutated only on the controlling goroutine.
type Chunk struct {
	ID    int64
	Coord GridCoord

	cfg    *config.Config
	bounds Bounds
	deps   chunkDeps

	// Sample centre in noise grid units, folded into the per-octave
	// offsets so world coordinates shared with a neighbour produce the
	// same raw noise.
	sampleCentreX float64
	sampleCentreZ float64

	heightField *terrain.HeightField
	lodMeshes   []*lodMesh

	previousLODIndex int
	visible          bool
	colliderSet      bool
	filled           bool
	spawned          []SpawnHandle
	spawnedActive    bool

	// Last viewer position seen, so mesh-ready callbacks can
	// re-evaluate without waiting for the next tick.
	lastViewerX float64
	lastViewerZ float64
}

func newChunk(id int64, coord GridCoord, cfg *config.Config, deps chunkDeps) *Chunk {
	worldSize := cfg.Mesh.WorldSize()
	c := &Chunk{
		ID:    id,
		Coord: coord,
		cfg:   cfg,
		deps:  deps,
		bounds: Bounds{
			CenterX: float64(coord.X) * worldSize,
			CenterZ: float64(coord.Z) * worldSize,
			Size:    worldSize,
		},
		sampleCentreX:    float64(coord.X) * worldSize / cfg.Mesh.Scale,
		sampleCentreZ:    float64(coord.Z) * worldSize / cfg.Mesh.Scale,
		previousLODIndex: -1,
	}

	c.lodMeshes = make([]*lodMesh, len(cfg.LODLevels))
	for i, lvl := range cfg.LODLevels {
		lm := &lodMesh{lod: lvl.LOD, onReady: c.onMeshReady}
		c.lodMeshes[i] = lm
	}
	return c
}

// load requests the height field. Called once by the manager right
// after construction; everything else waits for the delivery.
func (c *Chunk) load() {
	n := c.cfg.Mesh.NumVertsPerLine()
	noiseCfg := c.cfg.Noise
	heightCfg := c.cfg.Height
	cx, cz := c.sampleCentreX, c.sampleCentreZ

	c.deps.dispatcher.Request(func() any {
		return terrain.GenerateHeightField(n, n, noiseCfg, heightCfg, cx, cz)
	}, func(result any) {
		c.heightField = result.(*terrain.HeightField)
		c.deps.log.Debug("height field ready",
			zap.Int64("chunk", c.ID),
			zap.Int("x", c.Coord.X), zap.Int("z", c.Coord.Z))
		c.evaluate(c.lastViewerX, c.lastViewerZ)
	})
}

func (c *Chunk) onMeshReady() {
	c.evaluate(c.lastViewerX, c.lastViewerZ)
	c.evaluateCollision(c.lastViewerX, c.lastViewerZ)
}

// evaluate recomputes visibility and LOD selection for the current
// viewer position. Runs on height-field delivery, on every recompute
// tick while resident, and as the mesh-ready callback.
func (c *Chunk) evaluate(viewerX, viewerZ float64) {
	c.lastViewerX, c.lastViewerZ = viewerX, viewerZ
	if c.heightField == nil {
		return
	}

	dst := math.Sqrt(c.bounds.SqrDistance(viewerX, viewerZ))
	visible := dst <= c.cfg.MaxViewDistance()

	if visible {
		lodIndex := len(c.cfg.LODLevels) - 1
		for i, lvl := range c.cfg.LODLevels {
			if lvl.VisibleDistance >= dst {
				lodIndex = i
				break
			}
		}

		if lodIndex != c.previousLODIndex {
			lm := c.lodMeshes[lodIndex]
			if lm.ready() {
				c.previousLODIndex = lodIndex
				c.deps.presenter.SetMesh(c.ID, lm.mesh)
			} else {
				lm.request(c.deps.dispatcher, c.heightField, c.cfg.Mesh)
			}
		}
		c.refreshSpawnActivation()
	}

	c.setVisible(visible)
}

// evaluateCollision drives the collider latch. Once the collider is
// installed it stays for the chunk's lifetime, so this becomes a no-op.
func (c *Chunk) evaluateCollision(viewerX, viewerZ float64) {
	if c.colliderSet || c.heightField == nil {
		return
	}
	if len(c.cfg.LODLevels) == 0 {
		return
	}

	sqrDst := c.bounds.SqrDistance(viewerX, viewerZ)
	idx := c.cfg.Collider.LODIndex
	thresh := c.cfg.LODLevels[idx].VisibleDistance

	if sqrDst < thresh*thresh {
		c.lodMeshes[idx].request(c.deps.dispatcher, c.heightField, c.cfg.Mesh)
	}

	gen := c.cfg.Collider.GenerationDistance
	if sqrDst < gen*gen {
		lm := c.lodMeshes[idx]
		if lm.ready() {
			c.colliderSet = true
			c.deps.presenter.SetCollider(c.ID, lm.mesh)
			c.deps.log.Debug("collider set", zap.Int64("chunk", c.ID))
			if !c.filled {
				c.populate()
			}
			c.refreshSpawnActivation()
		}
	}
}

func (c *Chunk) setVisible(v bool) {
	if v == c.visible {
		return
	}
	c.visible = v
	c.deps.presenter.SetVisible(c.ID, v)
	if c.deps.observer != nil {
		c.deps.observer.ChunkVisibilityChanged(c.Coord, v)
	}
}

// refreshSpawnActivation keeps decorative objects active only while
// the chunk is filled and presenting full detail. Deactivation never
// destroys the handles.
func (c *Chunk) refreshSpawnActivation() {
	wantActive := c.filled && c.previousLODIndex == 0
	if wantActive == c.spawnedActive {
		return
	}
	c.spawnedActive = wantActive
	for _, h := range c.spawned {
		h.SetActive(wantActive)
	}
}

// Visible reports the chunk's current presentation state.
func (c *Chunk) Visible() bool { return c.visible }

// Material resolves the configured texture bands against this chunk's
// generated height range, for the rendering collaborator. Available
// once the height field arrived.
func (c *Chunk) Material() (terrain.Material, bool) {
	if c.heightField == nil {
		return terrain.Material{}, false
	}
	return terrain.BuildMaterial(c.cfg.Material, c.heightField), true
}

// Bounds returns the chunk's world footprint.
func (c *Chunk) Bounds() Bounds { return c.bounds }
