package streaming

import (
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/dispatch"
	"github.com/Faultbox/terrastream/internal/logger"
)

// Coarse viewer displacement, in world units, that triggers a full
// recompute of the resident square. Collision evaluation runs every
// tick regardless.
const viewerMoveThreshold = 25.0

const sqrViewerMoveThreshold = viewerMoveThreshold * viewerMoveThreshold

// ManagerOptions carries the manager's collaborators. Dispatcher
// defaults to an internal queue, Surface to the manager's own
// height-field sampling; Presenter and Spawner come from the embedding
// application, Observer is optional.
type ManagerOptions struct {
	Dispatcher Dispatcher
	Presenter  Presenter
	Spawner    Spawner
	Surface    SurfaceQuerier
	Observer   VisibilityObserver
}

// Manager owns the grid-coordinate to chunk mapping and drives every
// chunk's lifecycle from the viewer position. One instance per world;
// constructed explicitly and passed by reference, never looked up
// through a global. All methods must run on the controlling goroutine.
type Manager struct {
	cfg  *config.Config
	opts ManagerOptions
	log  *zap.Logger

	chunks  map[GridCoord]*Chunk
	visible []*Chunk

	nextChunkID int64

	viewerX, viewerZ             float64
	lastRecomputeX, lastRecomputeZ float64
	started                      bool

	chunksVisibleInViewDistance int
}

// NewManager builds a manager for the given configuration. The
// configuration must already be validated.
func NewManager(cfg *config.Config, opts ManagerOptions) *Manager {
	m := &Manager{
		cfg:    cfg,
		opts:   opts,
		log:    logger.Named("streaming"),
		chunks: make(map[GridCoord]*Chunk),
	}
	if m.opts.Dispatcher == nil {
		m.opts.Dispatcher = dispatch.NewQueue()
	}
	if m.opts.Surface == nil {
		m.opts.Surface = m
	}

	worldSize := cfg.Mesh.WorldSize()
	if worldSize > 0 {
		m.chunksVisibleInViewDistance = int(math.Round(cfg.MaxViewDistance() / worldSize))
	}

	m.log.Info("grid manager ready",
		zap.Float64("chunk_world_size", worldSize),
		zap.Float64("max_view_distance", cfg.MaxViewDistance()),
		zap.Int("chunks_visible", m.chunksVisibleInViewDistance))
	return m
}

// Update advances the streaming state one tick: drains worker
// completions, re-evaluates colliders for the visible set, and, when
// the viewer has moved beyond the coarse threshold, recomputes the
// resident square.
func (m *Manager) Update(viewerX, viewerZ float64) {
	m.viewerX, m.viewerZ = viewerX, viewerZ

	m.opts.Dispatcher.Drain()

	for _, c := range m.visible {
		c.evaluateCollision(viewerX, viewerZ)
	}

	if !m.started {
		m.started = true
		m.lastRecomputeX, m.lastRecomputeZ = viewerX, viewerZ
		m.updateVisibleChunks()
		return
	}

	dx := viewerX - m.lastRecomputeX
	dz := viewerZ - m.lastRecomputeZ
	if dx*dx+dz*dz > sqrViewerMoveThreshold {
		m.lastRecomputeX, m.lastRecomputeZ = viewerX, viewerZ
		m.updateVisibleChunks()
	}
}

func (m *Manager) updateVisibleChunks() {
	alreadyUpdated := make(map[GridCoord]struct{}, len(m.visible))

	// Walk backwards: an evaluation that hides a chunk removes it from
	// the visible slice mid-loop.
	for i := len(m.visible) - 1; i >= 0; i-- {
		c := m.visible[i]
		alreadyUpdated[c.Coord] = struct{}{}
		c.evaluate(m.viewerX, m.viewerZ)
	}

	worldSize := m.cfg.Mesh.WorldSize()
	if worldSize <= 0 {
		return
	}
	currentX := int(math.Round(m.viewerX / worldSize))
	currentZ := int(math.Round(m.viewerZ / worldSize))

	r := m.chunksVisibleInViewDistance
	for zOff := -r; zOff <= r; zOff++ {
		for xOff := -r; xOff <= r; xOff++ {
			coord := GridCoord{X: currentX + xOff, Z: currentZ + zOff}
			if _, done := alreadyUpdated[coord]; done {
				continue
			}
			if c, ok := m.chunks[coord]; ok {
				c.evaluate(m.viewerX, m.viewerZ)
			} else {
				m.createChunk(coord)
			}
		}
	}
}

func (m *Manager) createChunk(coord GridCoord) {
	id := m.nextChunkID
	m.nextChunkID++

	c := newChunk(id, coord, m.cfg, chunkDeps{
		dispatcher: m.opts.Dispatcher,
		presenter:  m.opts.Presenter,
		spawner:    m.opts.Spawner,
		surface:    m.opts.Surface,
		observer:   m,
		log:        m.log,
	})
	m.chunks[coord] = c
	c.lastViewerX, c.lastViewerZ = m.viewerX, m.viewerZ

	m.log.Debug("chunk created",
		zap.Int64("chunk", id),
		zap.Int("x", coord.X), zap.Int("z", coord.Z))
	c.load()
}

// ChunkVisibilityChanged maintains the visible working set and
// forwards the notification to the external observer, if any.
func (m *Manager) ChunkVisibilityChanged(coord GridCoord, visible bool) {
	c, ok := m.chunks[coord]
	if !ok {
		return
	}
	if visible {
		m.visible = append(m.visible, c)
	} else {
		for i, vc := range m.visible {
			if vc == c {
				m.visible = append(m.visible[:i], m.visible[i+1:]...)
				break
			}
		}
	}
	m.log.Debug("chunk visibility changed",
		zap.Int64("chunk", c.ID),
		zap.Bool("visible", visible))
	if m.opts.Observer != nil {
		m.opts.Observer.ChunkVisibilityChanged(coord, visible)
	}
}

// ChunkAt returns the resident chunk at the coordinate, if any.
func (m *Manager) ChunkAt(coord GridCoord) (*Chunk, bool) {
	c, ok := m.chunks[coord]
	return c, ok
}

// Stats reports the resident and currently visible chunk counts.
func (m *Manager) Stats() (resident, visible int) {
	return len(m.chunks), len(m.visible)
}
