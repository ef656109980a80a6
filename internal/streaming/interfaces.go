package streaming

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/terrain"
)

// Dispatcher runs producer functions off the controlling goroutine and
// replays their completion callbacks on whatever goroutine calls
// Drain. The manager drains once per Update tick.
type Dispatcher interface {
	Request(produce func() any, callback func(any))
	Drain() int
}

// Presenter is the rendering collaborator. It receives finished
// geometry and visibility toggles per chunk and owns everything that
// happens to them afterwards.
type Presenter interface {
	SetMesh(chunkID int64, mesh *terrain.MeshData)
	SetCollider(chunkID int64, mesh *terrain.MeshData)
	SetVisible(chunkID int64, visible bool)
}

// VisibilityObserver is notified when a chunk's visibility actually
// flips. The manager consumes these itself to maintain its visible
// working set and forwards them to an optional external observer.
type VisibilityObserver interface {
	ChunkVisibilityChanged(coord GridCoord, visible bool)
}

// SurfaceHit is the result of a placement probe: the surface point,
// its normal, and the identity of the chunk that owns the geometry.
// Probes near a chunk border can land on a neighbour, so callers must
// check ChunkID before accepting a hit.
type SurfaceHit struct {
	Point   mgl32.Vec3
	Normal  mgl32.Vec3
	ChunkID int64
}

// SurfaceQuerier answers placement probes against the physical world.
// The manager's own height-field sampling is the default
// implementation; a physics engine can be substituted.
type SurfaceQuerier interface {
	SurfaceAt(x, z float64) (SurfaceHit, bool)
}

// Placement describes one decorative object instance to create.
type Placement struct {
	Name     string
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	YawDeg   float64
	Scale    mgl32.Vec3
	OnWater  bool
}

// SpawnHandle controls one placed decorative object. Handles start
// inactive; the owning chunk activates them only while it presents
// LOD 0.
type SpawnHandle interface {
	SetActive(active bool)
}

// Spawner instantiates decorative objects. Returning ok=false rejects
// the placement; the chunk skips that attempt silently.
type Spawner interface {
	Spawn(chunkID int64, p Placement) (SpawnHandle, bool)
}
