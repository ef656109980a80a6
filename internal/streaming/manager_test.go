package streaming

import (
	"testing"
	"time"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/dispatch"
)

// Viewer at origin, single LOD threshold 100, chunk world size 240:
// round(100/240) = 0, so only the origin coordinate is resident.
func TestManagerSingleChunkAtOrigin(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	p := &fakePresenter{}
	m := NewManager(cfg, ManagerOptions{Dispatcher: d, Presenter: p})

	m.Update(0, 0) // creates the chunk, height field pending
	resident, visible := m.Stats()
	if resident != 1 {
		t.Fatalf("expected 1 resident chunk, got %d", resident)
	}
	if visible != 0 {
		t.Fatalf("chunk visible before its height field arrived: %d", visible)
	}
	if _, ok := m.ChunkAt(GridCoord{X: 0, Z: 0}); !ok {
		t.Fatal("origin chunk not resident")
	}
	if _, ok := m.ChunkAt(GridCoord{X: 1, Z: 0}); ok {
		t.Fatal("unexpected chunk beyond the view distance")
	}

	m.Update(0, 0) // drains the height field, chunk turns visible
	_, visible = m.Stats()
	if visible != 1 {
		t.Fatalf("expected 1 visible chunk, got %d", visible)
	}

	m.Update(0, 0) // drains the mesh, installs mesh and collider
	if len(p.meshes) != 1 {
		t.Fatalf("expected 1 installed mesh, got %d", len(p.meshes))
	}
	if len(p.colliders) != 1 {
		t.Fatalf("expected 1 installed collider, got %d", len(p.colliders))
	}
}

func TestManagerGridExpansion(t *testing.T) {
	cfg := testStreamConfig()
	cfg.LODLevels = []config.LODLevel{
		{LOD: 0, VisibleDistance: 200},
		{LOD: 1, VisibleDistance: 400},
		{LOD: 2, VisibleDistance: 600},
	}
	d := &fakeDispatcher{}
	m := NewManager(cfg, ManagerOptions{Dispatcher: d, Presenter: &fakePresenter{}})

	// round(600/240) = 3: a 7x7 square around the viewer.
	m.Update(0, 0)
	resident, _ := m.Stats()
	if resident != 49 {
		t.Fatalf("expected 49 resident chunks, got %d", resident)
	}

	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			if _, ok := m.ChunkAt(GridCoord{X: x, Z: z}); !ok {
				t.Fatalf("missing chunk (%d,%d)", x, z)
			}
		}
	}
}

func TestManagerChunkIDsMonotonic(t *testing.T) {
	cfg := testStreamConfig()
	cfg.LODLevels = []config.LODLevel{{LOD: 0, VisibleDistance: 600}}
	d := &fakeDispatcher{}
	m := NewManager(cfg, ManagerOptions{Dispatcher: d, Presenter: &fakePresenter{}})
	m.Update(0, 0)

	seen := make(map[int64]bool)
	var max int64 = -1
	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			c, ok := m.ChunkAt(GridCoord{X: x, Z: z})
			if !ok {
				t.Fatalf("missing chunk (%d,%d)", x, z)
			}
			if seen[c.ID] {
				t.Fatalf("duplicate chunk ID %d", c.ID)
			}
			seen[c.ID] = true
			if c.ID > max {
				max = c.ID
			}
		}
	}
	if max != int64(len(seen))-1 {
		t.Errorf("IDs not a contiguous monotone sequence: max %d over %d chunks", max, len(seen))
	}
}

// Small viewer movements below the recompute threshold must not touch
// the resident set; a large move extends it without evicting anything.
func TestManagerMoveThresholdAndNoEviction(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	m := NewManager(cfg, ManagerOptions{Dispatcher: d, Presenter: &fakePresenter{}})

	m.Update(0, 0)
	m.Update(0, 0)
	before, _ := m.Stats()

	m.Update(10, 0) // below the 25-unit threshold
	resident, _ := m.Stats()
	if resident != before {
		t.Fatalf("sub-threshold move changed residency: %d -> %d", before, resident)
	}

	// Ten chunks away: origin is far outside the view distance.
	m.Update(2400, 0)
	m.Update(2400, 0)
	resident, _ = m.Stats()
	if resident != before+1 {
		t.Fatalf("expected %d resident chunks after the move, got %d", before+1, resident)
	}

	origin, ok := m.ChunkAt(GridCoord{X: 0, Z: 0})
	if !ok {
		t.Fatal("origin chunk evicted")
	}
	if origin.Visible() {
		t.Error("origin chunk still visible ten chunks away")
	}
}

type recordingObserver struct {
	events []visibleEvent
	coords []GridCoord
}

func (o *recordingObserver) ChunkVisibilityChanged(coord GridCoord, visible bool) {
	o.coords = append(o.coords, coord)
	o.events = append(o.events, visibleEvent{visible: visible})
}

func TestManagerForwardsVisibilityToObserver(t *testing.T) {
	cfg := testStreamConfig()
	d := &fakeDispatcher{}
	obs := &recordingObserver{}
	m := NewManager(cfg, ManagerOptions{Dispatcher: d, Presenter: &fakePresenter{}, Observer: obs})

	m.Update(0, 0)
	m.Update(0, 0)
	if len(obs.events) != 1 || !obs.events[0].visible {
		t.Fatalf("expected one visible=true notification, got %v", obs.events)
	}
	if obs.coords[0] != (GridCoord{X: 0, Z: 0}) {
		t.Errorf("notification for wrong coordinate: %v", obs.coords[0])
	}

	m.Update(2400, 0)
	m.Update(2400, 0)
	found := false
	for i, c := range obs.coords {
		if c == (GridCoord{X: 0, Z: 0}) && i > 0 {
			if obs.events[i].visible {
				t.Error("origin chunk notified visible instead of hidden")
			}
			found = true
		}
	}
	if !found {
		t.Error("origin chunk never notified hidden")
	}
}

// End to end against the real queue: workers generate off-goroutine,
// Update drains their completions until geometry lands.
func TestManagerWithRealDispatcher(t *testing.T) {
	cfg := testStreamConfig()
	p := &fakePresenter{}
	m := NewManager(cfg, ManagerOptions{Dispatcher: dispatch.NewQueue(), Presenter: p})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m.Update(0, 0)
		if len(p.meshes) > 0 && len(p.colliders) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if len(p.meshes) == 0 {
		t.Fatal("no mesh installed before the deadline")
	}
	if len(p.colliders) == 0 {
		t.Fatal("no collider installed before the deadline")
	}
	if len(p.visible) == 0 || !p.visible[0].visible {
		t.Fatalf("expected the origin chunk to turn visible, got %v", p.visible)
	}
}
