package streaming

import (
	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/terrain"
)

// lodMesh memoizes one chunk's mesh at one detail level. Tri-state:
// not requested, requested but pending, ready. All access happens on
// the controlling goroutine; the dispatcher delivers the worker's
// result there via Drain.
type lodMesh struct {
	lod       int
	requested bool
	mesh      *terrain.MeshData
	onReady   func()
}

func (lm *lodMesh) ready() bool { return lm.mesh != nil }

// request submits mesh generation at most once. Repeat calls while a
// request is pending or after the mesh arrived are no-ops.
func (lm *lodMesh) request(d Dispatcher, hf *terrain.HeightField, meshCfg config.MeshConfig) {
	if lm.requested {
		return
	}
	lm.requested = true
	lod := lm.lod
	d.Request(func() any {
		return terrain.GenerateTerrainMesh(hf, meshCfg, lod)
	}, func(result any) {
		lm.mesh = result.(*terrain.MeshData)
		if lm.onReady != nil {
			lm.onReady()
		}
	})
}
