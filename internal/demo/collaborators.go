package demo

import (
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/streaming"
	"github.com/Faultbox/terrastream/internal/terrain"
)

// loggingPresenter stands in for the renderer: it records what a real
// one would upload.
type loggingPresenter struct {
	log *zap.Logger
}

func (p *loggingPresenter) SetMesh(chunkID int64, mesh *terrain.MeshData) {
	p.log.Info("mesh installed",
		zap.Int64("chunk", chunkID),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", len(mesh.Triangles)/3),
		zap.Bool("flat", mesh.FlatShaded))
}

func (p *loggingPresenter) SetCollider(chunkID int64, mesh *terrain.MeshData) {
	p.log.Info("collider installed",
		zap.Int64("chunk", chunkID),
		zap.Int("vertices", len(mesh.Vertices)))
}

func (p *loggingPresenter) SetVisible(chunkID int64, visible bool) {
	p.log.Info("visibility", zap.Int64("chunk", chunkID), zap.Bool("visible", visible))
}

// loggingSpawner stands in for the object system.
type loggingSpawner struct {
	log *zap.Logger
}

type loggingHandle struct {
	log  *zap.Logger
	name string
}

func (h *loggingHandle) SetActive(active bool) {
	h.log.Debug("spawn active", zap.String("name", h.name), zap.Bool("active", active))
}

func (s *loggingSpawner) Spawn(chunkID int64, p streaming.Placement) (streaming.SpawnHandle, bool) {
	s.log.Debug("spawned",
		zap.Int64("chunk", chunkID),
		zap.String("name", p.Name),
		zap.Float32("x", p.Position.X()),
		zap.Float32("y", p.Position.Y()),
		zap.Float32("z", p.Position.Z()))
	return &loggingHandle{log: s.log, name: p.Name}, true
}
