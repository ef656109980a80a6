// Package demo drives the streaming engine headlessly: a scripted
// viewer walks the world while logging collaborators stand in for the
// renderer and the object system.
package demo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/dispatch"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/streaming"
)

const (
	tickInterval = 50 * time.Millisecond
	// World units per tick along the walk path.
	walkSpeed = 6.0
	numTicks  = 600
)

// Demo owns one streaming manager and the scripted viewer.
type Demo struct {
	cfg     *config.Config
	log     *zap.Logger
	manager *streaming.Manager
	queue   *dispatch.Queue
}

// New wires the engine together from a validated configuration.
func New(cfg *config.Config) (*Demo, error) {
	if len(cfg.LODLevels) == 0 {
		return nil, errors.New("configuration has no LOD levels")
	}

	d := &Demo{
		cfg:   cfg,
		log:   logger.Named("demo"),
		queue: dispatch.NewQueue(),
	}
	d.manager = streaming.NewManager(cfg, streaming.ManagerOptions{
		Dispatcher: d.queue,
		Presenter:  &loggingPresenter{log: logger.Named("present")},
		Spawner:    &loggingSpawner{log: logger.Named("spawn")},
	})
	return d, nil
}

// Run walks the viewer along +X at a fixed tick rate until the script
// finishes or the context is cancelled.
func (d *Demo) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	x, z := 0.0, 0.0
	for tick := 0; tick < numTicks; tick++ {
		select {
		case <-ctx.Done():
			d.log.Info("interrupted", zap.Int("tick", tick))
			return nil
		case <-ticker.C:
		}

		d.manager.Update(x, z)

		if tick%40 == 0 {
			resident, visible := d.manager.Stats()
			fields := []zap.Field{
				zap.Int("tick", tick),
				zap.Float64("x", x),
				zap.Int("resident", resident),
				zap.Int("visible", visible),
			}
			if hit, ok := d.manager.SurfaceAt(x, z); ok {
				fields = append(fields, zap.Float32("ground", hit.Point.Y()))
			}
			d.log.Info("streaming", fields...)
		}

		x += walkSpeed
	}

	resident, visible := d.manager.Stats()
	d.log.Info("walk finished",
		zap.Float64("distance", float64(numTicks)*walkSpeed),
		zap.Int("resident", resident),
		zap.Int("visible", visible))

	if c, ok := d.manager.ChunkAt(streaming.GridCoord{}); ok {
		if mat, ok := c.Material(); ok {
			d.log.Info("origin material",
				zap.Int("layers", len(mat.Layers)),
				zap.Float32("min_height", mat.MinHeight),
				zap.Float32("max_height", mat.MaxHeight))
		}
	}
	return nil
}

// Close flushes whatever work is still in flight so nothing logs after
// teardown.
func (d *Demo) Close() {
	d.queue.Drain()
}
