package streaming

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
)

// populate places decorative objects, once per chunk lifetime. Runs
// strictly on the controlling goroutine after the collider installed,
// because placement probes the shared physical surface. Misses and
// hits on neighbouring geometry skip that attempt silently.
func (c *Chunk) populate() {
	c.filled = true
	if c.deps.spawner == nil || c.deps.surface == nil {
		return
	}

	rnd := rand.New(rand.NewSource(c.placementSeed()))
	half := c.bounds.Size / 2
	placed := 0

	for _, spec := range c.cfg.Spawnables {
		for i := 0; i < spec.Density; i++ {
			x := c.bounds.CenterX + (rnd.Float64()*2-1)*half
			z := c.bounds.CenterZ + (rnd.Float64()*2-1)*half

			hit, ok := c.deps.surface.SurfaceAt(x, z)
			if !ok || hit.ChunkID != c.ID {
				continue
			}

			if h, ok := c.deps.spawner.Spawn(c.ID, buildPlacement(spec, hit, rnd)); ok {
				c.spawned = append(c.spawned, h)
				placed++
			}
		}
	}

	c.deps.log.Debug("chunk populated",
		zap.Int64("chunk", c.ID),
		zap.Int("placed", placed))
}

// placementSeed derives a per-chunk seed from the world seed so the
// same coordinate always receives the same population.
func (c *Chunk) placementSeed() int64 {
	return c.cfg.Noise.Seed ^ int64(c.Coord.X)*73856093 ^ int64(c.Coord.Z)*19349663
}

func buildPlacement(spec config.SpawnableConfig, hit SurfaceHit, rnd *rand.Rand) Placement {
	yaw := spec.RotationRange[0] + rnd.Float64()*(spec.RotationRange[1]-spec.RotationRange[0])

	var scale mgl32.Vec3
	for a := 0; a < 3; a++ {
		scale[a] = float32(spec.ScaleMin[a] + rnd.Float64()*(spec.ScaleMax[a]-spec.ScaleMin[a]))
	}

	up := mgl32.Vec3{0, 1, 0}
	normal := up
	if spec.NormalAlignment > 0 {
		blend := float32(spec.NormalAlignment)
		normal = up.Mul(1 - blend).Add(hit.Normal.Mul(blend))
		if normal.Len() < 1e-6 {
			normal = up
		} else {
			normal = normal.Normalize()
		}
	}

	pos := hit.Point
	if spec.OnWater {
		pos[1] = float32(spec.WaterHeight)
		normal = up
	}

	return Placement{
		Name:     spec.Name,
		Position: pos,
		Normal:   normal,
		YawDeg:   yaw,
		Scale:    scale,
		OnWater:  spec.OnWater,
	}
}
