package streaming

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceAt samples the terrain surface at a world position by
// bilinear interpolation of the owning chunk's height field, with a
// finite-difference normal. It is the default SurfaceQuerier used for
// decorative placement when no physics engine is wired in.
func (m *Manager) SurfaceAt(x, z float64) (SurfaceHit, bool) {
	worldSize := m.cfg.Mesh.WorldSize()
	if worldSize <= 0 {
		return SurfaceHit{}, false
	}
	coord := GridCoord{
		X: int(math.Round(x / worldSize)),
		Z: int(math.Round(z / worldSize)),
	}
	c, ok := m.chunks[coord]
	if !ok || c.heightField == nil {
		return SurfaceHit{}, false
	}
	return c.surfaceAt(x, z)
}

// surfaceAt maps the world position into the chunk's sample grid and
// interpolates height and normal. The grid's y axis runs opposite to
// world Z.
func (c *Chunk) surfaceAt(x, z float64) (SurfaceHit, bool) {
	n := c.cfg.Mesh.NumVertsPerLine()
	worldSize := c.bounds.Size
	half := worldSize / 2

	// Renderable vertices span grid [1, n-2] across the chunk extent.
	fx := (x-c.bounds.CenterX+half)/worldSize*float64(n-3) + 1
	fy := (c.bounds.CenterZ+half-z)/worldSize*float64(n-3) + 1
	if fx < 1 || fx > float64(n-2) || fy < 1 || fy > float64(n-2) {
		return SurfaceHit{}, false
	}

	x0 := clampIndex(int(math.Floor(fx)), 1, n-3)
	y0 := clampIndex(int(math.Floor(fy)), 1, n-3)
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	v := c.heightField.Values
	h0 := v[x0][y0]*(1-tx) + v[x0+1][y0]*tx
	h1 := v[x0][y0+1]*(1-tx) + v[x0+1][y0+1]*tx
	height := h0*(1-ty) + h1*ty

	// Central differences over one cell each side; cell spacing in
	// world units is the mesh scale. Grid y grows toward negative Z.
	spacing := float32(c.cfg.Mesh.Scale)
	xl := clampIndex(x0-1, 1, n-2)
	xr := clampIndex(x0+1, 1, n-2)
	yl := clampIndex(y0-1, 1, n-2)
	yr := clampIndex(y0+1, 1, n-2)
	dhdx := (v[xr][y0] - v[xl][y0]) / (float32(xr-xl) * spacing)
	dhdgy := (v[x0][yr] - v[x0][yl]) / (float32(yr-yl) * spacing)
	dhdz := -dhdgy

	normal := mgl32.Vec3{-dhdx, 1, -dhdz}
	normal = normal.Normalize()

	return SurfaceHit{
		Point:   mgl32.Vec3{float32(x), height, float32(z)},
		Normal:  normal,
		ChunkID: c.ID,
	}, true
}

func clampIndex(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
