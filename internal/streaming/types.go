// Package streaming owns the chunk lifecycle: which grid cells are
// resident around the viewer, what LOD each one presents, when its
// collision surface installs, and when its decorative objects are
// placed. All state in this package is mutated only on the controlling
// goroutine; background workers hand results back through the
// dispatcher's Drain.
package streaming

// GridCoord identifies a chunk cell in chunk units. Value equality;
// used directly as the resident-map key.
type GridCoord struct {
	X int
	Z int
}

// Bounds is an axis-aligned square footprint on the XZ plane, centered
// at a world position with side length equal to the chunk world size.
type Bounds struct {
	CenterX float64
	CenterZ float64
	Size    float64
}

// SqrDistance returns the squared distance from the point to the
// nearest edge of the square, or 0 when the point lies inside it.
func (b Bounds) SqrDistance(x, z float64) float64 {
	half := b.Size / 2
	dx := abs(x-b.CenterX) - half
	if dx < 0 {
		dx = 0
	}
	dz := abs(z-b.CenterZ) - half
	if dz < 0 {
		dz = 0
	}
	return dx*dx + dz*dz
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
