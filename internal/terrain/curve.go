package terrain

import (
	"sort"

	"github.com/Faultbox/terrastream/internal/config"
)

// Curve is a piecewise-linear response curve mapping normalized noise
// values to height multipliers. NewCurve copies its input, so a Curve
// built inside a worker invocation shares nothing with other workers.
type Curve struct {
	points []config.CurvePoint
}

// NewCurve builds a curve from keyframes, sorted by T.
func NewCurve(points []config.CurvePoint) Curve {
	cp := make([]config.CurvePoint, len(points))
	copy(cp, points)
	sort.Slice(cp, func(i, j int) bool { return cp[i].T < cp[j].T })
	return Curve{points: cp}
}

// Evaluate returns the curve value at t. Inputs outside the keyframe
// range clamp to the first/last value; an empty curve is identity.
func (c Curve) Evaluate(t float64) float64 {
	if len(c.points) == 0 {
		return t
	}
	if t <= c.points[0].T {
		return c.points[0].V
	}
	last := c.points[len(c.points)-1]
	if t >= last.T {
		return last.V
	}
	for i := 1; i < len(c.points); i++ {
		if t <= c.points[i].T {
			a, b := c.points[i-1], c.points[i]
			span := b.T - a.T
			if span <= 0 {
				return b.V
			}
			frac := (t - a.T) / span
			return a.V + (b.V-a.V)*frac
		}
	}
	return last.V
}
