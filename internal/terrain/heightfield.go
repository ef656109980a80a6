package terrain

import (
	"math"

	"github.com/Faultbox/terrastream/internal/config"
)

// HeightField is an immutable 2D grid of terrain heights, indexed
// [x][y], with the min and max value observed during generation.
// Every LOD mesh of a chunk reads the same field concurrently, so it
// must never be mutated after GenerateHeightField returns.
type HeightField struct {
	Values [][]float32
	Min    float32
	Max    float32
}

// GenerateHeightField synthesizes a width x height field around the
// given sample centre: layered noise shaped by the response curve,
// the height multiplier, and the optional falloff taper.
//
// Runs on worker goroutines. All mutable evaluation state (the curve
// in particular) is built locally per call; that copy is required for
// thread safety, not an optimization.
func GenerateHeightField(width, height int, noiseCfg config.NoiseConfig, heightCfg config.HeightConfig, centreX, centreY float64) *HeightField {
	values := GenerateNoiseMap(width, height, noiseCfg, centreX, centreY)
	return shapeHeightField(values, width, height, heightCfg)
}

// shapeHeightField applies the response curve, multiplier and falloff
// to a raw noise field in place and tracks the observed range.
func shapeHeightField(values [][]float32, width, height int, cfg config.HeightConfig) *HeightField {
	curve := NewCurve(cfg.Curve)

	var falloff [][]float32
	if cfg.Falloff.Enabled {
		falloff = GenerateFalloffMap(width, cfg.Falloff)
	}

	minValue := float32(math.Inf(1))
	maxValue := float32(math.Inf(-1))

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			h := curve.Evaluate(float64(values[x][y])) * cfg.Multiplier
			if falloff != nil {
				h *= float64(falloff[x][y])
			}

			v := float32(h)
			values[x][y] = v
			if v < minValue {
				minValue = v
			}
			if v > maxValue {
				maxValue = v
			}
		}
	}

	return &HeightField{
		Values: values,
		Min:    minValue,
		Max:    maxValue,
	}
}
