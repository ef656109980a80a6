// Package terrain provides deterministic height-field synthesis and
// LOD mesh construction for streamed terrain chunks.
package terrain

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/terrastream/internal/config"
)

// noiseSource is a seeded coherent 2D noise primitive, nominally [-1, 1].
type noiseSource interface {
	at(x, y float64) float64
}

type perlinSource struct{ p *perlin.Perlin }

func (s perlinSource) at(x, y float64) float64 { return s.p.Noise2D(x, y) }

type simplexSource struct{ n opensimplex.Noise }

func (s simplexSource) at(x, y float64) float64 { return s.n.Eval2(x, y) }

func newNoiseSource(cfg config.NoiseConfig) noiseSource {
	if cfg.Type == "simplex" {
		return simplexSource{opensimplex.New(cfg.Seed)}
	}
	// Single octave: the octave loop below owns amplitude/frequency.
	return perlinSource{perlin.NewPerlin(2, 2, 1, cfg.Seed)}
}

// GenerateNoiseMap produces a width x height scalar field of layered
// noise. Identical (seed, offset, sample centre) inputs yield
// bit-identical fields, and the per-octave offsets fold the sample
// centre in so the same world coordinate yields the same raw value no
// matter which chunk's window it falls in.
//
// The function holds no shared state and is safe to call concurrently.
func GenerateNoiseMap(width, height int, cfg config.NoiseConfig, centreX, centreY float64) [][]float32 {
	src := newNoiseSource(cfg)
	prng := rand.New(rand.NewSource(cfg.Seed))

	octaveOffsets := make([][2]float64, cfg.Octaves)
	maxPossibleHeight := 0.0
	amplitude := 1.0
	for i := range octaveOffsets {
		offX := float64(prng.Intn(200000)-100000) + cfg.OffsetX + centreX
		offY := float64(prng.Intn(200000)-100000) - cfg.OffsetY - centreY
		octaveOffsets[i] = [2]float64{offX, offY}
		maxPossibleHeight += amplitude
		amplitude *= cfg.Persistence
	}

	values := make([][]float32, width)
	for x := range values {
		values[x] = make([]float32, height)
	}

	halfWidth := float64(width) / 2
	halfHeight := float64(height) / 2

	minLocal := math.Inf(1)
	maxLocal := math.Inf(-1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			amplitude := 1.0
			frequency := 1.0
			noiseHeight := 0.0

			for i := 0; i < cfg.Octaves; i++ {
				sampleX := (float64(x) - halfWidth + octaveOffsets[i][0]) / cfg.Scale * frequency
				sampleY := (float64(y) - halfHeight + octaveOffsets[i][1]) / cfg.Scale * frequency

				noiseHeight += src.at(sampleX, sampleY) * amplitude
				amplitude *= cfg.Persistence
				frequency *= cfg.Lacunarity
			}

			if noiseHeight < minLocal {
				minLocal = noiseHeight
			}
			if noiseHeight > maxLocal {
				maxLocal = noiseHeight
			}
			values[x][y] = float32(noiseHeight)
		}
	}

	switch cfg.Normalize {
	case config.NormalizeLocal:
		// Only valid for isolated previews: min-max rescaling within a
		// single chunk's window breaks continuity at chunk borders.
		span := maxLocal - minLocal
		if span > 0 {
			for x := 0; x < width; x++ {
				for y := 0; y < height; y++ {
					values[x][y] = float32((float64(values[x][y]) - minLocal) / span)
				}
			}
		}
	default:
		// The divisor is an estimate, not a true bound: values can
		// slightly exceed 1 for low octave counts. Downstream height
		// curves are tuned against this exact formula, so it stays.
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				normalized := (float64(values[x][y]) + 1) / (maxPossibleHeight / 0.9)
				if normalized < 0 {
					normalized = 0
				}
				values[x][y] = float32(normalized)
			}
		}
	}

	return values
}
