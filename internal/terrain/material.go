package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/config"
)

// Layer is one height band of the terrain material, resolved to the
// float widths the rendering collaborator consumes.
type Layer struct {
	Name          string
	Tint          mgl32.Vec3
	TintStrength  float32
	StartHeight   float32
	BlendStrength float32
	TextureScale  float32
}

// Material carries the height-banded layer table plus the height
// range used to map world height into the [0, 1] band space.
type Material struct {
	Layers    []Layer
	MinHeight float32
	MaxHeight float32
}

// BuildMaterial resolves the configured layers against a height
// field's observed range. Layers beyond the supported maximum are
// dropped.
func BuildMaterial(cfg config.MaterialConfig, hf *HeightField) Material {
	layers := cfg.Layers
	if len(layers) > config.MaxTextureLayers {
		layers = layers[:config.MaxTextureLayers]
	}

	resolved := make([]Layer, len(layers))
	for i, l := range layers {
		resolved[i] = Layer{
			Name:          l.Name,
			Tint:          mgl32.Vec3{float32(l.Tint[0]), float32(l.Tint[1]), float32(l.Tint[2])},
			TintStrength:  float32(l.TintStrength),
			StartHeight:   float32(l.StartHeight),
			BlendStrength: float32(l.BlendStrength),
			TextureScale:  float32(l.TextureScale),
		}
	}

	return Material{
		Layers:    resolved,
		MinHeight: hf.Min,
		MaxHeight: hf.Max,
	}
}

// HeightFraction maps a world height into [0, 1] band space.
func (m Material) HeightFraction(h float32) float32 {
	span := m.MaxHeight - m.MinHeight
	if span <= 0 {
		return 0
	}
	f := (h - m.MinHeight) / span
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
