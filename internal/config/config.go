// Package config handles engine configuration loading and management.
package config

// Supported mesh dimensions. A chunk mesh always uses one of these
// base sizes so every LOD stride divides the interior grid evenly.
var SupportedChunkSizes = []int{48, 72, 96, 120, 144, 168, 192, 216, 240}

const (
	// NumSupportedLODs bounds the LOD table length.
	NumSupportedLODs = 5
	// NumSupportedFlatShadedSizes restricts flat-shaded chunks to the
	// smallest sizes (exploded vertex buffers grow 3x).
	NumSupportedFlatShadedSizes = 3
	// MaxTextureLayers bounds the height-banded material layers.
	MaxTextureLayers = 8
)

// Config holds all engine settings.
type Config struct {
	Noise      NoiseConfig       `yaml:"noise"`
	Height     HeightConfig      `yaml:"height"`
	Mesh       MeshConfig        `yaml:"mesh"`
	LODLevels  []LODLevel        `yaml:"lod_levels"`
	Collider   ColliderConfig    `yaml:"collider"`
	Spawnables []SpawnableConfig `yaml:"spawnables"`
	Material   MaterialConfig    `yaml:"material"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// NormalizeMode selects how accumulated octave noise is rescaled.
type NormalizeMode string

const (
	// NormalizeGlobal divides by an estimate of the maximum possible
	// height so independently generated chunks share one scale.
	NormalizeGlobal NormalizeMode = "global"
	// NormalizeLocal min-max rescales within a single field. Only
	// valid for isolated previews; per-chunk use breaks seams.
	NormalizeLocal NormalizeMode = "local"
)

// NoiseConfig holds layered noise synthesis settings.
type NoiseConfig struct {
	Type        string        `yaml:"type"` // perlin or simplex
	Scale       float64       `yaml:"scale"`
	Octaves     int           `yaml:"octaves"`
	Persistence float64       `yaml:"persistence"`
	Lacunarity  float64       `yaml:"lacunarity"`
	Seed        int64         `yaml:"seed"`
	OffsetX     float64       `yaml:"offset_x"`
	OffsetY     float64       `yaml:"offset_y"`
	Normalize   NormalizeMode `yaml:"normalize"`
}

// CurvePoint is one keyframe of the height response curve.
type CurvePoint struct {
	T float64 `yaml:"t"`
	V float64 `yaml:"v"`
}

// FalloffConfig tapers height toward chunk extremes (island worlds).
type FalloffConfig struct {
	Enabled bool    `yaml:"enabled"`
	Start   float64 `yaml:"start"` // full height inside this radius
	End     float64 `yaml:"end"`   // zero height beyond this radius
}

// HeightConfig maps normalized noise to world height.
type HeightConfig struct {
	Multiplier float64       `yaml:"multiplier"`
	Curve      []CurvePoint  `yaml:"curve"`
	Falloff    FalloffConfig `yaml:"falloff"`
}

// MeshConfig holds mesh resolution and scale settings.
type MeshConfig struct {
	Scale              float64 `yaml:"scale"`
	ChunkSizeIndex     int     `yaml:"chunk_size_index"`
	FlatShaded         bool    `yaml:"flat_shaded"`
	FlatShadedSizeIndex int    `yaml:"flat_shaded_size_index"`
}

// NumVertsPerLine returns the sample-grid side length at LOD 0,
// including the two skirt vertices per side that are excluded from
// the final mesh but needed for boundary normals.
func (m MeshConfig) NumVertsPerLine() int {
	if m.FlatShaded {
		return SupportedChunkSizes[m.FlatShadedSizeIndex] + 5
	}
	return SupportedChunkSizes[m.ChunkSizeIndex] + 5
}

// WorldSize returns the chunk side length in world units.
func (m MeshConfig) WorldSize() float64 {
	return float64(m.NumVertsPerLine()-3) * m.Scale
}

// LODLevel pairs a detail index (0 = highest) with the viewer
// distance out to which it stays selected.
type LODLevel struct {
	LOD             int     `yaml:"lod"`
	VisibleDistance float64 `yaml:"visible_distance"`
}

// SkipIncrement returns the sample stride for this detail index.
func (l LODLevel) SkipIncrement() int {
	if l.LOD == 0 {
		return 1
	}
	return l.LOD * 2
}

// ColliderConfig controls collision mesh generation.
type ColliderConfig struct {
	LODIndex           int     `yaml:"lod_index"`
	GenerationDistance float64 `yaml:"generation_distance"`
}

// SpawnableConfig describes one decorative object population pass.
type SpawnableConfig struct {
	Name            string     `yaml:"name"`
	Density         int        `yaml:"density"` // placement attempts per chunk
	RotationRange   [2]float64 `yaml:"rotation_range"`
	ScaleMin        [3]float64 `yaml:"scale_min"`
	ScaleMax        [3]float64 `yaml:"scale_max"`
	NormalAlignment float64    `yaml:"normal_alignment"` // 0 = world up, 1 = surface normal
	OnWater         bool       `yaml:"on_water"`
	WaterHeight     float64    `yaml:"water_height"`
}

// TextureLayer describes one height band of the terrain material.
type TextureLayer struct {
	Name          string     `yaml:"name"`
	Tint          [3]float64 `yaml:"tint"`
	TintStrength  float64    `yaml:"tint_strength"`
	StartHeight   float64    `yaml:"start_height"`
	BlendStrength float64    `yaml:"blend_strength"`
	TextureScale  float64    `yaml:"texture_scale"`
}

// MaterialConfig holds the ordered height-banded layers.
type MaterialConfig struct {
	Layers []TextureLayer `yaml:"layers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MaxViewDistance returns the farthest LOD threshold, i.e. the
// distance beyond which a chunk is not visible at all.
func (c *Config) MaxViewDistance() float64 {
	if len(c.LODLevels) == 0 {
		return 0
	}
	return c.LODLevels[len(c.LODLevels)-1].VisibleDistance
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Noise: NoiseConfig{
			Type:        "perlin",
			Scale:       35,
			Octaves:     6,
			Persistence: 0.6,
			Lacunarity:  2,
			Seed:        1,
			Normalize:   NormalizeGlobal,
		},
		Height: HeightConfig{
			Multiplier: 40,
			Curve: []CurvePoint{
				{T: 0, V: 0},
				{T: 0.4, V: 0.05},
				{T: 1, V: 1},
			},
			Falloff: FalloffConfig{
				Enabled: false,
				Start:   0.6,
				End:     1,
			},
		},
		Mesh: MeshConfig{
			Scale:          2.5,
			ChunkSizeIndex: 0,
		},
		LODLevels: []LODLevel{
			{LOD: 0, VisibleDistance: 200},
			{LOD: 1, VisibleDistance: 400},
			{LOD: 4, VisibleDistance: 600},
		},
		Collider: ColliderConfig{
			LODIndex:           0,
			GenerationDistance: 5,
		},
		Material: MaterialConfig{
			Layers: []TextureLayer{
				{Name: "sand", Tint: [3]float64{0.76, 0.7, 0.5}, TintStrength: 1, StartHeight: 0, BlendStrength: 0.05, TextureScale: 10},
				{Name: "grass", Tint: [3]float64{0.25, 0.45, 0.16}, TintStrength: 0.8, StartHeight: 0.1, BlendStrength: 0.1, TextureScale: 12},
				{Name: "rock", Tint: [3]float64{0.35, 0.3, 0.28}, TintStrength: 0.6, StartHeight: 0.5, BlendStrength: 0.15, TextureScale: 8},
				{Name: "snow", Tint: [3]float64{0.95, 0.95, 0.97}, TintStrength: 0.9, StartHeight: 0.8, BlendStrength: 0.2, TextureScale: 6},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
