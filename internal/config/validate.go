package config

// Validate clamps configuration values into their supported ranges.
// Out-of-range values are corrected here, at the boundary, so the
// generation code never has to treat them as runtime failures.
func (c *Config) Validate() {
	n := &c.Noise
	if n.Type != "simplex" {
		n.Type = "perlin"
	}
	if n.Scale < 0.01 {
		n.Scale = 0.01
	}
	n.Octaves = clampInt(n.Octaves, 1, 21)
	n.Persistence = clampFloat(n.Persistence, 0, 1)
	n.Lacunarity = clampFloat(n.Lacunarity, 1, 4)
	if n.Normalize != NormalizeLocal {
		n.Normalize = NormalizeGlobal
	}

	h := &c.Height
	h.Falloff.Start = clampFloat(h.Falloff.Start, 0, 1)
	h.Falloff.End = clampFloat(h.Falloff.End, 0, 1)
	if h.Falloff.End < h.Falloff.Start {
		h.Falloff.End = h.Falloff.Start
	}
	if len(h.Curve) == 0 {
		// Identity response.
		h.Curve = []CurvePoint{{T: 0, V: 0}, {T: 1, V: 1}}
	}

	m := &c.Mesh
	if m.Scale <= 0 {
		m.Scale = 1
	}
	m.ChunkSizeIndex = clampInt(m.ChunkSizeIndex, 0, len(SupportedChunkSizes)-1)
	m.FlatShadedSizeIndex = clampInt(m.FlatShadedSizeIndex, 0, NumSupportedFlatShadedSizes-1)

	if len(c.LODLevels) == 0 {
		c.LODLevels = []LODLevel{{LOD: 0, VisibleDistance: c.Mesh.WorldSize()}}
	}
	if len(c.LODLevels) > NumSupportedLODs {
		c.LODLevels = c.LODLevels[:NumSupportedLODs]
	}
	for i := range c.LODLevels {
		l := &c.LODLevels[i]
		l.LOD = clampInt(l.LOD, 0, NumSupportedLODs-1)
		// Thresholds must be non-decreasing with index.
		if i > 0 && l.VisibleDistance < c.LODLevels[i-1].VisibleDistance {
			l.VisibleDistance = c.LODLevels[i-1].VisibleDistance
		}
	}

	c.Collider.LODIndex = clampInt(c.Collider.LODIndex, 0, len(c.LODLevels)-1)
	if c.Collider.GenerationDistance < 0 {
		c.Collider.GenerationDistance = 0
	}

	if len(c.Material.Layers) > MaxTextureLayers {
		c.Material.Layers = c.Material.Layers[:MaxTextureLayers]
	}

	for i := range c.Spawnables {
		s := &c.Spawnables[i]
		if s.Density < 0 {
			s.Density = 0
		}
		s.NormalAlignment = clampFloat(s.NormalAlignment, 0, 1)
		for a := 0; a < 3; a++ {
			if s.ScaleMax[a] < s.ScaleMin[a] {
				s.ScaleMax[a] = s.ScaleMin[a]
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
