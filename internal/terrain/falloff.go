package terrain

import "github.com/Faultbox/terrastream/internal/config"

// GenerateFalloffMap produces a size x size multiplier field that
// tapers height toward the square's extremes: 1 inside the start
// radius, 0 beyond the end radius, smooth-stepped in between. Radii
// are measured in the Chebyshev metric on coordinates normalized to
// [-1, 1] from the centre.
func GenerateFalloffMap(size int, cfg config.FalloffConfig) [][]float32 {
	field := make([][]float32, size)
	for x := range field {
		field[x] = make([]float32, size)
	}

	for x := 0; x < size; x++ {
		nx := float64(x)/float64(size-1)*2 - 1
		for y := 0; y < size; y++ {
			ny := float64(y)/float64(size-1)*2 - 1

			d := nx
			if d < 0 {
				d = -d
			}
			if ay := abs64(ny); ay > d {
				d = ay
			}
			field[x][y] = float32(falloffValue(d, cfg.Start, cfg.End))
		}
	}
	return field
}

func falloffValue(d, start, end float64) float64 {
	if d <= start {
		return 1
	}
	if d >= end {
		return 0
	}
	t := (d - start) / (end - start)
	return 1 - t*t*(3-2*t)
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
