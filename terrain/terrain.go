// Package terrain provides height fields for the character to walk on.
package terrain

import (
	"github.com/aquilax/go-perlin"
)

// Flat is level ground at a fixed height.
type Flat struct {
	Y float64
}

func (f Flat) Height(x, z float64) float64 {
	return f.Y
}

// Perlin is rolling ground generated from two-dimensional Perlin noise. The
// same seed always generates the same ground.
type Perlin struct {
	noise     *perlin.Perlin
	amplitude float64
	frequency float64
}

// NewPerlin returns ground which varies by up to amplitude either side of
// zero, with features roughly 1/frequency apart.
func NewPerlin(amplitude, frequency float64, seed int64) *Perlin {
	return &Perlin{
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		amplitude: amplitude,
		frequency: frequency,
	}
}

func (p *Perlin) Height(x, z float64) float64 {
	return p.amplitude * p.noise.Noise2D(x*p.frequency, z*p.frequency)
}
