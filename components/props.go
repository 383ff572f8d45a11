package components

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpawnProps describes a particle at birth. Lifetime, velocity and birth mass
// are perturbed by Variance (in [0, 1]) times a signed uniform random value.
type SpawnProps struct {
	Variance   float64    `yaml:"variance"`
	Lifetime   float64    `yaml:"lifetime"` // seconds
	Velocity   r2.Vec     `yaml:"velocity"`
	BirthMass  float64    `yaml:"birth_mass"`
	DeathMass  float64    `yaml:"death_mass"`
	BirthColor color.RGBA `yaml:"birth_color"`
	DeathColor color.RGBA `yaml:"death_color"`
}

// DefaultSpawnProps returns the stock particle: a ten second ember that
// fades from red to transparent orange while losing most of its mass.
func DefaultSpawnProps() SpawnProps {
	return SpawnProps{
		Variance:   0.5,
		Lifetime:   10,
		Velocity:   r2.Vec{X: 10, Y: 0},
		BirthMass:  10,
		DeathMass:  0.1,
		BirthColor: color.RGBA{R: 230, G: 41, B: 55, A: 255},
		DeathColor: color.RGBA{R: 255, G: 161, B: 0, A: 0},
	}
}
