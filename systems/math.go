package systems

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Clamp functions for common value ranges

// clampFloat clamps a value between min and max. NaN maps to min.
func clampFloat(v, minVal, maxVal float64) float64 {
	if !(v >= minVal) {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// atLeast returns v, or floor when v is below it or NaN.
func atLeast(v, floor float64) float64 {
	if !(v >= floor) {
		return floor
	}
	return v
}

// Interpolation

// lerp linearly interpolates between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerpColor interpolates RGB through colorful's linear blend and alpha
// separately, since colorful has no alpha channel.
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: uint8(math.Round(lerp(float64(a.A), float64(b.A), t)))}
}

// opaque drops alpha so MakeColor does not un-premultiply the channels.
func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}

// Vector helpers

// normalize returns the unit vector of v, or the zero vector when v has no
// length. r2.Unit yields NaN for a zero vector.
func normalize(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// finite reports whether both components are finite numbers.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
