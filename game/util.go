package game

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// frameTime returns the last frame's duration in seconds.
func frameTime() float32 {
	return rl.GetFrameTime()
}

// toRL converts a simulation color to a raylib color.
func toRL(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// toScreen projects a world position through the camera.
func (g *Game) toScreen(p r2.Vec) rl.Vector2 {
	sx, sy := g.camera.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: sx, Y: sy}
}
