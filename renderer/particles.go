// Package renderer draws the particle system through the camera.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/camera"
	"github.com/zackthomas1/particle-game/systems"
)

// spriteSize is the edge length of the baked circle texture in pixels.
const spriteSize = 64

// ParticleRenderer draws particles as tinted copies of one baked circle
// sprite, which raylib batches into few draw calls.
type ParticleRenderer struct {
	sprite      rl.RenderTexture2D
	initialized bool
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// Init bakes the sprite (must be called after raylib window is created).
func (r *ParticleRenderer) Init() {
	if r.initialized {
		return
	}
	r.sprite = rl.LoadRenderTexture(spriteSize, spriteSize)
	rl.SetTextureFilter(r.sprite.Texture, rl.FilterBilinear)

	rl.BeginTextureMode(r.sprite)
	rl.ClearBackground(rl.Blank)
	rl.DrawCircle(spriteSize/2, spriteSize/2, spriteSize/2-1, rl.White)
	rl.EndTextureMode()

	r.initialized = true
}

// Draw renders every live particle visible through cam.
func (r *ParticleRenderer) Draw(ps *systems.ParticleSystem, cam *camera.Camera) {
	if !r.initialized {
		r.Init()
	}

	radius := float32(ps.Radius())
	size := 2 * radius * cam.Zoom
	// Render textures are stored upside down.
	src := rl.Rectangle{X: 0, Y: 0, Width: spriteSize, Height: -spriteSize}

	ps.Each(func(pos r2.Vec, c color.RGBA) {
		wx, wy := float32(pos.X), float32(pos.Y)
		if !cam.IsVisible(wx, wy, radius) {
			return
		}
		sx, sy := cam.WorldToScreen(wx, wy)
		dst := rl.Rectangle{X: sx - size/2, Y: sy - size/2, Width: size, Height: size}
		rl.DrawTexturePro(r.sprite.Texture, src, dst, rl.Vector2{}, 0, rl.Color{R: c.R, G: c.G, B: c.B, A: c.A})
	})
}

// Unload frees resources.
func (r *ParticleRenderer) Unload() {
	if r.initialized {
		rl.UnloadRenderTexture(r.sprite)
		r.initialized = false
	}
}
