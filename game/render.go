package game

import (
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/systems"
	"github.com/zackthomas1/particle-game/ui"
)

const controlsLegend = "LMB: emit | RMB: attractor (Shift: repeller) | E: spawner | X: clear spawners | P: pause spawners | G: gravity | C: clear forces | R: clear | Space: pause | O: overlays"

var (
	backgroundColor = rl.Color{R: 18, G: 20, B: 26, A: 255}
	boundaryColor   = rl.Color{R: 90, G: 100, B: 115, A: 255}
	gridColor       = rl.Color{R: 40, G: 46, B: 56, A: 255}
	spawnerColor    = rl.Color{R: 120, G: 220, B: 160, A: 255}
)

// Draw renders the game state.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	if g.overlays.IsEnabled(ui.OverlayHashGrid) {
		g.drawHashGrid()
	}
	g.drawBoundary()
	g.particleRenderer.Draw(g.particles, g.camera)

	if g.overlays.IsEnabled(ui.OverlayEmitter) {
		g.drawEmitter()
	}
	if g.overlays.IsEnabled(ui.OverlayForces) {
		g.drawForces()
	}
	g.drawSpawners()

	g.drawUI()

	rl.EndDrawing()
}

// drawBoundary outlines the world box.
func (g *Game) drawBoundary() {
	b := g.particles.Boundary()
	tl := g.toScreen(r2.Vec{X: b.Left, Y: b.Top})
	br := g.toScreen(r2.Vec{X: b.Right, Y: b.Bottom})
	rl.DrawRectangleLinesEx(rl.Rectangle{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}, 1, boundaryColor)
}

// drawHashGrid draws the spatial hash cell lines over the visible area.
func (g *Game) drawHashGrid() {
	cell := 2 * g.particles.Radius()
	if cell*float64(g.camera.Zoom) < 4 {
		return
	}
	minX, minY, maxX, maxY := g.camera.VisibleWorldBounds()
	x0 := math.Floor(float64(minX)/cell) * cell
	y0 := math.Floor(float64(minY)/cell) * cell

	for x := x0; x <= float64(maxX); x += cell {
		a := g.toScreen(r2.Vec{X: x, Y: float64(minY)})
		b := g.toScreen(r2.Vec{X: x, Y: float64(maxY)})
		rl.DrawLineV(a, b, gridColor)
	}
	for y := y0; y <= float64(maxY); y += cell {
		a := g.toScreen(r2.Vec{X: float64(minX), Y: y})
		b := g.toScreen(r2.Vec{X: float64(maxX), Y: y})
		rl.DrawLineV(a, b, gridColor)
	}
}

// drawEmitter outlines the emission disc.
func (g *Game) drawEmitter() {
	e := g.particles.Emitter()
	c := toRL(g.props.BirthColor)
	c.A = 160
	rl.DrawCircleLinesV(g.toScreen(e.Position), float32(e.Radius)*g.camera.Zoom, c)
}

// drawForces marks each force at its anchor.
func (g *Game) drawForces() {
	for _, f := range g.particles.Forces() {
		p := g.toScreen(f.DrawPosition())
		switch f.Kind {
		case systems.ForcePoint:
			c := rl.SkyBlue
			if f.Strength < 0 {
				c = rl.Orange
			}
			rl.DrawCircleLinesV(p, 8, c)
			rl.DrawCircleV(p, 3, c)
		case systems.ForceGravity:
			rl.DrawLineEx(p, rl.Vector2{X: p.X, Y: p.Y + 24}, 2, rl.Violet)
			rl.DrawText("g", int32(p.X)+4, int32(p.Y), 14, rl.Violet)
		case systems.ForceDirectional:
			end := rl.Vector2{X: p.X + float32(f.Direction.X), Y: p.Y + float32(f.Direction.Y)}
			rl.DrawLineEx(p, end, 2, rl.Lime)
		case systems.ForceDrag:
			rl.DrawText("drag", int32(p.X)+4, int32(p.Y)+14, 12, rl.Gray)
		}
	}
}

// drawSpawners marks each persistent spawner.
func (g *Game) drawSpawners() {
	c := spawnerColor
	if g.spawnersPaused {
		c = rl.Gray
	}
	for _, pos := range g.spawnerPositions() {
		p := g.toScreen(pos)
		rl.DrawRectangleLinesEx(rl.Rectangle{X: p.X - 5, Y: p.Y - 5, Width: 10, Height: 10}, 2, c)
	}
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	last := g.particles.LastStep()
	perf := g.perfCollector.Stats()

	g.hud.Draw(ui.HUDData{
		Title:         "Particle Sandbox",
		Active:        last.Active,
		Capacity:      g.particles.Capacity(),
		Boundary:      last.Boundary,
		SelfCollision: last.SelfCollision,
		Forces:        len(g.particles.Forces()),
		Spawners:      g.spawnerCount(),
		Tick:          g.tick,
		FPS:           rl.GetFPS(),
		FrameTime:     time.Duration(float64(frameTime()) * float64(time.Second)),
		Paused:        g.paused,
		Gravity:       g.gravityOn,
		ScreenWidth:   int32(g.screenWidth),
		ScreenHeight:  int32(g.screenHeight),
	})
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(perf)
	}

	g.overlayPanel.Draw(g.overlays)

	if g.overlays.IsEnabled(ui.OverlayControls) {
		act := g.controlsPanel.Draw(&g.controls, toRL(g.props.BirthColor), toRL(g.props.DeathColor))
		g.applyControls(act)
	}
}
