package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/config"
	"github.com/zackthomas1/particle-game/systems"
	"github.com/zackthomas1/particle-game/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	if rl.IsKeyPressed(rl.KeyO) {
		g.overlayPanel.Toggle()
	}

	// Overlay toggles by key
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}

	if rl.IsKeyPressed(rl.KeyG) {
		g.setGravity(!g.gravityOn)
		g.controls.GravityEnabled = g.gravityOn
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.clearForces()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.particles.Clear()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		w := g.mouseWorld()
		g.placeSpawner(w.X, w.Y, config.Cfg().Headless.SpawnerRate)
	}
	if rl.IsKeyPressed(rl.KeyX) {
		g.clearSpawners()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.spawnersPaused = !g.spawnersPaused
		g.setSpawnersPaused(g.spawnersPaused)
	}

	g.handleMouseInput()

	// Camera controls
	g.handleCameraInput()
}

// mouseWorld returns the mouse position in world coordinates.
func (g *Game) mouseWorld() r2.Vec {
	m := rl.GetMousePosition()
	wx, wy := g.camera.ScreenToWorld(m.X, m.Y)
	return r2.Vec{X: float64(wx), Y: float64(wy)}
}

// overPanel reports whether the mouse is over the spawn controls.
func (g *Game) overPanel() bool {
	if !g.overlays.IsEnabled(ui.OverlayControls) {
		return false
	}
	m := rl.GetMousePosition()
	return g.controlsPanel.Contains(m.X, m.Y)
}

// handleMouseInput emits while the left button is held and places point
// forces on right click. Shift+right click places a repeller.
func (g *Game) handleMouseInput() {
	if g.overPanel() {
		g.mouse.Accum = 0
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.particles.SetEmitterPosition(g.mouseWorld())
		if !g.paused {
			n := g.mouse.Budget(min(float64(frameTime()), maxFrameDT))
			for range n {
				if g.particles.EmitFromEmitter(g.props) < 0 {
					break
				}
			}
		}
	} else {
		g.mouse.Accum = 0
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		strength := config.Cfg().Forces.PointStrength
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			strength = -strength
		}
		g.particles.AddForce(systems.NewPoint(g.mouseWorld(), strength))
	}
}

// applyControls copies the controls panel state into the spawn properties
// and force field.
func (g *Game) applyControls(act ui.ControlsAction) {
	if act.Changed {
		g.controls.ApplyTo(&g.props)
		g.mouse.Rate = float64(g.controls.EmitRate)
		if float64(g.controls.Gravity) != g.gravity {
			g.gravity = float64(g.controls.Gravity)
			if g.gravityOn {
				g.setGravity(true)
			}
		}
	}
	if act.ToggleGravity {
		g.setGravity(!g.gravityOn)
		g.controls.GravityEnabled = g.gravityOn
	}
	if act.ClearForces {
		g.clearForces()
	}
	if act.ClearParticles {
		g.particles.Clear()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.camera != nil {
		g.camera.Resize(w, h)
	}
	g.layoutPanels()
}

// layoutPanels anchors the right-hand panels to the screen edge.
func (g *Game) layoutPanels() {
	g.controlsPanel.SetPosition(int32(g.screenWidth)-230, 10)
	g.overlayPanel.SetPosition(int32(g.screenWidth)-450, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		g.camera.ZoomBy(1 + wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
