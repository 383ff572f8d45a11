package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/components"
)

// ControlState is the set of values the spawn controls edit.
type ControlState struct {
	Variance       float32
	Lifetime       float32
	Speed          float32 // magnitude of the spawn velocity
	EmitRate       float32 // particles per second while the mouse is held
	Gravity        float32
	GravityEnabled bool
}

// ControlStateFrom seeds the controls from the current spawn properties.
func ControlStateFrom(props components.SpawnProps, emitRate, gravity float64, gravityOn bool) ControlState {
	return ControlState{
		Variance:       float32(props.Variance),
		Lifetime:       float32(props.Lifetime),
		Speed:          float32(r2.Norm(props.Velocity)),
		EmitRate:       float32(emitRate),
		Gravity:        float32(gravity),
		GravityEnabled: gravityOn,
	}
}

// ApplyTo writes the edited values back into props. The spawn velocity keeps
// its direction; a zero velocity points along +x once given a speed.
func (s ControlState) ApplyTo(props *components.SpawnProps) {
	props.Variance = float64(s.Variance)
	props.Lifetime = float64(s.Lifetime)

	dir := r2.Vec{X: 1}
	if n := r2.Norm(props.Velocity); n > 0 {
		dir = r2.Scale(1/n, props.Velocity)
	}
	props.Velocity = r2.Scale(float64(s.Speed), dir)
}

// ControlsAction reports button presses from the controls panel.
type ControlsAction struct {
	Changed        bool // a slider moved
	ToggleGravity  bool
	ClearForces    bool
	ClearParticles bool
}

// ControlsPanel renders the spawn and force controls with raygui widgets.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Contains reports whether a screen point is over the panel, so clicks on
// it are not treated as world input.
func (c *ControlsPanel) Contains(sx, sy float32) bool {
	return sx >= float32(c.x) && sx <= float32(c.x+c.width) &&
		sy >= float32(c.y) && sy <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return 5*38 + 3*36 + 2*c.renderer.Theme.LineHeight + c.renderer.Theme.Padding*3
}

// Draw renders the panel, updates state from the sliders and returns the
// buttons pressed this frame.
func (c *ControlsPanel) Draw(state *ControlState, birth, death rl.Color) ControlsAction {
	var act ControlsAction
	r := c.renderer
	padding := r.Theme.Padding

	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	sliderW := float32(c.width - padding*2 - 50)

	rl.DrawText("Spawn", int32(x), int32(y), 16, rl.White)
	y += 22

	slider := func(label, format string, value *float32, lo, hi float32) {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16}, "", "", *value, lo, hi)
		rl.DrawText(fmt.Sprintf(format, v), int32(x+sliderW+6), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		if v != *value {
			*value = v
			act.Changed = true
		}
		y += 24
	}

	slider("Variance", "%.2f", &state.Variance, 0, 1)
	slider("Lifetime (s)", "%.1f", &state.Lifetime, 0.5, 30)
	slider("Speed", "%.0f", &state.Speed, 0, 300)
	slider("Emit rate (/s)", "%.0f", &state.EmitRate, 1, 600)
	slider("Gravity", "%.1f", &state.Gravity, 0, 100)

	yi := r.DrawColorSwatch(int32(x), int32(y), "Birth", birth)
	yi = r.DrawColorSwatch(int32(x), yi, "Death", death)
	y = float32(yi) + 6

	gravityLabel := "Gravity: off"
	if state.GravityEnabled {
		gravityLabel = "Gravity: on"
	}
	half := (float32(c.width-padding*2) - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, gravityLabel) {
		act.ToggleGravity = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 28}, "Clear forces") {
		act.ClearForces = true
	}
	y += 36
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, "Clear particles") {
		act.ClearParticles = true
	}
	return act
}
