package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/zackthomas1/particle-game/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Active        int
	Capacity      int
	Boundary      int // boundary constraints generated last frame
	SelfCollision int // self-collision constraints generated last frame
	Forces        int
	Spawners      int
	Tick          int32
	FPS           int32
	FrameTime     time.Duration
	Paused        bool
	Gravity       bool
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	h.renderer.DrawFillBar(10, 35, "Particles", data.Active, data.Capacity, 260)

	rl.DrawText(
		fmt.Sprintf("Constraints: %d wall | %d pair", data.Boundary, data.SelfCollision),
		10, 55, 16, rl.LightGray,
	)

	gravity := "off"
	if data.Gravity {
		gravity = "on"
	}
	rl.DrawText(
		fmt.Sprintf("Forces: %d | Gravity: %s | Spawners: %d", data.Forces, gravity, data.Spawners),
		10, 75, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Frame: %s", data.Tick, data.FPS, data.FrameTime.Round(10*time.Microsecond)),
		10, 95, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 115, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, phases in pipeline order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y
	width := int32(260)
	height := int32(len(telemetry.Phases))*14 + 68

	p.renderer.DrawPanel(x-6, y-6, width, height)

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	rl.DrawText(fmt.Sprintf("Substep: %s x%.0f | %.0f ns/particle", stats.AvgSubstepDuration.Round(time.Microsecond), stats.Substeps, stats.NanosPerParticle), x, y, 12, rl.LightGray)
	y += 16

	for _, name := range telemetry.Phases {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
