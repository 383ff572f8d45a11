// Package game hosts the particle system: it owns the window-facing state,
// turns input into emission and forces, drives the simulation once per frame
// and renders the result.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/zackthomas1/particle-game/camera"
	"github.com/zackthomas1/particle-game/components"
	"github.com/zackthomas1/particle-game/config"
	"github.com/zackthomas1/particle-game/renderer"
	"github.com/zackthomas1/particle-game/systems"
	"github.com/zackthomas1/particle-game/telemetry"
	"github.com/zackthomas1/particle-game/ui"
)

// maxFrameDT caps the frame time handed to the simulation so a stalled
// window (dragging, breakpoints) does not produce one huge step.
const maxFrameDT = 0.1

// Options configures game initialization.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	SnapshotDir    string
	Headless       bool
}

// Game holds the complete sandbox state.
type Game struct {
	rng *rand.Rand
	log *slog.Logger

	particles *systems.ParticleSystem
	props     components.SpawnProps

	// Persistent spawners live in an ECS world.
	world         *ecs.World
	spawnerMap    *ecs.Map2[components.Position, components.Spawner]
	spawnerFilter *ecs.Filter2[components.Position, components.Spawner]

	// mouse paces emission while the left button is held.
	mouse          components.Spawner
	spawnersPaused bool

	// Force state
	gravityOn bool
	gravity   float64

	// Rendering and UI
	camera           *camera.Camera
	particleRenderer *renderer.ParticleRenderer
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	overlays         *ui.OverlayRegistry
	overlayPanel     *ui.OverlayPanel
	controlsPanel    *ui.ControlsPanel
	controls         ui.ControlState

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	seed             int64
	speeds           []float64

	// State
	tick   int32
	paused bool

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a new game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	g := &Game{
		rng:         rand.New(rand.NewSource(opts.Seed)),
		log:         slog.Default(),
		props:       cfg.Spawn,
		gravity:     cfg.Forces.Gravity,
		logStats:    opts.LogStats,
		snapshotDir: opts.SnapshotDir,
		seed:        opts.Seed,
	}

	g.world = ecs.NewWorld()
	g.spawnerMap = ecs.NewMap2[components.Position, components.Spawner](g.world)
	g.spawnerFilter = ecs.NewFilter2[components.Position, components.Spawner](g.world)

	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	settings := systems.Settings{
		MaxParticles:  cfg.Particles.MaxCount,
		Radius:        cfg.Particles.Radius,
		EmitterRadius: cfg.Emitter.Radius,
		Substeps:      cfg.Particles.Substeps,
		Seed:          opts.Seed,
	}
	g.particles = systems.NewParticleSystem(settings, cfg.Derived.Boundary,
		systems.WithLogger(g.log.With("component", "particles")),
		systems.WithRand(g.rng),
		systems.WithPhaseTimer(g.perfCollector),
	)

	if cfg.Forces.GravityEnabled {
		g.setGravity(true)
	}
	if cfg.Forces.Drag > 0 {
		g.particles.AddForce(systems.NewDrag(cfg.Forces.Drag, cfg.Derived.Boundary.Center()))
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	dt := cfg.Headless.DT
	if !opts.Headless && cfg.Screen.TargetFPS > 0 {
		dt = 1 / float64(cfg.Screen.TargetFPS)
	}
	g.collector = telemetry.NewCollector(statsWindow, dt)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
			slog.Info("output directory", "path", om.Dir())
		}
	}

	if opts.Headless {
		// Without a mouse, a spawner at the emitter keeps the box populated.
		center := cfg.Derived.Boundary.Center()
		g.placeSpawner(center.X, center.Y, cfg.Headless.SpawnerRate)
		return g
	}

	g.screenWidth = cfg.Derived.ScreenW32
	g.screenHeight = cfg.Derived.ScreenH32
	b := cfg.Derived.Boundary
	g.camera = camera.New(g.screenWidth, g.screenHeight,
		float32(b.Left), float32(b.Top), float32(b.Right), float32(b.Bottom))
	g.particleRenderer = renderer.NewParticleRenderer()

	g.mouse = components.Spawner{Rate: cfg.Emitter.Rate}
	g.controls = ui.ControlStateFrom(g.props, cfg.Emitter.Rate, g.gravity, g.gravityOn)

	g.hud = ui.NewHUD()
	g.overlays = ui.NewOverlayRegistry()
	g.overlayPanel = ui.NewOverlayPanel(int32(g.screenWidth)-220, 10, 210)
	g.controlsPanel = ui.NewControlsPanel(int32(g.screenWidth)-230, 10, 220)
	g.perfPanel = ui.NewPerfPanel(16, 150)
	g.layoutPanels()

	return g
}

// Tick returns the number of simulation frames run.
func (g *Game) Tick() int32 { return g.tick }

// Particles returns the particle system.
func (g *Game) Particles() *systems.ParticleSystem { return g.particles }

// Unload releases resources.
func (g *Game) Unload() {
	if g.particleRenderer != nil {
		g.particleRenderer.Unload()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
}

// Update handles input and advances the simulation by the frame time.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	g.step(min(float64(frameTime()), maxFrameDT))
}

// UpdateHeadless advances one fixed step without touching the window.
func (g *Game) UpdateHeadless() {
	g.step(config.Cfg().Headless.DT)
}

// step runs one frame: spawners emit, the particle system updates, then
// telemetry records the frame.
func (g *Game) step(dt float64) {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSpawners)
	g.updateSpawners(dt)

	g.particles.Update(dt)
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.recordStep()
	g.flushTelemetry()

	g.perfCollector.SetParticles(g.particles.ActiveCount())
	g.perfCollector.EndTick()
}

// setGravity adds or removes the gravity force.
func (g *Game) setGravity(on bool) {
	g.removeForces(systems.ForceGravity)
	g.gravityOn = on
	if on {
		anchor := config.Cfg().Derived.Boundary.Center()
		g.particles.AddForce(systems.NewGravity(g.gravity, anchor))
	}
}

// removeForces drops every force of the given kind.
func (g *Game) removeForces(kind systems.ForceKind) {
	forces := g.particles.Forces()
	for i := len(forces) - 1; i >= 0; i-- {
		if forces[i].Kind == kind {
			g.particles.RemoveForce(i)
			forces = g.particles.Forces()
		}
	}
}

// clearForces removes every force, gravity included.
func (g *Game) clearForces() {
	g.particles.ClearForces()
	g.gravityOn = false
	g.controls.GravityEnabled = false
}
