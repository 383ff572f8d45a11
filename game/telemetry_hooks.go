package game

import (
	"log/slog"

	"github.com/zackthomas1/particle-game/telemetry"
)

// recordStep adds the last particle update's counters to the stats window.
func (g *Game) recordStep() {
	last := g.particles.LastStep()
	g.collector.RecordStep(telemetry.StepCounts{
		Emitted:       last.Emitted,
		Culled:        last.Culled,
		Rejected:      last.Rejected,
		Boundary:      last.Boundary,
		SelfCollision: last.SelfCollision,
	})
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.speeds = g.particles.Speeds(g.speeds[:0])
	stats := g.collector.Flush(g.tick, g.particles.ActiveCount(), g.particles.Capacity(),
		g.speeds, g.particles.KineticEnergy())
	perfStats := g.perfCollector.Stats()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the current particle state to the snapshot directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	ps := g.particles
	b := ps.Boundary()
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RNGSeed:  g.seed,
		Tick:     g.tick,
		Boundary: [4]float64{b.Left, b.Top, b.Right, b.Bottom},
		Radius:   ps.Radius(),
		Capacity: ps.Capacity(),
		Bookmark: bookmark,
	}

	for _, f := range ps.Forces() {
		snapshot.Forces = append(snapshot.Forces, telemetry.ForceState{
			Kind:     f.Kind.String(),
			Position: [2]float64{f.Position.X, f.Position.Y},
			Strength: f.Strength,
		})
	}

	snapshot.Particles = make([]telemetry.ParticleState, ps.ActiveCount())
	for i := range snapshot.Particles {
		pos, vel, c := ps.Position(i), ps.Velocity(i), ps.Color(i)
		snapshot.Particles[i] = telemetry.ParticleState{
			X:        pos.X,
			Y:        pos.Y,
			VelX:     vel.X,
			VelY:     vel.Y,
			Mass:     ps.Mass(i),
			Lifespan: ps.Lifespan(i),
			Lifetime: ps.Lifetime(i),
			Color:    [4]uint8{c.R, c.G, c.B, c.A},
		}
	}
	return snapshot
}
