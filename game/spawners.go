package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/components"
)

// placeSpawner adds a persistent spawner at (x, y) using the current spawn
// properties.
func (g *Game) placeSpawner(x, y, rate float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	sp := components.Spawner{Rate: rate, Props: g.props}
	e := g.spawnerMap.NewEntity(&pos, &sp)
	slog.Debug("spawner placed", "x", x, "y", y, "rate", rate)
	return e
}

// updateSpawners lets every spawner emit the particles it owes for dt.
// Spawner emission bypasses the emitter disc and uses the exact position.
func (g *Game) updateSpawners(dt float64) {
	query := g.spawnerFilter.Query()
	for query.Next() {
		pos, sp := query.Get()
		n := sp.Budget(dt)
		at := r2.Vec{X: pos.X, Y: pos.Y}
		for range n {
			if g.particles.Emit(at, sp.Props) < 0 {
				// Pool is full; the rest of this frame's budget is dropped.
				break
			}
		}
	}
}

// spawnerCount returns the number of live spawners.
func (g *Game) spawnerCount() int {
	n := 0
	query := g.spawnerFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// spawnerPositions returns the position of every spawner.
func (g *Game) spawnerPositions() []r2.Vec {
	var out []r2.Vec
	query := g.spawnerFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		out = append(out, r2.Vec{X: pos.X, Y: pos.Y})
	}
	return out
}

// clearSpawners removes every spawner.
func (g *Game) clearSpawners() {
	// Collect first; entities cannot be removed while a query is open.
	var toRemove []ecs.Entity
	query := g.spawnerFilter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		g.spawnerMap.Remove(e)
	}
	if len(toRemove) > 0 {
		slog.Debug("spawners cleared", "count", len(toRemove))
	}
}

// setSpawnersPaused pauses or resumes every spawner.
func (g *Game) setSpawnersPaused(paused bool) {
	query := g.spawnerFilter.Query()
	for query.Next() {
		_, sp := query.Get()
		sp.Paused = paused
	}
}
