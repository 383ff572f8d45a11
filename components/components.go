// Package components defines the plain data types shared by the particle
// core and the host: spawn properties, the world boundary, the emitter disc
// and the ECS components used for persistent spawners.
package components

// Position represents a world position.
type Position struct {
	X, Y float64
}

// Spawner is an ECS component for a persistent particle source placed in the
// world by the user. Each frame it accumulates Rate*dt and emits one particle
// per whole unit accumulated.
type Spawner struct {
	Rate   float64 // particles per second
	Accum  float64 // fractional particles carried to the next frame
	Props  SpawnProps
	Paused bool
}

// Budget advances the spawner by dt and returns how many particles it owes.
func (s *Spawner) Budget(dt float64) int {
	if s.Paused || s.Rate <= 0 || dt <= 0 {
		return 0
	}
	s.Accum += s.Rate * dt
	n := int(s.Accum)
	s.Accum -= float64(n)
	return n
}
