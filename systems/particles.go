package systems

import (
	"image/color"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/components"
	"github.com/zackthomas1/particle-game/telemetry"
)

// Defaults for Settings fields left at zero.
const (
	DefaultMaxParticles  = 2000
	DefaultRadius        = 4.0
	DefaultEmitterRadius = 20.0
	DefaultSubsteps      = 4
)

// Settings are the fixed parameters of a particle system.
type Settings struct {
	MaxParticles  int     // pool capacity, also the spatial hash bucket count
	Radius        float64 // shared particle radius
	EmitterRadius float64 // radius of the emission disc
	Substeps      int     // solver sub-steps per Update
	Seed          int64   // RNG seed for spawn perturbation
}

// DefaultSettings returns the stock settings.
func DefaultSettings() Settings {
	return Settings{
		MaxParticles:  DefaultMaxParticles,
		Radius:        DefaultRadius,
		EmitterRadius: DefaultEmitterRadius,
		Substeps:      DefaultSubsteps,
		Seed:          1,
	}
}

func (s Settings) withDefaults() Settings {
	if s.MaxParticles <= 0 {
		s.MaxParticles = DefaultMaxParticles
	}
	if s.Radius <= 0 {
		s.Radius = DefaultRadius
	}
	if s.EmitterRadius < 0 {
		s.EmitterRadius = DefaultEmitterRadius
	}
	if s.Substeps <= 0 {
		s.Substeps = DefaultSubsteps
	}
	return s
}

// PhaseTimer receives the name of each pipeline phase as it starts.
// telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Option configures a ParticleSystem.
type Option func(*ParticleSystem)

// WithLogger routes the system's warnings and errors to log.
func WithLogger(log *slog.Logger) Option {
	return func(s *ParticleSystem) { s.log = log }
}

// WithRand replaces the seeded RNG used for spawn perturbation.
func WithRand(rng *rand.Rand) Option {
	return func(s *ParticleSystem) { s.rng = rng }
}

// WithPhaseTimer reports pipeline phases to t.
func WithPhaseTimer(t PhaseTimer) Option {
	return func(s *ParticleSystem) { s.timer = t }
}

// StepStats summarizes the last Update.
type StepStats struct {
	Emitted       int // emitted since the previous Update
	Rejected      int // emits refused because the pool was full
	Culled        int
	Boundary      int // boundary constraints generated, all sub-steps
	SelfCollision int // self-collision constraints generated, all sub-steps
	Active        int
}

// ParticleSystem owns the pool, spatial hash, forces and constraints and
// advances them once per frame. It is not safe for concurrent use.
type ParticleSystem struct {
	settings Settings
	boundary components.Boundary
	emitter  components.Emitter

	pool   *Pool
	hash   *SpatialHash
	forces []Force
	solver *Solver

	rng   *rand.Rand
	log   *slog.Logger
	timer PhaseTimer

	emitted  int
	rejected int
	last     StepStats
}

// NewParticleSystem creates a system confined to boundary.
// The spatial hash cell size is one particle diameter.
func NewParticleSystem(settings Settings, boundary components.Boundary, opts ...Option) *ParticleSystem {
	settings = settings.withDefaults()
	s := &ParticleSystem{
		settings: settings,
		boundary: boundary,
		emitter:  components.Emitter{Position: boundary.Center(), Radius: settings.EmitterRadius},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(settings.Seed))
	}
	if !boundary.Valid() {
		s.log.Warn("particle system boundary has no area", "left", boundary.Left, "right", boundary.Right, "top", boundary.Top, "bottom", boundary.Bottom)
	}

	s.pool = NewPool(settings.MaxParticles, s.rng, s.log)
	s.hash = NewSpatialHash(2*settings.Radius, settings.MaxParticles, s.log)
	s.solver = NewSolver(settings.Radius, s.log)
	s.pool.onSwap = s.solver.remap
	return s
}

// Update advances the simulation by dt seconds. Non-positive dt is ignored.
//
// Lifetimes and derived attributes advance once per call. Collision
// handling runs Substeps times on dt/Substeps, each sub-step ordered as
// integrate, rebuild hash, generate constraints, project, discard,
// reconcile velocities. No particle is removed between generation and
// projection, so constraint indices stay valid.
func (s *ParticleSystem) Update(dt float64) {
	if !(dt > 0) {
		return
	}

	s.last = StepStats{Emitted: s.emitted, Rejected: s.rejected}
	s.emitted, s.rejected = 0, 0

	s.phase(telemetry.PhaseLife)
	s.last.Culled = s.pool.age(dt)

	s.phase(telemetry.PhaseAttributes)
	s.pool.updateAttributes()

	h := dt / float64(s.settings.Substeps)
	for range s.settings.Substeps {
		s.substep(h)
	}
	s.last.Active = s.pool.Len()
}

func (s *ParticleSystem) substep(h float64) {
	s.phase(telemetry.PhaseIntegrate)
	reach := s.integrate(h)

	s.phase(telemetry.PhaseSpatialHash)
	s.hash.Clear()
	s.hash.Fill(s.pool.Positions())

	s.phase(telemetry.PhaseConstraints)
	base := s.solver.Len()
	gen := s.solver.generate(s.pool, s.hash, s.boundary, reach)
	s.last.Boundary += gen.Boundary
	s.last.SelfCollision += gen.SelfCollision

	s.phase(telemetry.PhaseSolve)
	s.solver.project(s.pool)
	s.solver.trim(base)

	s.phase(telemetry.PhaseReconcile)
	s.reconcile(h)
}

// integrate predicts positions with semi-implicit Euler and returns the
// largest displacement of any particle.
func (s *ParticleSystem) integrate(h float64) float64 {
	p := s.pool
	reach := 0.0
	for i := 0; i < p.active; i++ {
		acc := computeAcceleration(p.positions[i], p.velocities[i], p.masses[i], s.forces)
		p.velocities[i] = r2.Add(p.velocities[i], r2.Scale(h, acc))
		p.prevPositions[i] = p.positions[i]
		p.positions[i] = r2.Add(p.positions[i], r2.Scale(h, p.velocities[i]))

		if d := r2.Norm(p.velocities[i]) * h; d > reach {
			reach = d
		}
	}
	if math.IsInf(reach, 0) || math.IsNaN(reach) {
		s.log.Error("non-finite particle velocity during integration")
		reach = 0
	}
	return reach
}

// reconcile derives velocity from the corrected position change, which is
// what makes collisions lose energy instead of bouncing.
func (s *ParticleSystem) reconcile(h float64) {
	p := s.pool
	inv := 1 / h
	for i := 0; i < p.active; i++ {
		p.velocities[i] = r2.Scale(inv, r2.Sub(p.positions[i], p.prevPositions[i]))
	}
}

func (s *ParticleSystem) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Emission

// Emit spawns a particle at position and returns its slot, or -1 when the
// pool is full.
func (s *ParticleSystem) Emit(position r2.Vec, props components.SpawnProps) int {
	i := s.pool.Emit(position, props)
	if i < 0 {
		s.rejected++
		return i
	}
	s.emitted++
	return i
}

// EmitFromEmitter spawns a particle at a uniformly random point of the
// emitter disc.
func (s *ParticleSystem) EmitFromEmitter(props components.SpawnProps) int {
	angle := s.rng.Float64() * 2 * math.Pi
	dist := s.emitter.Radius * math.Sqrt(s.rng.Float64())
	offset := r2.Vec{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist}
	return s.Emit(r2.Add(s.emitter.Position, offset), props)
}

// SetEmitterPosition moves the emission disc.
func (s *ParticleSystem) SetEmitterPosition(p r2.Vec) {
	s.emitter.Position = p
}

// Emitter returns the emission disc.
func (s *ParticleSystem) Emitter() components.Emitter { return s.emitter }

// Clear removes every particle and every constraint.
func (s *ParticleSystem) Clear() {
	s.pool.Reset()
	s.solver.trim(0)
}

// Forces

// AddForce appends a force generator.
func (s *ParticleSystem) AddForce(f Force) {
	s.forces = append(s.forces, f)
}

// RemoveForce deletes the force at index i, keeping the order of the rest.
func (s *ParticleSystem) RemoveForce(i int) bool {
	if i < 0 || i >= len(s.forces) {
		s.log.Warn("remove force: index out of range", "index", i, "forces", len(s.forces))
		return false
	}
	s.forces = append(s.forces[:i], s.forces[i+1:]...)
	return true
}

// ClearForces removes every force generator.
func (s *ParticleSystem) ClearForces() {
	s.forces = s.forces[:0]
}

// Forces returns the force list. The slice aliases system storage.
func (s *ParticleSystem) Forces() []Force { return s.forces }

// Constraints

// AddDistanceConstraint registers a persistent distance constraint between
// two live slots. Distance projection is not implemented; the constraint is
// carried and skipped. It follows its particles through swap-removes and is
// dropped when either of them is removed.
func (s *ParticleSystem) AddDistanceConstraint(i, j int, rest float64) {
	n := s.pool.Len()
	if i < 0 || i >= n || j < 0 || j >= n {
		s.log.Error("distance constraint participant is not a live particle", "i", i, "j", j, "active", n)
		return
	}
	s.solver.Add(Distance(i, j, rest))
}

// ConstraintCount returns the persistent constraints held between frames.
func (s *ParticleSystem) ConstraintCount() int { return s.solver.Len() }

// Boundary

// Boundary returns the box particles are confined to.
func (s *ParticleSystem) Boundary() components.Boundary { return s.boundary }

// SetBoundary replaces the confining box. A box without area is rejected.
func (s *ParticleSystem) SetBoundary(b components.Boundary) {
	if !b.Valid() {
		s.log.Warn("set boundary: box has no area, ignored", "left", b.Left, "right", b.Right, "top", b.Top, "bottom", b.Bottom)
		return
	}
	s.boundary = b
}

// Read accessors. Slot indices are only meaningful until the next Update.

// ActiveCount returns the number of live particles.
func (s *ParticleSystem) ActiveCount() int { return s.pool.Len() }

// Capacity returns the maximum number of live particles.
func (s *ParticleSystem) Capacity() int { return s.pool.Capacity() }

// Radius returns the shared particle radius.
func (s *ParticleSystem) Radius() float64 { return s.settings.Radius }

// Substeps returns the solver sub-step count.
func (s *ParticleSystem) Substeps() int { return s.settings.Substeps }

// Position returns the position of slot i.
func (s *ParticleSystem) Position(i int) r2.Vec { return s.pool.positions[i] }

// Velocity returns the velocity of slot i.
func (s *ParticleSystem) Velocity(i int) r2.Vec { return s.pool.velocities[i] }

// Mass returns the current mass of slot i.
func (s *ParticleSystem) Mass(i int) float64 { return s.pool.masses[i] }

// Color returns the current color of slot i.
func (s *ParticleSystem) Color(i int) color.RGBA { return s.pool.colors[i] }

// Lifespan returns the age of slot i in seconds.
func (s *ParticleSystem) Lifespan(i int) float64 { return s.pool.lifespans[i] }

// Lifetime returns the age at which slot i is culled.
func (s *ParticleSystem) Lifetime(i int) float64 { return s.pool.lifetimes[i] }

// Each calls fn for every live particle in slot order.
func (s *ParticleSystem) Each(fn func(pos r2.Vec, c color.RGBA)) {
	for i := 0; i < s.pool.active; i++ {
		fn(s.pool.positions[i], s.pool.colors[i])
	}
}

// Speeds appends the speed of every live particle to dst.
func (s *ParticleSystem) Speeds(dst []float64) []float64 {
	for i := 0; i < s.pool.active; i++ {
		dst = append(dst, r2.Norm(s.pool.velocities[i]))
	}
	return dst
}

// KineticEnergy returns the total kinetic energy of live particles.
func (s *ParticleSystem) KineticEnergy() float64 {
	var e float64
	for i := 0; i < s.pool.active; i++ {
		e += 0.5 * s.pool.masses[i] * r2.Norm2(s.pool.velocities[i])
	}
	return e
}

// LastStep returns the statistics of the last Update.
func (s *ParticleSystem) LastStep() StepStats { return s.last }
