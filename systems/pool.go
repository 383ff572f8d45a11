package systems

import (
	"image/color"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/components"
)

// Floors applied after variance perturbation. A perturbed lifetime or mass
// of zero would make t or 1/mass non-finite.
const (
	minLifetime = 1e-3
	minMass     = 1e-3
)

// Pool is struct-of-arrays storage for a bounded number of particles.
//
// Slots [0, Len()) are live, the rest are free. A particle has no identity
// beyond its slot index, and removal moves the last live row into the freed
// slot. Any index held across a removal may therefore name a different
// particle, or none. SwapRemove is the only removal path; callers must finish
// all index-dependent work (constraint generation and projection) before
// removing anything in the same pass.
type Pool struct {
	capacity int
	active   int

	lifetimes []float64
	lifespans []float64

	prevPositions []r2.Vec
	positions     []r2.Vec
	velocities    []r2.Vec

	birthMasses []float64
	deathMasses []float64
	masses      []float64

	birthColors []color.RGBA
	deathColors []color.RGBA
	colors      []color.RGBA

	rng *rand.Rand
	log *slog.Logger

	// onSwap, when set, hears about every SwapRemove before the copy.
	onSwap func(removed, moved int)
}

// NewPool allocates every attribute array at full capacity up front.
func NewPool(capacity int, rng *rand.Rand, log *slog.Logger) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		capacity:      capacity,
		lifetimes:     make([]float64, capacity),
		lifespans:     make([]float64, capacity),
		prevPositions: make([]r2.Vec, capacity),
		positions:     make([]r2.Vec, capacity),
		velocities:    make([]r2.Vec, capacity),
		birthMasses:   make([]float64, capacity),
		deathMasses:   make([]float64, capacity),
		masses:        make([]float64, capacity),
		birthColors:   make([]color.RGBA, capacity),
		deathColors:   make([]color.RGBA, capacity),
		colors:        make([]color.RGBA, capacity),
		rng:           rng,
		log:           log,
	}
}

// Len returns the number of live particles.
func (p *Pool) Len() int { return p.active }

// Capacity returns the maximum number of live particles.
func (p *Pool) Capacity() int { return p.capacity }

// Positions returns the live prefix of the position array.
// The slice aliases pool storage and is only valid until the next mutation.
func (p *Pool) Positions() []r2.Vec { return p.positions[:p.active] }

// Colors returns the live prefix of the color array.
func (p *Pool) Colors() []color.RGBA { return p.colors[:p.active] }

// Emit appends a particle at position and returns its slot, or -1 when the
// pool is full. Variance outside [0, 1] or NaN is clamped with a warning.
// Lifetime and birth mass that perturb below their floors, or are NaN, are
// raised to the floor.
func (p *Pool) Emit(position r2.Vec, props components.SpawnProps) int {
	i := p.active
	if i >= p.capacity {
		p.log.Warn("particle pool full, emit ignored", "active", p.active, "capacity", p.capacity)
		return -1
	}

	if !(props.Variance >= 0 && props.Variance <= 1) {
		p.log.Warn("spawn variance outside [0, 1], clamping", "variance", props.Variance)
	}
	variance := clamp01(props.Variance)
	lifeScalar := p.randSigned()
	scalar := p.randSigned()

	p.lifetimes[i] = atLeast(props.Lifetime+props.Lifetime*lifeScalar*variance, minLifetime)
	p.lifespans[i] = 0

	p.positions[i] = position
	p.prevPositions[i] = position
	p.velocities[i] = r2.Add(props.Velocity, r2.Scale(scalar*variance, props.Velocity))

	p.birthMasses[i] = atLeast(props.BirthMass+props.BirthMass*scalar*variance, minMass)
	p.deathMasses[i] = atLeast(props.DeathMass, minMass)
	p.masses[i] = p.birthMasses[i]

	p.birthColors[i] = props.BirthColor
	p.deathColors[i] = props.DeathColor
	p.colors[i] = props.BirthColor

	p.active++
	return i
}

// SwapRemove overwrites slot i with the last live row and shrinks the live
// prefix by one. After the call, slot i holds what was the last particle and
// the old last slot is free. Indices obtained before the call are stale.
func (p *Pool) SwapRemove(i int) {
	if i < 0 || i >= p.active {
		p.log.Error("swap-remove index out of range", "index", i, "active", p.active)
		return
	}
	last := p.active - 1
	if p.onSwap != nil {
		p.onSwap(i, last)
	}
	p.copyRow(i, last)
	p.active--
}

// Reset frees every slot.
func (p *Pool) Reset() { p.active = 0 }

func (p *Pool) copyRow(dst, src int) {
	if dst == src {
		return
	}
	p.lifetimes[dst] = p.lifetimes[src]
	p.lifespans[dst] = p.lifespans[src]

	p.prevPositions[dst] = p.prevPositions[src]
	p.positions[dst] = p.positions[src]
	p.velocities[dst] = p.velocities[src]

	p.birthMasses[dst] = p.birthMasses[src]
	p.deathMasses[dst] = p.deathMasses[src]
	p.masses[dst] = p.masses[src]

	p.birthColors[dst] = p.birthColors[src]
	p.deathColors[dst] = p.deathColors[src]
	p.colors[dst] = p.colors[src]
}

// age advances every lifespan by dt and removes the particles that outlived
// their lifetime. A slot that receives the tail row is examined again before
// moving on, so one dense pass leaves no expired particle behind.
// Returns the number removed.
func (p *Pool) age(dt float64) int {
	for i := 0; i < p.active; i++ {
		p.lifespans[i] += dt
	}

	removed := 0
	for i := 0; i < p.active; {
		if p.lifespans[i] > p.lifetimes[i] {
			p.SwapRemove(i)
			removed++
			continue
		}
		i++
	}
	return removed
}

// updateAttributes recomputes mass and color from normalized age.
func (p *Pool) updateAttributes() {
	for i := 0; i < p.active; i++ {
		t := clamp01(p.lifespans[i] / p.lifetimes[i])
		p.masses[i] = lerp(p.birthMasses[i], p.deathMasses[i], t)
		p.colors[i] = lerpColor(p.birthColors[i], p.deathColors[i], t)
	}
}

// randSigned returns a uniform value in [-1, 1].
func (p *Pool) randSigned() float64 {
	if p.rng == nil {
		return 2*rand.Float64() - 1
	}
	return 2*p.rng.Float64() - 1
}
