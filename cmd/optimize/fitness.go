package main

import (
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/zackthomas1/particle-game/components"
	"github.com/zackthomas1/particle-game/config"
	"github.com/zackthomas1/particle-game/systems"
	"github.com/zackthomas1/particle-game/telemetry"
)

// Fitness component weights.
const (
	weightFill    = 10.0 // squared distance from the target fill fraction
	weightOverlap = 5.0  // fraction of particles still overlapping a neighbour
	weightCost    = 0.05 // per millisecond of Update time
	weightReject  = 1.0  // fraction of emits refused by a full pool

	warmupWindows = 2 // skip the first N windows while the pool fills
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	targetFill  float64
	statsWindow float64

	mu          sync.Mutex
	lastMetrics runMetrics // averaged over seeds of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetFill float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		targetFill:  targetFill,
		statsWindow: 2.0,
	}
}

// runMetrics summarizes one simulation run.
type runMetrics struct {
	Fill    float64 // mean active/capacity after warmup
	Overlap float64 // mean overlapping fraction at window ends
	TickMS  float64 // mean Update wall time
	Reject  float64 // refused / attempted emits
}

// LastMetrics returns the averaged metrics from the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() runMetrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runMetrics, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runMetrics
	var total float64
	for _, r := range results {
		total += fe.computeFitness(r)
		avg.Fill += r.Fill
		avg.Overlap += r.Overlap
		avg.TickMS += r.TickMS
		avg.Reject += r.Reject
	}
	n := float64(len(results))
	avg.Fill /= n
	avg.Overlap /= n
	avg.TickMS /= n
	avg.Reject /= n

	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return total / n
}

// computeFitness calculates the scalar fitness (lower = better).
func (fe *FitnessEvaluator) computeFitness(m runMetrics) float64 {
	fillErr := m.Fill - fe.targetFill
	return weightFill*fillErr*fillErr +
		weightOverlap*m.Overlap +
		weightCost*m.TickMS +
		weightReject*m.Reject
}

// runSimulation executes a single headless run with a spawner at the centre
// of the world.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runMetrics {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	ps := systems.NewParticleSystem(systems.Settings{
		MaxParticles:  cfg.Particles.MaxCount,
		Radius:        cfg.Particles.Radius,
		EmitterRadius: cfg.Emitter.Radius,
		Substeps:      cfg.Particles.Substeps,
		Seed:          seed,
	}, cfg.Derived.Boundary,
		systems.WithLogger(quiet),
		systems.WithRand(rand.New(rand.NewSource(seed))),
	)

	center := cfg.Derived.Boundary.Center()
	if cfg.Forces.GravityEnabled {
		ps.AddForce(systems.NewGravity(cfg.Forces.Gravity, center))
	}
	if cfg.Forces.Drag > 0 {
		ps.AddForce(systems.NewDrag(cfg.Forces.Drag, center))
	}

	dt := cfg.Headless.DT
	spawner := components.Spawner{Rate: cfg.Headless.SpawnerRate, Props: cfg.Spawn}
	collector := telemetry.NewCollector(fe.statsWindow, dt)

	var fills, overlaps []float64
	var updateTime time.Duration
	var attempted, rejected int
	windows := 0

	for tick := int32(1); tick <= fe.maxTicks; tick++ {
		for range spawner.Budget(dt) {
			attempted++
			if ps.Emit(center, spawner.Props) < 0 {
				rejected++
			}
		}

		start := time.Now()
		ps.Update(dt)
		updateTime += time.Since(start)

		last := ps.LastStep()
		collector.RecordStep(telemetry.StepCounts{
			Emitted:       last.Emitted,
			Culled:        last.Culled,
			Rejected:      last.Rejected,
			Boundary:      last.Boundary,
			SelfCollision: last.SelfCollision,
		})

		if !collector.ShouldFlush(tick) {
			continue
		}
		stats := collector.Flush(tick, ps.ActiveCount(), ps.Capacity(), nil, 0)
		windows++
		if windows <= warmupWindows {
			continue
		}
		fills = append(fills, float64(stats.Active)/float64(stats.Capacity))
		overlaps = append(overlaps, overlapFraction(ps))
	}

	m := runMetrics{
		TickMS: float64(updateTime.Microseconds()) / 1000 / float64(fe.maxTicks),
	}
	if len(fills) > 0 {
		m.Fill = stat.Mean(fills, nil)
		m.Overlap = stat.Mean(overlaps, nil)
	}
	if attempted > 0 {
		m.Reject = float64(rejected) / float64(attempted)
	}
	return m
}

// overlapFraction returns the fraction of live particles that penetrate a
// neighbour by more than a tenth of the particle diameter.
func overlapFraction(ps *systems.ParticleSystem) float64 {
	n := ps.ActiveCount()
	if n == 0 {
		return 0
	}
	limit := 2 * ps.Radius() * 0.9
	limitSq := limit * limit

	overlapping := make([]bool, n)
	for i := 0; i < n; i++ {
		pi := ps.Position(i)
		for j := i + 1; j < n; j++ {
			d := r2.Sub(ps.Position(j), pi)
			if r2.Dot(d, d) < limitSq {
				overlapping[i] = true
				overlapping[j] = true
			}
		}
	}

	count := 0
	for _, o := range overlapping {
		if o {
			count++
		}
	}
	return float64(count) / float64(n)
}

// copyConfig creates a copy of the base config. Config holds only values, so
// a struct copy is deep enough.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
