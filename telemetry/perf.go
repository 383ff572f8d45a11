package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step. The particle pipeline reports the
// first seven itself; the host reports spawners and telemetry.
const (
	PhaseLife        = "life"
	PhaseAttributes  = "attributes"
	PhaseIntegrate   = "integrate"
	PhaseSpatialHash = "spatial_hash"
	PhaseConstraints = "constraints"
	PhaseSolve       = "solve"
	PhaseReconcile   = "reconcile"
	PhaseSpawners    = "spawners"
	PhaseTelemetry   = "telemetry"
)

const numPhases = 9

// Phases lists every phase in pipeline order.
var Phases = [numPhases]string{
	PhaseSpawners, PhaseLife, PhaseAttributes, PhaseIntegrate,
	PhaseSpatialHash, PhaseConstraints, PhaseSolve, PhaseReconcile,
	PhaseTelemetry,
}

// substepPhases run once per sub-step; the rest run once per tick.
var substepPhases = []string{
	PhaseIntegrate, PhaseSpatialHash, PhaseConstraints, PhaseSolve, PhaseReconcile,
}

// phaseSlot maps a phase name to its column in a sample. Names outside
// Phases are not timed.
var phaseSlot = func() map[string]int {
	m := make(map[string]int, len(Phases))
	for i, name := range Phases {
		m[name] = i
	}
	return m
}()

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [numPhases]time.Duration

	// Calls counts phase starts; sub-step phases start once per sub-step.
	Calls [numPhases]int

	// Particles is the live count when the tick ended.
	Particles int
}

// PerfCollector tracks per-phase timing over a rolling window of ticks.
// Sub-step phases accumulate across every sub-step of a tick.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	lastPhase  int // -1 when no phase is open

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		lastPhase:  -1,
		now:        time.Now,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.current = PerfSample{}
	p.lastPhase = -1
}

// StartPhase closes the open phase and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	slot, ok := phaseSlot[phase]
	if !ok {
		p.lastPhase = -1
		return
	}
	p.current.Calls[slot]++
	p.phaseStart = now
	p.lastPhase = slot
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.lastPhase >= 0 {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
}

// SetParticles records the live particle count for the current tick.
func (p *PerfCollector) SetParticles(n int) {
	p.current.Particles = n
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.lastPhase = -1

	p.current.TickDuration = now.Sub(p.tickStart)
	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations per tick)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Sub-step cost: average sub-steps per tick and the average time of one
	// sub-step (integrate through reconcile).
	Substeps           float64
	AvgSubstepDuration time.Duration

	// Cost per live particle per tick, zero when the pool was empty.
	AvgParticles     float64
	NanosPerParticle float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return stats
	}

	var totalTick time.Duration
	var phaseSum [numPhases]time.Duration
	var callSum [numPhases]int
	particles := 0

	for i := 0; i < p.sampleCount; i++ {
		s := &p.samples[i]
		totalTick += s.TickDuration
		if i == 0 || s.TickDuration < stats.MinTickDuration {
			stats.MinTickDuration = s.TickDuration
		}
		stats.MaxTickDuration = max(stats.MaxTickDuration, s.TickDuration)
		for k := range phaseSum {
			phaseSum[k] += s.Phases[k]
			callSum[k] += s.Calls[k]
		}
		particles += s.Particles
	}

	n := time.Duration(p.sampleCount)
	stats.AvgTickDuration = totalTick / n
	for k, name := range Phases {
		if callSum[k] == 0 {
			continue
		}
		stats.PhaseAvg[name] = phaseSum[k] / n
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[name] = float64(stats.PhaseAvg[name]) / float64(stats.AvgTickDuration) * 100
		}
	}

	if substeps := callSum[phaseSlot[PhaseIntegrate]]; substeps > 0 {
		var sum time.Duration
		for _, name := range substepPhases {
			sum += phaseSum[phaseSlot[name]]
		}
		stats.Substeps = float64(substeps) / float64(p.sampleCount)
		stats.AvgSubstepDuration = sum / time.Duration(substeps)
	}

	stats.AvgParticles = float64(particles) / float64(p.sampleCount)
	if particles > 0 {
		stats.NanosPerParticle = float64(totalTick) / float64(particles)
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"substep_us", s.AvgSubstepDuration.Microseconds(),
		"ns_per_particle", int(s.NanosPerParticle),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("substeps", s.Substeps),
		slog.Int64("substep_us", s.AvgSubstepDuration.Microseconds()),
		slog.Float64("ns_per_particle", s.NanosPerParticle),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd        int32   `csv:"window_end"`
	AvgTickUS        int64   `csv:"avg_tick_us"`
	MinTickUS        int64   `csv:"min_tick_us"`
	MaxTickUS        int64   `csv:"max_tick_us"`
	TicksPerSec      float64 `csv:"ticks_per_sec"`
	FPS              float64 `csv:"fps"`
	Substeps         float64 `csv:"substeps"`
	SubstepUS        int64   `csv:"substep_us"`
	AvgParticles     float64 `csv:"avg_particles"`
	NanosPerParticle float64 `csv:"ns_per_particle"`
	SpawnersPct      float64 `csv:"spawners_pct"`
	LifePct          float64 `csv:"life_pct"`
	AttributesPct    float64 `csv:"attributes_pct"`
	IntegratePct     float64 `csv:"integrate_pct"`
	SpatialHashPct   float64 `csv:"spatial_hash_pct"`
	ConstraintsPct   float64 `csv:"constraints_pct"`
	SolvePct         float64 `csv:"solve_pct"`
	ReconcilePct     float64 `csv:"reconcile_pct"`
	TelemetryPct     float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:        windowEnd,
		AvgTickUS:        s.AvgTickDuration.Microseconds(),
		MinTickUS:        s.MinTickDuration.Microseconds(),
		MaxTickUS:        s.MaxTickDuration.Microseconds(),
		TicksPerSec:      s.TicksPerSecond,
		FPS:              s.FPS,
		Substeps:         s.Substeps,
		SubstepUS:        s.AvgSubstepDuration.Microseconds(),
		AvgParticles:     s.AvgParticles,
		NanosPerParticle: s.NanosPerParticle,
		SpawnersPct:      s.PhasePct[PhaseSpawners],
		LifePct:          s.PhasePct[PhaseLife],
		AttributesPct:    s.PhasePct[PhaseAttributes],
		IntegratePct:     s.PhasePct[PhaseIntegrate],
		SpatialHashPct:   s.PhasePct[PhaseSpatialHash],
		ConstraintsPct:   s.PhasePct[PhaseConstraints],
		SolvePct:         s.PhasePct[PhaseSolve],
		ReconcilePct:     s.PhasePct[PhaseReconcile],
		TelemetryPct:     s.PhasePct[PhaseTelemetry],
	}
}
