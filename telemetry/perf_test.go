package telemetry

import (
	"testing"
	"time"
)

// stepClock is a manual clock for PerfCollector.
type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *stepClock) {
	clock := &stepClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSpatialHash)
		clock.advance(100 * time.Microsecond)
		pc.StartPhase(PhaseSolve)
		clock.advance(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration != 300*time.Microsecond {
		t.Errorf("AvgTickDuration = %v, want 300µs", stats.AvgTickDuration)
	}
	if got := stats.PhaseAvg[PhaseSpatialHash]; got != 100*time.Microsecond {
		t.Errorf("spatial_hash avg = %v, want 100µs", got)
	}
	if got := stats.PhaseAvg[PhaseSolve]; got != 200*time.Microsecond {
		t.Errorf("solve avg = %v, want 200µs", got)
	}
	if _, ok := stats.PhaseAvg[PhaseLife]; ok {
		t.Error("phase that never ran should not be reported")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newTestCollector(5)

	// Five slow ticks, then five fast ones push the slow ones out.
	for i := 0; i < 10; i++ {
		d := 10 * time.Millisecond
		if i >= 5 {
			d = time.Millisecond
		}
		pc.StartTick()
		pc.StartPhase(PhaseSpatialHash)
		clock.advance(d)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 1ms", stats.AvgTickDuration)
	}
	if stats.TicksPerSecond != 1000 {
		t.Errorf("TicksPerSecond = %v, want 1000", stats.TicksPerSecond)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc, clock := newTestCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		pc.StartPhase(PhaseLife)
		clock.advance(1 * time.Millisecond)
		pc.StartPhase(PhaseSolve)
		clock.advance(3 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if got := stats.PhasePct[PhaseLife]; got != 25 {
		t.Errorf("life = %v%%, want 25%%", got)
	}
	if got := stats.PhasePct[PhaseSolve]; got != 75 {
		t.Errorf("solve = %v%%, want 75%%", got)
	}
	if _, ok := stats.PhasePct["fast"]; ok {
		t.Error("unknown phase names should not be timed")
	}
}

func TestPerfCollector_Substeps(t *testing.T) {
	pc, clock := newTestCollector(4)

	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseLife)
		clock.advance(time.Millisecond)
		for range 3 {
			pc.StartPhase(PhaseIntegrate)
			clock.advance(200 * time.Microsecond)
			pc.StartPhase(PhaseSolve)
			clock.advance(300 * time.Microsecond)
		}
		pc.StartPhase(PhaseTelemetry)
		pc.SetParticles(250)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Substeps != 3 {
		t.Errorf("Substeps = %v, want 3", stats.Substeps)
	}
	if stats.AvgSubstepDuration != 500*time.Microsecond {
		t.Errorf("AvgSubstepDuration = %v, want 500µs", stats.AvgSubstepDuration)
	}
	if got := stats.PhaseAvg[PhaseIntegrate]; got != 600*time.Microsecond {
		t.Errorf("integrate avg = %v, want 600µs summed over sub-steps", got)
	}
	if stats.AvgParticles != 250 {
		t.Errorf("AvgParticles = %v, want 250", stats.AvgParticles)
	}
	// 2.5ms per tick over 250 particles.
	if stats.NanosPerParticle != 10000 {
		t.Errorf("NanosPerParticle = %v, want 10000", stats.NanosPerParticle)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}

	if stats.NanosPerParticle != 0 || stats.Substeps != 0 {
		t.Errorf("expected zero particle and sub-step cost, got %+v", stats)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", stats.FrameDuration)
	}
	if stats.FPS != 50 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration:    1500 * time.Microsecond,
		Substeps:           4,
		AvgSubstepDuration: 250 * time.Microsecond,
		NanosPerParticle:   3.5,
		PhasePct: map[string]float64{
			PhaseSpawners: 5,
			PhaseSolve:    60,
			PhaseLife:     2,
		},
	}

	row := stats.ToCSV(300)
	if row.WindowEnd != 300 {
		t.Errorf("WindowEnd = %d, want 300", row.WindowEnd)
	}
	if row.AvgTickUS != 1500 {
		t.Errorf("AvgTickUS = %d, want 1500", row.AvgTickUS)
	}
	if row.Substeps != 4 || row.SubstepUS != 250 || row.NanosPerParticle != 3.5 {
		t.Errorf("sub-step and particle cost not copied: %+v", row)
	}
	if row.SolvePct != 60 || row.SpawnersPct != 5 || row.LifePct != 2 {
		t.Errorf("phase percentages not copied: %+v", row)
	}
	if row.ReconcilePct != 0 {
		t.Errorf("missing phase should be 0, got %v", row.ReconcilePct)
	}
}

func TestPhasesCoverPipeline(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Phases {
		if seen[p] {
			t.Errorf("duplicate phase %q", p)
		}
		seen[p] = true
	}
	for _, p := range substepPhases {
		if !seen[p] {
			t.Errorf("sub-step phase %q missing from Phases", p)
		}
	}
}
