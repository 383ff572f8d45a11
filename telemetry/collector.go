package telemetry

// StepCounts are the per-tick counters reported by the particle system.
type StepCounts struct {
	Emitted       int
	Culled        int
	Rejected      int
	Boundary      int
	SelfCollision int
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32
	ticks           int32

	// Event counters for current window
	emitted       int
	culled        int
	rejected      int
	boundary      int
	selfCollision int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(windowDurationSec / dt)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStep adds one tick's counters to the current window.
func (c *Collector) RecordStep(s StepCounts) {
	c.ticks++
	c.emitted += s.Emitted
	c.culled += s.Culled
	c.rejected += s.Rejected
	c.boundary += s.Boundary
	c.selfCollision += s.SelfCollision
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the live population, the pool capacity, every live
// particle's speed and the total kinetic energy.
func (c *Collector) Flush(currentTick int32, active, capacity int, speeds []float64, kinetic float64) WindowStats {
	mean, std, p10, p50, p90 := ComputeSpeedStats(speeds)

	var perTick float64
	if c.ticks > 0 {
		perTick = float64(c.boundary+c.selfCollision) / float64(c.ticks)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Active:   active,
		Capacity: capacity,

		Emitted:  c.emitted,
		Culled:   c.culled,
		Rejected: c.rejected,

		BoundaryConstraints: c.boundary,
		SelfCollisions:      c.selfCollision,
		ConstraintsPerTick:  perTick,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		KineticEnergy: kinetic,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.ticks = 0
	c.emitted = 0
	c.culled = 0
	c.rejected = 0
	c.boundary = 0
	c.selfCollision = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
