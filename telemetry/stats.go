package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Active   int `csv:"active"`
	Capacity int `csv:"capacity"`

	// Lifecycle events during window
	Emitted  int `csv:"emitted"`
	Culled   int `csv:"culled"`
	Rejected int `csv:"rejected"` // emits refused because the pool was full

	// Collision work during window
	BoundaryConstraints int     `csv:"boundary_constraints"`
	SelfCollisions      int     `csv:"self_collisions"`
	ConstraintsPerTick  float64 `csv:"constraints_per_tick"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	KineticEnergy float64 `csv:"kinetic_energy"`
}

// Percentile returns the p-th quantile of a sorted slice, interpolating
// linearly between samples. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(clampUnit(p), stat.LinInterp, sorted, nil)
}

// ComputeSpeedStats calculates mean, standard deviation and percentiles.
// values is not modified.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("capacity", s.Capacity),
		slog.Int("emitted", s.Emitted),
		slog.Int("culled", s.Culled),
		slog.Int("rejected", s.Rejected),
		slog.Int("boundary_constraints", s.BoundaryConstraints),
		slog.Int("self_collisions", s.SelfCollisions),
		slog.Float64("constraints_per_tick", s.ConstraintsPerTick),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"active", s.Active,
		"emitted", s.Emitted,
		"culled", s.Culled,
		"rejected", s.Rejected,
		"boundary_constraints", s.BoundaryConstraints,
		"self_collisions", s.SelfCollisions,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"kinetic_energy", s.KineticEnergy,
	)
}
