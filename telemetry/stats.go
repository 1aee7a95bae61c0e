package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/bluewater/physics"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartStep uint64  `csv:"-"`
	WindowEndStep   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Cloud state at window end
	Particles int `csv:"particles"`
	Excluded  int `csv:"excluded"`
	Overlaps  int `csv:"overlaps"`

	// Events during window
	Steps       int `csv:"steps"`
	ExcludedMax int `csv:"excluded_max"`
	Pulses      int `csv:"pulses"`

	// Acceleration applied at window end
	AccX float64 `csv:"acc_x"`
	AccY float64 `csv:"acc_y"`
	AccZ float64 `csv:"acc_z"`

	// Position distribution
	MeanX float64 `csv:"mean_x"`
	MeanY float64 `csv:"mean_y"`
	MeanZ float64 `csv:"mean_z"`
	StdX  float64 `csv:"std_x"`
	StdY  float64 `csv:"std_y"`
	StdZ  float64 `csv:"std_z"`
	MinX  float64 `csv:"min_x"`
	MinY  float64 `csv:"min_y"`
	MinZ  float64 `csv:"min_z"`
	MaxX  float64 `csv:"max_x"`
	MaxY  float64 `csv:"max_y"`
	MaxZ  float64 `csv:"max_z"`

	// Speed distribution in units per second
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`
}

// Distribution summarizes values. It returns zeros for an empty slice.
func Distribution(values []float64) (mean, std, p50, p90, max float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n > 1 {
		mean, std = stat.MeanStdDev(sorted, nil)
	} else {
		mean = sorted[0]
	}
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, std, p50, p90, sorted[n-1]
}

// ParticleStats fills the position and speed fields of s from particles.
// dt converts per-step deltas into speeds.
func (s *WindowStats) ParticleStats(particles []physics.Particle, dt float32) {
	s.Particles = len(particles)
	if len(particles) == 0 {
		return
	}

	axes := [3][]float64{}
	for a := range axes {
		axes[a] = make([]float64, 0, len(particles))
	}
	speeds := make([]float64, 0, len(particles))
	for _, p := range particles {
		if !finite(p.Position) {
			continue
		}
		for a := 0; a < 3; a++ {
			axes[a] = append(axes[a], float64(p.Position[a]))
		}
		speeds = append(speeds, float64(p.Delta.Len()/dt))
	}
	if len(speeds) == 0 {
		return
	}

	var mean, std, lo, hi [3]float64
	for a := 0; a < 3; a++ {
		mean[a], std[a], _, _, hi[a] = Distribution(axes[a])
		lo[a] = floats.Min(axes[a])
	}
	s.MeanX, s.MeanY, s.MeanZ = mean[0], mean[1], mean[2]
	s.StdX, s.StdY, s.StdZ = std[0], std[1], std[2]
	s.MinX, s.MinY, s.MinZ = lo[0], lo[1], lo[2]
	s.MaxX, s.MaxY, s.MaxZ = hi[0], hi[1], hi[2]

	s.SpeedMean, _, s.SpeedP50, s.SpeedP90, s.SpeedMax = Distribution(speeds)
}

func finite(v [3]float32) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartStep),
		slog.Uint64("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("excluded", s.Excluded),
		slog.Int("overlaps", s.Overlaps),
		slog.Int("steps", s.Steps),
		slog.Int("excluded_max", s.ExcludedMax),
		slog.Int("pulses", s.Pulses),
		slog.Float64("acc_x", s.AccX),
		slog.Float64("acc_y", s.AccY),
		slog.Float64("acc_z", s.AccZ),
		slog.Float64("mean_x", s.MeanX),
		slog.Float64("mean_y", s.MeanY),
		slog.Float64("mean_z", s.MeanZ),
		slog.Float64("std_x", s.StdX),
		slog.Float64("std_y", s.StdY),
		slog.Float64("std_z", s.StdZ),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"excluded", s.Excluded,
		"overlaps", s.Overlaps,
		"steps", s.Steps,
		"pulses", s.Pulses,
		"mean_y", s.MeanY,
		"std_y", s.StdY,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
	)
}
