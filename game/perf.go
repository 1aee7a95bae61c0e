package game

import (
	"log/slog"
	"sort"
	"time"
)

// FrameTimer tracks wall-clock time for the coarse per-frame stages
// (physics and render) and logs their averages at a fixed interval.
type FrameTimer struct {
	samples    map[string][]time.Duration
	maxSamples int
	interval   time.Duration
	lastLog    time.Time
}

// NewFrameTimer creates a timer that logs at most once per interval.
func NewFrameTimer(interval time.Duration) *FrameTimer {
	return &FrameTimer{
		samples:    make(map[string][]time.Duration),
		maxSamples: 120, // ~2 seconds of samples at 60fps
		interval:   interval,
	}
}

// Record adds a duration sample for the named stage.
func (f *FrameTimer) Record(name string, d time.Duration) {
	f.samples[name] = append(f.samples[name], d)
	if len(f.samples[name]) > f.maxSamples {
		f.samples[name] = f.samples[name][1:]
	}
}

// Avg returns the average duration for the named stage.
func (f *FrameTimer) Avg(name string) time.Duration {
	s := f.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// AvgMS returns Avg in fractional milliseconds.
func (f *FrameTimer) AvgMS(name string) float64 {
	return float64(f.Avg(name)) / float64(time.Millisecond)
}

// SortedNames returns stage names sorted by average duration (descending).
func (f *FrameTimer) SortedNames() []string {
	names := make([]string, 0, len(f.samples))
	for name := range f.samples {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return f.Avg(names[i]) > f.Avg(names[j])
	})
	return names
}

// MaybeLog logs the stage averages if the interval has elapsed since the
// last log, then clears the samples. It reports whether it logged.
func (f *FrameTimer) MaybeLog(now time.Time) bool {
	if f.lastLog.IsZero() {
		f.lastLog = now
		return false
	}
	if now.Sub(f.lastLog) < f.interval || len(f.samples) == 0 {
		return false
	}
	attrs := make([]any, 0, 2*len(f.samples))
	for _, name := range f.SortedNames() {
		attrs = append(attrs, name+"_ms", f.AvgMS(name))
	}
	slog.Info("frame timing", attrs...)
	f.samples = make(map[string][]time.Duration)
	f.lastLog = now
	return true
}
