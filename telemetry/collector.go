package telemetry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bluewater/physics"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps uint64
	dt                  float32

	windowStartStep uint64

	// Event counters for current window
	steps       int
	excludedMax int
	pulses      int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step (used for step-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	stepsPerWindow := uint64(windowDurationSec / float64(dt))
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
	}
}

// RecordStep records one completed cloud update.
func (c *Collector) RecordStep(excluded int) {
	c.steps++
	c.excludedMax = max(c.excludedMax, excluded)
}

// RecordPulse records a pulse added to the scene.
func (c *Collector) RecordPulse() {
	c.pulses++
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep uint64) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces a WindowStats from the cloud's current state and resets
// counters for the next window.
func (c *Collector) Flush(currentStep uint64, cloud *physics.Cloud, acc mgl32.Vec3) WindowStats {
	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTimeSec:      float64(currentStep) * float64(c.dt),
		Excluded:        cloud.Excluded(),
		Overlaps:        cloud.Overlaps(),
		Steps:           c.steps,
		ExcludedMax:     c.excludedMax,
		Pulses:          c.pulses,
		AccX:            float64(acc.X()),
		AccY:            float64(acc.Y()),
		AccZ:            float64(acc.Z()),
	}
	stats.ParticleStats(cloud.Particles(), c.dt)

	c.windowStartStep = currentStep
	c.steps = 0
	c.excludedMax = 0
	c.pulses = 0

	return stats
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() uint64 {
	return c.windowDurationSteps
}
