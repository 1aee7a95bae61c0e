package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/bluewater/telemetry"
)

// step advances the scene and the cloud by one fixed timestep.
func (g *Game) step() error {
	dt := g.cfg.Derived.DT32

	g.perfCollector.StartTick()
	defer g.perfCollector.EndTick()

	g.perfCollector.StartPhase(telemetry.PhaseScene)
	g.scene.Update(dt)
	acc := g.scene.Acceleration()

	// Cloud phases are reported through its observer.
	if err := g.cloud.Update(acc, dt, g.parallel); err != nil {
		return fmt.Errorf("step %d: %w", g.cloud.Steps(), err)
	}
	g.collector.RecordStep(g.cloud.Excluded())

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	return nil
}

// advance runs up to stepsPerUpdate steps, stopping at the first error.
// A failed cloud stays failed: later calls return the stored error.
func (g *Game) advance() error {
	if g.err != nil {
		return g.err
	}
	for range g.stepsPerUpdate {
		if err := g.step(); err != nil {
			g.err = err
			slog.Error("simulation stopped", "step", g.cloud.Steps(), "error", err)
			return err
		}
	}
	return nil
}

// UpdateHeadless runs one update without any raylib calls.
func (g *Game) UpdateHeadless() error {
	if g.paused {
		return nil
	}
	return g.advance()
}

// Pulse applies a short acceleration burst against the current gravity.
func (g *Game) Pulse() {
	g.scene.Pulse(g.scene.Acceleration().Mul(-1))
	g.collector.RecordPulse()
}

// SetPaused pauses or resumes stepping.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// SetTilt sets the user tilt in [-1, 1] on each screen axis.
func (g *Game) SetTilt(x, y float32) {
	g.tiltX, g.tiltY = clampUnit(x), clampUnit(y)
	g.scene.SetTilt(g.tiltX, g.tiltY)
}

func clampUnit(v float32) float32 {
	return max(-1, min(v, 1))
}
