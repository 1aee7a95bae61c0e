package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bluewater/telemetry"
	"github.com/pthm-cable/bluewater/ui"
)

const maxStepsPerUpdate = ui.MaxStepsPerUpdate

// Update handles input and advances the simulation for one frame.
func (g *Game) Update() {
	g.handleInput()
	if g.paused || g.err != nil {
		return
	}

	start := time.Now()
	if err := g.advance(); err != nil {
		g.paused = true
	}
	g.frameTimer.Record("physics", time.Since(start))
}

// Draw renders the scene, HUD and panels for one frame.
func (g *Game) Draw() {
	start := time.Now()
	rl.BeginDrawing()

	g.background.Draw()

	acc := g.scene.Acceleration()
	g.box.Draw(g.camera, g.cloud.GridSize(), rl.Vector3{X: acc.X(), Y: acc.Y(), Z: acc.Z()})
	g.particles.Draw(g.camera, g.cloud.Particles(), g.cfg.Derived.DT32)

	g.drawUI()

	rl.EndDrawing()
	g.perfCollector.RecordFrame()
	g.frameTimer.Record("render", time.Since(start))

	if g.logStats {
		g.frameTimer.MaybeLog(time.Now())
	}
}

// drawUI draws the HUD and panels and applies panel input.
func (g *Game) drawUI() {
	title := Title
	if g.err != nil {
		title += " - STOPPED: " + g.err.Error()
	}

	acc := g.scene.Acceleration()
	g.hud.Draw(ui.HUDData{
		Title:          title,
		Particles:      g.cloud.Len(),
		Excluded:       g.cloud.Excluded(),
		Step:           g.cloud.Steps(),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		PhysicsMS:      g.frameTimer.AvgMS("physics"),
		RenderMS:       g.frameTimer.AvgMS("render"),
		Workers:        g.Workers(),
		Parallel:       g.parallel,
		Stencil:        g.cloud.Params().Stencil.String(),
		Paused:         g.paused,
		AccX:           acc.X(),
		AccY:           acc.Y(),
		ScreenHeight:   int32(g.screenHeight),
	})

	perf := g.perfCollector.Stats()
	g.perfPanel.Draw(ui.PerfPanelData{
		PhaseAvg: perf.PhaseAvg,
		PhasePct: perf.PhasePct,
		Total:    perf.AvgTickDuration,
	}, telemetry.Phases())

	g.controls = ui.ControlState{
		Paused:         g.paused,
		Parallel:       g.parallel,
		StepsPerUpdate: g.stepsPerUpdate,
		TiltX:          g.tiltX,
		TiltY:          g.tiltY,
	}
	actions := g.controlsPanel.Draw(&g.controls)
	g.applyControls(actions)

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}

// applyControls copies panel edits back into the game.
func (g *Game) applyControls(actions ui.ControlActions) {
	g.paused = g.controls.Paused
	g.SetParallel(g.controls.Parallel)
	g.stepsPerUpdate = g.controls.StepsPerUpdate
	if g.controls.TiltX != g.tiltX || g.controls.TiltY != g.tiltY {
		g.SetTilt(g.controls.TiltX, g.controls.TiltY)
	}

	if actions.Pulse {
		g.Pulse()
	}
	if actions.Snapshot {
		g.SaveSnapshot()
	}
	if actions.Reset {
		g.camera.Reset()
	}
}
