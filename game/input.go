package game

import rl "github.com/gen2brain/raylib-go/raylib"

// controlsLegend is drawn along the bottom of the window.
const controlsLegend = "Space: pause | T: threads | </>: speed | Arrows: tilt | P: pulse | S: snapshot | H: panel | RMB: orbit | Wheel: zoom | R: reset view"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.SetParallel(!g.parallel)
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < maxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyP) {
		g.Pulse()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.SaveSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyH) && g.controlsPanel != nil {
		g.controlsPanel.Toggle()
	}

	g.handleTilt()
	g.handleCameraInput()
}

// handleTilt maps held arrow keys onto the tilt axes. Releasing a key
// leaves the slider value in place.
func (g *Game) handleTilt() {
	x, y := g.tiltX, g.tiltY
	const rate = 0.02
	if rl.IsKeyDown(rl.KeyLeft) {
		x -= rate
	}
	if rl.IsKeyDown(rl.KeyRight) {
		x += rate
	}
	if rl.IsKeyDown(rl.KeyDown) {
		y -= rate
	}
	if rl.IsKeyDown(rl.KeyUp) {
		y += rate
	}
	if x != g.tiltX || y != g.tiltY {
		g.SetTilt(x, y)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.background.Resize(int32(w), int32(h))
	g.controlsPanel.SetPosition(int32(w)-270, 10)
}

// handleCameraInput orbits with the right mouse button and zooms with the
// wheel.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(d.X, d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
	}
}
