package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlState is the value set edited by the control panel.
type ControlState struct {
	Paused         bool
	Parallel       bool
	StepsPerUpdate int
	TiltX, TiltY   float32 // [-1, 1]
}

// ControlActions reports one-shot buttons pressed this frame.
type ControlActions struct {
	Pulse    bool
	Snapshot bool
	Reset    bool
}

// MaxStepsPerUpdate bounds the speed slider.
const MaxStepsPerUpdate = 10

// ControlsPanel renders the right-side raygui control panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and applies widget input to state.
func (c *ControlsPanel) Draw(state *ControlState) ControlActions {
	var actions ControlActions
	if !c.visible {
		return actions
	}

	r := c.renderer
	pad := float32(r.Theme.Padding)
	c.renderer.DrawPanel(c.x, c.y, c.width, 250)

	x := float32(c.x) + pad
	y := float32(c.y) + pad
	w := float32(c.width) - 2*pad
	half := (w - pad) / 2

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 24

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + pad, Y: y, Width: half, Height: 24}, toggleText(state.Parallel, "Single thread", "Parallel")) {
		state.Parallel = !state.Parallel
	}
	y += 32

	sliderW := w - 60
	rl.DrawText(fmt.Sprintf("Steps per update: %d", state.StepsPerUpdate), int32(x), int32(y), 12, rl.Gray)
	y += 14
	steps := gui.SliderBar(rl.Rectangle{X: x + 20, Y: y, Width: sliderW, Height: 16}, "1", fmt.Sprint(MaxStepsPerUpdate),
		float32(state.StepsPerUpdate), 1, MaxStepsPerUpdate)
	state.StepsPerUpdate = StepsFromSlider(steps)
	y += 24

	rl.DrawText("Tilt X", int32(x), int32(y), 12, rl.Gray)
	y += 14
	state.TiltX = gui.SliderBar(rl.Rectangle{X: x + 20, Y: y, Width: sliderW, Height: 16}, "-1", "1", state.TiltX, -1, 1)
	y += 24

	rl.DrawText("Tilt Y", int32(x), int32(y), 12, rl.Gray)
	y += 14
	state.TiltY = gui.SliderBar(rl.Rectangle{X: x + 20, Y: y, Width: sliderW, Height: 16}, "-1", "1", state.TiltY, -1, 1)
	y += 28

	third := (w - 2*pad) / 3
	actions.Pulse = gui.Button(rl.Rectangle{X: x, Y: y, Width: third, Height: 24}, "Pulse")
	actions.Snapshot = gui.Button(rl.Rectangle{X: x + third + pad, Y: y, Width: third, Height: 24}, "Snapshot")
	actions.Reset = gui.Button(rl.Rectangle{X: x + 2*(third+pad), Y: y, Width: third, Height: 24}, "Camera")

	return actions
}

// StepsFromSlider rounds a slider value to a valid steps-per-update count.
func StepsFromSlider(v float32) int {
	n := int(v + 0.5)
	return max(1, min(n, MaxStepsPerUpdate))
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
