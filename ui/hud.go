package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Particles      int
	Excluded       int
	Step           uint64
	StepsPerUpdate int
	FPS            int32
	PhysicsMS      float64
	RenderMS       float64
	Workers        int
	Parallel       bool
	Stencil        string
	Paused         bool
	AccX, AccY     float32
	ScreenHeight   int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Excluded: %d | Stencil: %s", data.Particles, data.Excluded, data.Stencil),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Step: %d | Speed: %dx | FPS: %d | Physics: %.2f ms | Render: %.2f ms",
			data.Step, data.StepsPerUpdate, data.FPS, data.PhysicsMS, data.RenderMS),
		10, 55, 16, rl.LightGray,
	)

	mode := "single thread"
	if data.Parallel {
		mode = fmt.Sprintf("%d workers", data.Workers)
	}
	rl.DrawText(
		fmt.Sprintf("Mode: %s | Gravity: (%.1f, %.1f)", mode, data.AccX, data.AccY),
		10, 75, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds per-phase timing for display.
type PerfPanelData struct {
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64
	Total    time.Duration
}

// PerfPanel renders the phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel with one bar per phase, in the given order.
func (p *PerfPanel) Draw(data PerfPanelData, phases []string) {
	r := p.renderer
	height := r.Theme.LineHeight*int32(len(phases)+2) + 2*r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Tick %s", data.Total.Round(time.Microsecond)))

	inner := p.width - 2*r.Theme.Padding
	for _, name := range phases {
		y = r.DrawBar(x, y, name, float32(data.PhasePct[name]/100), inner)
	}
}
