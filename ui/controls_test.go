package ui

import (
	"math"
	"testing"
)

func TestStepsFromSlider(t *testing.T) {
	tests := []struct {
		in   float32
		want int
	}{
		{0, 1},
		{1, 1},
		{1.4, 1},
		{1.6, 2},
		{9.7, 10},
		{25, MaxStepsPerUpdate},
		{-3, 1},
	}
	for _, tc := range tests {
		if got := StepsFromSlider(tc.in); got != tc.want {
			t.Errorf("StepsFromSlider(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{3, 1},
		{float32(math.NaN()), 0},
	}
	for _, tc := range tests {
		if got := Clamp01(tc.in); got != tc.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToggleText(t *testing.T) {
	if toggleText(true, "on", "off") != "on" || toggleText(false, "on", "off") != "off" {
		t.Error("toggleText picked the wrong label")
	}
}

func TestControlsPanel_Toggle(t *testing.T) {
	c := NewControlsPanel(0, 0, 200)
	if !c.IsVisible() {
		t.Fatal("panel should start visible")
	}
	if c.Toggle() || c.IsVisible() {
		t.Error("Toggle should hide the panel")
	}
	// Hidden panel draws nothing and reports no actions.
	state := &ControlState{StepsPerUpdate: 3}
	if got := c.Draw(state); got != (ControlActions{}) {
		t.Errorf("hidden Draw actions = %+v", got)
	}
	if state.StepsPerUpdate != 3 {
		t.Error("hidden Draw changed state")
	}
}
