// Package camera provides an orbit camera around the simulation box.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point at a given distance.
type Camera struct {
	// Target is the orbit centre in world coordinates
	Target mgl32.Vec3

	// Yaw rotates about the world y axis, Pitch tilts above the xz plane (radians)
	Yaw, Pitch float32

	// Distance from target
	Distance float32

	// Zoom constraints
	MinDistance, MaxDistance float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	home pose
}

// pose is the orientation restored by Reset.
type pose struct {
	Yaw, Pitch, Distance float32
}

const maxPitch = math.Pi/2 - 0.05

// New creates a camera looking at the centre of a box of the given extent.
func New(viewportW, viewportH float32, extent mgl32.Vec3) *Camera {
	diag := extent.Len()
	c := &Camera{
		Target:      extent.Mul(0.5),
		Yaw:         0.6,
		Pitch:       0.35,
		Distance:    diag * 1.2,
		MinDistance: diag * 0.25,
		MaxDistance: diag * 4,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
	}
	c.home = pose{Yaw: c.Yaw, Pitch: c.Pitch, Distance: c.Distance}
	return c
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// Orbit rotates the camera by the given screen-pixel drag.
func (c *Camera) Orbit(dx, dy float32) {
	const sensitivity = 0.005
	c.Yaw = float32(math.Mod(float64(c.Yaw-dx*sensitivity), 2*math.Pi))
	c.Pitch = clamp(c.Pitch+dy*sensitivity, -maxPitch, maxPitch)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Reset returns the camera to its initial pose.
func (c *Camera) Reset() {
	c.Yaw = c.home.Yaw
	c.Pitch = c.home.Pitch
	c.Distance = c.home.Distance
}

// WorldToScreen projects a world point with a perspective of fovy radians.
// ok is false for points behind the camera.
func (c *Camera) WorldToScreen(p mgl32.Vec3, fovy float32) (sx, sy float32, ok bool) {
	view := mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(fovy, c.Aspect(), 0.1, c.MaxDistance*4)
	clip := proj.Mul4(view).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	sx = (ndc.X() + 1) * 0.5 * c.ViewportW
	sy = (1 - ndc.Y()) * 0.5 * c.ViewportH
	return sx, sy, true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
