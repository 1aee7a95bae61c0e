// Package renderer draws the particle cloud with raylib.
package renderer

import (
	"math"

	"github.com/crazy3lf/colorconv"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bluewater/camera"
	"github.com/pthm-cable/bluewater/physics"
)

// paletteSize is the number of precomputed speed colours.
const paletteSize = 256

// Fovy is the vertical field of view in degrees.
const Fovy = 45

// ParticleRenderer draws particles as small cubes coloured by speed.
type ParticleRenderer struct {
	palette  [paletteSize]rl.Color
	maxSpeed float32 // speed mapped to the hottest colour, units per second
	size     rl.Vector3
}

// NewParticleRenderer creates a particle renderer. Speeds at or above maxSpeed
// share the hottest colour.
func NewParticleRenderer(maxSpeed float32) *ParticleRenderer {
	r := &ParticleRenderer{
		maxSpeed: maxSpeed,
		size:     rl.NewVector3(0.8, 0.8, 0.8),
	}
	for i := range r.palette {
		// Blue (240) for still water down to red (0) for the fastest particles.
		hue := 240 * (1 - float64(i)/(paletteSize-1))
		red, green, blue, _ := colorconv.HSVToRGB(hue, 0.85, 1)
		r.palette[i] = rl.NewColor(red, green, blue, 255)
	}
	return r
}

// SpeedColor returns the palette colour for a speed in units per second.
func (r *ParticleRenderer) SpeedColor(speed float32) rl.Color {
	if r.maxSpeed <= 0 || !(speed > 0) {
		return r.palette[0]
	}
	t := math.Min(float64(speed/r.maxSpeed), 1)
	return r.palette[int(t*(paletteSize-1))]
}

// Draw renders the particles inside a 3D mode block. dt converts per-step
// deltas into speeds.
func (r *ParticleRenderer) Draw(cam *camera.Camera, particles []physics.Particle, dt float32) {
	rl.BeginMode3D(Camera3D(cam))
	for i := range particles {
		p := &particles[i]
		pos := rl.NewVector3(p.Position.X(), p.Position.Y(), p.Position.Z())
		rl.DrawCubeV(pos, r.size, r.SpeedColor(p.Delta.Len()/dt))
	}
	rl.EndMode3D()
}

// Camera3D converts the orbit camera into a raylib camera.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	eye := cam.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(eye.X(), eye.Y(), eye.Z()),
		Target:     rl.NewVector3(cam.Target.X(), cam.Target.Y(), cam.Target.Z()),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       Fovy,
		Projection: rl.CameraPerspective,
	}
}
