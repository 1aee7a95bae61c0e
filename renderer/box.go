package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/bluewater/camera"
	"github.com/pthm-cable/bluewater/physics"
)

// BoxRenderer draws the simulation domain as a wireframe with a floor grid.
type BoxRenderer struct {
	edge  rl.Color
	floor rl.Color
}

// NewBoxRenderer creates a box renderer.
func NewBoxRenderer() *BoxRenderer {
	return &BoxRenderer{
		edge:  rl.Color{R: 120, G: 170, B: 210, A: 255},
		floor: rl.Color{R: 40, G: 70, B: 100, A: 255},
	}
}

// Draw renders the domain extent and an arrow for the current acceleration.
func (b *BoxRenderer) Draw(cam *camera.Camera, size physics.Size, acc rl.Vector3) {
	ext := size.Vec3()
	centre := rl.NewVector3(ext.X()/2, ext.Y()/2, ext.Z()/2)

	rl.BeginMode3D(Camera3D(cam))
	rl.DrawCubeWiresV(centre, rl.NewVector3(ext.X(), ext.Y(), ext.Z()), b.edge)

	for x := 0; x <= size.X; x += 4 {
		rl.DrawLine3D(rl.NewVector3(float32(x), 0, 0), rl.NewVector3(float32(x), 0, ext.Z()), b.floor)
	}
	for z := 0; z <= size.Z; z += 4 {
		rl.DrawLine3D(rl.NewVector3(0, 0, float32(z)), rl.NewVector3(ext.X(), 0, float32(z)), b.floor)
	}

	// Acceleration arrow from the box centre, one unit per m/s².
	tip := rl.Vector3Add(centre, acc)
	rl.DrawLine3D(centre, tip, rl.Yellow)
	rl.DrawSphere(tip, 0.3, rl.Yellow)
	rl.EndMode3D()
}
