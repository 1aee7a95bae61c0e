// Package components defines ECS components for the acceleration sources that
// drive the particle cloud.
package components

import "github.com/go-gl/mathgl/mgl32"

// Acceleration is the contribution of one source to the cloud's acceleration.
// The scene sums every Acceleration each frame.
type Acceleration struct {
	Vec mgl32.Vec3
}

// Spin rotates a base vector about the z axis.
type Spin struct {
	Base  mgl32.Vec3
	Speed float32 // radians per second
	Angle float32 // radians
}

// Lifetime counts down the seconds a transient source stays alive.
type Lifetime struct {
	Remaining float32
}

// Tilt marks the source driven by device tilt input.
type Tilt struct {
	Strength float32 // acceleration per unit of input
}
