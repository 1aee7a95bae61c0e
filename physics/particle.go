// Package physics implements the spatial-hash particle cloud: a position-based
// solver for unit-diameter particles inside an axis-aligned box of unit cells.
package physics

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle is a unit-diameter sphere. Delta is the displacement applied on the
// next integration and doubles as the particle's velocity per step.
type Particle struct {
	Position mgl32.Vec3
	Delta    mgl32.Vec3
}

// NewParticle returns a resting particle at pos.
func NewParticle(pos mgl32.Vec3) Particle {
	return Particle{Position: pos}
}

// Size is a grid extent in cells (and world units) per axis.
type Size struct {
	X, Y, Z int
}

// Cells returns the number of cells covered by the extent.
func (s Size) Cells() int {
	return s.X * s.Y * s.Z
}

// Contains reports whether the cell coordinate lies inside the extent.
func (s Size) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < s.X && y < s.Y && z < s.Z
}

// Vec3 returns the extent as a float vector.
func (s Size) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(s.X), float32(s.Y), float32(s.Z)}
}

// Generator produces the initial state of particle i. It is called exactly
// once per index, in ascending order, when a Cloud is built.
type Generator func(i int) Particle

// LatticeGenerator places particles on cell centres, filling x then z, and
// stacks each full layer spacing units above the previous one.
func LatticeGenerator(size Size, spacing float32) Generator {
	perLayer := size.X * size.Z
	return func(i int) Particle {
		layer := i / perLayer
		rem := i % perLayer
		x := rem % size.X
		z := rem / size.X
		return NewParticle(mgl32.Vec3{
			float32(x) + 0.5,
			float32(layer)*spacing + 0.5,
			float32(z) + 0.5,
		})
	}
}

// RandomGenerator places particles uniformly inside [0.5, axis-0.5] per axis.
func RandomGenerator(size Size, rng *rand.Rand) Generator {
	span := size.Vec3().Sub(mgl32.Vec3{1, 1, 1})
	return func(int) Particle {
		return NewParticle(mgl32.Vec3{
			0.5 + rng.Float32()*span.X(),
			0.5 + rng.Float32()*span.Y(),
			0.5 + rng.Float32()*span.Z(),
		})
	}
}

// SliceGenerator replays a previously captured particle array.
// Indices past the end of the slice yield resting particles at the origin.
func SliceGenerator(particles []Particle) Generator {
	return func(i int) Particle {
		if i < len(particles) {
			return particles[i]
		}
		return Particle{}
	}
}
