package physics

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// diameter is the particle diameter and the grid cell size.
const diameter float32 = 1.0

// cellOffset is a neighbour cell displacement.
type cellOffset struct{ dx, dy, dz int }

// halfStencil lists the 13 neighbours that come after a cell in z, y, x order.
// Together with the cell itself they cover every adjacent cell pair once.
var halfStencil = func() []cellOffset {
	var offs []cellOffset
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dz > 0 || (dz == 0 && dy > 0) || (dz == 0 && dy == 0 && dx > 0) {
					offs = append(offs, cellOffset{dx, dy, dz})
				}
			}
		}
	}
	return offs
}()

// resolveBounds pushes particles in [lo, hi) back inside the box. A particle
// closer than Margin to a wall is moved onto the margin plane and its delta is
// redirected by the push plus a WallBounce fraction of it.
func (c *Cloud) resolveBounds(lo, hi int) {
	m := c.params.Margin
	k := 1 + c.params.WallBounce
	for i := lo; i < hi; i++ {
		p := &c.particles[i]
		for axis := 0; axis < 3; axis++ {
			low, high := m, c.extent[axis]-m
			if depth := low - p.Position[axis]; depth >= 0 {
				p.Position[axis] = low
				p.Delta[axis] += depth * k
			} else if depth := p.Position[axis] - high; depth >= 0 {
				p.Position[axis] = high
				p.Delta[axis] -= depth * k
			}
		}
	}
}

// resolveSlab resolves every occupied cell with z in [z0, z1).
func (c *Cloud) resolveSlab(z0, z1 int) {
	g := c.grid
	square := g.size.X * g.size.Y
	for idx := z0 * square; idx < z1*square; idx++ {
		if g.Count(idx) == 0 {
			continue
		}
		if c.params.Stencil == StencilFull {
			c.visitFull(idx, c.resolvePair)
		} else {
			c.visitHalf(idx, c.resolvePair)
		}
	}
}

// visitHalf calls fn once for each unordered pair with one particle in cell idx
// and the other in idx or a following neighbour.
func (c *Cloud) visitHalf(idx int, fn func(i, j int32)) {
	g := c.grid
	own := g.Slots(idx)
	for a := 0; a < len(own); a++ {
		for b := a + 1; b < len(own); b++ {
			fn(own[a], own[b])
		}
	}

	x, y, z := g.Coord(idx)
	for _, o := range halfStencil {
		nx, ny, nz := x+o.dx, y+o.dy, z+o.dz
		if !g.size.Contains(nx, ny, nz) {
			continue
		}
		other := g.Slots(g.Index(nx, ny, nz))
		for _, i := range own {
			for _, j := range other {
				fn(i, j)
			}
		}
	}
}

// visitFull calls fn for every ordered pair of distinct particles with the
// first in cell idx and the second anywhere in its 3x3x3 neighbourhood.
func (c *Cloud) visitFull(idx int, fn func(i, j int32)) {
	g := c.grid
	x, y, z := g.Coord(idx)
	for _, i := range g.Slots(idx) {
		for nz := z - 1; nz <= z+1; nz++ {
			for ny := y - 1; ny <= y+1; ny++ {
				for nx := x - 1; nx <= x+1; nx++ {
					if !g.size.Contains(nx, ny, nz) {
						continue
					}
					for _, j := range g.Slots(g.Index(nx, ny, nz)) {
						if i != j {
							fn(i, j)
						}
					}
				}
			}
		}
	}
}

// resolvePair separates two overlapping particles and, when they close in
// fast enough, exchanges an impulse along the contact normal.
func (c *Cloud) resolvePair(i, j int32) {
	p1, p2 := &c.particles[i], &c.particles[j]

	pv := p1.Position.Sub(p2.Position)
	dist := pv.Len()
	if dist >= diameter {
		return
	}

	var n mgl32.Vec3
	if dist == 0 {
		n = coincidentNormal(i, j, c.steps)
	} else {
		n = pv.Mul(1 / dist)
	}

	depth := (diameter - dist) * 0.5 * c.params.Correction
	push(p1, n.Mul(depth))
	push(p2, n.Mul(-depth))

	closing := p2.Delta.Sub(p1.Delta).Dot(n)
	impulse := (1 + c.params.Bounce) * closing * 0.5
	if impulse > c.params.ImpulseThreshold {
		p1.Delta = p1.Delta.Add(n.Mul(impulse))
		p2.Delta = p2.Delta.Sub(n.Mul(impulse))
	}
}

// push moves a particle and carries the displacement into its delta.
func push(p *Particle, v mgl32.Vec3) {
	p.Position = p.Position.Add(v)
	p.Delta = p.Delta.Add(v)
}

// coincidentNormal returns a unit vector for two particles at the same spot.
// It is seeded by the pair and the step, so repeated runs stay reproducible.
func coincidentNormal(i, j int32, step uint64) mgl32.Vec3 {
	rng := rand.New(rand.NewPCG(uint64(uint32(i))<<32|uint64(uint32(j)), step))
	z := rng.Float64()*2 - 1
	phi := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return mgl32.Vec3{float32(r * math.Cos(phi)), float32(r * math.Sin(phi)), float32(z)}
}

// Overlaps counts particle pairs closer than one diameter, using the grid
// filled by the last rebucket.
func (c *Cloud) Overlaps() int {
	count := 0
	for idx := 0; idx < c.grid.Len(); idx++ {
		if c.grid.Count(idx) == 0 {
			continue
		}
		c.visitHalf(idx, func(i, j int32) {
			if c.particles[i].Position.Sub(c.particles[j].Position).Len() < diameter {
				count++
			}
		})
	}
	return count
}
