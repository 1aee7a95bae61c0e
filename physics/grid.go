package physics

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCellCapacity is the number of slots per cell unless configured.
const DefaultCellCapacity = 16

// Grid is a uniform spatial hash of unit cells. Each cell holds a fixed number
// of particle index slots; an atomic counter per cell claims slots so that
// Insert is safe to call concurrently for different particles.
type Grid struct {
	size     Size
	capacity int
	square   int            // X*Y, stride of one z layer
	counts   []atomic.Int32 // occupancy per cell, may exceed capacity after an overflow
	slots    []int32        // capacity slots per cell, flat
}

// NewGrid allocates a grid of the given extent. Memory is never resized.
func NewGrid(size Size, capacity int) *Grid {
	n := size.Cells()
	return &Grid{
		size:     size,
		capacity: capacity,
		square:   size.X * size.Y,
		counts:   make([]atomic.Int32, n),
		slots:    make([]int32, n*capacity),
	}
}

// Size returns the grid extent.
func (g *Grid) Size() Size { return g.size }

// Capacity returns the number of slots per cell.
func (g *Grid) Capacity() int { return g.capacity }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.counts) }

// Reset empties every cell. Slot contents are left in place; occupancy gates them.
func (g *Grid) Reset() {
	for i := range g.counts {
		g.counts[i].Store(0)
	}
}

// Index returns the linear index of a cell coordinate.
func (g *Grid) Index(x, y, z int) int {
	return x + y*g.size.X + z*g.square
}

// Coord returns the cell coordinate of a linear index.
func (g *Grid) Coord(idx int) (x, y, z int) {
	rem := idx % g.square
	return rem % g.size.X, rem / g.size.X, idx / g.square
}

// CellOf returns the cell containing pos. ok is false when pos is outside the
// grid or not finite.
func (g *Grid) CellOf(pos mgl32.Vec3) (x, y, z int, ok bool) {
	fx, fy, fz := float64(pos[0]), float64(pos[1]), float64(pos[2])
	// Negated comparisons also reject NaN.
	if !(fx >= 0 && fx < float64(g.size.X)) ||
		!(fy >= 0 && fy < float64(g.size.Y)) ||
		!(fz >= 0 && fz < float64(g.size.Z)) {
		return 0, 0, 0, false
	}
	return int(math.Floor(fx)), int(math.Floor(fy)), int(math.Floor(fz)), true
}

// Insert registers particle i in cell (x,y,z). It reports false without
// inserting when the coordinate is outside the grid. Claiming a slot past the
// cell capacity is a capacity error.
func (g *Grid) Insert(i int, x, y, z int) (bool, error) {
	if !g.size.Contains(x, y, z) {
		return false, nil
	}
	idx := g.Index(x, y, z)
	slot := int(g.counts[idx].Add(1)) - 1
	if slot >= g.capacity {
		return false, overflowError(x, y, z, g.capacity)
	}
	g.slots[idx*g.capacity+slot] = int32(i)
	return true, nil
}

// Count returns the number of particles in cell idx.
func (g *Grid) Count(idx int) int {
	return min(int(g.counts[idx].Load()), g.capacity)
}

// Slots returns the particle indices registered in cell idx.
// The slice aliases grid memory and is valid until the next Reset.
func (g *Grid) Slots(idx int) []int32 {
	base := idx * g.capacity
	return g.slots[base : base+g.Count(idx)]
}

// SortCells orders the slots of cells [lo, hi) by particle index, making the
// layout independent of the order in which concurrent inserts landed.
func (g *Grid) SortCells(lo, hi int) {
	for idx := lo; idx < hi; idx++ {
		s := g.Slots(idx)
		// Insertion sort: cells hold a handful of entries.
		for i := 1; i < len(s); i++ {
			v := s[i]
			j := i - 1
			for j >= 0 && s[j] > v {
				s[j+1] = s[j]
				j--
			}
			s[j+1] = v
		}
	}
}
