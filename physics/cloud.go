package physics

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bluewater/workers"
)

// Phase names reported to an Observer.
const (
	PhaseIntegrate = "integrate"
	PhaseBounds    = "bounds"
	PhaseRebucket  = "rebucket"
	PhaseResolve   = "resolve"
)

// parallelThreshold is the minimum item count to split a phase across workers.
// Below this, running inline is faster than dispatching.
const parallelThreshold = 64

// slabDepth is the number of z layers resolved by one task. Two layers keep
// alternate slabs apart even for the full 27-cell stencil.
const slabDepth = 2

// Pool runs phase tasks. *workers.Pool satisfies it.
type Pool interface {
	Submit(fn func() error) *workers.Task
	Workers() int
}

// Observer is notified when each simulation phase starts.
type Observer interface {
	StartPhase(name string)
}

// Cloud owns a fixed particle array and the grid used to resolve it.
// Particle indices are stable for the lifetime of the cloud.
type Cloud struct {
	size      Size
	extent    mgl32.Vec3
	grid      *Grid
	particles []Particle
	pool      Pool
	params    Params
	observer  Observer

	steps    uint64
	excluded atomic.Int64
	err      error // sticky fatal error
}

// New builds a cloud of count particles produced by gen. pool may be nil, in
// which case every phase runs on the calling goroutine.
func New(size Size, count int, gen Generator, pool Pool, params Params) (*Cloud, error) {
	switch {
	case size.X <= 0:
		return nil, ConfigError("grid.width", size.X)
	case size.Y <= 0:
		return nil, ConfigError("grid.height", size.Y)
	case size.Z <= 0:
		return nil, ConfigError("grid.depth", size.Z)
	case count <= 0:
		return nil, ConfigError("particles.count", count)
	case gen == nil:
		return nil, ConfigError("generator", "nil")
	}
	if pool != nil && pool.Workers() <= 0 {
		return nil, workersError(pool.Workers())
	}
	if err := params.Validate(size); err != nil {
		return nil, err
	}

	c := &Cloud{
		size:      size,
		extent:    size.Vec3(),
		grid:      NewGrid(size, params.CellCapacity),
		particles: make([]Particle, count),
		pool:      pool,
		params:    params,
	}
	for i := range c.particles {
		c.particles[i] = gen(i)
	}
	return c, nil
}

// SetObserver registers o to receive phase notifications. nil disables them.
func (c *Cloud) SetObserver(o Observer) {
	c.observer = o
}

// Particles returns the particle array. The slice aliases the cloud's storage:
// callers must not modify it and must not hold it across Update.
func (c *Cloud) Particles() []Particle {
	return c.particles
}

// GridSize returns the fixed grid extent.
func (c *Cloud) GridSize() Size { return c.size }

// Params returns the solver tuning.
func (c *Cloud) Params() Params { return c.params }

// Len returns the particle count.
func (c *Cloud) Len() int { return len(c.particles) }

// Steps returns the number of completed updates.
func (c *Cloud) Steps() uint64 { return c.steps }

// Excluded returns how many particles fell outside the grid in the last rebucket.
func (c *Cloud) Excluded() int { return int(c.excluded.Load()) }

// Err returns the fatal error that stopped the cloud, if any.
func (c *Cloud) Err() error { return c.err }

// Update advances the simulation by one step of dt under acceleration acc.
// With parallel set and a pool present, each phase is split across workers;
// the result is identical to a serial update.
func (c *Cloud) Update(acc mgl32.Vec3, dt float32, parallel bool) error {
	if c.err != nil {
		return c.err
	}
	if !(dt > 0) || math.IsInf(float64(dt), 1) {
		return ConfigError("dt", dt)
	}
	parallel = parallel && c.pool != nil

	if err := c.step(acc.Mul(dt*dt), parallel); err != nil {
		c.err = err
		return err
	}
	c.steps++
	return nil
}

func (c *Cloud) step(accStep mgl32.Vec3, parallel bool) error {
	c.startPhase(PhaseIntegrate)
	err := c.forRange(parallel, len(c.particles), func(lo, hi int) error {
		c.integrate(lo, hi, accStep)
		return nil
	})
	if err != nil {
		return err
	}

	for it := 0; it < c.params.SolverIterations; it++ {
		c.startPhase(PhaseBounds)
		if err := c.bounds(parallel); err != nil {
			return err
		}

		c.startPhase(PhaseRebucket)
		if err := c.rebucket(parallel); err != nil {
			return err
		}

		c.startPhase(PhaseResolve)
		if err := c.resolve(parallel); err != nil {
			return err
		}
	}

	// Pairwise pushes can move particles past a wall; settle them before returning.
	c.startPhase(PhaseBounds)
	return c.bounds(parallel)
}

func (c *Cloud) startPhase(name string) {
	if c.observer != nil {
		c.observer.StartPhase(name)
	}
}

// integrate applies the per-step acceleration and moves every particle by its delta.
func (c *Cloud) integrate(lo, hi int, step mgl32.Vec3) {
	for i := lo; i < hi; i++ {
		p := &c.particles[i]
		p.Delta = p.Delta.Add(step)
		p.Position = p.Position.Add(p.Delta)
	}
}

func (c *Cloud) bounds(parallel bool) error {
	return c.forRange(parallel, len(c.particles), func(lo, hi int) error {
		c.resolveBounds(lo, hi)
		return nil
	})
}

// rebucket refills the grid from current positions.
func (c *Cloud) rebucket(parallel bool) error {
	c.grid.Reset()
	c.excluded.Store(0)

	err := c.forRange(parallel, len(c.particles), c.fill)
	if err != nil {
		return err
	}

	if parallel {
		// Concurrent inserts land in arbitrary slot order.
		return c.forRange(true, c.grid.Len(), func(lo, hi int) error {
			c.grid.SortCells(lo, hi)
			return nil
		})
	}
	return nil
}

func (c *Cloud) fill(lo, hi int) error {
	var excluded int64
	for i := lo; i < hi; i++ {
		x, y, z, ok := c.grid.CellOf(c.particles[i].Position)
		if !ok {
			excluded++
			continue
		}
		if _, err := c.grid.Insert(i, x, y, z); err != nil {
			return err
		}
	}
	if excluded > 0 {
		c.excluded.Add(excluded)
	}
	return nil
}

// resolve runs pairwise resolution over z slabs. Even slabs run first, then odd
// slabs, so slabs running at the same time never share a cell.
func (c *Cloud) resolve(parallel bool) error {
	nz := c.size.Z
	slabs := (nz + slabDepth - 1) / slabDepth

	for pass := 0; pass < 2; pass++ {
		if !parallel || slabs < 2 {
			for s := pass; s < slabs; s += 2 {
				c.resolveSlab(s*slabDepth, min((s+1)*slabDepth, nz))
			}
			continue
		}

		tasks := make([]*workers.Task, 0, slabs/2+1)
		for s := pass; s < slabs; s += 2 {
			z0, z1 := s*slabDepth, min((s+1)*slabDepth, nz)
			tasks = append(tasks, c.pool.Submit(func() error {
				c.resolveSlab(z0, z1)
				return nil
			}))
		}
		if err := wait(tasks); err != nil {
			return err
		}
	}
	return nil
}

// forRange runs fn over [0, n), split into one chunk per worker when parallel.
func (c *Cloud) forRange(parallel bool, n int, fn func(lo, hi int) error) error {
	if !parallel || n < parallelThreshold {
		return fn(0, n)
	}

	numWorkers := c.pool.Workers()
	chunkSize := (n + numWorkers - 1) / numWorkers

	tasks := make([]*workers.Task, 0, numWorkers)
	for start := 0; start < n; start += chunkSize {
		lo, hi := start, min(start+chunkSize, n)
		tasks = append(tasks, c.pool.Submit(func() error {
			return fn(lo, hi)
		}))
	}
	return wait(tasks)
}

// wait blocks on every task and returns the first error.
func wait(tasks []*workers.Task) error {
	var first error
	for _, t := range tasks {
		if err := t.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
