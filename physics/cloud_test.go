package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bluewater/workers"
)

// fixedGenerator places the given positions at rest.
func fixedGenerator(positions ...mgl32.Vec3) Generator {
	return func(i int) Particle {
		return NewParticle(positions[i])
	}
}

func newTestPool(t *testing.T, n int) *workers.Pool {
	t.Helper()
	p, err := workers.New(n)
	if err != nil {
		t.Fatalf("workers.New(%d): %v", n, err)
	}
	t.Cleanup(p.Close)
	return p
}

// bruteOverlaps counts pairs closer than one diameter without the grid.
func bruteOverlaps(ps []Particle) int {
	n := 0
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if ps[i].Position.Sub(ps[j].Position).Len() < diameter {
				n++
			}
		}
	}
	return n
}

type zeroPool struct{}

func (zeroPool) Submit(fn func() error) *workers.Task { return nil }
func (zeroPool) Workers() int                         { return 0 }

func TestNew_ConfigErrors(t *testing.T) {
	gen := fixedGenerator(mgl32.Vec3{1, 1, 1})
	valid := Size{X: 4, Y: 4, Z: 4}

	badIterations := DefaultParams()
	badIterations.SolverIterations = 0
	badCapacity := DefaultParams()
	badCapacity.CellCapacity = -1
	badMargin := DefaultParams()
	badMargin.Margin = 0

	tests := []struct {
		name   string
		size   Size
		count  int
		gen    Generator
		pool   Pool
		params Params
		code   uint32
	}{
		{"zero width", Size{X: 0, Y: 4, Z: 4}, 1, gen, nil, DefaultParams(), CodeInvalidConfig},
		{"negative depth", Size{X: 4, Y: 4, Z: -2}, 1, gen, nil, DefaultParams(), CodeInvalidConfig},
		{"zero particles", valid, 0, gen, nil, DefaultParams(), CodeInvalidConfig},
		{"nil generator", valid, 1, nil, nil, DefaultParams(), CodeInvalidConfig},
		{"zero workers", valid, 1, gen, zeroPool{}, DefaultParams(), CodeInvalidWorkers},
		{"zero iterations", valid, 1, gen, nil, badIterations, CodeInvalidConfig},
		{"negative capacity", valid, 1, gen, nil, badCapacity, CodeInvalidConfig},
		{"zero margin", valid, 1, gen, nil, badMargin, CodeInvalidConfig},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.size, tc.count, tc.gen, tc.pool, tc.params)
			if c != nil {
				t.Error("expected nil cloud")
			}
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("error = %v, want ErrConfig", err)
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not *Error", err)
			}
			if perr.Code != tc.code {
				t.Errorf("code = %#x, want %#x", perr.Code, tc.code)
			}
		})
	}
}

func TestNew_GeneratorCalledOncePerIndex(t *testing.T) {
	var calls []int
	gen := func(i int) Particle {
		calls = append(calls, i)
		return NewParticle(mgl32.Vec3{1.5, 1.5, 1.5})
	}

	c, err := New(Size{X: 4, Y: 4, Z: 4}, 5, gen, nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
	for i, v := range calls {
		if v != i {
			t.Fatalf("calls = %v, want 0..4 in order", calls)
		}
	}
	if len(calls) != 5 {
		t.Errorf("generator called %d times, want 5", len(calls))
	}
	if got := c.GridSize(); got != (Size{X: 4, Y: 4, Z: 4}) {
		t.Errorf("GridSize() = %v", got)
	}
}

func TestUpdate_InvalidDT(t *testing.T) {
	c, err := New(Size{X: 4, Y: 4, Z: 4}, 1, fixedGenerator(mgl32.Vec3{2, 2, 2}), nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, dt := range []float32{0, -0.01, float32(math.NaN()), float32(math.Inf(1))} {
		if err := c.Update(mgl32.Vec3{}, dt, false); !errors.Is(err, ErrConfig) {
			t.Errorf("Update(dt=%v) = %v, want ErrConfig", dt, err)
		}
	}
	if c.Steps() != 0 {
		t.Errorf("Steps() = %d after rejected updates, want 0", c.Steps())
	}
}

func TestUpdate_BoundaryClamp(t *testing.T) {
	c, err := New(Size{X: 10, Y: 10, Z: 10}, 1, fixedGenerator(mgl32.Vec3{-5, 5, 5}), nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	p := c.Particles()[0]
	if p.Position.X() < 0.5 {
		t.Errorf("x = %f, want >= 0.5", p.Position.X())
	}
	if p.Delta.X() <= 0 {
		t.Errorf("delta.x = %f, want a push back into the box", p.Delta.X())
	}
}

func TestUpdate_TwoCollidingParticles(t *testing.T) {
	params := DefaultParams()
	params.SolverIterations = 1

	c, err := New(Size{X: 10, Y: 10, Z: 10}, 2,
		fixedGenerator(mgl32.Vec3{5.25, 5.5, 5.5}, mgl32.Vec3{4.75, 5.5, 5.5}), nil, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ps := c.Particles()
	dist := ps[0].Position.Sub(ps[1].Position).Len()
	want := 0.5 + 0.5*params.Correction
	if math.Abs(float64(dist-want)) > 1e-5 {
		t.Errorf("separation = %f, want %f", dist, want)
	}
	// Equal and opposite push.
	mid := ps[0].Position.Add(ps[1].Position).Mul(0.5)
	if math.Abs(float64(mid.X()-5)) > 1e-5 {
		t.Errorf("midpoint x = %f, want 5", mid.X())
	}
}

func TestUpdate_CoincidentParticles(t *testing.T) {
	pos := mgl32.Vec3{5.5, 5.5, 5.5}
	c, err := New(Size{X: 10, Y: 10, Z: 10}, 2, fixedGenerator(pos, pos), nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ps := c.Particles()
	for i, p := range ps {
		for axis := 0; axis < 3; axis++ {
			if math.IsNaN(float64(p.Position[axis])) {
				t.Fatalf("particle %d position is NaN", i)
			}
		}
	}
	if dist := ps[0].Position.Sub(ps[1].Position).Len(); dist < 0.99 {
		t.Errorf("coincident particles separated to %f, want ~1", dist)
	}
}

func TestUpdate_ImpulseThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float32
		wantD1    float32
		wantD2    float32
	}{
		{"exchange above threshold", 0, -0.25, 0.25},
		{"no exchange below threshold", 1, 0.5, -0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			params.SolverIterations = 1
			params.ImpulseThreshold = tc.threshold

			gen := func(i int) Particle {
				if i == 0 {
					return Particle{Position: mgl32.Vec3{4, 5.5, 5.5}, Delta: mgl32.Vec3{0.7, 0, 0}}
				}
				return Particle{Position: mgl32.Vec3{6, 5.5, 5.5}, Delta: mgl32.Vec3{-0.7, 0, 0}}
			}
			c, err := New(Size{X: 10, Y: 10, Z: 10}, 2, gen, nil, params)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
				t.Fatalf("Update: %v", err)
			}

			ps := c.Particles()
			if d := ps[0].Delta.X(); math.Abs(float64(d-tc.wantD1)) > 1e-4 {
				t.Errorf("delta1.x = %f, want %f", d, tc.wantD1)
			}
			if d := ps[1].Delta.X(); math.Abs(float64(d-tc.wantD2)) > 1e-4 {
				t.Errorf("delta2.x = %f, want %f", d, tc.wantD2)
			}
		})
	}
}

func TestUpdate_Containment(t *testing.T) {
	size := Size{X: 10, Y: 12, Z: 8}
	rng := rand.New(rand.NewSource(7))
	c, err := New(size, 300, RandomGenerator(size, rng), nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	acc := mgl32.Vec3{3, -9.8, 1}
	for step := 0; step < 60; step++ {
		if err := c.Update(acc, 0.05, false); err != nil {
			t.Fatalf("Update %d: %v", step, err)
		}
		ext := size.Vec3()
		for i, p := range c.Particles() {
			for axis := 0; axis < 3; axis++ {
				v := p.Position[axis]
				if v < 0.5 || v > ext[axis]-0.5 {
					t.Fatalf("step %d particle %d axis %d = %f outside [0.5, %f]", step, i, axis, v, ext[axis]-0.5)
				}
			}
		}
		if c.Len() != 300 || len(c.Particles()) != 300 {
			t.Fatalf("particle count changed to %d", len(c.Particles()))
		}
	}
	if c.Steps() != 60 {
		t.Errorf("Steps() = %d, want 60", c.Steps())
	}
}

func TestUpdate_OverlapsRelax(t *testing.T) {
	for _, stencil := range []Stencil{StencilHalf, StencilFull} {
		t.Run(stencil.String(), func(t *testing.T) {
			size := Size{X: 8, Y: 8, Z: 8}
			params := DefaultParams()
			params.Stencil = stencil

			rng := rand.New(rand.NewSource(42))
			c, err := New(size, 100, RandomGenerator(size, rng), nil, params)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			initial := bruteOverlaps(c.Particles())
			if initial == 0 {
				t.Fatal("random start has no overlaps; pick another seed")
			}
			for step := 0; step < 30; step++ {
				if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
					t.Fatalf("Update: %v", err)
				}
			}

			final := bruteOverlaps(c.Particles())
			if final >= initial {
				t.Errorf("overlaps went from %d to %d, want a decrease", initial, final)
			}
		})
	}
}

func TestUpdate_CapacityExceeded(t *testing.T) {
	params := DefaultParams()
	params.CellCapacity = 4

	pos := mgl32.Vec3{5.5, 5.5, 5.5}
	positions := make([]mgl32.Vec3, 8)
	for i := range positions {
		positions[i] = pos
	}

	c, err := New(Size{X: 10, Y: 10, Z: 10}, len(positions), fixedGenerator(positions...), nil, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.Update(mgl32.Vec3{}, 0.01, false)
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("Update error = %v, want ErrCapacity", err)
	}
	if errors.Is(err, ErrConfig) {
		t.Error("capacity error must not match ErrConfig")
	}

	// The failure is sticky.
	if err2 := c.Update(mgl32.Vec3{}, 0.01, false); err2 != err {
		t.Errorf("second Update = %v, want the first error", err2)
	}
	if c.Err() != err {
		t.Errorf("Err() = %v, want %v", c.Err(), err)
	}
}

func TestUpdate_ExcludesNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	c, err := New(Size{X: 6, Y: 6, Z: 6}, 2,
		fixedGenerator(mgl32.Vec3{nan, 3, 3}, mgl32.Vec3{2.5, 2.5, 2.5}), nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := c.Excluded(); got != 1 {
		t.Errorf("Excluded() = %d, want 1", got)
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	run := func() []Particle {
		size := Size{X: 12, Y: 12, Z: 12}
		c, err := New(size, 600, RandomGenerator(size, rand.New(rand.NewSource(3))), nil, DefaultParams())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := 0; i < 20; i++ {
			if err := c.Update(mgl32.Vec3{0, -9.8, 0}, 0.02, false); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
		return append([]Particle(nil), c.Particles()...)
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestUpdate_ParallelMatchesSerial(t *testing.T) {
	for _, stencil := range []Stencil{StencilHalf, StencilFull} {
		t.Run(stencil.String(), func(t *testing.T) {
			size := Size{X: 16, Y: 16, Z: 16}
			params := DefaultParams()
			params.Stencil = stencil
			pool := newTestPool(t, 4)

			build := func() *Cloud {
				gen := RandomGenerator(size, rand.New(rand.NewSource(11)))
				c, err := New(size, 1500, gen, pool, params)
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				return c
			}
			serial, parallel := build(), build()

			acc := mgl32.Vec3{0, -9.8, 2}
			for i := 0; i < 15; i++ {
				if err := serial.Update(acc, 0.02, false); err != nil {
					t.Fatalf("serial Update: %v", err)
				}
				if err := parallel.Update(acc, 0.02, true); err != nil {
					t.Fatalf("parallel Update: %v", err)
				}
			}

			sp, pp := serial.Particles(), parallel.Particles()
			for i := range sp {
				if sp[i] != pp[i] {
					t.Fatalf("particle %d: serial %v, parallel %v", i, sp[i], pp[i])
				}
			}
		})
	}
}

type phaseRecorder struct{ phases []string }

func (r *phaseRecorder) StartPhase(name string) { r.phases = append(r.phases, name) }

func TestUpdate_ObserverPhases(t *testing.T) {
	c, err := New(Size{X: 4, Y: 4, Z: 4}, 1, fixedGenerator(mgl32.Vec3{2, 2, 2}), nil, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec := &phaseRecorder{}
	c.SetObserver(rec)

	if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := []string{
		PhaseIntegrate,
		PhaseBounds, PhaseRebucket, PhaseResolve,
		PhaseBounds, PhaseRebucket, PhaseResolve,
		PhaseBounds,
	}
	if len(rec.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", rec.phases, want)
	}
	for i := range want {
		if rec.phases[i] != want[i] {
			t.Errorf("phase %d = %s, want %s", i, rec.phases[i], want[i])
		}
	}
}

func TestLatticeGenerator(t *testing.T) {
	gen := LatticeGenerator(Size{X: 3, Y: 10, Z: 2}, 2)

	tests := []struct {
		i    int
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{0.5, 0.5, 0.5}},
		{2, mgl32.Vec3{2.5, 0.5, 0.5}},
		{3, mgl32.Vec3{0.5, 0.5, 1.5}},
		{6, mgl32.Vec3{0.5, 2.5, 0.5}},
		{11, mgl32.Vec3{2.5, 2.5, 1.5}},
	}
	for _, tc := range tests {
		if got := gen(tc.i).Position; got != tc.want {
			t.Errorf("gen(%d) = %v, want %v", tc.i, got, tc.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	params := DefaultParams()
	params.SolverIterations = 1
	params.Correction = 0.1

	c, err := New(Size{X: 6, Y: 6, Z: 6}, 3, fixedGenerator(
		mgl32.Vec3{2.5, 2.5, 2.5},
		mgl32.Vec3{3.0, 2.5, 2.5},
		mgl32.Vec3{5.0, 5.0, 5.0},
	), nil, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Update(mgl32.Vec3{}, 0.01, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := c.Overlaps(), bruteOverlaps(c.Particles()); got != want || got != 1 {
		t.Errorf("Overlaps() = %d, brute force %d, want 1", got, want)
	}
}

func BenchmarkUpdate(b *testing.B) {
	size := Size{X: 32, Y: 32, Z: 32}
	pool, err := workers.New(4)
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	for _, parallel := range []bool{false, true} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			c, err := New(size, 8192, LatticeGenerator(size, 2), pool, DefaultParams())
			if err != nil {
				b.Fatal(err)
			}
			acc := mgl32.Vec3{0, -9.8, 0}
			b.ResetTimer()
			for n := 0; n < b.N; n++ {
				if err := c.Update(acc, 0.01, parallel); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
