// Package scene holds the acceleration sources acting on the particle cloud:
// rotating gravity, tilt input and transient pulses.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bluewater/components"
	"github.com/pthm-cable/bluewater/config"
)

// Scene is an ECS world of acceleration sources.
type Scene struct {
	world *ecs.World

	spinMap  *ecs.Map2[components.Acceleration, components.Spin]
	tiltMap  *ecs.Map2[components.Acceleration, components.Tilt]
	pulseMap *ecs.Map2[components.Acceleration, components.Lifetime]

	accFilter   *ecs.Filter1[components.Acceleration]
	spinFilter  *ecs.Filter2[components.Acceleration, components.Spin]
	pulseFilter *ecs.Filter2[components.Acceleration, components.Lifetime]

	tilt          ecs.Entity
	pulseStrength float32
	pulseDuration float32
	time          float64
}

// New builds a scene with one gravity source and one idle tilt source.
func New(cfg config.GravityConfig) *Scene {
	world := ecs.NewWorld()

	s := &Scene{
		world:         world,
		spinMap:       ecs.NewMap2[components.Acceleration, components.Spin](world),
		tiltMap:       ecs.NewMap2[components.Acceleration, components.Tilt](world),
		pulseMap:      ecs.NewMap2[components.Acceleration, components.Lifetime](world),
		accFilter:     ecs.NewFilter1[components.Acceleration](world),
		spinFilter:    ecs.NewFilter2[components.Acceleration, components.Spin](world),
		pulseFilter:   ecs.NewFilter2[components.Acceleration, components.Lifetime](world),
		pulseStrength: float32(cfg.PulseStrength),
		pulseDuration: float32(cfg.PulseDuration),
	}

	base := mgl32.Vec3{float32(cfg.X), float32(cfg.Y), float32(cfg.Z)}
	s.spinMap.NewEntity(
		&components.Acceleration{Vec: base},
		&components.Spin{Base: base, Speed: float32(cfg.RotationSpeed)},
	)
	s.tilt = s.tiltMap.NewEntity(
		&components.Acceleration{},
		&components.Tilt{Strength: float32(cfg.TiltStrength)},
	)
	return s
}

// Update advances source state by dt seconds: spins gravity and expires pulses.
func (s *Scene) Update(dt float32) {
	s.time += float64(dt)

	spins := s.spinFilter.Query()
	for spins.Next() {
		acc, spin := spins.Get()
		spin.Angle += spin.Speed * dt
		acc.Vec = mgl32.Rotate3DZ(spin.Angle).Mul3x1(spin.Base)
	}

	var expired []ecs.Entity
	pulses := s.pulseFilter.Query()
	for pulses.Next() {
		_, life := pulses.Get()
		life.Remaining -= dt
		if life.Remaining <= 0 {
			expired = append(expired, pulses.Entity())
		}
	}
	// Remove after the query has finished.
	for _, e := range expired {
		s.pulseMap.Remove(e)
	}
}

// SetTilt sets the tilt input. x and y are in [-1, 1] and scale the tilt strength.
func (s *Scene) SetTilt(x, y float32) {
	acc, tilt := s.tiltMap.Get(s.tilt)
	acc.Vec = mgl32.Vec3{x, y, 0}.Mul(tilt.Strength)
}

// Pulse adds a short-lived push along dir.
func (s *Scene) Pulse(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	s.pulseMap.NewEntity(
		&components.Acceleration{Vec: dir.Normalize().Mul(s.pulseStrength)},
		&components.Lifetime{Remaining: s.pulseDuration},
	)
}

// Acceleration returns the sum of every active source.
func (s *Scene) Acceleration() mgl32.Vec3 {
	var sum mgl32.Vec3
	query := s.accFilter.Query()
	for query.Next() {
		acc := query.Get()
		sum = sum.Add(acc.Vec)
	}
	return sum
}

// Sources returns the number of live acceleration sources.
func (s *Scene) Sources() int {
	n := 0
	query := s.accFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Time returns the accumulated scene time in seconds.
func (s *Scene) Time() float64 {
	return s.time
}
