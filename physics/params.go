package physics

import "fmt"

// Stencil selects the neighbourhood scanned during pairwise resolution.
type Stencil uint8

const (
	// StencilHalf visits each unordered pair once: the cell itself (i < j)
	// plus the 13 neighbours that follow it in z, y, x order.
	StencilHalf Stencil = iota
	// StencilFull visits all 27 neighbouring cells and every ordered pair, so
	// each overlapping pair is resolved twice per iteration.
	StencilFull
)

func (s Stencil) String() string {
	switch s {
	case StencilHalf:
		return "half"
	case StencilFull:
		return "full"
	default:
		return fmt.Sprintf("stencil(%d)", uint8(s))
	}
}

// ParseStencil converts a config name into a Stencil.
func ParseStencil(name string) (Stencil, error) {
	switch name {
	case "", "half":
		return StencilHalf, nil
	case "full":
		return StencilFull, nil
	default:
		return 0, ConfigError("stencil", name)
	}
}

// Params holds solver tuning.
type Params struct {
	SolverIterations int     // bound/rebucket/resolve passes per update
	CellCapacity     int     // slots per grid cell
	Bounce           float32 // restitution of particle-particle impulses
	ImpulseThreshold float32 // minimum impulse before velocities are exchanged
	WallBounce       float32 // extra delta fraction added when pushed off a wall
	Margin           float32 // particle radius kept between centre and walls
	Correction       float32 // fraction of the overlap removed per pair visit
	Stencil          Stencil
}

// DefaultParams returns the standard solver tuning.
func DefaultParams() Params {
	return Params{
		SolverIterations: 2,
		CellCapacity:     DefaultCellCapacity,
		Bounce:           0.5,
		ImpulseThreshold: 1.0,
		WallBounce:       0.5,
		Margin:           0.5,
		Correction:       1.0,
		Stencil:          StencilHalf,
	}
}

// Validate checks params against a grid extent.
func (p Params) Validate(size Size) error {
	switch {
	case p.SolverIterations <= 0:
		return ConfigError("solver_iterations", p.SolverIterations)
	case p.CellCapacity <= 0:
		return ConfigError("cell_capacity", p.CellCapacity)
	case p.Bounce < 0:
		return ConfigError("bounce", p.Bounce)
	case p.WallBounce < 0:
		return ConfigError("wall_bounce", p.WallBounce)
	case p.Correction <= 0 || p.Correction > 1:
		return ConfigError("correction", p.Correction)
	case p.Stencil > StencilFull:
		return ConfigError("stencil", p.Stencil)
	}
	half := float32(min(size.X, size.Y, size.Z)) * 0.5
	if !(p.Margin > 0 && p.Margin <= half) {
		return ConfigError("margin", p.Margin)
	}
	return nil
}
