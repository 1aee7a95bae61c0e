// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/bluewater/physics"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Particles ParticlesConfig `yaml:"particles"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Threads   ThreadsConfig   `yaml:"threads"`
	Gravity   GravityConfig   `yaml:"gravity"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the simulation box in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"` // 0 = width * screen height / screen width
	Depth  int `yaml:"depth"`  // 0 = width
}

// ParticlesConfig holds initial state parameters.
type ParticlesConfig struct {
	Count        int     `yaml:"count"`
	Generator    string  `yaml:"generator"` // lattice | random
	Seed         int64   `yaml:"seed"`
	LayerSpacing float64 `yaml:"layer_spacing"` // lattice layer distance along y
}

// PhysicsConfig holds solver parameters.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`
	SolverIterations int     `yaml:"solver_iterations"`
	CellCapacity     int     `yaml:"cell_capacity"`
	Bounce           float64 `yaml:"bounce"`
	ImpulseThreshold float64 `yaml:"impulse_threshold"`
	WallBounce       float64 `yaml:"wall_bounce"`
	Margin           float64 `yaml:"margin"`
	Correction       float64 `yaml:"correction"`
	Stencil          string  `yaml:"stencil"` // half | full
}

// ThreadsConfig holds worker pool settings.
type ThreadsConfig struct {
	SingleThreaded bool `yaml:"single_threaded"`
	Workers        int  `yaml:"workers"` // 0 = GOMAXPROCS
}

// GravityConfig holds the base acceleration and its slow rotation about z.
type GravityConfig struct {
	X             float64 `yaml:"x"`
	Y             float64 `yaml:"y"`
	Z             float64 `yaml:"z"`
	RotationSpeed float64 `yaml:"rotation_speed"` // radians per second
	TiltStrength  float64 `yaml:"tilt_strength"`  // acceleration added per tilt input
	PulseStrength float64 `yaml:"pulse_strength"`
	PulseDuration float64 `yaml:"pulse_duration"` // seconds
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds of sim time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks kept by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32      // Physics.DT as float32
	GridSize  physics.Size // effective grid extent
	Workers   int          // effective worker count
	ScreenW32 float32
	ScreenH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	w := c.Grid.Width
	h := c.Grid.Height
	if h == 0 && c.Screen.Width > 0 {
		h = w * c.Screen.Height / c.Screen.Width
	}
	d := c.Grid.Depth
	if d == 0 {
		d = w
	}
	c.Derived.GridSize = physics.Size{X: w, Y: h, Z: d}

	c.Derived.Workers = c.Threads.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
}

// Validate checks the loaded values. Physics errors carry the simulation's
// stable configuration code.
func (c *Config) Validate() error {
	size := c.Derived.GridSize
	switch {
	case size.X <= 0:
		return physics.ConfigError("grid.width", size.X)
	case size.Y <= 0:
		return physics.ConfigError("grid.height", size.Y)
	case size.Z <= 0:
		return physics.ConfigError("grid.depth", size.Z)
	case c.Particles.Count <= 0:
		return physics.ConfigError("particles.count", c.Particles.Count)
	case c.Particles.Generator != "lattice" && c.Particles.Generator != "random":
		return physics.ConfigError("particles.generator", c.Particles.Generator)
	case !(c.Physics.DT > 0):
		return physics.ConfigError("physics.dt", c.Physics.DT)
	case c.Threads.Workers < 0:
		return physics.ConfigError("threads.workers", c.Threads.Workers)
	case c.Telemetry.StatsWindow <= 0:
		return physics.ConfigError("telemetry.stats_window", c.Telemetry.StatsWindow)
	}

	params, err := c.PhysicsParams()
	if err != nil {
		return err
	}
	return params.Validate(size)
}

// PhysicsParams converts the physics section into solver parameters.
func (c *Config) PhysicsParams() (physics.Params, error) {
	stencil, err := physics.ParseStencil(c.Physics.Stencil)
	if err != nil {
		return physics.Params{}, err
	}
	return physics.Params{
		SolverIterations: c.Physics.SolverIterations,
		CellCapacity:     c.Physics.CellCapacity,
		Bounce:           float32(c.Physics.Bounce),
		ImpulseThreshold: float32(c.Physics.ImpulseThreshold),
		WallBounce:       float32(c.Physics.WallBounce),
		Margin:           float32(c.Physics.Margin),
		Correction:       float32(c.Physics.Correction),
		Stencil:          stencil,
	}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
