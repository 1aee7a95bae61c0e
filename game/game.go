// Package game wires the particle cloud to its scene, worker pool,
// telemetry and the optional raylib front end.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/bluewater/camera"
	"github.com/pthm-cable/bluewater/config"
	"github.com/pthm-cable/bluewater/physics"
	"github.com/pthm-cable/bluewater/renderer"
	"github.com/pthm-cable/bluewater/scene"
	"github.com/pthm-cable/bluewater/telemetry"
	"github.com/pthm-cable/bluewater/ui"
	"github.com/pthm-cable/bluewater/workers"
)

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	seed  int64
	pool  *workers.Pool // nil when threads.single_threaded is set
	cloud *physics.Cloud
	scene *scene.Scene

	// Telemetry
	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	frameTimer    *FrameTimer
	logStats      bool
	snapshotDir   string
	statsCallback func(telemetry.WindowStats)

	// Run state
	headless       bool
	paused         bool
	parallel       bool
	stepsPerUpdate int
	tiltX, tiltY   float32 // keyboard tilt in [-1, 1]
	err            error   // fatal cloud error, stops stepping

	// Rendering (nil when headless)
	camera        *camera.Camera
	background    *renderer.BackgroundRenderer
	box           *renderer.BoxRenderer
	particles     *renderer.ParticleRenderer
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel
	controls      ui.ControlState

	screenWidth, screenHeight float32
}

// NewGameWithOptions builds the worker pool, cloud and scene from cfg.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	params, err := cfg.PhysicsParams()
	if err != nil {
		return nil, err
	}

	size := cfg.Derived.GridSize
	count := cfg.Particles.Count
	gen, err := generator(cfg, opts)
	if err != nil {
		return nil, err
	}
	if opts.SnapshotPath != "" {
		snap, err := telemetry.LoadSnapshot(opts.SnapshotPath)
		if err != nil {
			return nil, err
		}
		size, count, gen = snap.GridSize(), len(snap.Particles), snap.Generator()
	}

	var pool *workers.Pool
	if !cfg.Threads.SingleThreaded {
		pool, err = workers.New(cfg.Derived.Workers)
		if err != nil {
			return nil, err
		}
	}

	cloud, err := physics.New(size, count, gen, pool, params)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("creating particle cloud: %w", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:            cfg,
		seed:           opts.Seed,
		pool:           pool,
		cloud:          cloud,
		scene:          scene.New(cfg.Gravity),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		outputManager:  outputManager,
		frameTimer:     NewFrameTimer(time.Second),
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		statsCallback:  opts.StatsCallback,
		headless:       opts.Headless,
		parallel:       pool != nil && !opts.SingleThread,
		stepsPerUpdate: stepsPerUpdate,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}
	cloud.SetObserver(g.perfCollector)

	if !g.headless {
		g.initRendering()
	}

	slog.Info("simulation ready",
		"particles", cloud.Len(),
		"grid", fmt.Sprintf("%dx%dx%d", size.X, size.Y, size.Z),
		"workers", g.Workers(),
		"parallel", g.parallel,
		"stencil", params.Stencil.String(),
	)
	return g, nil
}

// generator picks the initial particle layout from config.
func generator(cfg *config.Config, opts Options) (physics.Generator, error) {
	size := cfg.Derived.GridSize
	switch cfg.Particles.Generator {
	case "lattice":
		return physics.LatticeGenerator(size, float32(cfg.Particles.LayerSpacing)), nil
	case "random":
		seed := opts.Seed
		if seed == 0 {
			seed = cfg.Particles.Seed
		}
		return physics.RandomGenerator(size, rand.New(rand.NewSource(seed))), nil
	default:
		return nil, physics.ConfigError("particles.generator", cfg.Particles.Generator)
	}
}

func (g *Game) initRendering() {
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.cloud.GridSize().Vec3())
	g.background = renderer.NewBackgroundRenderer(int32(g.screenWidth), int32(g.screenHeight))
	g.box = renderer.NewBoxRenderer()
	g.particles = renderer.NewParticleRenderer(maxDisplaySpeed)
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 120, 260)
	g.controlsPanel = ui.NewControlsPanel(int32(g.screenWidth)-270, 10, 260)
}

// Cloud returns the particle cloud.
func (g *Game) Cloud() *physics.Cloud {
	return g.cloud
}

// Tick returns the number of completed cloud updates.
func (g *Game) Tick() uint64 {
	return g.cloud.Steps()
}

// Err returns the fatal error that stopped the simulation, if any.
func (g *Game) Err() error {
	return g.err
}

// Workers returns the pool size, or 0 without a pool.
func (g *Game) Workers() int {
	if g.pool == nil {
		return 0
	}
	return g.pool.Workers()
}

// SetParallel switches between the parallel and serial paths. It has no
// effect without a pool.
func (g *Game) SetParallel(on bool) {
	g.parallel = on && g.pool != nil
}

// Unload releases the pool and closes output files.
func (g *Game) Unload() {
	if g.pool != nil {
		g.pool.Close()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
