package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/bluewater/config"
	"github.com/pthm-cable/bluewater/game"
	"github.com/pthm-cable/bluewater/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how well the cloud
// settles.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    uint64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	lastScore   settleScore // score from most recent Evaluate call
}

// settleScore summarises the post-warmup windows of one run.
type settleScore struct {
	overlap float64 // mean overlapping pairs per particle
	jitter  float64 // mean p90 speed
	failed  bool    // run stopped on a fatal error
}

// Fitness weights.
const (
	jitterWeight    = 0.05
	failurePenalty  = 1e6
	warmupWindows   = 3 // skip first N windows while the cloud falls
	statsWindowSecs = 0.5
)

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: statsWindowSecs,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the averaged score from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() (overlap, jitter float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore.overlap, fe.lastScore.jitter
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	scores := make([]settleScore, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, overlap, jitter float64
	for _, s := range scores {
		total += computeFitness(s)
		overlap += s.overlap
		jitter += s.jitter
	}
	n := float64(len(scores))
	avgFitness := total / n

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, avgFitness)
	fe.lastScore = settleScore{overlap: overlap / n, jitter: jitter / n}
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run of maxTicks steps.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) settleScore {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	// Seeds already run concurrently.
	cfg.Threads.SingleThreaded = true

	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return settleScore{failed: true}
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		if err := g.UpdateHeadless(); err != nil {
			return settleScore{failed: true}
		}
	}
	return computeScore(windows)
}

// copyConfig creates a copy of the base config. Config holds only values,
// so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeScore averages overlap and jitter over the settled windows.
func computeScore(windows []telemetry.WindowStats) settleScore {
	if len(windows) <= warmupWindows {
		return settleScore{failed: true}
	}
	valid := windows[warmupWindows:]

	overlaps := make([]float64, 0, len(valid))
	jitters := make([]float64, 0, len(valid))
	for _, w := range valid {
		if w.Particles == 0 {
			continue
		}
		overlaps = append(overlaps, float64(w.Overlaps)/float64(w.Particles))
		jitters = append(jitters, w.SpeedP90)
	}
	if len(overlaps) == 0 {
		return settleScore{failed: true}
	}
	return settleScore{
		overlap: stat.Mean(overlaps, nil),
		jitter:  stat.Mean(jitters, nil),
	}
}

// computeFitness calculates the scalar fitness (lower = better).
func computeFitness(s settleScore) float64 {
	if s.failed {
		return failurePenalty
	}
	return s.overlap + jitterWeight*s.jitter
}
