// Package main benchmarks the particle cloud headlessly across worker counts
// and serial/parallel modes, and writes the results as CSV.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/bluewater/config"
	"github.com/pthm-cable/bluewater/physics"
	"github.com/pthm-cable/bluewater/workers"
)

// Result is one row of bench.csv.
type Result struct {
	Mode      string  `csv:"mode"`
	Workers   int     `csv:"workers"`
	Particles int     `csv:"particles"`
	Ticks     int     `csv:"ticks"`
	Runs      int     `csv:"runs"`
	MeanMS    float64 `csv:"mean_ms_per_tick"`
	StdMS     float64 `csv:"std_ms_per_tick"`
	MinMS     float64 `csv:"min_ms_per_tick"`
	Speedup   float64 `csv:"speedup"`
	Excluded  int     `csv:"excluded"`
	Overlaps  int     `csv:"overlaps"`
}

// Case is one benchmark configuration.
type Case struct {
	Parallel bool
	Workers  int // 0 = no pool
}

func (c Case) mode() string {
	if c.Parallel {
		return "parallel"
	}
	return "serial"
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 200, "Timed ticks per run")
	warmup := flag.Int("warmup", 50, "Untimed ticks before each run")
	runs := flag.Int("runs", 3, "Runs per case")
	maxWorkers := flag.Int("max-workers", runtime.GOMAXPROCS(0), "Largest worker count in the sweep")
	output := flag.String("output", "bench.csv", "CSV output path (empty = stdout only)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	cases := Sweep(*maxWorkers)
	results := make([]Result, 0, len(cases))
	var baseline float64

	for _, c := range cases {
		r, err := RunCase(cfg, c, *warmup, *ticks, *runs)
		if err != nil {
			log.Fatalf("%s/%d: %v", c.mode(), c.Workers, err)
		}
		if !c.Parallel {
			baseline = r.MeanMS
		}
		if r.MeanMS > 0 {
			r.Speedup = baseline / r.MeanMS
		}
		fmt.Printf("%-8s workers=%-3d %8.3f ms/tick (±%.3f, min %.3f) speedup %.2fx\n",
			r.Mode, r.Workers, r.MeanMS, r.StdMS, r.MinMS, r.Speedup)
		results = append(results, r)
	}

	if *output == "" {
		return
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(results, f); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}
	fmt.Printf("Results saved to: %s\n", *output)
}

// Sweep returns the serial baseline followed by parallel runs at powers of
// two up to maxWorkers, always including maxWorkers itself.
func Sweep(maxWorkers int) []Case {
	cases := []Case{{Parallel: false}}
	for n := 1; n < maxWorkers; n *= 2 {
		cases = append(cases, Case{Parallel: true, Workers: n})
	}
	if maxWorkers >= 1 {
		cases = append(cases, Case{Parallel: true, Workers: maxWorkers})
	}
	return cases
}

// RunCase builds a fresh cloud per run and times ticks updates after warmup.
func RunCase(cfg *config.Config, c Case, warmup, ticks, runs int) (Result, error) {
	params, err := cfg.PhysicsParams()
	if err != nil {
		return Result{}, err
	}
	size := cfg.Derived.GridSize
	gen := physics.LatticeGenerator(size, float32(cfg.Particles.LayerSpacing))
	acc := mgl32.Vec3{float32(cfg.Gravity.X), float32(cfg.Gravity.Y), float32(cfg.Gravity.Z)}
	dt := cfg.Derived.DT32

	var pool *workers.Pool
	if c.Parallel {
		pool, err = workers.New(c.Workers)
		if err != nil {
			return Result{}, err
		}
		defer pool.Close()
	}

	runs = max(runs, 1)
	perTick := make([]float64, 0, runs)
	var cloud *physics.Cloud
	for range runs {
		cloud, err = physics.New(size, cfg.Particles.Count, gen, pool, params)
		if err != nil {
			return Result{}, err
		}
		for range warmup {
			if err := cloud.Update(acc, dt, c.Parallel); err != nil {
				return Result{}, err
			}
		}
		start := time.Now()
		for range ticks {
			if err := cloud.Update(acc, dt, c.Parallel); err != nil {
				return Result{}, err
			}
		}
		elapsed := time.Since(start)
		perTick = append(perTick, float64(elapsed)/float64(time.Millisecond)/float64(max(ticks, 1)))
	}

	mean, std := stat.MeanStdDev(perTick, nil)
	if len(perTick) < 2 {
		std = 0
	}
	minMS := perTick[0]
	for _, v := range perTick[1:] {
		minMS = min(minMS, v)
	}

	return Result{
		Mode:      c.mode(),
		Workers:   c.Workers,
		Particles: cloud.Len(),
		Ticks:     ticks,
		Runs:      runs,
		MeanMS:    mean,
		StdMS:     std,
		MinMS:     minMS,
		Excluded:  cloud.Excluded(),
		Overlaps:  cloud.Overlaps(),
	}, nil
}
