package main

import (
	"testing"

	"github.com/pthm-cable/bluewater/config"
)

func TestSweep(t *testing.T) {
	tests := []struct {
		max  int
		want []Case
	}{
		{0, []Case{{}}},
		{1, []Case{{}, {true, 1}}},
		{4, []Case{{}, {true, 1}, {true, 2}, {true, 4}}},
		{6, []Case{{}, {true, 1}, {true, 2}, {true, 4}, {true, 6}}},
	}
	for _, tc := range tests {
		got := Sweep(tc.max)
		if len(got) != len(tc.want) {
			t.Errorf("Sweep(%d) = %v, want %v", tc.max, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Sweep(%d)[%d] = %v, want %v", tc.max, i, got[i], tc.want[i])
			}
		}
	}
}

func TestRunCase(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Particles.Count = 500

	for _, c := range []Case{{}, {Parallel: true, Workers: 2}} {
		r, err := RunCase(cfg, c, 2, 5, 2)
		if err != nil {
			t.Fatalf("%s: %v", c.mode(), err)
		}
		if r.Particles != 500 || r.Ticks != 5 || r.Runs != 2 {
			t.Errorf("%s: result %+v", c.mode(), r)
		}
		if r.MeanMS <= 0 || r.MinMS > r.MeanMS {
			t.Errorf("%s: timings mean=%v min=%v", c.mode(), r.MeanMS, r.MinMS)
		}
	}
}
