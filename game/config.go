package game

import "github.com/pthm-cable/bluewater/telemetry"

// Window title.
const Title = "BlueWater"

// maxDisplaySpeed is the particle speed, in units per second, drawn with the
// hottest colour.
const maxDisplaySpeed = 15

// Options configures a Game beyond what the YAML config holds.
type Options struct {
	Seed           int64                         // RNG seed for the random generator
	LogStats       bool                          // log window and perf stats via slog
	StatsWindowSec float64                       // stats window in sim seconds (0 = config)
	SnapshotDir    string                        // where snapshots are saved
	SnapshotPath   string                        // restore the cloud from this snapshot
	OutputDir      string                        // CSV and config output ("" = disabled)
	Headless       bool                          // no raylib calls
	StepsPerUpdate int                           // cloud updates per Update call
	SingleThread   bool                          // start with the serial path
	StatsCallback  func(telemetry.WindowStats)   // called on every flushed window
}
