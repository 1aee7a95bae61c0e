package game

import (
	"log/slog"

	"github.com/pthm-cable/bluewater/telemetry"
)

// flushTelemetry closes the stats window when it is due and fans the result
// out to the callback, the log and the CSV files.
func (g *Game) flushTelemetry() {
	step := g.cloud.Steps()
	if !g.collector.ShouldFlush(step) {
		return
	}

	stats := g.collector.Flush(step, g.cloud, g.scene.Acceleration())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// SaveSnapshot writes the cloud state to the snapshot directory and returns
// the file path.
func (g *Game) SaveSnapshot() (string, error) {
	dir := g.snapshotDir
	if dir == "" {
		dir = "snapshots"
	}
	snap := telemetry.NewSnapshot(g.cloud, g.seed)
	path, err := telemetry.SaveSnapshot(snap, dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "step", snap.Step)
	return path, nil
}
