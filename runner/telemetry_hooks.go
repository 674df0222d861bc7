package runner

import (
	"log/slog"

	"github.com/pthm-cable/ecosim/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (r *Runner) flushTelemetry(tick int) {
	if !r.collector.ShouldFlush(tick) {
		return
	}

	snap := telemetry.TakeSnapshot(r.sim)
	stats := r.collector.Flush(tick, snap)
	perfStats := r.perfCollector.Stats()

	if r.statsCallback != nil {
		r.statsCallback(stats)
	}

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if r.outputManager != nil {
		if err := r.outputManager.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := r.outputManager.WritePopulations(snap.Populations); err != nil {
			slog.Error("failed to write populations", "error", err)
		}
		if err := r.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range r.bookmarkDetector.Check(stats) {
		if r.logStats {
			bm.LogBookmark()
		}
		if r.outputManager != nil {
			if err := r.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
