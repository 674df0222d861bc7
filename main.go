package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/inspector"
	"github.com/pthm-cable/ecosim/runner"
	"github.com/pthm-cable/ecosim/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in simulated days (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	journal := flag.Bool("journal", false, "Write the per-tick effect journal (needs -output-dir)")
	sqlite := flag.Bool("sqlite", false, "Index window stats in SQLite (needs -output-dir)")
	seed := flag.Uint64("seed", 0, "Spawn seed (0 = use config)")
	maxDays := flag.Float64("max-days", 0, "Stop after N simulated days (0 = use config)")
	observer := flag.Uint("observer", 0, "Observer start region (0 = use config)")
	inspect := flag.Uint("inspect", 0, "Dump this region's populations and creatures to stderr at exit (0 = off)")
	inspectLimit := flag.Int("inspect-limit", 20, "Max creatures listed by -inspect (0 = all)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *journal {
		cfg.Telemetry.Journal = true
	}
	if *sqlite {
		cfg.Telemetry.SQLite = true
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if *maxDays > 0 {
		cfg.Sim.MaxDays = *maxDays
	}
	if *observer != 0 {
		cfg.Observer.Region = uint32(*observer)
	}
	if err := cfg.Recompute(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Derived.LogLevel}))
	slog.SetDefault(logger)

	r, err := runner.New(cfg, runner.Options{LogStats: *logStats})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := r.Run(ctx)
	if *inspect != 0 {
		if err := inspector.DumpRegion(os.Stderr, r.Sim(), world.RegionID(*inspect), *inspectLimit); err != nil {
			slog.Error("inspect failed", "region", *inspect, "error", err)
		}
	}
	if err := r.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if runErr != nil {
		slog.Error("simulation failed", "tick", r.Tick(), "error", runErr)
		os.Exit(1)
	}
}
