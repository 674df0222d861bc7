// Package runner drives a simulation headlessly: it moves the observer along
// its tour, closes stats windows and feeds the output sinks.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/sim"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Options configures a Runner beyond what the config file holds.
type Options struct {
	LogStats      bool                         // log window, perf and bookmark records
	StatsCallback func(telemetry.WindowStats) // called for every closed window
}

// Runner owns one simulation plus its telemetry.
type Runner struct {
	cfg  *config.Config
	sim  *sim.Simulation
	tour *sim.Tour

	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager

	statsCallback func(telemetry.WindowStats)
	logStats      bool

	dt       float64
	maxTicks int
	logEvery int
}

// New builds the simulation described by cfg and opens the output
// directory named by cfg.Telemetry.OutputDir, if any.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	s, err := sim.FromConfig(cfg, perf)
	if err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir, telemetry.OutputOptions{
		Journal: cfg.Telemetry.Journal,
		SQLite:  cfg.Telemetry.SQLite,
		Seed:    cfg.Sim.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	r := &Runner{
		cfg:              cfg,
		sim:              s,
		tour:             sim.NewTour(cfg.Tour, cfg.Observer.Radius),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Sim.DT),
		perfCollector:    perf,
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		outputManager:    om,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		dt:               cfg.Sim.DT,
		maxTicks:         cfg.Derived.MaxTicks,
		logEvery:         cfg.Sim.LogEvery,
	}

	if om != nil {
		slog.Info("output_opened", "dir", om.Dir(), "run_id", om.RunID())
	}
	return r, nil
}

// Step advances the simulation one tick and runs the per-tick telemetry.
func (r *Runner) Step() error {
	if err := r.tour.Apply(r.sim); err != nil {
		return err
	}

	res := r.sim.Step(r.dt)

	var err error
	r.perfCollector.Time(telemetry.PhaseTelemetry, func() {
		list := r.sim.Log().Effects()
		r.collector.RecordEffects(res.Time, list)
		r.collector.RecordConversion(res.Conversion)
		if werr := r.outputManager.WriteEffects(res.Tick, res.Time, list); werr != nil {
			err = werr
		}
		if res.Conversion.Changed() {
			slog.Info("conversion",
				"tick", res.Tick,
				"promoted", res.Conversion.Promoted,
				"demoted", res.Conversion.Demoted,
				"spawned", res.Conversion.Spawned,
				"destroyed", res.Conversion.Destroyed,
			)
		}
		r.flushTelemetry(res.Tick)
	})

	if r.logEvery > 0 && res.Tick%r.logEvery == 0 {
		r.logWorldState(res)
	}
	return err
}

// Run steps until the configured tick limit is reached or ctx is cancelled.
// With no limit it runs until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("starting headless simulation",
		"seed", r.cfg.Sim.Seed,
		"dt", r.dt,
		"max_ticks", r.maxTicks,
		"window_ticks", r.collector.WindowTicks(),
	)
	for i, info := range systems.Pipeline() {
		slog.Debug("system", "order", i, "id", info.ID, "name", info.Name, "description", info.Description)
	}

	for r.maxTicks == 0 || r.sim.Tick() < r.maxTicks {
		if err := ctx.Err(); err != nil {
			slog.Info("simulation_interrupted", "tick", r.sim.Tick())
			return nil
		}
		if err := r.Step(); err != nil {
			return err
		}
	}

	slog.Info("max ticks reached", "tick", r.sim.Tick(), "time", r.sim.Time())
	return nil
}

// Tick returns the number of completed ticks.
func (r *Runner) Tick() int { return r.sim.Tick() }

// Sim returns the driven simulation.
func (r *Runner) Sim() *sim.Simulation { return r.sim }

// RunID returns the id stamped into the output, or "" when output is off.
func (r *Runner) RunID() string { return r.outputManager.RunID() }

// Close flushes and closes the output sinks.
func (r *Runner) Close() error {
	return r.outputManager.Close()
}
