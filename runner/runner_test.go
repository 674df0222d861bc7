package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/telemetry"
)

func testConfig(t *testing.T, days float64) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Sim.MaxDays = days
	cfg.Observer.Region = 1
	cfg.Observer.Radius = 0
	cfg.Tour = nil
	cfg.Telemetry.StatsWindow = 10
	cfg.Telemetry.OutputDir = ""
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	return cfg
}

func collect(t *testing.T, cfg *config.Config) (*Runner, []telemetry.WindowStats) {
	t.Helper()
	var windows []telemetry.WindowStats
	r, err := New(cfg, Options{StatsCallback: func(s telemetry.WindowStats) {
		windows = append(windows, s)
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return r, windows
}

func TestRunStopsAtMaxDays(t *testing.T) {
	r, windows := collect(t, testConfig(t, 20))

	if r.Tick() != 20 {
		t.Errorf("tick = %d, want 20", r.Tick())
	}
	if len(windows) != 2 {
		t.Fatalf("windows = %d, want 2", len(windows))
	}
	if windows[0].Spawned != 138 || windows[0].Promotions != 1 {
		t.Errorf("first window spawned %d, promotions %d; want 138 and 1",
			windows[0].Spawned, windows[0].Promotions)
	}

	// Nothing feeds the creatures, so every one starves within twelve days.
	starved := windows[0].Starvation + windows[1].Starvation
	if starved != 138 {
		t.Errorf("starved = %d, want 138", starved)
	}
	if windows[1].Creatures != 0 {
		t.Errorf("creatures at day 20 = %d, want 0", windows[1].Creatures)
	}
	if windows[1].IndividualRegions != 1 {
		t.Errorf("individual regions = %d, want 1", windows[1].IndividualRegions)
	}
}

func TestTourMovesObserver(t *testing.T) {
	cfg := testConfig(t, 10)
	cfg.Tour = []config.TourStop{{Day: 5, Region: 2}}

	r, windows := collect(t, cfg)
	if len(windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(windows))
	}
	w := windows[0]

	if w.Promotions != 2 || w.Demotions != 1 {
		t.Errorf("promotions %d, demotions %d; want 2 and 1", w.Promotions, w.Demotions)
	}
	if w.Folded != 138 {
		t.Errorf("folded = %d, want the 138 forest creatures", w.Folded)
	}
	if w.Spawned <= 138 {
		t.Errorf("spawned = %d, want forest plus plains creatures", w.Spawned)
	}

	for _, reg := range r.Sim().Regions() {
		wantIndividual := reg.ID == 2
		if (reg.Mode.String() == "Individual") != wantIndividual {
			t.Errorf("region %d mode %v", reg.ID, reg.Mode)
		}
	}
}

func TestRunHonoursContext(t *testing.T) {
	cfg := testConfig(t, 0) // unbounded
	r, err := New(cfg, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Tick() != 0 {
		t.Errorf("tick = %d after cancelled run, want 0", r.Tick())
	}
}

func TestRunWritesOutput(t *testing.T) {
	cfg := testConfig(t, 10)
	cfg.Telemetry.OutputDir = t.TempDir()
	cfg.Telemetry.Journal = true
	cfg.Telemetry.SQLite = true

	r, windows := collect(t, cfg)
	if r.RunID() == "" {
		t.Fatal("empty run id with output enabled")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{
		telemetry.StatsFile, telemetry.PopulationsFile, telemetry.ConfigFile,
		telemetry.JournalFile, telemetry.IndexFile,
	} {
		if _, err := os.Stat(filepath.Join(cfg.Telemetry.OutputDir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	ix, err := telemetry.OpenIndex(filepath.Join(cfg.Telemetry.OutputDir, telemetry.IndexFile))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()
	stored, err := ix.Windows(r.RunID())
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(stored) != len(windows) {
		t.Errorf("stored windows = %d, want %d", len(stored), len(windows))
	}

	ticks, err := telemetry.ReadJournal(filepath.Join(cfg.Telemetry.OutputDir, telemetry.JournalFile))
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(ticks) != 10 {
		t.Errorf("journal ticks = %d, want 10", len(ticks))
	}
}
