package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/sim"
)

// runWindow runs the default world with the observer in the forest for one
// five-day window, writing every sink into dir.
func runWindow(t *testing.T, dir string, opts OutputOptions) (*OutputManager, WindowStats) {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Observer.Region = 1
	cfg.Observer.Radius = 0
	cfg.Tour = nil

	perf := NewPerfCollector(10)
	s, err := sim.FromConfig(cfg, perf)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	om, err := NewOutputManager(dir, opts)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	c := NewCollector(5, 1)
	var stats WindowStats
	for range 5 {
		res := s.Step(1)
		c.RecordEffects(res.Time, s.Log().Effects())
		c.RecordConversion(res.Conversion)
		if err := om.WriteEffects(res.Tick, res.Time, s.Log().Effects()); err != nil {
			t.Fatalf("WriteEffects: %v", err)
		}
		if !c.ShouldFlush(res.Tick) {
			continue
		}
		snap := TakeSnapshot(s)
		stats = c.Flush(res.Tick, snap)
		if err := om.WriteStats(stats); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
		if err := om.WritePopulations(snap.Populations); err != nil {
			t.Fatalf("WritePopulations: %v", err)
		}
		if err := om.WritePerf(perf.Stats(), res.Tick); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkExtinction, Tick: 5, Species: "Bear"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return om, stats
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("", OutputOptions{Journal: true, SQLite: true})
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("WriteStats on nil manager: %v", err)
	}
	if err := om.WriteEffects(1, 1, nil); err != nil {
		t.Errorf("WriteEffects on nil manager: %v", err)
	}
	if om.RunID() != "" || om.Dir() != "" {
		t.Error("nil manager should report empty run id and dir")
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestWindowFromSimulation(t *testing.T) {
	_, stats := runWindow(t, t.TempDir(), OutputOptions{})

	if stats.WindowEndTick != 5 {
		t.Fatalf("window end = %d, want 5", stats.WindowEndTick)
	}
	if stats.Spawned != 138 || stats.Creatures != 138 {
		t.Errorf("spawned = %d, creatures = %d, want 138", stats.Spawned, stats.Creatures)
	}
	if stats.Promotions != 1 || stats.IndividualRegions != 1 {
		t.Errorf("promotions = %d, individual regions = %d, want 1", stats.Promotions, stats.IndividualRegions)
	}
	if stats.DerivedPops != 3 || stats.SimulatedPops != 13 {
		t.Errorf("pops derived = %d, simulated = %d, want 3 and 13", stats.DerivedPops, stats.SimulatedPops)
	}
	if stats.Deaths() != 0 {
		t.Errorf("deaths = %d, want 0 within five days", stats.Deaths())
	}
	if stats.Aggregate+uint64(stats.Creatures) != stats.Biomass {
		t.Errorf("aggregate %d + creatures %d != biomass %d", stats.Aggregate, stats.Creatures, stats.Biomass)
	}
	if stats.MassMean <= 0 || stats.LimbMean <= 0 {
		t.Errorf("trait means not sampled: mass %v, limb %v", stats.MassMean, stats.LimbMean)
	}
	if len(stats.Species) != 3 {
		t.Fatalf("species rows = %d, want 3", len(stats.Species))
	}
}

func TestCSVOutput(t *testing.T) {
	dir := t.TempDir()
	om, _ := runWindow(t, dir, OutputOptions{})

	f, err := os.Open(filepath.Join(dir, StatsFile))
	if err != nil {
		t.Fatalf("open stats: %v", err)
	}
	defer f.Close()
	var rows []WindowStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("stats rows = %d, want 1", len(rows))
	}
	if rows[0].RunID != om.RunID() || rows[0].Spawned != 138 {
		t.Errorf("unexpected stats row %+v", rows[0])
	}

	pf, err := os.Open(filepath.Join(dir, PopulationsFile))
	if err != nil {
		t.Fatalf("open populations: %v", err)
	}
	defer pf.Close()
	var pops []PopulationRow
	if err := gocsv.UnmarshalFile(pf, &pops); err != nil {
		t.Fatalf("unmarshal populations: %v", err)
	}
	if len(pops) != 16 {
		t.Fatalf("population rows = %d, want 16", len(pops))
	}
	var hq int
	for _, p := range pops {
		if p.Mode != "HQ" {
			continue
		}
		hq++
		if p.RegionID != 1 {
			t.Errorf("HQ population outside the forest: %+v", p)
		}
		if p.SpeciesName == "Rabbit" && p.CreatureCount != 120 {
			t.Errorf("forest rabbits = %d, want 120", p.CreatureCount)
		}
	}
	if hq != 3 {
		t.Errorf("HQ rows = %d, want 3", hq)
	}

	for _, name := range []string{SpeciesFile, PerfFile, BookmarksFile, ConfigFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("read %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	perf, _ := os.ReadFile(filepath.Join(dir, PerfFile))
	if !strings.Contains(string(perf), "conversion_pct") {
		t.Error("perf.csv missing conversion_pct column")
	}
	if _, err := os.Stat(filepath.Join(dir, JournalFile)); !os.IsNotExist(err) {
		t.Error("journal written although disabled")
	}
}

func TestJournalOutput(t *testing.T) {
	dir := t.TempDir()
	om, _ := runWindow(t, dir, OutputOptions{Journal: true})

	ticks, err := ReadJournal(filepath.Join(dir, JournalFile))
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(ticks) != 5 {
		t.Fatalf("journal lines = %d, want 5", len(ticks))
	}
	if ticks[0].Tick != 1 || ticks[0].RunID != om.RunID() {
		t.Errorf("unexpected first line header %+v", ticks[0])
	}

	var created int
	for _, ev := range ticks[0].Events {
		if ev.Kind == effects.KindEntityCreated.String() && ev.EntityKind == "Creature" {
			created++
		}
	}
	if created != 138 {
		t.Errorf("creatures created in tick 1 = %d, want 138", created)
	}
}

func TestSQLiteIndex(t *testing.T) {
	dir := t.TempDir()
	om, stats := runWindow(t, dir, OutputOptions{SQLite: true, Seed: 7})

	ix, err := OpenIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()

	windows, err := ix.Windows(om.RunID())
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(windows))
	}
	got := windows[0]
	if got.Spawned != 138 || got.Biomass != stats.Biomass || got.WindowEndTick != 5 {
		t.Errorf("stored window %+v does not match %+v", got, stats)
	}

	rabbits, err := ix.SpeciesTotals(om.RunID(), 1)
	if err != nil {
		t.Fatalf("SpeciesTotals: %v", err)
	}
	if len(rabbits) != 1 || rabbits[0] != stats.SpeciesTotal("Rabbit") {
		t.Errorf("rabbit totals = %v, want [%d]", rabbits, stats.SpeciesTotal("Rabbit"))
	}

	if other, err := ix.Windows("no-such-run"); err != nil || len(other) != 0 {
		t.Errorf("unknown run = %v, %v; want empty", other, err)
	}
}

func TestNewEvent(t *testing.T) {
	tests := []struct {
		e     effects.Effect
		check func(Event) bool
	}{
		{effects.Death(3, "old_age"), func(ev Event) bool { return ev.Reason == "old_age" }},
		{effects.ResourceChanged(3, "hunger", 0.1, 0.2), func(ev Event) bool {
			return ev.Resource == "hunger" && ev.Old == 0.1 && ev.New == 0.2
		}},
		{effects.Migration(3, 1, 2, 1), func(ev Event) bool { return ev.From == 1 && ev.To == 2 && ev.Count == 1 }},
		{effects.Reproduction(3, 4, 1), func(ev Event) bool { return ev.Other == 4 && ev.Species == 1 }},
		{effects.ComponentAdded(3, "Genome"), func(ev Event) bool { return ev.Component == "Genome" }},
	}

	for _, tt := range tests {
		t.Run(tt.e.Kind.String(), func(t *testing.T) {
			ev := NewEvent(9, 4.5, tt.e)
			if ev.Tick != 9 || ev.Time != 4.5 || ev.Entity != 3 || ev.Kind != tt.e.Kind.String() {
				t.Errorf("unexpected header %+v", ev)
			}
			if !tt.check(ev) {
				t.Errorf("payload not carried: %+v", ev)
			}
		})
	}
}
