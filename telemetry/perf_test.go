package telemetry

import (
	"strings"
	"testing"
	"time"
)

func runTicks(pc *PerfCollector, n int, phases map[string]time.Duration) {
	for range n {
		pc.StartTick()
		for _, name := range phaseOrder {
			d, ok := phases[name]
			if !ok {
				continue
			}
			pc.StartPhase(name)
			time.Sleep(d)
		}
		pc.EndTick()
	}
}

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 5, map[string]time.Duration{
		PhaseConversion: 2 * time.Millisecond,
		PhaseCreatures:  20 * time.Millisecond,
	})

	stats := pc.Stats()
	if stats.Samples != 5 {
		t.Errorf("samples = %d, want 5", stats.Samples)
	}
	if stats.AvgTick <= 0 || stats.TicksPerSecond <= 0 {
		t.Errorf("expected positive timings, got %+v", stats)
	}
	if stats.MinTick > stats.P95Tick || stats.P95Tick > stats.MaxTick {
		t.Errorf("min %v, p95 %v, max %v out of order", stats.MinTick, stats.P95Tick, stats.MaxTick)
	}

	conv := stats.Phase(PhaseConversion)
	creatures := stats.Phase(PhaseCreatures)
	if conv.Avg < 2*time.Millisecond || creatures.Avg < 20*time.Millisecond {
		t.Errorf("phase averages too small: conversion %v, creatures %v", conv.Avg, creatures.Avg)
	}
	if creatures.Pct <= conv.Pct {
		t.Errorf("creatures %.1f%% should exceed conversion %.1f%%", creatures.Pct, conv.Pct)
	}
	if stats.Phase(PhaseClock).Avg != 0 {
		t.Error("untimed phase has a nonzero average")
	}
	if got := stats.Slowest().Name; got != PhaseCreatures {
		t.Errorf("slowest = %q, want %q", got, PhaseCreatures)
	}
	if v := stats.LogValue().String(); !strings.Contains(v, "slowest_phase=Creatures") {
		t.Errorf("log value %q missing display name of the slowest phase", v)
	}
}

func TestPerfCollectorRing(t *testing.T) {
	pc := NewPerfCollector(5)
	runTicks(pc, 12, map[string]time.Duration{PhaseConversion: 0})

	if got := pc.Stats().Samples; got != 5 {
		t.Errorf("samples = %d, want ring size 5", got)
	}
	if NewPerfCollector(0).Stats().Samples != 0 {
		t.Error("new collector should be empty")
	}
}

func TestPerfCollectorUnknownPhase(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase("render")
	time.Sleep(200 * time.Microsecond)
	pc.EndTick()

	stats := pc.Stats()
	if stats.AvgTick < 200*time.Microsecond {
		t.Errorf("tick = %v, want >= 200us", stats.AvgTick)
	}
	for _, ph := range stats.Phases {
		if ph.Avg != 0 {
			t.Errorf("phase %s charged %v for an unknown phase", ph.Name, ph.Avg)
		}
	}
	if (stats.Phase("render") != PhaseStats{}) {
		t.Error("unknown phase lookup should be zero")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.AvgTick != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if (stats.Slowest() != PhaseStats{}) {
		t.Errorf("slowest of an empty window = %+v", stats.Slowest())
	}
	for i, ph := range stats.Phases {
		if ph.Name != phaseOrder[i] {
			t.Errorf("phase %d named %q, want %q", i, ph.Name, phaseOrder[i])
		}
	}
}

func TestPerfCollectorTelemetryPhase(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.Time(PhaseTelemetry, func() {})
	if stats := pc.Stats(); stats.Samples != 0 {
		t.Fatalf("Time before the first tick stored a sample")
	}

	runTicks(pc, 1, map[string]time.Duration{PhaseConversion: 0})
	pc.Time(PhaseTelemetry, func() {
		time.Sleep(200 * time.Microsecond)
	})

	stats := pc.Stats()
	tel := stats.Phase(PhaseTelemetry)
	if tel.Avg < 200*time.Microsecond {
		t.Errorf("telemetry phase = %v, want >= 200us", tel.Avg)
	}
	if stats.AvgTick < tel.Avg {
		t.Error("telemetry time not added to the tick")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTick = 1500 * time.Microsecond
	s.P95Tick = 2 * time.Millisecond
	for i, pct := range []float64{10, 20, 60, 1, 9} {
		s.Phases[i] = PhaseStats{Name: phaseOrder[i], Pct: pct}
	}
	rec := s.ToCSV(42)

	if rec.WindowEnd != 42 || rec.AvgTickUS != 1500 || rec.P95TickUS != 2000 {
		t.Errorf("unexpected timing columns %+v", rec)
	}
	if rec.ConversionPct != 10 || rec.PopulationsPct != 20 || rec.CreaturesPct != 60 ||
		rec.ClockPct != 1 || rec.TelemetryPct != 9 {
		t.Errorf("unexpected phase columns %+v", rec)
	}
}
