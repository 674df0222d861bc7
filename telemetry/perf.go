package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/systems"
)

// Phase names. The first four are the system IDs timed inside
// sim.Simulation.Step; telemetry is timed by the runner after the step.
const (
	PhaseConversion  = systems.IDConversion
	PhasePopulations = systems.IDPopulations
	PhaseCreatures   = systems.IDCreatures
	PhaseClock       = systems.IDClock
	PhaseTelemetry   = "telemetry"
)

var phaseOrder = [...]string{PhaseConversion, PhasePopulations, PhaseCreatures, PhaseClock, PhaseTelemetry}

const numPhases = len(phaseOrder)

func phaseIndex(name string) int {
	return slices.Index(phaseOrder[:], name)
}

type perfSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps the last N tick timings in a ring and implements
// sim.PhaseTimer. Phases it does not know are folded into the tick total
// only.
type PerfCollector struct {
	ring  []perfSample
	next  int
	count int

	cur        perfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      int // index into phaseOrder, -1 between phases
}

// NewPerfCollector creates a collector averaging over the last window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]perfSample, window), phase: -1}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.cur = perfSample{}
	p.tickStart = time.Now()
	p.phase = -1
}

// StartPhase closes the running phase, if any, and starts timing name.
func (p *PerfCollector) StartPhase(name string) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phaseIndex(name)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = -1
}

// EndTick closes the tick and stores it in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// Time runs fn and charges its duration to phase on the most recently
// stored tick. Before the first tick the duration is dropped.
func (p *PerfCollector) Time(phase string, fn func()) {
	start := time.Now()
	fn()
	if p.count == 0 {
		return
	}
	d := time.Since(start)
	last := &p.ring[(p.next-1+len(p.ring))%len(p.ring)]
	if i := phaseIndex(phase); i >= 0 {
		last.phases[i] += d
	}
	last.total += d
}

// PhaseStats is the average cost of one phase.
type PhaseStats struct {
	Name string
	Avg  time.Duration
	Pct  float64 // share of the average tick, 0-100
}

// PerfStats summarizes the collector's window.
type PerfStats struct {
	Samples        int
	AvgTick        time.Duration
	MinTick        time.Duration
	MaxTick        time.Duration
	P95Tick        time.Duration
	TicksPerSecond float64
	Phases         [numPhases]PhaseStats
}

// Phase returns the stats for name, or zero if it is not a known phase.
func (s PerfStats) Phase(name string) PhaseStats {
	if i := phaseIndex(name); i >= 0 {
		return s.Phases[i]
	}
	return PhaseStats{}
}

// Slowest returns the phase with the largest average, or zero when nothing
// was timed.
func (s PerfStats) Slowest() PhaseStats {
	var slowest PhaseStats
	for _, ph := range s.Phases {
		if ph.Avg > slowest.Avg {
			slowest = ph
		}
	}
	return slowest
}

// Stats summarizes the ticks currently in the ring.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	for i, name := range phaseOrder {
		s.Phases[i].Name = name
	}
	s.Samples = p.count
	if p.count == 0 {
		return s
	}

	ticks := make([]float64, p.count)
	var sum time.Duration
	var phaseSum [numPhases]time.Duration
	for i, sample := range p.ring[:p.count] {
		ticks[i] = float64(sample.total)
		sum += sample.total
		for j, d := range sample.phases {
			phaseSum[j] += d
		}
	}
	slices.Sort(ticks)

	n := time.Duration(p.count)
	s.AvgTick = sum / n
	s.MinTick = time.Duration(ticks[0])
	s.MaxTick = time.Duration(ticks[len(ticks)-1])
	s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))

	for j := range s.Phases {
		s.Phases[j].Avg = phaseSum[j] / n
		if s.AvgTick > 0 {
			s.Phases[j].Pct = float64(s.Phases[j].Avg) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogStats logs the summary, skipping phases under 0.1% of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTick.Microseconds(),
		"p95_tick_us", s.P95Tick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if ph := s.Slowest(); ph.Name != "" {
		attrs = append(attrs, "slowest_phase", systems.Name(ph.Name))
	}
	for _, ph := range s.Phases {
		if ph.Pct > 0.1 {
			attrs = append(attrs, ph.Name+"_pct", float64(int(ph.Pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("samples", s.Samples),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if ph := s.Slowest(); ph.Name != "" {
		attrs = append(attrs, slog.String("slowest_phase", systems.Name(ph.Name)))
	}
	for _, ph := range s.Phases {
		attrs = append(attrs, slog.Float64(ph.Name+"_pct", ph.Pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	RunID          string  `csv:"run_id"`
	WindowEnd      int     `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	P95TickUS      int64   `csv:"p95_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	ConversionPct  float64 `csv:"conversion_pct"`
	PopulationsPct float64 `csv:"populations_pct"`
	CreaturesPct   float64 `csv:"creatures_pct"`
	ClockPct       float64 `csv:"clock_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTick.Microseconds(),
		MinTickUS:      s.MinTick.Microseconds(),
		P95TickUS:      s.P95Tick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		ConversionPct:  s.Phase(PhaseConversion).Pct,
		PopulationsPct: s.Phase(PhasePopulations).Pct,
		CreaturesPct:   s.Phase(PhaseCreatures).Pct,
		ClockPct:       s.Phase(PhaseClock).Pct,
		TelemetryPct:   s.Phase(PhaseTelemetry).Pct,
	}
}
