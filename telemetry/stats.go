package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id" db:"run_id"`
	WindowStartTick int     `csv:"-" db:"window_start"`
	WindowEndTick   int     `csv:"window_end" db:"window_end"`
	SimTime         float64 `csv:"sim_time" db:"sim_time"` // days

	// State at window end
	Aggregate         uint64 `csv:"aggregate" db:"aggregate"` // members of Simulated populations
	Creatures         int    `csv:"creatures" db:"creatures"`
	Biomass           uint64 `csv:"biomass" db:"biomass"`
	SimulatedPops     int    `csv:"pops_simulated" db:"pops_simulated"`
	DerivedPops       int    `csv:"pops_derived" db:"pops_derived"`
	IndividualRegions int    `csv:"individual_regions" db:"individual_regions"`

	// Events during window
	Spawned     int `csv:"spawned" db:"spawned"`
	Folded      int `csv:"folded" db:"folded"` // creatures destroyed by demotion
	Births      int `csv:"births" db:"births"`
	Starvation  int `csv:"deaths_starvation" db:"deaths_starvation"`
	Illness     int `csv:"deaths_illness" db:"deaths_illness"`
	OldAge      int `csv:"deaths_old_age" db:"deaths_old_age"`
	Extinctions int `csv:"extinctions" db:"extinctions"`
	Promotions  int `csv:"promotions" db:"promotions"`
	Demotions   int `csv:"demotions" db:"demotions"`
	Migrations  int `csv:"migrations" db:"migrations"`
	Effects     int `csv:"effects" db:"effects"`

	// Creature trait distribution (sampled at window end)
	LimbMean float64 `csv:"limb_mean" db:"limb_mean"`
	LimbStd  float64 `csv:"limb_std" db:"limb_std"`
	MassMean float64 `csv:"mass_mean" db:"mass_mean"`
	MassStd  float64 `csv:"mass_std" db:"mass_std"`
	MassP10  float64 `csv:"mass_p10" db:"mass_p10"`
	MassP50  float64 `csv:"mass_p50" db:"mass_p50"`
	MassP90  float64 `csv:"mass_p90" db:"mass_p90"`

	HungerMean    float64 `csv:"hunger_mean" db:"hunger_mean"`
	ResidenceMean float64 `csv:"residence_mean" db:"residence_mean"` // days destroyed creatures lived

	Species []SpeciesStats `csv:"-" db:"-"`
}

// SpeciesStats is one species' share of a window.
type SpeciesStats struct {
	RunID       string  `csv:"run_id"`
	WindowEnd   int     `csv:"window_end"`
	SimTime     float64 `csv:"sim_time"`
	Species     uint32  `csv:"species_id"`
	Name        string  `csv:"species_name"`
	Aggregate   uint64  `csv:"aggregate"`
	Creatures   int     `csv:"creatures"`
	Populations int     `csv:"populations"`
	Total       uint64  `csv:"total"`
}

// Deaths returns the creature deaths of the window.
func (s WindowStats) Deaths() int {
	return s.Starvation + s.Illness + s.OldAge
}

// SpeciesTotal returns the total for the named species, or 0.
func (s WindowStats) SpeciesTotal(name string) uint64 {
	for _, sp := range s.Species {
		if sp.Name == name {
			return sp.Total
		}
	}
	return 0
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeTraitStats calculates the population mean and standard deviation
// plus percentiles of a trait sample.
func ComputeTraitStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTime),
		slog.Uint64("aggregate", s.Aggregate),
		slog.Int("creatures", s.Creatures),
		slog.Uint64("biomass", s.Biomass),
		slog.Int("pops_simulated", s.SimulatedPops),
		slog.Int("pops_derived", s.DerivedPops),
		slog.Int("individual_regions", s.IndividualRegions),
		slog.Int("spawned", s.Spawned),
		slog.Int("folded", s.Folded),
		slog.Int("births", s.Births),
		slog.Int("deaths_starvation", s.Starvation),
		slog.Int("deaths_illness", s.Illness),
		slog.Int("deaths_old_age", s.OldAge),
		slog.Int("extinctions", s.Extinctions),
		slog.Int("promotions", s.Promotions),
		slog.Int("demotions", s.Demotions),
		slog.Int("migrations", s.Migrations),
		slog.Int("effects", s.Effects),
		slog.Float64("limb_mean", s.LimbMean),
		slog.Float64("mass_mean", s.MassMean),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("residence_mean", s.ResidenceMean),
	}
	for _, sp := range s.Species {
		attrs = append(attrs, slog.Uint64(sp.Name, sp.Total))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
