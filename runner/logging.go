package runner

import (
	"log/slog"

	"github.com/pthm-cable/ecosim/sim"
	"github.com/pthm-cable/ecosim/world"
)

// logWorldState logs a one-line progress record: clock, biomass, per-species
// totals and which regions run in individual mode.
func (r *Runner) logWorldState(res sim.StepResult) {
	attrs := []any{
		"tick", res.Tick,
		"time", res.Time,
		"biomass", r.sim.Biomass(),
		"effects", r.sim.Log().Len(),
	}

	for _, t := range r.sim.Totals() {
		attrs = append(attrs, t.Name, t.Total())
	}

	var individual []world.RegionID
	for _, reg := range r.sim.Regions() {
		if reg.Mode == world.Individual {
			individual = append(individual, reg.ID)
		}
	}
	attrs = append(attrs, "individual_regions", individual)

	slog.Info("progress", attrs...)
}
