package process

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
)

// Growth advances a Simulated population by logistic growth minus predation.
type Growth struct{}

// Execute applies one growth step of length dt to the population. Populations
// in DerivedFromIndividuals mode are left alone. A population whose region or
// species does not resolve is skipped.
func (Growth) Execute(ctx *Context, popID ecs.EntityID, dt float64) {
	reg := ctx.Registry()
	pop, err := ecs.Get[components.Population](reg, popID)
	if err != nil {
		slog.Debug("growth_skipped", "population", popID, "error", err)
		return
	}
	if pop.Mode != components.Simulated {
		return
	}

	region, err := ctx.Region(pop.Region)
	if err != nil {
		slog.Debug("growth_skipped", "population", popID, "error", err)
		return
	}
	species, err := ctx.Species(pop.Species)
	if err != nil {
		slog.Debug("growth_skipped", "population", popID, "error", err)
		return
	}

	oldCount := pop.EstimatedCount
	n := float64(oldCount)

	r := float64(pop.BirthRate) - float64(pop.DeathRate)
	k := float64(region.FoodCapacity) / float64(species.FoodRequirement)
	logistic := math.Max(0, 1-n/k)
	predation := PredationLoss(ctx, pop)

	next := math.Max(0, n+(r*logistic*n-predation)*dt)
	pop.EstimatedCount = uint32(min(next, math.MaxUint32))

	if pop.EstimatedCount != oldCount {
		ctx.Record(effects.ResourceChanged(popID, "estimated_count", float64(oldCount), float64(pop.EstimatedCount)))
	}
	if pop.EstimatedCount == 0 && oldCount > 0 {
		ctx.Record(effects.Death(popID, CauseExtinction))
	}
}

// PredationLoss returns the individuals of prey's species removed per day by
// the Simulated predator populations sharing its region.
func PredationLoss(ctx *Context, prey *components.Population) float64 {
	reg := ctx.Registry()
	var loss float64
	for _, id := range ecs.View[components.Population](reg) {
		p := ecs.MustGet[components.Population](reg, id)
		if p.Region != prey.Region || p.Mode != components.Simulated {
			continue
		}
		predator, err := ctx.Species(p.Species)
		if err != nil {
			continue
		}
		if predator.Hunts(prey.Species) {
			loss += float64(p.EstimatedCount) * float64(predator.HuntEfficiency)
		}
	}
	return loss
}
