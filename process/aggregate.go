package process

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/world"
)

// Aggregate folds the creatures of one species in one region into that
// pair's population record.
type Aggregate struct{}

// Execute finds or creates the (region, species) population, then sets its
// count and trait statistics from the matching creatures. Creatures are left
// in place. Returns the population id, or ecs.None if the species is unknown
// and no population existed.
func (Aggregate) Execute(ctx *Context, region world.RegionID, species world.SpeciesID) ecs.EntityID {
	reg := ctx.Registry()

	popID := FindPopulation(ctx, region, species)
	if popID == ecs.None {
		sp, err := ctx.Species(species)
		if err != nil {
			slog.Debug("aggregate_skipped", "region", region, "species", species, "error", err)
			return ecs.None
		}
		popID = ctx.CreateEntity(ecs.KindPopulation)
		ecs.Add(reg, popID, components.Population{
			Species:   species,
			Region:    region,
			BirthRate: sp.BirthRate,
			DeathRate: sp.DeathRate,
			Mode:      components.DerivedFromIndividuals,
		})
		ctx.Record(effects.ComponentAdded(popID, components.NamePopulation))
	}

	var limb, mass, scale []float64
	for _, id := range ecs.View3[components.SpeciesRef, components.Position, components.Genome](reg) {
		if ecs.MustGet[components.SpeciesRef](reg, id).Species != species {
			continue
		}
		if ecs.MustGet[components.Position](reg, id).Region != region {
			continue
		}
		g := ecs.MustGet[components.Genome](reg, id)
		limb = append(limb, float64(g.LimbLength))
		mass = append(mass, float64(g.BodyMass))
		scale = append(scale, float64(g.SizeScale))
	}

	pop := ecs.MustGet[components.Population](reg, popID)
	oldCount := pop.EstimatedCount
	pop.EstimatedCount = uint32(len(limb))
	pop.AvgLimbLength, pop.StdLimbLength = meanStd(limb)
	pop.AvgBodyMass, pop.StdBodyMass = meanStd(mass)
	pop.AvgSizeScale, pop.StdSizeScale = meanStd(scale)

	ctx.Record(effects.ResourceChanged(popID, "estimated_count", float64(oldCount), float64(pop.EstimatedCount)))

	slog.Debug("aggregated",
		"population", popID,
		"species", species,
		"region", region,
		"count", pop.EstimatedCount,
	)
	return popID
}

// meanStd returns the population (divide by N) mean and standard deviation,
// or zeros for an empty sample.
func meanStd(x []float64) (mean, std float32) {
	if len(x) == 0 {
		return 0, 0
	}
	m, s := stat.PopMeanStdDev(x, nil)
	return float32(m), float32(s)
}

// FindPopulation returns the population entity for (region, species), or
// ecs.None.
func FindPopulation(ctx *Context, region world.RegionID, species world.SpeciesID) ecs.EntityID {
	reg := ctx.Registry()
	for _, id := range ecs.View[components.Population](reg) {
		p := ecs.MustGet[components.Population](reg, id)
		if p.Region == region && p.Species == species {
			return id
		}
	}
	return ecs.None
}
