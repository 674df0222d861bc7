package systems

import (
	"log/slog"
	"slices"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/process"
	"github.com/pthm-cable/ecosim/world"
)

// DefaultPromoteCap bounds the creatures spawned per population when a
// region switches to Individual mode.
const DefaultPromoteCap = 150

// ConversionStats summarizes one conversion pass.
type ConversionStats struct {
	Promoted  int // regions switched to Individual
	Demoted   int // regions switched to Aggregate
	Spawned   int // creatures created
	Destroyed int // creatures folded back into populations
}

// Changed reports whether any region converted.
func (c ConversionStats) Changed() bool {
	return c.Promoted+c.Demoted > 0
}

// ConversionSystem reconciles each region's fidelity with its target mode.
// A region converts completely within one Update.
type ConversionSystem struct {
	scheduler  *process.Scheduler
	promoteCap uint32
}

// NewConversionSystem creates a conversion system. promoteCap <= 0 selects
// DefaultPromoteCap.
func NewConversionSystem(s *process.Scheduler, promoteCap int) *ConversionSystem {
	if promoteCap <= 0 {
		promoteCap = DefaultPromoteCap
	}
	return &ConversionSystem{scheduler: s, promoteCap: uint32(promoteCap)}
}

// Update visits every region in ascending id order and converts those whose
// mode differs from their target.
func (c *ConversionSystem) Update() ConversionStats {
	ctx := c.scheduler.Context()
	var stats ConversionStats

	for _, id := range ctx.World().RegionIDs() {
		region, err := ctx.Region(id)
		if err != nil {
			slog.Warn("conversion_region_missing", "region", id, "error", err)
			continue
		}
		if !region.NeedsConversion() {
			continue
		}

		if region.TargetMode == world.Individual {
			stats.Spawned += c.promote(ctx, id)
			stats.Promoted++
		} else {
			stats.Destroyed += c.demote(ctx, id)
			stats.Demoted++
		}
		region.Mode = region.TargetMode

		slog.Info("region_converted",
			"region", id,
			"name", region.Name,
			"mode", region.Mode.String(),
		)
	}
	return stats
}

func (c *ConversionSystem) promote(ctx *process.Context, region world.RegionID) int {
	reg := ctx.Registry()
	spawned := 0
	for _, id := range ecs.View[components.Population](reg) {
		pop := ecs.MustGet[components.Population](reg, id)
		if pop.Region != region || pop.Mode != components.Simulated {
			continue
		}
		n, err := c.scheduler.PromoteToIndividual(id, min(pop.EstimatedCount, c.promoteCap))
		if err != nil {
			slog.Warn("promote_failed", "population", id, "error", err)
			continue
		}
		spawned += n
	}
	return spawned
}

// demote folds every species in the region back into its population: those
// with live creatures, plus individual-mode populations whose creatures have
// all died.
func (c *ConversionSystem) demote(ctx *process.Context, region world.RegionID) int {
	reg := ctx.Registry()
	var species []world.SpeciesID

	for _, id := range ecs.View2[components.SpeciesRef, components.Position](reg) {
		if ecs.MustGet[components.Position](reg, id).Region != region {
			continue
		}
		species = append(species, ecs.MustGet[components.SpeciesRef](reg, id).Species)
	}
	for _, id := range ecs.View[components.Population](reg) {
		pop := ecs.MustGet[components.Population](reg, id)
		if pop.Region == region && pop.Mode == components.DerivedFromIndividuals {
			species = append(species, pop.Species)
		}
	}
	slices.Sort(species)
	species = slices.Compact(species)

	destroyed := 0
	for _, sp := range species {
		destroyed += c.scheduler.DemoteToAggregate(region, sp)
	}
	return destroyed
}
