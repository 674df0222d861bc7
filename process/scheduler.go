package process

import (
	"log/slog"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/world"
)

// ReasonConversion is the destroy reason for creatures folded back into a
// population.
const ReasonConversion = "hq_to_lq_conversion"

// RegisterComponents creates the storage for every simulation component so
// lookups on an empty world never hit an unregistered type.
func RegisterComponents(reg *ecs.Registry) {
	ecs.StorageOf[components.Population](reg)
	ecs.StorageOf[components.Genome](reg)
	ecs.StorageOf[components.SpeciesRef](reg)
	ecs.StorageOf[components.Position](reg)
	ecs.StorageOf[components.Lifecycle](reg)
}

// Scheduler composes the atomic processes into bulk passes and fidelity
// conversions. It holds no state beyond the shared Context.
type Scheduler struct {
	ctx *Context

	growth    Growth
	spawn     Spawn
	aggregate Aggregate
	lifecycle Lifecycle
	migration Migration
}

// NewScheduler creates a scheduler over ctx. seed offsets every spawned
// creature's random stream.
func NewScheduler(ctx *Context, seed uint64) *Scheduler {
	return &Scheduler{ctx: ctx, spawn: Spawn{Seed: seed}}
}

// SetSpawnLimit overrides the per-call spawn ceiling. n <= 0 restores
// MaxSpawn.
func (s *Scheduler) SetSpawnLimit(n int) {
	s.spawn.Max = uint32(max(n, 0))
}

// Context returns the shared execution context.
func (s *Scheduler) Context() *Context { return s.ctx }

// AdvancePopulations runs growth over every population.
func (s *Scheduler) AdvancePopulations(dt float64) {
	for _, id := range ecs.View[components.Population](s.ctx.Registry()) {
		s.growth.Execute(s.ctx, id, dt)
	}
}

// AdvanceCreatures runs the lifecycle over every creature that has one.
func (s *Scheduler) AdvanceCreatures(dt float64) {
	for _, id := range ecs.View[components.Lifecycle](s.ctx.Registry()) {
		s.lifecycle.Execute(s.ctx, id, dt)
	}
}

// PromoteToIndividual spawns creatures from a Simulated population and
// switches it to DerivedFromIndividuals. Populations already in individual
// mode are left alone. Returns the number of creatures spawned.
func (s *Scheduler) PromoteToIndividual(popID ecs.EntityID, spawnCount uint32) (int, error) {
	reg := s.ctx.Registry()
	pop, err := ecs.Get[components.Population](reg, popID)
	if err != nil {
		return 0, err
	}
	if pop.Mode != components.Simulated {
		slog.Debug("promote_skipped", "population", popID, "mode", pop.Mode.String())
		return 0, nil
	}

	n := s.spawn.Execute(s.ctx, popID, spawnCount)

	pop = ecs.MustGet[components.Population](reg, popID)
	pop.Mode = components.DerivedFromIndividuals

	if uint32(n) < pop.EstimatedCount {
		slog.Warn("promote_capped",
			"population", popID,
			"estimated_count", pop.EstimatedCount,
			"spawned", n,
		)
	}
	return n, nil
}

// DemoteToAggregate folds the (region, species) creatures into their
// population, destroys them and returns the population to Simulated mode.
// Returns the number of creatures destroyed.
func (s *Scheduler) DemoteToAggregate(region world.RegionID, species world.SpeciesID) int {
	reg := s.ctx.Registry()

	// Aggregation reads the creatures, so it must run before they go.
	s.aggregate.Execute(s.ctx, region, species)

	doomed := CreaturesIn(s.ctx, region, species)
	for _, id := range doomed {
		s.ctx.DestroyEntity(id, ReasonConversion)
	}

	for _, id := range ecs.View[components.Population](reg) {
		p := ecs.MustGet[components.Population](reg, id)
		if p.Region == region && p.Species == species {
			p.Mode = components.Simulated
		}
	}
	return len(doomed)
}

// Migrate moves a creature to target, which must exist.
func (s *Scheduler) Migrate(id ecs.EntityID, target world.RegionID) (bool, error) {
	if _, err := s.ctx.Region(target); err != nil {
		return false, err
	}
	return s.migration.Execute(s.ctx, id, target), nil
}

// CreaturesIn returns the creatures of species located in region.
func CreaturesIn(ctx *Context, region world.RegionID, species world.SpeciesID) []ecs.EntityID {
	reg := ctx.Registry()
	var out []ecs.EntityID
	for _, id := range ecs.View2[components.SpeciesRef, components.Position](reg) {
		if ecs.MustGet[components.SpeciesRef](reg, id).Species != species {
			continue
		}
		if ecs.MustGet[components.Position](reg, id).Region != region {
			continue
		}
		out = append(out, id)
	}
	return out
}
