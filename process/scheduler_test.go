package process

import (
	"math"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/simerr"
)

// biomass counts Simulated population members plus live creatures.
func biomass(ctx *Context) uint64 {
	reg := ctx.Registry()
	var total uint64
	for _, id := range ecs.View[components.Population](reg) {
		if p := ecs.MustGet[components.Population](reg, id); p.Mode == components.Simulated {
			total += uint64(p.EstimatedCount)
		}
	}
	return total + uint64(len(ecs.View[components.SpeciesRef](reg)))
}

func TestPromoteToIndividual(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScheduler(ctx, 1)
	pop := addPopulation(ctx, forest, rabbit, 50)

	n, err := s.PromoteToIndividual(pop, 200)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if n != 50 {
		t.Errorf("spawned %d, want 50", n)
	}
	if got := len(CreaturesIn(ctx, forest, rabbit)); got != 50 {
		t.Errorf("%d creatures in forest, want 50", got)
	}
	p := population(t, ctx, pop)
	if p.Mode != components.DerivedFromIndividuals || p.EstimatedCount != 50 {
		t.Errorf("population = %+v", p)
	}

	// Second promote is a no-op.
	ctx.Log().Clear()
	n, err = s.PromoteToIndividual(pop, 200)
	if err != nil || n != 0 || ctx.Log().Len() != 0 {
		t.Errorf("second promote: n=%d err=%v effects=%d", n, err, ctx.Log().Len())
	}
}

func TestPromoteMissingPopulation(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScheduler(ctx, 1)
	if _, err := s.PromoteToIndividual(404, 10); simerr.CodeOf(err) != simerr.EntityNotFound {
		t.Errorf("err = %v, want ENTITY_NOT_FOUND", err)
	}
}

func TestDemoteToAggregate(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScheduler(ctx, 1)
	pop := addPopulation(ctx, forest, rabbit, 80)
	other := addPopulation(ctx, forest, wolf, 10)
	s.PromoteToIndividual(pop, 80)
	s.PromoteToIndividual(other, 10)

	ctx.Log().Clear()
	destroyed := s.DemoteToAggregate(forest, rabbit)
	if destroyed != 80 {
		t.Errorf("destroyed %d, want 80", destroyed)
	}

	p := population(t, ctx, pop)
	if p.Mode != components.Simulated || p.EstimatedCount != 80 {
		t.Errorf("population = %+v", p)
	}
	if population(t, ctx, other).Mode != components.DerivedFromIndividuals {
		t.Error("wolf population switched mode")
	}
	if got := len(CreaturesIn(ctx, forest, wolf)); got != 10 {
		t.Errorf("%d wolves left, want 10", got)
	}

	// Aggregation is recorded before any creature is destroyed.
	got := ctx.Log().Effects()
	if len(got) == 0 || got[0].Kind != effects.KindResourceChanged {
		t.Fatalf("first effect = %v", got)
	}
	destroyedEffects := ctx.Log().Filter(effects.KindEntityDestroyed)
	if len(destroyedEffects) != 80 {
		t.Fatalf("%d EntityDestroyed effects", len(destroyedEffects))
	}
	for _, e := range destroyedEffects {
		if e.Reason != ReasonConversion {
			t.Fatalf("reason = %q", e.Reason)
		}
	}
}

func TestPromoteDemoteConservesBiomass(t *testing.T) {
	for _, count := range []uint32{0, 1, 50, 150} {
		ctx := newTestContext(t)
		s := NewScheduler(ctx, 3)
		pop := addPopulation(ctx, forest, rabbit, count)
		addPopulation(ctx, plains, wolf, 12)

		before := biomass(ctx)
		if _, err := s.PromoteToIndividual(pop, min(count, 150)); err != nil {
			t.Fatal(err)
		}
		if mid := biomass(ctx); mid != before {
			t.Errorf("count=%d: biomass after promote = %d, want %d", count, mid, before)
		}
		s.DemoteToAggregate(forest, rabbit)
		if after := biomass(ctx); after != before {
			t.Errorf("count=%d: biomass after demote = %d, want %d", count, after, before)
		}
	}
}

func TestPromoteDemoteRestoresStatistics(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScheduler(ctx, 11)
	pop := addPopulation(ctx, forest, rabbit, 150)
	p := population(t, ctx, pop)
	p.AvgLimbLength, p.StdLimbLength = 0.6, 0.1
	p.AvgBodyMass, p.StdBodyMass = 0.4, 0.05
	p.AvgSizeScale, p.StdSizeScale = 0.9, 0.1

	s.PromoteToIndividual(pop, 150)
	s.DemoteToAggregate(forest, rabbit)

	p = population(t, ctx, pop)
	checks := []struct {
		name      string
		got, want float32
		tol       float64
	}{
		{"avg limb", p.AvgLimbLength, 0.6, 0.03},
		{"std limb", p.StdLimbLength, 0.1, 0.03},
		{"avg mass", p.AvgBodyMass, 0.4, 0.02},
		{"std mass", p.StdBodyMass, 0.05, 0.02},
		{"avg scale", p.AvgSizeScale, 0.9, 0.03},
		{"std scale", p.StdSizeScale, 0.1, 0.03},
	}
	for _, c := range checks {
		if math.Abs(float64(c.got-c.want)) > c.tol {
			t.Errorf("%s = %v, want %v ± %v", c.name, c.got, c.want, c.tol)
		}
	}
	if p.Mode != components.Simulated {
		t.Errorf("mode = %v", p.Mode)
	}
}

func TestAdvancePasses(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScheduler(ctx, 1)
	pop := addPopulation(ctx, forest, rabbit, 100)
	old := addCreature(ctx, plains, components.Genome{Species: rabbit}, components.Lifecycle{Age: 60, Lifespan: 50, Hunger: 0.2, Health: 0.8})
	young := addCreature(ctx, plains, components.Genome{Species: rabbit}, components.Lifecycle{Age: 1, Lifespan: 50, Health: 1})

	s.AdvancePopulations(1)
	if got := population(t, ctx, pop).EstimatedCount; got != 118 {
		t.Errorf("count = %d, want 118", got)
	}

	s.AdvanceCreatures(1)
	if ctx.Registry().Exists(old) {
		t.Error("old creature survived")
	}
	if !ctx.Registry().Exists(young) {
		t.Error("young creature died")
	}
	deaths := ctx.Log().Filter(effects.KindDeath)
	if len(deaths) != 1 || deaths[0].Reason != CauseOldAge {
		t.Errorf("deaths = %v", deaths)
	}
}

func TestSpawnLimit(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScheduler(ctx, 1)
	s.SetSpawnLimit(12)
	pop := addPopulation(ctx, forest, rabbit, 100)

	if n, _ := s.PromoteToIndividual(pop, 100); n != 12 {
		t.Errorf("spawned %d, want 12", n)
	}
}
