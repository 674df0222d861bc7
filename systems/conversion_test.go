package systems

import (
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/process"
	"github.com/pthm-cable/ecosim/world"
)

const (
	forest world.RegionID = 1
	plains world.RegionID = 2

	rabbit world.SpeciesID = 1
	wolf   world.SpeciesID = 2
)

type fixture struct {
	ctx   *process.Context
	sched *process.Scheduler
	conv  *ConversionSystem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w, err := world.NewState(
		[]world.Region{
			{ID: forest, Name: "Forest", FoodCapacity: 1000, Neighbors: []world.RegionID{plains}},
			{ID: plains, Name: "Plains", FoodCapacity: 1500, Neighbors: []world.RegionID{forest}},
		},
		[]world.Species{
			{ID: rabbit, Name: "Rabbit", BirthRate: 0.3, DeathRate: 0.1, FoodRequirement: 1, MaturityAge: 5, Lifespan: 50,
				Genetics: world.Genetics{LimbLength: world.Dist{Mean: 0.5, Std: 0.1}, BodyMass: world.Dist{Mean: 0.3, Std: 0.05}, SizeScale: world.Dist{Mean: 0.8, Std: 0.1}}},
			{ID: wolf, Name: "Wolf", BirthRate: 0.05, DeathRate: 0.03, FoodRequirement: 5, Prey: []world.SpeciesID{rabbit}, HuntEfficiency: 0.02, MaturityAge: 20, Lifespan: 150,
				Genetics: world.Genetics{LimbLength: world.Dist{Mean: 1.2, Std: 0.2}, BodyMass: world.Dist{Mean: 1.5, Std: 0.3}, SizeScale: world.Dist{Mean: 1.5, Std: 0.2}}},
		},
	)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	reg := ecs.NewRegistry()
	process.RegisterComponents(reg)
	ctx := process.NewContext(reg, effects.NewLog(), w)
	sched := process.NewScheduler(ctx, 5)
	return &fixture{ctx: ctx, sched: sched, conv: NewConversionSystem(sched, 0)}
}

func (f *fixture) population(region world.RegionID, species world.SpeciesID, count uint32) ecs.EntityID {
	reg := f.ctx.Registry()
	id := reg.Create(ecs.KindPopulation)
	ecs.Add(reg, id, components.Population{Species: species, Region: region, EstimatedCount: count, BirthRate: 0.3, DeathRate: 0.1})
	return id
}

func (f *fixture) pop(t *testing.T, id ecs.EntityID) *components.Population {
	t.Helper()
	p, err := ecs.Get[components.Population](f.ctx.Registry(), id)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *fixture) region(t *testing.T, id world.RegionID) *world.Region {
	t.Helper()
	r, err := f.ctx.Region(id)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestConversionNoOp(t *testing.T) {
	f := newFixture(t)
	f.population(forest, rabbit, 100)

	stats := f.conv.Update()
	if stats.Changed() || f.ctx.Log().Len() != 0 {
		t.Errorf("stats = %+v, effects = %d", stats, f.ctx.Log().Len())
	}
}

func TestConversionPromotesRegion(t *testing.T) {
	f := newFixture(t)
	rabbits := f.population(forest, rabbit, 50)
	wolves := f.population(forest, wolf, 400)
	elsewhere := f.population(plains, rabbit, 70)
	f.region(t, forest).TargetMode = world.Individual

	stats := f.conv.Update()
	if stats.Promoted != 1 || stats.Demoted != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Spawned != 50+DefaultPromoteCap {
		t.Errorf("spawned %d, want %d", stats.Spawned, 50+DefaultPromoteCap)
	}
	if f.region(t, forest).Mode != world.Individual {
		t.Error("forest still aggregate")
	}
	for _, id := range []ecs.EntityID{rabbits, wolves} {
		if f.pop(t, id).Mode != components.DerivedFromIndividuals {
			t.Errorf("population %d not promoted", id)
		}
	}
	if f.pop(t, elsewhere).Mode != components.Simulated {
		t.Error("plains population promoted")
	}
	if n := len(process.CreaturesIn(f.ctx, forest, rabbit)); n != 50 {
		t.Errorf("%d rabbits, want 50", n)
	}

	// Converged: second pass does nothing.
	if again := f.conv.Update(); again.Changed() {
		t.Errorf("second update = %+v", again)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	f := newFixture(t)
	rabbits := f.population(forest, rabbit, 120)
	wolves := f.population(forest, wolf, 9)

	f.region(t, forest).TargetMode = world.Individual
	f.conv.Update()

	f.region(t, forest).TargetMode = world.Aggregate
	stats := f.conv.Update()
	if stats.Demoted != 1 || stats.Destroyed != 129 {
		t.Fatalf("stats = %+v", stats)
	}
	if f.region(t, forest).Mode != world.Aggregate {
		t.Error("forest still individual")
	}
	if n := len(ecs.View[components.Lifecycle](f.ctx.Registry())); n != 0 {
		t.Errorf("%d creatures left", n)
	}

	for id, want := range map[ecs.EntityID]uint32{rabbits: 120, wolves: 9} {
		p := f.pop(t, id)
		if p.Mode != components.Simulated || p.EstimatedCount != want {
			t.Errorf("population %d = %+v, want count %d", id, p, want)
		}
	}
}

func TestConversionDemotesDeadPopulation(t *testing.T) {
	f := newFixture(t)
	rabbits := f.population(forest, rabbit, 10)

	f.region(t, forest).TargetMode = world.Individual
	f.conv.Update()

	// Every creature dies before the region is demoted.
	for _, id := range process.CreaturesIn(f.ctx, forest, rabbit) {
		f.ctx.DestroyEntity(id, process.CauseStarvation)
	}

	f.region(t, forest).TargetMode = world.Aggregate
	f.conv.Update()

	p := f.pop(t, rabbits)
	if p.Mode != components.Simulated || p.EstimatedCount != 0 {
		t.Errorf("population = %+v", p)
	}
}

func TestConversionCustomCap(t *testing.T) {
	f := newFixture(t)
	f.conv = NewConversionSystem(f.sched, 7)
	f.population(plains, rabbit, 100)
	f.region(t, plains).TargetMode = world.Individual

	if stats := f.conv.Update(); stats.Spawned != 7 {
		t.Errorf("spawned %d, want 7", stats.Spawned)
	}
}

func TestPopulationAndCreatureSystems(t *testing.T) {
	f := newFixture(t)
	pop := f.population(forest, rabbit, 100)
	f.population(plains, rabbit, 10)
	f.region(t, plains).TargetMode = world.Individual
	f.conv.Update()

	NewPopulationSystem(f.sched).Update(1)
	if got := f.pop(t, pop).EstimatedCount; got != 118 {
		t.Errorf("forest rabbits = %d, want 118", got)
	}

	creatures := NewCreatureSystem(f.sched)
	for range 10 {
		creatures.Update(1)
	}
	// Hunger reaches 1 after ten days.
	if n := len(ecs.View[components.Lifecycle](f.ctx.Registry())); n != 0 {
		t.Errorf("%d creatures survived ten days without food", n)
	}
}

func TestPipelineOrder(t *testing.T) {
	want := []string{IDConversion, IDPopulations, IDCreatures, IDClock}
	got := IDs()
	if len(got) != len(want) {
		t.Fatalf("ids = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if Name(IDCreatures) != "Creatures" || Name("nope") != "nope" {
		t.Error("Name lookup")
	}

	p := Pipeline()
	p[0].ID = "mutated"
	if IDs()[0] != IDConversion {
		t.Error("Pipeline returned shared storage")
	}
}

func TestLookup(t *testing.T) {
	info, ok := Lookup(IDPopulations)
	if !ok || info.Name != "Populations" || info.Description == "" {
		t.Errorf("Lookup(%q) = %+v, %v", IDPopulations, info, ok)
	}
	if _, ok := Lookup("render"); ok {
		t.Error("unknown id found")
	}
}
