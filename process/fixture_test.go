package process

import (
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/world"
)

const (
	forest world.RegionID = 1
	plains world.RegionID = 2

	rabbit world.SpeciesID = 1
	wolf   world.SpeciesID = 2
)

func testWorld(t *testing.T) *world.State {
	t.Helper()
	regions := []world.Region{
		{ID: forest, Name: "Forest", FoodCapacity: 1000, Temperature: 20, Neighbors: []world.RegionID{plains}},
		{ID: plains, Name: "Plains", FoodCapacity: 1500, Temperature: 25, Neighbors: []world.RegionID{forest}},
	}
	species := []world.Species{
		{
			ID: rabbit, Name: "Rabbit",
			BirthRate: 0.30, DeathRate: 0.10, FoodRequirement: 1.0,
			Genetics: world.Genetics{
				LimbLength: world.Dist{Mean: 0.5, Std: 0.1},
				BodyMass:   world.Dist{Mean: 0.3, Std: 0.05},
				SizeScale:  world.Dist{Mean: 0.8, Std: 0.1},
				Strength:   world.Dist{Mean: 3, Std: 0.5},
				Agility:    world.Dist{Mean: 7, Std: 1},
				Endurance:  world.Dist{Mean: 5, Std: 1},
				Intellect:  world.Dist{Mean: 2, Std: 0.5},
			},
			MaturityAge: 5, Lifespan: 50,
		},
		{
			ID: wolf, Name: "Wolf",
			BirthRate: 0.05, DeathRate: 0.03, FoodRequirement: 5.0,
			Prey: []world.SpeciesID{rabbit}, HuntEfficiency: 0.02,
			Genetics: world.Genetics{
				LimbLength: world.Dist{Mean: 1.2, Std: 0.2},
				BodyMass:   world.Dist{Mean: 1.5, Std: 0.3},
				SizeScale:  world.Dist{Mean: 1.5, Std: 0.2},
				Strength:   world.Dist{Mean: 8, Std: 1.5},
				Agility:    world.Dist{Mean: 6, Std: 1},
				Endurance:  world.Dist{Mean: 7, Std: 1},
				Intellect:  world.Dist{Mean: 5, Std: 1},
			},
			MaturityAge: 20, Lifespan: 150,
		},
	}
	w, err := world.NewState(regions, species)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return w
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	reg := ecs.NewRegistry()
	RegisterComponents(reg)
	return NewContext(reg, effects.NewLog(), testWorld(t))
}

// addPopulation creates a Simulated population directly in the store.
func addPopulation(ctx *Context, region world.RegionID, species world.SpeciesID, count uint32) ecs.EntityID {
	sp, _ := ctx.Species(species)
	id := ctx.Registry().Create(ecs.KindPopulation)
	p := components.Population{
		Species:        species,
		Region:         region,
		EstimatedCount: count,
		Mode:           components.Simulated,
	}
	if sp != nil {
		p.BirthRate, p.DeathRate = sp.BirthRate, sp.DeathRate
	}
	ecs.Add(ctx.Registry(), id, p)
	return id
}

// addCreature creates a creature with the given genome and lifecycle.
func addCreature(ctx *Context, region world.RegionID, g components.Genome, life components.Lifecycle) ecs.EntityID {
	reg := ctx.Registry()
	id := reg.Create(ecs.KindCreature)
	ecs.Add(reg, id, g)
	ecs.Add(reg, id, components.SpeciesRef{Species: g.Species})
	ecs.Add(reg, id, components.Position{Region: region})
	ecs.Add(reg, id, life)
	return id
}

func population(t *testing.T, ctx *Context, id ecs.EntityID) *components.Population {
	t.Helper()
	p, err := ecs.Get[components.Population](ctx.Registry(), id)
	if err != nil {
		t.Fatalf("population %d: %v", id, err)
	}
	return p
}
