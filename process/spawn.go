package process

import (
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/world"
)

// MaxSpawn caps the creatures a single spawn call materializes.
const MaxSpawn = 200

// Genome value floors.
const (
	MinLimbLength = 0.1
	MinBodyMass   = 0.1
	MinSizeScale  = 0.5
	MinAttribute  = 1.0 // strength, agility, endurance, intellect
)

// Spawn materializes creatures from a population's aggregate statistics.
type Spawn struct {
	// Seed offsets every per-creature random stream.
	Seed uint64
	// Max overrides MaxSpawn when positive.
	Max uint32
}

// Execute creates up to min(count, population count, s.Max) creatures in
// the population's region and returns how many were created. The population
// itself is not modified.
func (s Spawn) Execute(ctx *Context, popID ecs.EntityID, count uint32) int {
	reg := ctx.Registry()
	p, err := ecs.Get[components.Population](reg, popID)
	if err != nil {
		slog.Debug("spawn_skipped", "population", popID, "error", err)
		return 0
	}
	pop := *p

	species, err := ctx.Species(pop.Species)
	if err != nil {
		slog.Debug("spawn_skipped", "population", popID, "error", err)
		return 0
	}

	limit := uint32(MaxSpawn)
	if s.Max > 0 {
		limit = s.Max
	}
	n := min(count, pop.EstimatedCount, limit)
	for i := range int(n) {
		id := ctx.CreateEntity(ecs.KindCreature)
		seed := s.creatureSeed(i, pop.Species)
		src := rand.NewPCG(seed, uint64(id))

		genome := SampleGenome(&pop, species, src)
		genome.Seed = seed
		ecs.Add(reg, id, genome)
		ecs.Add(reg, id, components.SpeciesRef{Species: pop.Species})
		ecs.Add(reg, id, components.Position{Region: pop.Region})

		age := distuv.Uniform{Min: 0, Max: float64(species.MaturityAge), Src: src}
		ecs.Add(reg, id, components.Lifecycle{
			Age:      float32(age.Rand()),
			Lifespan: species.Lifespan,
			Hunger:   0,
			Health:   1,
		})

		ctx.Record(effects.ComponentAdded(id, components.NameGenome))
		ctx.Record(effects.ComponentAdded(id, components.NameSpeciesRef))
		ctx.Record(effects.ComponentAdded(id, components.NamePosition))
		ctx.Record(effects.ComponentAdded(id, components.NameLifecycle))
	}

	slog.Debug("spawned",
		"population", popID,
		"species", pop.Species,
		"region", pop.Region,
		"count", n,
	)
	return int(n)
}

// creatureSeed derives the stream seed for the i-th creature of a call.
func (s Spawn) creatureSeed(i int, species world.SpeciesID) uint64 {
	return s.Seed + uint64(i) + uint64(species)*1000
}

// SampleGenome draws a genome. Body shape traits use the population's own
// statistics where nonzero and the species template otherwise; the remaining
// attributes always come from the template. Every value is clamped to its
// floor.
func SampleGenome(pop *components.Population, species *world.Species, src rand.Source) components.Genome {
	g := species.Genetics
	draw := func(d world.Dist, avg, std, floor float32) float32 {
		mu, sigma := d.Mean, d.Std
		if avg > 0 {
			mu = avg
		}
		if std > 0 {
			sigma = std
		}
		n := distuv.Normal{Mu: float64(mu), Sigma: float64(sigma), Src: src}
		return max(floor, float32(n.Rand()))
	}

	return components.Genome{
		Species:    species.ID,
		LimbLength: draw(g.LimbLength, pop.AvgLimbLength, pop.StdLimbLength, MinLimbLength),
		BodyMass:   draw(g.BodyMass, pop.AvgBodyMass, pop.StdBodyMass, MinBodyMass),
		SizeScale:  draw(g.SizeScale, pop.AvgSizeScale, pop.StdSizeScale, MinSizeScale),
		Strength:   draw(g.Strength, 0, 0, MinAttribute),
		Agility:    draw(g.Agility, 0, 0, MinAttribute),
		Endurance:  draw(g.Endurance, 0, 0, MinAttribute),
		Intellect:  draw(g.Intellect, 0, 0, MinAttribute),
		Special:    species.Special,
	}
}
