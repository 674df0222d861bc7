package sim

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/traits"
	"github.com/pthm-cable/ecosim/world"
)

// BuildWorld converts the configured region graph and species table into a
// validated world state. Regions start in Aggregate mode with full food.
func BuildWorld(cfg *config.Config) (*world.State, error) {
	regions := make([]world.Region, 0, len(cfg.Regions))
	for _, rc := range cfg.Regions {
		r := world.Region{
			ID:           world.RegionID(rc.ID),
			Name:         rc.Name,
			FoodCapacity: float32(rc.FoodCapacity),
			CurrentFood:  float32(rc.FoodCapacity),
			Temperature:  float32(rc.Temperature),
			Mode:         world.Aggregate,
			TargetMode:   world.Aggregate,
		}
		for _, n := range rc.Neighbors {
			r.Neighbors = append(r.Neighbors, world.RegionID(n))
		}
		regions = append(regions, r)
	}

	species := make([]world.Species, 0, len(cfg.Species))
	for _, sc := range cfg.Species {
		special, ok := traits.Parse(sc.Special)
		if !ok {
			return nil, fmt.Errorf("species %d: unknown special trait in %v", sc.ID, sc.Special)
		}
		sp := world.Species{
			ID:                   world.SpeciesID(sc.ID),
			Name:                 sc.Name,
			BirthRate:            float32(sc.BirthRate),
			DeathRate:            float32(sc.DeathRate),
			FoodRequirement:      float32(sc.FoodRequirement),
			HuntEfficiency:       float32(sc.HuntEfficiency),
			Genetics:             genetics(sc.Genetics),
			Special:              special,
			MaturityAge:          float32(sc.MaturityAge),
			Lifespan:             float32(sc.Lifespan),
			OptimalTemperature:   float32(sc.OptimalTemperature),
			TemperatureTolerance: float32(sc.TemperatureTolerance),
		}
		for _, p := range sc.Prey {
			sp.Prey = append(sp.Prey, world.SpeciesID(p))
		}
		species = append(species, sp)
	}

	return world.NewState(regions, species)
}

func genetics(g config.GeneticsConfig) world.Genetics {
	d := func(c config.DistConfig) world.Dist {
		return world.Dist{Mean: float32(c.Mean), Std: float32(c.Std)}
	}
	return world.Genetics{
		LimbLength: d(g.LimbLength),
		BodyMass:   d(g.BodyMass),
		SizeScale:  d(g.SizeScale),
		Strength:   d(g.Strength),
		Agility:    d(g.Agility),
		Endurance:  d(g.Endurance),
		Intellect:  d(g.Intellect),
	}
}

// FromConfig builds the world, seeds the initial populations and places the
// observer.
func FromConfig(cfg *config.Config, timer PhaseTimer) (*Simulation, error) {
	w, err := BuildWorld(cfg)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	s := New(w, Options{
		Seed:       cfg.Sim.Seed,
		MaxSpawn:   cfg.Limits.MaxSpawnPerCall,
		PromoteCap: cfg.Limits.ConversionSpawnCap,
		Timer:      timer,
	})

	n, err := s.SeedPopulations(cfg.Populations.Rules)
	if err != nil {
		return nil, fmt.Errorf("seeding populations: %w", err)
	}
	slog.Info("world_initialized",
		"regions", len(w.RegionIDs()),
		"species", len(w.AllSpecies()),
		"populations", n,
	)

	if cfg.Observer.Region != 0 {
		if err := s.Focus(world.RegionID(cfg.Observer.Region), cfg.Observer.Radius); err != nil {
			return nil, fmt.Errorf("placing observer: %w", err)
		}
	}
	return s, nil
}

// SeedPopulations creates one Simulated population per (region, rule) pair,
// visiting regions in ascending id order, skipping excluded regions. Returns
// the number created.
func (s *Simulation) SeedPopulations(rules []config.PopulationRule) (int, error) {
	created := 0
	for _, region := range s.world.RegionIDs() {
		for _, rule := range rules {
			if slices.Contains(rule.Exclude, uint32(region)) {
				continue
			}
			count := rule.Base + rule.PerRegion*uint32(region)
			if _, err := s.AddPopulation(region, world.SpeciesID(rule.Species), count); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
