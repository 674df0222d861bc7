// Package sim wires the store, effect log, world state, scheduler and systems
// into a runnable simulation.
package sim

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/process"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/world"
)

// PhaseTimer receives per-phase timing callbacks during Step.
// telemetry.PerfCollector implements it.
type PhaseTimer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// Options tune a Simulation. The zero value is valid.
type Options struct {
	Seed       uint64 // offsets every spawn stream
	MaxSpawn   int    // per-call spawn ceiling, 0 = process.MaxSpawn
	PromoteCap int    // per-population spawn cap on region promotion, 0 = systems.DefaultPromoteCap
	Timer      PhaseTimer
}

// StepResult summarizes one tick.
type StepResult struct {
	Tick       int
	Time       float64 // simulated days after the tick
	Conversion systems.ConversionStats
	Effects    effects.Counts
}

// Simulation owns one independent simulation. Nothing is shared between
// instances.
type Simulation struct {
	reg   *ecs.Registry
	log   *effects.Log
	world *world.State
	ctx   *process.Context

	scheduler   *process.Scheduler
	conversion  *systems.ConversionSystem
	populations *systems.PopulationSystem
	creatures   *systems.CreatureSystem
	pipeline    []string

	timer PhaseTimer
	tick  int
}

// New creates a simulation over w with an empty store.
func New(w *world.State, opts Options) *Simulation {
	reg := ecs.NewRegistry()
	process.RegisterComponents(reg)
	log := effects.NewLog()
	ctx := process.NewContext(reg, log, w)

	sched := process.NewScheduler(ctx, opts.Seed)
	sched.SetSpawnLimit(opts.MaxSpawn)

	return &Simulation{
		reg:         reg,
		log:         log,
		world:       w,
		ctx:         ctx,
		scheduler:   sched,
		conversion:  systems.NewConversionSystem(sched, opts.PromoteCap),
		populations: systems.NewPopulationSystem(sched),
		creatures:   systems.NewCreatureSystem(sched),
		pipeline:    systems.IDs(),
		timer:       opts.Timer,
	}
}

// ErrPopulationExists is returned by AddPopulation when (region, species)
// already has a population.
var ErrPopulationExists = errors.New("population already exists")

// AddPopulation creates a Simulated population for (region, species) with the
// species' rates and trait distributions. Both ids must resolve, and the pair
// must not have a population yet; on ErrPopulationExists the existing id is
// returned.
func (s *Simulation) AddPopulation(region world.RegionID, species world.SpeciesID, count uint32) (ecs.EntityID, error) {
	if _, err := s.world.Region(region); err != nil {
		return ecs.None, err
	}
	sp, err := s.world.Species(species)
	if err != nil {
		return ecs.None, err
	}
	if id := process.FindPopulation(s.ctx, region, species); id != ecs.None {
		return id, fmt.Errorf("region %d species %d: %w", region, species, ErrPopulationExists)
	}

	g := sp.Genetics
	id := s.ctx.CreateEntity(ecs.KindPopulation)
	ecs.Add(s.reg, id, components.Population{
		Species:        species,
		Region:         region,
		EstimatedCount: count,
		BirthRate:      sp.BirthRate,
		DeathRate:      sp.DeathRate,
		Mode:           components.Simulated,
		AvgLimbLength:  g.LimbLength.Mean,
		AvgBodyMass:    g.BodyMass.Mean,
		AvgSizeScale:   g.SizeScale.Mean,
		StdLimbLength:  g.LimbLength.Std,
		StdBodyMass:    g.BodyMass.Std,
		StdSizeScale:   g.SizeScale.Std,
	})
	s.ctx.Record(effects.ComponentAdded(id, components.NamePopulation))
	return id, nil
}

// Step runs one tick: clear the effect log, convert regions, grow
// populations, advance creatures, advance the clock.
func (s *Simulation) Step(dt float64) StepResult {
	res := StepResult{}
	if s.timer != nil {
		s.timer.StartTick()
	}

	s.log.Clear()
	for _, phase := range s.pipeline {
		if s.timer != nil {
			s.timer.StartPhase(phase)
		}
		switch phase {
		case systems.IDConversion:
			res.Conversion = s.conversion.Update()
		case systems.IDPopulations:
			s.populations.Update(dt)
		case systems.IDCreatures:
			s.creatures.Update(dt)
		case systems.IDClock:
			s.world.Advance(dt)
		}
	}

	if s.timer != nil {
		s.timer.EndTick()
	}

	s.tick++
	res.Tick = s.tick
	res.Time = s.world.Time()
	res.Effects = s.log.CountByKind()
	return res
}

// Focus points the observer at a region; regions within radius hops convert
// to Individual on the next Step and all others to Aggregate.
func (s *Simulation) Focus(region world.RegionID, radius int) error {
	return s.world.FocusObserver(region, radius)
}

// Migrate moves a creature to target.
func (s *Simulation) Migrate(id ecs.EntityID, target world.RegionID) (bool, error) {
	return s.scheduler.Migrate(id, target)
}

// Biomass returns the Simulated population counts plus the live creatures.
// A promote followed by a demote with nothing in between leaves it unchanged
// when no spawn cap truncated the promotion.
func (s *Simulation) Biomass() uint64 {
	var total uint64
	for _, id := range ecs.View[components.Population](s.reg) {
		if p := ecs.MustGet[components.Population](s.reg, id); p.Mode == components.Simulated {
			total += uint64(p.EstimatedCount)
		}
	}
	return total + uint64(len(ecs.View[components.SpeciesRef](s.reg)))
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int { return s.tick }

// Time returns the simulated time in days.
func (s *Simulation) Time() float64 { return s.world.Time() }

// Log returns the effect log of the most recent tick.
func (s *Simulation) Log() *effects.Log { return s.log }

// World returns the world state.
func (s *Simulation) World() *world.State { return s.world }

// Scheduler returns the process scheduler for callers that drive
// conversions by hand.
func (s *Simulation) Scheduler() *process.Scheduler { return s.scheduler }
