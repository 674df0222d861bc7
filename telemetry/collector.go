package telemetry

import (
	"math"

	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/process"
	"github.com/pthm-cable/ecosim/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDays  float64
	windowTicks int
	dt          float64

	// Current window tracking
	windowStartTick int
	lifetimes       *LifetimeTracker

	// Event counters for current window
	spawned     int
	folded      int
	births      int
	starvation  int
	illness     int
	oldAge      int
	extinctions int
	promotions  int
	demotions   int
	migrations  int
	effects     int

	residenceSum float64
	residenceN   int
}

// NewCollector creates a new stats collector.
// windowDays: how long each stats window lasts in simulated days
// dt: days per tick
func NewCollector(windowDays, dt float64) *Collector {
	ticks := 1
	if dt > 0 {
		ticks = max(int(math.Round(windowDays/dt)), 1)
	}
	return &Collector{
		windowDays:  windowDays,
		windowTicks: ticks,
		dt:          dt,
		lifetimes:   NewLifetimeTracker(),
	}
}

// RecordEffects tallies one tick's effects. now is the simulated day the
// tick ended on.
func (c *Collector) RecordEffects(now float64, list []effects.Effect) {
	c.effects += len(list)
	for _, e := range list {
		switch e.Kind {
		case effects.KindEntityCreated:
			if e.EntityKind == ecs.KindCreature {
				c.spawned++
				c.lifetimes.Register(e.Entity, now)
			}
		case effects.KindEntityDestroyed:
			if e.Reason == process.ReasonConversion {
				c.folded++
			}
			if days, ok := c.lifetimes.Remove(e.Entity, now); ok {
				c.residenceSum += days
				c.residenceN++
			}
		case effects.KindDeath:
			switch e.Reason {
			case process.CauseStarvation:
				c.starvation++
			case process.CauseIllness:
				c.illness++
			case process.CauseOldAge:
				c.oldAge++
			case process.CauseExtinction:
				c.extinctions++
			}
		case effects.KindReproduction:
			c.births++
		case effects.KindMigration:
			c.migrations++
		}
	}
}

// RecordConversion records one conversion pass.
func (c *Collector) RecordConversion(stats systems.ConversionStats) {
	c.promotions += stats.Promoted
	c.demotions += stats.Demoted
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats from the counters and snap, then resets the
// counters for the next window.
func (c *Collector) Flush(currentTick int, snap Snapshot) WindowStats {
	limbMean, limbStd, _, _, _ := ComputeTraitStats(snap.LimbLengths)
	massMean, massStd, massP10, massP50, massP90 := ComputeTraitStats(snap.BodyMasses)
	hungerMean, _, _, _, _ := ComputeTraitStats(snap.Hunger)

	var residence float64
	if c.residenceN > 0 {
		residence = c.residenceSum / float64(c.residenceN)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTime:         snap.Time,

		Biomass:           snap.Biomass,
		SimulatedPops:     snap.SimulatedPops,
		DerivedPops:       snap.DerivedPops,
		IndividualRegions: snap.IndividualRegions,

		Spawned:     c.spawned,
		Folded:      c.folded,
		Births:      c.births,
		Starvation:  c.starvation,
		Illness:     c.illness,
		OldAge:      c.oldAge,
		Extinctions: c.extinctions,
		Promotions:  c.promotions,
		Demotions:   c.demotions,
		Migrations:  c.migrations,
		Effects:     c.effects,

		LimbMean:   limbMean,
		LimbStd:    limbStd,
		MassMean:   massMean,
		MassStd:    massStd,
		MassP10:    massP10,
		MassP50:    massP50,
		MassP90:    massP90,
		HungerMean: hungerMean,

		ResidenceMean: residence,
	}

	for _, t := range snap.Species {
		stats.Aggregate += t.Aggregate
		stats.Creatures += t.Creatures
		stats.Species = append(stats.Species, SpeciesStats{
			WindowEnd:   currentTick,
			SimTime:     snap.Time,
			Species:     uint32(t.Species),
			Name:        t.Name,
			Aggregate:   t.Aggregate,
			Creatures:   t.Creatures,
			Populations: t.Populations,
			Total:       t.Total(),
		})
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawned = 0
	c.folded = 0
	c.births = 0
	c.starvation = 0
	c.illness = 0
	c.oldAge = 0
	c.extinctions = 0
	c.promotions = 0
	c.demotions = 0
	c.migrations = 0
	c.effects = 0
	c.residenceSum = 0
	c.residenceN = 0

	return stats
}

// Tracked returns the number of live creatures the collector has seen
// created.
func (c *Collector) Tracked() int {
	return c.lifetimes.Count()
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
