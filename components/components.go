// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/ecosim/traits"
	"github.com/pthm-cable/ecosim/world"
)

// PopulationMode says where a population's numbers come from.
type PopulationMode uint8

const (
	Simulated              PopulationMode = iota // advanced by the growth process
	DerivedFromIndividuals                       // materialized as creatures; count is a summary
)

// String returns the mode name.
func (m PopulationMode) String() string {
	if m == DerivedFromIndividuals {
		return "DerivedFromIndividuals"
	}
	return "Simulated"
}

// Population is the aggregate record for one species in one region.
// At most one population entity exists per (Species, Region).
type Population struct {
	Species        world.SpeciesID `inspect:"label"`
	Region         world.RegionID  `inspect:"label"`
	EstimatedCount uint32          `inspect:"label"`
	BirthRate      float32         `inspect:"label,fmt:%.3f"`
	DeathRate      float32         `inspect:"label,fmt:%.3f"`
	Mode           PopulationMode  `inspect:"label"`

	// Trait statistics, recomputed on aggregation.
	AvgLimbLength float32 `inspect:"label,fmt:%.3f"`
	AvgBodyMass   float32 `inspect:"label,fmt:%.3f"`
	AvgSizeScale  float32 `inspect:"label,fmt:%.3f"`
	StdLimbLength float32 `inspect:"label,fmt:%.3f"`
	StdBodyMass   float32 `inspect:"label,fmt:%.3f"`
	StdSizeScale  float32 `inspect:"label,fmt:%.3f"`
}

// Genome is a creature's sampled genetics.
type Genome struct {
	Species world.SpeciesID `inspect:"label"`
	Seed    uint64          `inspect:"skip"` // PCG seed the genome was drawn from

	LimbLength float32 `inspect:"label,fmt:%.3f"`
	BodyMass   float32 `inspect:"label,fmt:%.3f"`
	SizeScale  float32 `inspect:"label,fmt:%.3f"`

	Strength  float32 `inspect:"bar,max:20"`
	Agility   float32 `inspect:"bar,max:20"`
	Endurance float32 `inspect:"bar,max:20"`
	Intellect float32 `inspect:"bar,max:20"`

	Special traits.Trait `inspect:"label"`
}

// SpeciesRef tags a creature with its species.
type SpeciesRef struct {
	Species world.SpeciesID `inspect:"label"`
}

// Vec3 is a local position within a region.
type Vec3 struct {
	X, Y, Z float32
}

// Position places a creature in a region.
type Position struct {
	Region world.RegionID `inspect:"label"`
	Local  Vec3           `inspect:"skip"`
}

// Lifecycle tracks a creature's age and condition.
type Lifecycle struct {
	Age      float32 `inspect:"label,fmt:%.1fd"`
	Lifespan float32 `inspect:"label,fmt:%.0fd"`
	Hunger   float32 `inspect:"bar"` // 0 = sated, 1 = starving
	Health   float32 `inspect:"bar"` // 0 = dead, 1 = healthy
}

// Component names used in ComponentAdded effects.
const (
	NameGenome     = "Genome"
	NameSpeciesRef = "SpeciesRef"
	NamePosition   = "Position"
	NameLifecycle  = "Lifecycle"
	NamePopulation = "Population"
)
