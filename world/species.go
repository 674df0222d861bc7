package world

import "github.com/pthm-cable/ecosim/traits"

// SpeciesID identifies a species template. Zero is invalid.
type SpeciesID uint32

// Dist is a normal distribution parameter pair for one genetic trait.
type Dist struct {
	Mean float32 `yaml:"mean"`
	Std  float32 `yaml:"std"`
}

// Genetics holds per-trait distributions used when sampling genomes.
type Genetics struct {
	LimbLength Dist `yaml:"limb_length"`
	BodyMass   Dist `yaml:"body_mass"`
	SizeScale  Dist `yaml:"size_scale"`
	Strength   Dist `yaml:"strength"`
	Agility    Dist `yaml:"agility"`
	Endurance  Dist `yaml:"endurance"`
	Intellect  Dist `yaml:"intellect"`
}

// Species is an immutable template. Values returned by State lookups are
// shared and must not be modified.
type Species struct {
	ID              SpeciesID
	Name            string
	BirthRate       float32 // per day
	DeathRate       float32 // per day
	FoodRequirement float32 // food units per individual

	Prey           []SpeciesID
	HuntEfficiency float32 // prey killed per predator per day

	Genetics Genetics
	Special  traits.Trait // special traits every member carries

	MaturityAge          float32 // days
	Lifespan             float32 // days
	OptimalTemperature   float32
	TemperatureTolerance float32
}

// Hunts reports whether this species preys on prey.
func (s *Species) Hunts(prey SpeciesID) bool {
	for _, p := range s.Prey {
		if p == prey {
			return true
		}
	}
	return false
}
