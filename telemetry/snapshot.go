package telemetry

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/sim"
	"github.com/pthm-cable/ecosim/world"
)

// Snapshot is the simulation state sampled at a window boundary.
type Snapshot struct {
	Time    float64
	Biomass uint64

	Species           []sim.SpeciesTotals
	SimulatedPops     int
	DerivedPops       int
	IndividualRegions int

	LimbLengths []float64
	BodyMasses  []float64
	Hunger      []float64

	Populations []PopulationRow
}

// PopulationRow is one population's line in populations.csv.
type PopulationRow struct {
	RunID         string  `csv:"run_id"`
	Time          float64 `csv:"time"`
	RegionID      uint32  `csv:"region_id"`
	RegionName    string  `csv:"region_name"`
	SpeciesID     uint32  `csv:"species_id"`
	SpeciesName   string  `csv:"species_name"`
	Mode          string  `csv:"mode"` // LQ or HQ
	Count         uint32  `csv:"population_count"`
	AvgLimbLength float32 `csv:"avg_limb_length"`
	AvgBodyMass   float32 `csv:"avg_body_mass"`
	AvgSizeScale  float32 `csv:"avg_size_scale"`
	FoodAvailable float32 `csv:"food_available"`
	CreatureCount int     `csv:"creature_count"`
}

// TakeSnapshot samples s. Populations are ordered by region then species.
func TakeSnapshot(s *sim.Simulation) Snapshot {
	snap := Snapshot{
		Time:    s.Time(),
		Biomass: s.Biomass(),
		Species: s.Totals(),
	}

	names := make(map[world.SpeciesID]string, len(snap.Species))
	for _, t := range snap.Species {
		names[t.Species] = t.Name
	}

	creatures := s.Creatures(nil)
	perPop := make(map[[2]uint32]int)
	for _, c := range creatures {
		snap.LimbLengths = append(snap.LimbLengths, float64(c.Genome.LimbLength))
		snap.BodyMasses = append(snap.BodyMasses, float64(c.Genome.BodyMass))
		snap.Hunger = append(snap.Hunger, float64(c.Lifecycle.Hunger))
		perPop[[2]uint32{uint32(c.Region), uint32(c.Species)}]++
	}

	for _, r := range s.Regions() {
		if r.Mode == world.Individual {
			snap.IndividualRegions++
		}
		for _, p := range s.PopulationsInRegion(r.ID) {
			row := PopulationRow{
				Time:          snap.Time,
				RegionID:      uint32(r.ID),
				RegionName:    r.Name,
				SpeciesID:     uint32(p.Species),
				SpeciesName:   names[p.Species],
				Mode:          "LQ",
				Count:         p.EstimatedCount,
				AvgLimbLength: p.AvgLimbLength,
				AvgBodyMass:   p.AvgBodyMass,
				AvgSizeScale:  p.AvgSizeScale,
				FoodAvailable: r.CurrentFood,
				CreatureCount: perPop[[2]uint32{uint32(r.ID), uint32(p.Species)}],
			}
			if p.Mode == components.DerivedFromIndividuals {
				row.Mode = "HQ"
				snap.DerivedPops++
			} else {
				snap.SimulatedPops++
			}
			snap.Populations = append(snap.Populations, row)
		}
	}
	sortRows(snap.Populations)
	return snap
}

func sortRows(rows []PopulationRow) {
	slices.SortStableFunc(rows, func(a, b PopulationRow) int {
		if c := cmp.Compare(a.RegionID, b.RegionID); c != 0 {
			return c
		}
		return cmp.Compare(a.SpeciesID, b.SpeciesID)
	})
}
