package sim

import (
	"slices"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/world"
)

// RegionInfo is a copy of a region's state.
type RegionInfo struct {
	ID           world.RegionID
	Name         string
	FoodCapacity float32
	CurrentFood  float32
	Temperature  float32
	Neighbors    []world.RegionID
	Mode         world.Mode
	TargetMode   world.Mode
}

// PopulationInfo is a copy of a population record.
type PopulationInfo struct {
	ID ecs.EntityID
	components.Population
}

// CreatureInfo is a copy of a creature's components.
type CreatureInfo struct {
	ID        ecs.EntityID
	Species   world.SpeciesID
	Region    world.RegionID
	Genome    components.Genome
	Lifecycle components.Lifecycle
}

// SpeciesTotals counts one species across the whole world.
type SpeciesTotals struct {
	Species     world.SpeciesID
	Name        string
	Aggregate   uint64 // members of Simulated populations
	Creatures   int    // live creatures
	Populations int
}

// Total is Aggregate plus Creatures.
func (t SpeciesTotals) Total() uint64 {
	return t.Aggregate + uint64(t.Creatures)
}

// Regions returns every region in ascending id order.
func (s *Simulation) Regions() []RegionInfo {
	ids := s.world.RegionIDs()
	out := make([]RegionInfo, 0, len(ids))
	for _, id := range ids {
		r, err := s.world.Region(id)
		if err != nil {
			continue
		}
		out = append(out, RegionInfo{
			ID:           r.ID,
			Name:         r.Name,
			FoodCapacity: r.FoodCapacity,
			CurrentFood:  r.CurrentFood,
			Temperature:  r.Temperature,
			Neighbors:    slices.Clone(r.Neighbors),
			Mode:         r.Mode,
			TargetMode:   r.TargetMode,
		})
	}
	return out
}

// Populations returns the populations accepted by keep, or all of them when
// keep is nil, in storage order.
func (s *Simulation) Populations(keep func(*components.Population) bool) []PopulationInfo {
	var out []PopulationInfo
	for _, id := range ecs.View[components.Population](s.reg) {
		p := ecs.MustGet[components.Population](s.reg, id)
		if keep == nil || keep(p) {
			out = append(out, PopulationInfo{ID: id, Population: *p})
		}
	}
	return out
}

// PopulationsInRegion returns the populations of one region.
func (s *Simulation) PopulationsInRegion(region world.RegionID) []PopulationInfo {
	return s.Populations(func(p *components.Population) bool { return p.Region == region })
}

// PopulationsOfSpecies returns the populations of one species.
func (s *Simulation) PopulationsOfSpecies(species world.SpeciesID) []PopulationInfo {
	return s.Populations(func(p *components.Population) bool { return p.Species == species })
}

// Creatures returns the creatures accepted by keep, or all of them when keep
// is nil, in storage order.
func (s *Simulation) Creatures(keep func(CreatureInfo) bool) []CreatureInfo {
	var out []CreatureInfo
	for _, id := range ecs.View3[components.Genome, components.Position, components.Lifecycle](s.reg) {
		c := CreatureInfo{
			ID:        id,
			Genome:    *ecs.MustGet[components.Genome](s.reg, id),
			Region:    ecs.MustGet[components.Position](s.reg, id).Region,
			Lifecycle: *ecs.MustGet[components.Lifecycle](s.reg, id),
		}
		c.Species = c.Genome.Species
		if ref, err := ecs.Get[components.SpeciesRef](s.reg, id); err == nil {
			c.Species = ref.Species
		}
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// CreaturesInRegion returns the creatures located in region.
func (s *Simulation) CreaturesInRegion(region world.RegionID) []CreatureInfo {
	return s.Creatures(func(c CreatureInfo) bool { return c.Region == region })
}

// CreaturesOfSpecies returns the creatures of one species.
func (s *Simulation) CreaturesOfSpecies(species world.SpeciesID) []CreatureInfo {
	return s.Creatures(func(c CreatureInfo) bool { return c.Species == species })
}

// Totals returns per-species totals in species definition order.
func (s *Simulation) Totals() []SpeciesTotals {
	all := s.world.AllSpecies()
	out := make([]SpeciesTotals, len(all))
	idx := make(map[world.SpeciesID]int, len(all))
	for i, sp := range all {
		out[i] = SpeciesTotals{Species: sp.ID, Name: sp.Name}
		idx[sp.ID] = i
	}

	for _, id := range ecs.View[components.Population](s.reg) {
		p := ecs.MustGet[components.Population](s.reg, id)
		i, ok := idx[p.Species]
		if !ok {
			continue
		}
		out[i].Populations++
		if p.Mode == components.Simulated {
			out[i].Aggregate += uint64(p.EstimatedCount)
		}
	}
	for _, id := range ecs.View[components.SpeciesRef](s.reg) {
		if i, ok := idx[ecs.MustGet[components.SpeciesRef](s.reg, id).Species]; ok {
			out[i].Creatures++
		}
	}
	return out
}
