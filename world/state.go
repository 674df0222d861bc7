package world

import (
	"slices"

	"github.com/pthm-cable/ecosim/simerr"
)

// State is the simulation's reference data plus its clock. One State backs
// one simulation; nothing here is global.
type State struct {
	regions     map[RegionID]*Region
	regionOrder []RegionID // ascending
	species     []Species
	speciesIdx  map[SpeciesID]int

	time float64 // simulated days
}

// NewState validates and indexes the region graph and species table.
// Region and species ids must be nonzero and unique, and every neighbor or
// prey reference must resolve.
func NewState(regions []Region, species []Species) (*State, error) {
	s := &State{
		regions:    make(map[RegionID]*Region, len(regions)),
		species:    make([]Species, len(species)),
		speciesIdx: make(map[SpeciesID]int, len(species)),
	}

	for i := range regions {
		r := regions[i]
		if r.ID == 0 {
			return nil, simerr.New(simerr.InvalidRegionID, "region %q has id 0", r.Name)
		}
		if _, dup := s.regions[r.ID]; dup {
			return nil, simerr.New(simerr.InvalidRegionID, "duplicate region id %d", r.ID)
		}
		r.Neighbors = slices.Clone(r.Neighbors)
		s.regions[r.ID] = &r
		s.regionOrder = append(s.regionOrder, r.ID)
	}
	slices.Sort(s.regionOrder)

	for _, r := range s.regions {
		for _, n := range r.Neighbors {
			if _, ok := s.regions[n]; !ok {
				return nil, simerr.New(simerr.InvalidRegionID, "region %d lists unknown neighbor %d", r.ID, n)
			}
		}
	}

	for i, sp := range species {
		if sp.ID == 0 {
			return nil, simerr.New(simerr.InvalidSpeciesID, "species %q has id 0", sp.Name)
		}
		if _, dup := s.speciesIdx[sp.ID]; dup {
			return nil, simerr.New(simerr.InvalidSpeciesID, "duplicate species id %d", sp.ID)
		}
		sp.Prey = slices.Clone(sp.Prey)
		s.species[i] = sp
		s.speciesIdx[sp.ID] = i
	}

	for _, sp := range s.species {
		for _, p := range sp.Prey {
			if _, ok := s.speciesIdx[p]; !ok {
				return nil, simerr.New(simerr.InvalidSpeciesID, "species %d preys on unknown species %d", sp.ID, p)
			}
		}
	}

	return s, nil
}

// Region returns the region with the given id. The pointer is live: callers
// may update its runtime fields (CurrentFood, Mode, TargetMode).
func (s *State) Region(id RegionID) (*Region, error) {
	r, ok := s.regions[id]
	if !ok {
		return nil, simerr.New(simerr.RegionNotFound, "region %d", id)
	}
	return r, nil
}

// RegionIDs returns all region ids in ascending order.
func (s *State) RegionIDs() []RegionID {
	return slices.Clone(s.regionOrder)
}

// Species returns the template with the given id.
func (s *State) Species(id SpeciesID) (*Species, error) {
	i, ok := s.speciesIdx[id]
	if !ok {
		return nil, simerr.New(simerr.SpeciesNotFound, "species %d", id)
	}
	return &s.species[i], nil
}

// AllSpecies returns the species templates in definition order.
func (s *State) AllSpecies() []Species {
	return slices.Clone(s.species)
}

// Time returns the simulated time in days.
func (s *State) Time() float64 {
	return s.time
}

// Advance moves the clock forward by dt days.
func (s *State) Advance(dt float64) {
	s.time += dt
}

// FocusObserver marks every region within radius hops of the observer's
// region as Individual and all others as Aggregate. Only target modes change;
// the conversion system reconciles them on the next tick.
func (s *State) FocusObserver(at RegionID, radius int) error {
	if _, ok := s.regions[at]; !ok {
		return simerr.New(simerr.RegionNotFound, "observer region %d", at)
	}
	radius = max(radius, 0)

	dist := map[RegionID]int{at: 0}
	queue := []RegionID{at}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] == radius {
			continue
		}
		for _, n := range s.regions[cur].Neighbors {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}

	for id, r := range s.regions {
		if _, near := dist[id]; near {
			r.TargetMode = Individual
		} else {
			r.TargetMode = Aggregate
		}
	}
	return nil
}

// SetTarget sets one region's desired fidelity.
func (s *State) SetTarget(id RegionID, m Mode) error {
	r, err := s.Region(id)
	if err != nil {
		return err
	}
	r.TargetMode = m
	return nil
}
