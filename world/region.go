// Package world holds the reference data the simulation runs over: the
// region graph, the species templates and the simulation clock.
package world

// RegionID identifies a region. Zero is invalid.
type RegionID uint32

// Mode is a region's simulation fidelity.
type Mode uint8

const (
	Aggregate  Mode = iota // populations tracked as counts
	Individual             // populations tracked as creatures
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Individual {
		return "Individual"
	}
	return "Aggregate"
}

// Region is a node of the region graph. Only CurrentFood, Mode and
// TargetMode change after initialization.
type Region struct {
	ID           RegionID
	Name         string
	FoodCapacity float32 // ceiling for population growth
	CurrentFood  float32
	Temperature  float32
	Neighbors    []RegionID

	Mode       Mode // current fidelity
	TargetMode Mode // desired fidelity, set by the observer trigger
}

// NeedsConversion reports whether the region's fidelity differs from the
// desired one.
func (r *Region) NeedsConversion() bool {
	return r.Mode != r.TargetMode
}

// IsNeighbor reports whether other is adjacent to r.
func (r *Region) IsNeighbor(other RegionID) bool {
	for _, n := range r.Neighbors {
		if n == other {
			return true
		}
	}
	return false
}
