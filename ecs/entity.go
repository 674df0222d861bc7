// Package ecs provides the entity/component store: entity identity plus one
// sparse-set storage per component type. It holds data only; simulation logic
// lives in the process package.
package ecs

// EntityID is an opaque entity identifier. Ids are issued in increasing order
// starting at 1 and are never reused.
type EntityID uint64

// None is the reserved "no entity" id.
const None EntityID = 0

// Kind is the coarse entity category recorded at creation.
type Kind uint8

const (
	KindCreature Kind = iota
	KindPopulation
	KindFaction  // reserved
	KindLocation // reserved
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCreature:
		return "Creature"
	case KindPopulation:
		return "Population"
	case KindFaction:
		return "Faction"
	case KindLocation:
		return "Location"
	default:
		return "Unknown"
	}
}
