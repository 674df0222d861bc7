// Package traits defines the special traits a genome can carry.
package traits

import "strings"

// Trait is a bit set of special traits.
type Trait uint32

const (
	Wings Trait = 1 << iota // Can fly
	Horn                    // Ramming attack

	// None is the empty set.
	None Trait = 0
)

// Has checks if a trait set contains a trait.
func (t Trait) Has(other Trait) bool {
	return t&other != 0
}

// Add adds a trait to the set.
func (t Trait) Add(other Trait) Trait {
	return t | other
}

// Remove removes a trait from the set.
func (t Trait) Remove(other Trait) Trait {
	return t &^ other
}

// Names returns human-readable names for the set, in bit order.
func Names(t Trait) []string {
	var names []string
	if t.Has(Wings) {
		names = append(names, "Wings")
	}
	if t.Has(Horn) {
		names = append(names, "Horn")
	}
	return names
}

// String joins the trait names with "|", or returns "none".
func (t Trait) String() string {
	names := Names(t)
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Parse converts names as produced by Names back into a set. Unknown names
// are reported via ok=false.
func Parse(names []string) (t Trait, ok bool) {
	ok = true
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "wings":
			t = t.Add(Wings)
		case "horn":
			t = t.Add(Horn)
		default:
			ok = false
		}
	}
	return t, ok
}
