package systems

import "slices"

// System IDs. Also used as perf phase names.
const (
	IDConversion  = "conversion"
	IDPopulations = "populations"
	IDCreatures   = "creatures"
	IDClock       = "clock"
)

// Info describes one stage of the tick.
type Info struct {
	ID          string
	Name        string
	Description string
}

// Tick order. A region converted this tick is advanced in its new mode, and
// every stage before the clock sees the same time.
var pipeline = [...]Info{
	{IDConversion, "Conversion", "Reconciles region fidelity with its target"},
	{IDPopulations, "Populations", "Logistic growth and predation"},
	{IDCreatures, "Creatures", "Ageing, hunger and death"},
	{IDClock, "Clock", "Advances simulated time"},
}

// Pipeline returns the systems in tick order.
func Pipeline() []Info { return slices.Clone(pipeline[:]) }

// IDs returns the system IDs in tick order.
func IDs() []string {
	ids := make([]string, len(pipeline))
	for i, info := range pipeline {
		ids[i] = info.ID
	}
	return ids
}

// Lookup returns the system with the given ID.
func Lookup(id string) (Info, bool) {
	i := slices.IndexFunc(pipeline[:], func(info Info) bool { return info.ID == id })
	if i < 0 {
		return Info{}, false
	}
	return pipeline[i], true
}

// Name returns the display name for id, or id itself if unknown.
func Name(id string) string {
	if info, ok := Lookup(id); ok {
		return info.Name
	}
	return id
}
