// Package telemetry provides windowed ecosystem statistics, bookmarking and
// the run's output sinks.
package telemetry

import (
	"github.com/pthm-cable/ecosim/effects"
)

// Event is the journal form of one effect.
type Event struct {
	Tick   int     `json:"tick"`
	Time   float64 `json:"time"`
	Kind   string  `json:"kind"`
	Entity uint64  `json:"entity"`

	// Optional fields depending on kind
	EntityKind string  `json:"entity_kind,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Resource   string  `json:"resource,omitempty"`
	Old        float64 `json:"old,omitempty"`
	New        float64 `json:"new,omitempty"`
	From       uint32  `json:"from,omitempty"`
	To         uint32  `json:"to,omitempty"`
	Count      float64 `json:"count,omitempty"`
	Other      uint64  `json:"other,omitempty"`
	Species    uint32  `json:"species,omitempty"`
	Component  string  `json:"component,omitempty"`
}

// NewEvent converts an effect recorded during tick.
func NewEvent(tick int, time float64, e effects.Effect) Event {
	ev := Event{
		Tick:   tick,
		Time:   time,
		Kind:   e.Kind.String(),
		Entity: uint64(e.Entity),
	}
	switch e.Kind {
	case effects.KindEntityCreated:
		ev.EntityKind = e.EntityKind.String()
	case effects.KindEntityDestroyed, effects.KindDeath:
		ev.Reason = e.Reason
	case effects.KindResourceChanged:
		ev.Resource = e.Resource
		ev.Old = e.Old
		ev.New = e.New
	case effects.KindMigration:
		ev.From = e.FromRegion
		ev.To = e.ToRegion
		ev.Count = e.Count
	case effects.KindReproduction:
		ev.Other = uint64(e.Other)
		ev.Species = e.Species
	case effects.KindComponentAdded:
		ev.Component = e.Component
	}
	return ev
}

// TickEvents is one journal line: every effect of a tick.
type TickEvents struct {
	RunID  string  `json:"run_id"`
	Tick   int     `json:"tick"`
	Time   float64 `json:"time"`
	Events []Event `json:"events"`
}

// NewTickEvents converts a tick's effect log.
func NewTickEvents(runID string, tick int, time float64, list []effects.Effect) TickEvents {
	te := TickEvents{
		RunID:  runID,
		Tick:   tick,
		Time:   time,
		Events: make([]Event, len(list)),
	}
	for i, e := range list {
		te.Events[i] = NewEvent(tick, time, e)
	}
	return te
}
