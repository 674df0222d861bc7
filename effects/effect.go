// Package effects records observed state changes. Effects are an audit trail
// for debugging and telemetry; they are never applied back to the store.
package effects

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ecosim/ecs"
)

// Kind identifies the effect variant.
type Kind uint8

const (
	KindEntityCreated Kind = iota
	KindEntityDestroyed
	KindResourceChanged
	KindMigration
	KindDeath
	KindReproduction
	KindComponentAdded

	numKinds
)

var kindNames = [numKinds]string{
	KindEntityCreated:   "EntityCreated",
	KindEntityDestroyed: "EntityDestroyed",
	KindResourceChanged: "ResourceChanged",
	KindMigration:       "Migration",
	KindDeath:           "Death",
	KindReproduction:    "Reproduction",
	KindComponentAdded:  "ComponentAdded",
}

// String returns the variant name.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Unknown"
}

// Effect is a tagged record of one observed change. Which fields are
// meaningful depends on Kind:
//
//	EntityCreated    Entity, EntityKind
//	EntityDestroyed  Entity, Reason
//	ResourceChanged  Entity, Resource, Old, New
//	Migration        Entity, FromRegion, ToRegion, Count
//	Death            Entity, Reason (the cause)
//	Reproduction     Entity (parent), Other (child), Species
//	ComponentAdded   Entity, Component
type Effect struct {
	Kind   Kind
	Entity ecs.EntityID

	EntityKind ecs.Kind
	Reason     string
	Resource   string
	Old, New   float64
	FromRegion uint32
	ToRegion   uint32
	Count      float64
	Other      ecs.EntityID
	Species    uint32
	Component  string
}

// EntityCreated records a new entity.
func EntityCreated(id ecs.EntityID, kind ecs.Kind) Effect {
	return Effect{Kind: KindEntityCreated, Entity: id, EntityKind: kind}
}

// EntityDestroyed records an entity removal and why.
func EntityDestroyed(id ecs.EntityID, reason string) Effect {
	return Effect{Kind: KindEntityDestroyed, Entity: id, Reason: reason}
}

// ResourceChanged records a named numeric value moving between two values.
func ResourceChanged(id ecs.EntityID, resource string, from, to float64) Effect {
	return Effect{Kind: KindResourceChanged, Entity: id, Resource: resource, Old: from, New: to}
}

// Migration records count migrants moving between regions.
func Migration(id ecs.EntityID, from, to uint32, count float64) Effect {
	return Effect{Kind: KindMigration, Entity: id, FromRegion: from, ToRegion: to, Count: count}
}

// Death records a death (of a creature, or extinction of a population).
func Death(id ecs.EntityID, cause string) Effect {
	return Effect{Kind: KindDeath, Entity: id, Reason: cause}
}

// Reproduction records a birth.
func Reproduction(parent, child ecs.EntityID, species uint32) Effect {
	return Effect{Kind: KindReproduction, Entity: parent, Other: child, Species: species}
}

// ComponentAdded records that a component was attached.
func ComponentAdded(id ecs.EntityID, component string) Effect {
	return Effect{Kind: KindComponentAdded, Entity: id, Component: component}
}

// String formats the effect on one line, e.g. "Death[id=7, cause=starvation]".
func (e Effect) String() string {
	switch e.Kind {
	case KindEntityCreated:
		return fmt.Sprintf("EntityCreated[id=%d, type=%s]", e.Entity, e.EntityKind)
	case KindEntityDestroyed:
		return fmt.Sprintf("EntityDestroyed[id=%d, reason=%s]", e.Entity, e.Reason)
	case KindResourceChanged:
		return fmt.Sprintf("ResourceChanged[id=%d, %s: %g -> %g]", e.Entity, e.Resource, e.Old, e.New)
	case KindMigration:
		return fmt.Sprintf("Migration[id=%d, region %d -> %d, count=%g]", e.Entity, e.FromRegion, e.ToRegion, e.Count)
	case KindDeath:
		return fmt.Sprintf("Death[id=%d, cause=%s]", e.Entity, e.Reason)
	case KindReproduction:
		return fmt.Sprintf("Reproduction[parent=%d, child=%d, species=%d]", e.Entity, e.Other, e.Species)
	case KindComponentAdded:
		return fmt.Sprintf("ComponentAdded[id=%d, type=%s]", e.Entity, e.Component)
	default:
		return fmt.Sprintf("Unknown[id=%d]", e.Entity)
	}
}

// LogValue implements slog.LogValuer.
func (e Effect) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.Uint64("entity", uint64(e.Entity)),
	}
	switch e.Kind {
	case KindEntityCreated:
		attrs = append(attrs, slog.String("type", e.EntityKind.String()))
	case KindEntityDestroyed, KindDeath:
		attrs = append(attrs, slog.String("reason", e.Reason))
	case KindResourceChanged:
		attrs = append(attrs,
			slog.String("resource", e.Resource),
			slog.Float64("old", e.Old),
			slog.Float64("new", e.New),
		)
	case KindMigration:
		attrs = append(attrs,
			slog.Uint64("from", uint64(e.FromRegion)),
			slog.Uint64("to", uint64(e.ToRegion)),
			slog.Float64("count", e.Count),
		)
	case KindReproduction:
		attrs = append(attrs,
			slog.Uint64("child", uint64(e.Other)),
			slog.Uint64("species", uint64(e.Species)),
		)
	case KindComponentAdded:
		attrs = append(attrs, slog.String("component", e.Component))
	}
	return slog.GroupValue(attrs...)
}
