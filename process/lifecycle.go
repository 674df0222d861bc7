package process

import (
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
)

// Lifecycle thresholds.
const (
	HungerPerDay    = 0.1
	StarvationAbove = 0.95
	IllnessBelow    = 0.05
	changeEpsilon   = 0.01
)

// Death causes, also used as destroy reasons.
const (
	CauseStarvation = "starvation"
	CauseIllness    = "illness"
	CauseOldAge     = "old_age"
	CauseExtinction = "population_extinction"
)

// Lifecycle ages a creature, raises its hunger and kills it when a death
// condition holds.
type Lifecycle struct{}

// Execute advances the creature by dt days. Entities without a Lifecycle
// component are ignored.
func (Lifecycle) Execute(ctx *Context, id ecs.EntityID, dt float64) {
	reg := ctx.Registry()
	if !ecs.Has[components.Lifecycle](reg, id) {
		return
	}
	life := ecs.MustGet[components.Lifecycle](reg, id)

	oldAge, oldHunger := life.Age, life.Hunger
	life.Age += float32(dt)
	life.Hunger = min(1, life.Hunger+float32(HungerPerDay*dt))

	if cause := DeathCause(life); cause != "" {
		ctx.Record(effects.Death(id, cause))
		ctx.DestroyEntity(id, cause)
		return
	}

	if life.Age-oldAge > changeEpsilon {
		ctx.Record(effects.ResourceChanged(id, "age", float64(oldAge), float64(life.Age)))
	}
	if life.Hunger-oldHunger > changeEpsilon {
		ctx.Record(effects.ResourceChanged(id, "hunger", float64(oldHunger), float64(life.Hunger)))
	}
}

// DeathCause returns the first death condition that holds, checked in the
// order starvation, illness, old age, or "" if the creature lives.
func DeathCause(l *components.Lifecycle) string {
	switch {
	case l.Hunger > StarvationAbove:
		return CauseStarvation
	case l.Health < IllnessBelow:
		return CauseIllness
	case l.Age > l.Lifespan:
		return CauseOldAge
	}
	return ""
}
