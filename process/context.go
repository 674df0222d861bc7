// Package process implements the atomic simulation processes and the
// scheduler that composes them. Every process reads and writes through a
// Context, so the store and the effect log never diverge.
package process

import (
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/world"
)

// Context is the read/write facade over the store, the effect log and the
// world state for one simulation.
type Context struct {
	reg   *ecs.Registry
	log   *effects.Log
	world *world.State
}

// NewContext binds the three shared pieces of simulation state.
func NewContext(reg *ecs.Registry, log *effects.Log, w *world.State) *Context {
	return &Context{reg: reg, log: log, world: w}
}

// Registry returns the component store for typed access via the ecs
// package functions.
func (c *Context) Registry() *ecs.Registry { return c.reg }

// Log returns the effect log.
func (c *Context) Log() *effects.Log { return c.log }

// World returns the world state.
func (c *Context) World() *world.State { return c.world }

// Region looks up a region. Callers must check the error before using the
// result.
func (c *Context) Region(id world.RegionID) (*world.Region, error) {
	return c.world.Region(id)
}

// Species looks up a species template.
func (c *Context) Species(id world.SpeciesID) (*world.Species, error) {
	return c.world.Species(id)
}

// Time returns the simulated time in days.
func (c *Context) Time() float64 {
	return c.world.Time()
}

// Record appends an effect to the log.
func (c *Context) Record(e effects.Effect) {
	c.log.Record(e)
}

// CreateEntity creates an entity and records EntityCreated.
func (c *Context) CreateEntity(kind ecs.Kind) ecs.EntityID {
	id := c.reg.Create(kind)
	c.log.Record(effects.EntityCreated(id, kind))
	return id
}

// DestroyEntity destroys an entity and records EntityDestroyed with reason.
// Unknown ids are ignored and record nothing.
func (c *Context) DestroyEntity(id ecs.EntityID, reason string) {
	if !c.reg.Exists(id) {
		return
	}
	c.reg.Destroy(id)
	c.log.Record(effects.EntityDestroyed(id, reason))
}
