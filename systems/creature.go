package systems

import "github.com/pthm-cable/ecosim/process"

// CreatureSystem advances individual creatures.
type CreatureSystem struct {
	scheduler *process.Scheduler
}

// NewCreatureSystem creates a creature system.
func NewCreatureSystem(s *process.Scheduler) *CreatureSystem {
	return &CreatureSystem{scheduler: s}
}

// Update runs one lifecycle step over every creature.
func (c *CreatureSystem) Update(dt float64) {
	c.scheduler.AdvanceCreatures(dt)
}
