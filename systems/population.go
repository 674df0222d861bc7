package systems

import "github.com/pthm-cable/ecosim/process"

// PopulationSystem advances aggregate populations.
type PopulationSystem struct {
	scheduler *process.Scheduler
}

// NewPopulationSystem creates a population system.
func NewPopulationSystem(s *process.Scheduler) *PopulationSystem {
	return &PopulationSystem{scheduler: s}
}

// Update runs one growth step over every population.
func (p *PopulationSystem) Update(dt float64) {
	p.scheduler.AdvancePopulations(dt)
}
