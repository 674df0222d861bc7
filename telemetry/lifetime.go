package telemetry

import "github.com/pthm-cable/ecosim/ecs"

// LifetimeTracker remembers when each creature appeared so its residence in
// individual mode can be measured when it is destroyed.
type LifetimeTracker struct {
	born map[ecs.EntityID]float64 // simulated day of creation
}

// NewLifetimeTracker creates an empty tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{born: make(map[ecs.EntityID]float64)}
}

// Register records a creature created at day now.
func (lt *LifetimeTracker) Register(id ecs.EntityID, now float64) {
	lt.born[id] = now
}

// Remove forgets a creature and returns the days it lived.
func (lt *LifetimeTracker) Remove(id ecs.EntityID, now float64) (float64, bool) {
	t, ok := lt.born[id]
	if !ok {
		return 0, false
	}
	delete(lt.born, id)
	return now - t, true
}

// Count returns the number of tracked creatures.
func (lt *LifetimeTracker) Count() int {
	return len(lt.born)
}
