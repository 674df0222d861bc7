package ecs

import "reflect"

// AnyStorage is the type-erased view of a component storage the registry
// needs for entity-wide operations like destruction.
type AnyStorage interface {
	// Has reports whether the entity owns this component.
	Has(id EntityID) bool
	// Remove drops the entity's component; no-op if absent.
	Remove(id EntityID)
	// Len returns the number of entities owning this component.
	Len() int
	// Entities returns a copy of the owning entity ids in storage order.
	Entities() []EntityID
	// Name returns the component type name for diagnostics.
	Name() string
}

// Storage is a sparse set for one component type: a dense value slice, a
// parallel slice of owner ids, and an id -> dense index map.
//
// Pointers returned by Add and Get stay valid until the next Add or Remove on
// the same storage.
type Storage[C any] struct {
	name     string
	values   []C
	entities []EntityID
	index    map[EntityID]int
}

// NewStorage creates an empty storage for C.
func NewStorage[C any]() *Storage[C] {
	return &Storage[C]{
		name:     reflect.TypeFor[C]().String(),
		values:   make([]C, 0, 64),
		entities: make([]EntityID, 0, 64),
		index:    make(map[EntityID]int),
	}
}

// Add inserts the component for id, or overwrites it if already present.
func (s *Storage[C]) Add(id EntityID, v C) *C {
	if i, ok := s.index[id]; ok {
		s.values[i] = v
		return &s.values[i]
	}
	i := len(s.values)
	s.index[id] = i
	s.entities = append(s.entities, id)
	s.values = append(s.values, v)
	return &s.values[i]
}

// Get returns the entity's component.
func (s *Storage[C]) Get(id EntityID) (*C, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.values[i], true
}

// Has reports whether id owns a component in this storage.
func (s *Storage[C]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

// Remove swaps the entity's slot with the last slot and truncates.
func (s *Storage[C]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.values) - 1
	if i != last {
		s.values[i] = s.values[last]
		s.entities[i] = s.entities[last]
		s.index[s.entities[i]] = i
	}
	var zero C
	s.values[last] = zero
	s.values = s.values[:last]
	s.entities = s.entities[:last]
	delete(s.index, id)
}

// Len returns the number of stored components.
func (s *Storage[C]) Len() int {
	return len(s.values)
}

// Entities returns a copy of the owner ids, so callers may mutate the store
// while iterating the result.
func (s *Storage[C]) Entities() []EntityID {
	out := make([]EntityID, len(s.entities))
	copy(out, s.entities)
	return out
}

// Each calls fn for every (id, component) pair in storage order. fn must not
// add or remove components of this type.
func (s *Storage[C]) Each(fn func(id EntityID, c *C)) {
	for i := range s.values {
		fn(s.entities[i], &s.values[i])
	}
}

// Name returns the component type name.
func (s *Storage[C]) Name() string {
	return s.name
}
