package ecs

import (
	"fmt"
	"reflect"

	"github.com/pthm-cable/ecosim/simerr"
)

// Registry owns every entity and one storage per component type.
type Registry struct {
	nextID   EntityID
	kinds    map[EntityID]Kind
	storages map[reflect.Type]AnyStorage
	ordered  []AnyStorage // registration order, for deterministic destroy
}

// NewRegistry creates an empty registry. The first issued id is 1.
func NewRegistry() *Registry {
	return &Registry{
		nextID:   1,
		kinds:    make(map[EntityID]Kind),
		storages: make(map[reflect.Type]AnyStorage),
	}
}

// Create issues a new entity id of the given kind.
func (r *Registry) Create(kind Kind) EntityID {
	id := r.nextID
	r.nextID++
	r.kinds[id] = kind
	return id
}

// Destroy removes the entity from every storage and drops its kind record.
// Unknown ids are ignored.
func (r *Registry) Destroy(id EntityID) {
	if _, ok := r.kinds[id]; !ok {
		return
	}
	for _, s := range r.ordered {
		s.Remove(id)
	}
	delete(r.kinds, id)
}

// Exists reports whether id is a live entity.
func (r *Registry) Exists(id EntityID) bool {
	_, ok := r.kinds[id]
	return ok
}

// Kind returns the entity's kind.
func (r *Registry) Kind(id EntityID) (Kind, error) {
	k, ok := r.kinds[id]
	if !ok {
		return 0, simerr.New(simerr.EntityNotFound, "entity %d", id)
	}
	return k, nil
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.kinds)
}

// Storages returns the registered storages in registration order.
func (r *Registry) Storages() []AnyStorage {
	out := make([]AnyStorage, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Register creates the storage for C and returns its typed handle.
// Registering the same type twice is a programming error.
func Register[C any](r *Registry) *Storage[C] {
	t := reflect.TypeFor[C]()
	if _, ok := r.storages[t]; ok {
		panic(fmt.Sprintf("ecs: component %s registered twice", t))
	}
	s := NewStorage[C]()
	r.storages[t] = s
	r.ordered = append(r.ordered, s)
	return s
}

// StorageOf returns the typed handle for C, registering it on first use.
func StorageOf[C any](r *Registry) *Storage[C] {
	if s, ok := lookup[C](r); ok {
		return s
	}
	return Register[C](r)
}

func lookup[C any](r *Registry) (*Storage[C], bool) {
	s, ok := r.storages[reflect.TypeFor[C]()]
	if !ok {
		return nil, false
	}
	return s.(*Storage[C]), true
}

// Add attaches (or overwrites) component C on id. Adding to an entity that
// does not exist is a programming error and panics.
func Add[C any](r *Registry, id EntityID, v C) *C {
	if !r.Exists(id) {
		panic(fmt.Sprintf("ecs: add %s to nonexistent entity %d", reflect.TypeFor[C](), id))
	}
	return StorageOf[C](r).Add(id, v)
}

// Get returns id's component C, or a ComponentNotFound/EntityNotFound error.
// Asking for a component type that has no storage at all panics.
func Get[C any](r *Registry, id EntityID) (*C, error) {
	s, ok := lookup[C](r)
	if !ok {
		panic(fmt.Sprintf("ecs: get %s for entity %d: no storage registered", reflect.TypeFor[C](), id))
	}
	c, ok := s.Get(id)
	if !ok {
		if !r.Exists(id) {
			return nil, simerr.New(simerr.EntityNotFound, "entity %d", id)
		}
		return nil, simerr.New(simerr.ComponentNotFound, "%s on entity %d", s.Name(), id)
	}
	return c, nil
}

// MustGet is Get for call sites that have just checked Has or iterated a
// view of C; a miss there is a programming error.
func MustGet[C any](r *Registry, id EntityID) *C {
	c, err := Get[C](r, id)
	if err != nil {
		panic(fmt.Sprintf("ecs: %v", err))
	}
	return c
}

// Has reports whether id owns component C. Unregistered types report false.
func Has[C any](r *Registry, id EntityID) bool {
	s, ok := lookup[C](r)
	return ok && s.Has(id)
}

// Remove drops component C from id; no-op if absent.
func Remove[C any](r *Registry, id EntityID) {
	if s, ok := lookup[C](r); ok {
		s.Remove(id)
	}
}

// View returns the ids owning C in storage order. The slice is a copy.
func View[C any](r *Registry) []EntityID {
	s, ok := lookup[C](r)
	if !ok {
		return nil
	}
	return s.Entities()
}

// ViewMulti returns the ids of first's view that also own every other storage.
// It filters rather than joins: cost is len(first) x len(others) lookups.
func ViewMulti(first AnyStorage, others ...AnyStorage) []EntityID {
	ids := first.Entities()
	out := ids[:0]
outer:
	for _, id := range ids {
		for _, s := range others {
			if !s.Has(id) {
				continue outer
			}
		}
		out = append(out, id)
	}
	return out
}

// View2 returns ids owning both A and B.
func View2[A, B any](r *Registry) []EntityID {
	a, ok := lookup[A](r)
	if !ok {
		return nil
	}
	b, ok := lookup[B](r)
	if !ok {
		return nil
	}
	return ViewMulti(a, b)
}

// View3 returns ids owning A, B and C.
func View3[A, B, C any](r *Registry) []EntityID {
	a, ok := lookup[A](r)
	if !ok {
		return nil
	}
	b, ok := lookup[B](r)
	if !ok {
		return nil
	}
	c, ok := lookup[C](r)
	if !ok {
		return nil
	}
	return ViewMulti(a, b, c)
}
