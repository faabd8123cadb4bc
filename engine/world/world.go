// Package world adapts the lazyecs archetype store to the engine: entities get stable ids in spawn
// order, component access is guarded by one lock so systems can run in parallel, and resources are
// singletons keyed by type.
package world

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/edwinsyarief/lazyecs"
)

// ErrNoEntity is returned when a component is attached to an entity that does not exist.
var ErrNoEntity = errors.New("no such entity")

// Entity identifies a row of components. Ids are assigned in spawn order and never reused, unlike
// the recycled ids of the underlying store.
type Entity uint64

// registry guards the lazyecs component registry, which is process global. Registration takes the
// write lock; every component operation holds the read lock.
var registry sync.RWMutex

// cell holds one component of type T. lazyecs identifies components by the reflect type of a zero
// value, which is nil for interface types, so every T is stored boxed.
type cell[T any] struct {
	v T
}

// register registers cell[T] on first use. It must not be called while holding a world lock.
func register[T any]() {
	registry.RLock()
	_, ok := lazyecs.TryGetID[cell[T]]()
	registry.RUnlock()
	if ok {
		return
	}
	registry.Lock()
	defer registry.Unlock()
	lazyecs.RegisterComponent[cell[T]]()
}

// registered reports whether T has been registered. The caller holds the registry read lock.
func registered[T any]() bool {
	_, ok := lazyecs.TryGetID[cell[T]]()
	return ok
}

// component returns a pointer to e's T. The caller holds a world lock.
func component[T any](w *World, e Entity) (*T, bool) {
	le, ok := w.ids[e]
	if !ok {
		return nil, false
	}
	c, ok := lazyecs.GetComponent[cell[T]](w.ecs, le)
	if !ok {
		return nil, false
	}
	return &c.v, true
}

// resourceKey is the lazyecs resource map key for T.
type resourceKey[T any] struct{}

// World owns entities, their components and typed resources. It is safe for concurrent use;
// component accessors take the world's lock for the duration of the call.
type World struct {
	mu    sync.RWMutex
	ecs   *lazyecs.World
	next  Entity
	ids   map[Entity]lazyecs.Entity
	owner map[lazyecs.Entity]Entity
}

// New creates an empty World.
func New() *World {
	return &World{
		ecs:   lazyecs.NewWorldWithOptions(lazyecs.WorldOptions{InitialCapacity: 64}),
		next:  1,
		ids:   make(map[Entity]lazyecs.Entity),
		owner: make(map[lazyecs.Entity]Entity),
	}
}

func (w *World) lock() {
	registry.RLock()
	w.mu.Lock()
}

func (w *World) unlock() {
	w.mu.Unlock()
	registry.RUnlock()
}

func (w *World) rlock() {
	registry.RLock()
	w.mu.RLock()
}

func (w *World) runlock() {
	w.mu.RUnlock()
	registry.RUnlock()
}

// Spawn creates an entity with no components.
func (w *World) Spawn() Entity {
	w.lock()
	defer w.unlock()
	e := w.next
	w.next++
	le := w.ecs.CreateEntity()
	w.ids[e] = le
	w.owner[le] = e
	return e
}

// Despawn removes e and every component attached to it. It reports whether e existed.
func (w *World) Despawn(e Entity) bool {
	w.lock()
	defer w.unlock()
	le, ok := w.ids[e]
	if !ok {
		return false
	}
	w.ecs.RemoveEntity(le)
	w.ecs.ProcessRemovals()
	delete(w.ids, e)
	delete(w.owner, le)
	return true
}

// Alive reports whether e exists.
func (w *World) Alive(e Entity) bool {
	w.rlock()
	defer w.runlock()
	_, ok := w.ids[e]
	return ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.rlock()
	defer w.runlock()
	return len(w.ids)
}

// Entities returns the live entities in spawn order.
func (w *World) Entities() []Entity {
	w.rlock()
	defer w.runlock()
	return slices.Sorted(maps.Keys(w.ids))
}

// Insert attaches v to e, replacing any component of the same type.
//
// Parameters:
//   - w: the world
//   - e: the entity
//   - v: the component value
//
// Returns:
//   - error: ErrNoEntity if e does not exist
func Insert[T any](w *World, e Entity, v T) error {
	register[T]()
	w.lock()
	defer w.unlock()
	le, ok := w.ids[e]
	if !ok || !lazyecs.SetComponent(w.ecs, le, cell[T]{v: v}) {
		return fmt.Errorf("%w: %d", ErrNoEntity, e)
	}
	return nil
}

// Get returns a copy of e's component of type T.
func Get[T any](w *World, e Entity) (T, bool) {
	w.rlock()
	defer w.runlock()
	v, ok := component[T](w, e)
	if !ok {
		var zero T
		return zero, false
	}
	return *v, true
}

// Has reports whether e carries a component of type T.
func Has[T any](w *World, e Entity) bool {
	w.rlock()
	defer w.runlock()
	_, ok := component[T](w, e)
	return ok
}

// Remove detaches e's component of type T and reports whether it was present.
func Remove[T any](w *World, e Entity) bool {
	w.lock()
	defer w.unlock()
	if _, ok := component[T](w, e); !ok {
		return false
	}
	return lazyecs.RemoveComponent[cell[T]](w.ecs, w.ids[e])
}

// Modify calls fn with a pointer to e's component of type T under the world's write lock.
// fn must not call back into w.
//
// Parameters:
//   - w: the world
//   - e: the entity
//   - fn: the mutation
//
// Returns:
//   - bool: false if e has no component of type T
func Modify[T any](w *World, e Entity, fn func(*T)) bool {
	w.lock()
	defer w.unlock()
	v, ok := component[T](w, e)
	if !ok {
		return false
	}
	fn(v)
	return true
}

// Count returns the number of entities carrying a component of type T.
func Count[T any](w *World) int {
	w.rlock()
	defer w.runlock()
	if !registered[T]() {
		return 0
	}
	n := 0
	for q := lazyecs.CreateQuery[cell[T]](w.ecs); q.Next(); {
		n++
	}
	return n
}

// SetResource stores a singleton value of type T, replacing any previous one.
func SetResource[T any](w *World, v T) {
	w.ecs.Resources.Store(resourceKey[T]{}, v)
}

// Resource returns the singleton of type T.
func Resource[T any](w *World) (T, bool) {
	v, ok := w.ecs.Resources.Load(resourceKey[T]{})
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}
