package ecs

import "github.com/milk9111/heft/ecs/component"

func storeOf[T any](w *World, kind component.ComponentKind[T], create bool) *componentStore[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]store)
	}
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*componentStore[T])
		return typed
	}
	if !create {
		return nil
	}
	s := &componentStore[T]{}
	w.stores[kind.ID()] = s
	return s
}

// Add sets the component for e, replacing any previous value.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	s := storeOf(w, kind, true)
	if s == nil {
		return component.ErrInvalidComponentKind
	}
	s.set(e, value)
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeOf(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := storeOf(w, kind, false)
	if s == nil {
		return false
	}
	return s.remove(e)
}

// Count returns how many entities carry the component.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	s := storeOf(w, kind, false)
	if s == nil {
		return 0
	}
	return s.len()
}

// First returns the lowest-slot entity carrying the component.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := storeOf(w, kind, false)
	if s == nil || s.len() == 0 {
		return NoEntity, false
	}
	for _, e := range s.snapshot() {
		if IsAlive(w, e) {
			return e, true
		}
	}
	return NoEntity, false
}

// ForEach visits every entity carrying kind in slot order. The callback may
// add or remove components; entities that lose the component before their
// turn are skipped.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := storeOf(w, kind, false)
	if s == nil || fn == nil {
		return
	}
	for _, e := range s.snapshot() {
		if v, ok := s.get(e); ok && IsAlive(w, e) {
			fn(e, v)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa := storeOf(w, ka, false)
	sb := storeOf(w, kb, false)
	if sa == nil || sb == nil || fn == nil {
		return
	}
	for _, e := range smallest(sa, sb) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		if okA && okB && IsAlive(w, e) {
			fn(e, a, b)
		}
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa := storeOf(w, ka, false)
	sb := storeOf(w, kb, false)
	sc := storeOf(w, kc, false)
	if sa == nil || sb == nil || sc == nil || fn == nil {
		return
	}
	for _, e := range smallest(sa, sb, sc) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		c, okC := sc.get(e)
		if okA && okB && okC && IsAlive(w, e) {
			fn(e, a, b, c)
		}
	}
}

type snapshotter interface {
	store
	snapshot() []Entity
}

// smallest snapshots the store with the fewest entries; intersections only
// need to walk that one.
func smallest(stores ...snapshotter) []Entity {
	best := stores[0]
	for _, s := range stores[1:] {
		if s.len() < best.len() {
			best = s
		}
	}
	return best.snapshot()
}
