package ecs

import (
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs/component"
)

// World owns entities and their component stores.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store

	delta float64
	tick  uint64
}

func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]store),
		delta:  common.TickSeconds,
	}
}

// Delta is the fixed step every system advances by, in seconds.
func (w *World) Delta() float64 {
	if w == nil {
		return 0
	}
	return w.delta
}

func (w *World) SetDelta(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	w.delta = dt
}

// Tick counts completed scheduler updates.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

func CreateEntity(w *World) Entity {
	if w == nil {
		return NoEntity
	}
	return w.entities.create()
}

// DestroyEntity drops every component of e and frees its slot.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity ordered by slot id.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// Clear destroys every entity.
func Clear(w *World) {
	for _, e := range Entities(w) {
		DestroyEntity(w, e)
	}
}
