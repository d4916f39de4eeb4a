package ecs

// System advances one concern of the world by World.Delta.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to a System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

// Scheduler runs systems in the order they were added. The order is the tick
// contract: input first, physics before switches, doors last.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if s == nil || system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs every system once and counts the tick.
func (s *Scheduler) Update(w *World) {
	if s == nil || w == nil {
		return
	}
	for _, system := range s.systems {
		system.Update(w)
	}
	w.tick++
}

func (s *Scheduler) Systems() []System {
	if s == nil {
		return nil
	}
	return append([]System(nil), s.systems...)
}
