package system

import (
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/task"
)

// ManipulationSystem owns the grab controllers. It advances the shared task
// queue first so forced releases land before the controllers step.
type ManipulationSystem struct {
	world   *physics.World
	arbiter *input.Arbiter
	tasks   *task.Queue
	camera  grab.Projector

	controllers map[ecs.Entity]*grab.Controller
}

func NewManipulationSystem(world *physics.World, arbiter *input.Arbiter, tasks *task.Queue, camera grab.Projector) *ManipulationSystem {
	if camera == nil {
		camera = grab.IdentityProjector{}
	}
	return &ManipulationSystem{
		world:       world,
		arbiter:     arbiter,
		tasks:       tasks,
		camera:      camera,
		controllers: make(map[ecs.Entity]*grab.Controller),
	}
}

func (m *ManipulationSystem) Update(w *ecs.World) {
	if m == nil || w == nil {
		return
	}
	dt := w.Delta()
	m.tasks.Advance(dt)

	m.cleanup(w)

	ecs.ForEach2(w, component.ManipulableComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, man *component.Manipulable, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		ctrl := m.controllers[e]
		if ctrl == nil || ctrl.Body() != pb.Body {
			if ctrl != nil {
				ctrl.Close()
			}
			ctrl = grab.NewController(man.Config, grab.Deps{
				World:   m.world,
				Body:    pb.Body,
				Arbiter: m.arbiter,
				Camera:  m.camera,
				Tasks:   m.tasks,
			})
			m.controllers[e] = ctrl
		}
		man.Controller = ctrl
		ctrl.Step(dt)
	})
}

// Controller returns the controller built for e.
func (m *ManipulationSystem) Controller(e ecs.Entity) (*grab.Controller, bool) {
	if m == nil {
		return nil, false
	}
	c, ok := m.controllers[e]
	return c, ok
}

// Close releases every controller, e.g. before a level reload.
func (m *ManipulationSystem) Close() {
	if m == nil {
		return
	}
	for e, c := range m.controllers {
		c.Close()
		delete(m.controllers, e)
	}
}

func (m *ManipulationSystem) cleanup(w *ecs.World) {
	for e, c := range m.controllers {
		if ecs.Has(w, e, component.ManipulableComponent.Kind()) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		c.Close()
		delete(m.controllers, e)
	}
}

// controllerOf maps a physics body back to its entity's controller.
func controllerOf(w *ecs.World, b *physics.Body) *grab.Controller {
	if b == nil {
		return nil
	}
	e, ok := b.UserData().(ecs.Entity)
	if !ok {
		return nil
	}
	man, ok := ecs.Get(w, e, component.ManipulableComponent.Kind())
	if !ok || man.Controller == nil || man.Controller.Body() != b {
		return nil
	}
	return man.Controller
}
