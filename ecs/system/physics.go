package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/physics"
)

const boundsThickness = 64.0

// PhysicsSystem mirrors PhysicsBody components into the physics world, steps
// it and copies poses back into Transforms.
type PhysicsSystem struct {
	world *physics.World

	entities map[ecs.Entity]*physics.Body
	bounds   []*physics.Body
	boundsW  float64
	boundsH  float64
}

func NewPhysicsSystem(world *physics.World) *PhysicsSystem {
	return &PhysicsSystem{
		world:    world,
		entities: make(map[ecs.Entity]*physics.Body),
	}
}

func (ps *PhysicsSystem) World() *physics.World {
	if ps == nil {
		return nil
	}
	return ps.world
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.world == nil || w == nil {
		return
	}

	ps.syncEntities(w)
	ps.syncWorldBounds(w)

	ps.world.Step(w.Delta())

	ps.syncTransforms(w)
}

// Sync creates bodies for new components without stepping. Level building
// calls it so everything exists before the first tick.
func (ps *PhysicsSystem) Sync(w *ecs.World) {
	if ps == nil || ps.world == nil || w == nil {
		return
	}
	ps.syncEntities(w)
	ps.syncWorldBounds(w)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach(w, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody) {
		if body := ps.entities[e]; body != nil {
			if bodyComp.Body != body {
				bodyComp.Body = body
			}
			return
		}

		spec := bodyComp.Spec
		spec.UserData = e
		if spec.Tag == "" && ecs.Has(w, e, component.PlayerTagComponent.Kind()) {
			spec.Tag = "player"
		}
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			spec.X, spec.Y = t.X, t.Y
		}

		body := ps.world.Add(spec)
		if body == nil {
			return
		}
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok && t.ScaleX > 0 && t.ScaleY > 0 {
			body.SetScaleXY(t.ScaleX, t.ScaleY)
		}
		if g, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind()); ok {
			body.SetGravityScale(g.Scale)
		}

		ps.entities[e] = body
		bodyComp.Body = body
	})
}

// syncWorldBounds keeps four static walls just outside the level rectangle.
func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	e, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		ps.removeBounds()
		return
	}
	lb, _ := ecs.Get(w, e, component.LevelBoundsComponent.Kind())
	if lb.Width <= 0 || lb.Height <= 0 {
		ps.removeBounds()
		return
	}
	if len(ps.bounds) > 0 && lb.Width == ps.boundsW && lb.Height == ps.boundsH {
		return
	}
	ps.removeBounds()

	half := boundsThickness / 2
	walls := []physics.BodySpec{
		{X: lb.Width / 2, Y: -half, Width: lb.Width + 2*boundsThickness, Height: boundsThickness},
		{X: lb.Width / 2, Y: lb.Height + half, Width: lb.Width + 2*boundsThickness, Height: boundsThickness},
		{X: -half, Y: lb.Height / 2, Width: boundsThickness, Height: lb.Height},
		{X: lb.Width + half, Y: lb.Height / 2, Width: boundsThickness, Height: lb.Height},
	}
	for _, spec := range walls {
		spec.Kind = physics.KindStatic
		spec.Friction = 0.8
		spec.Tag = "bounds"
		ps.bounds = append(ps.bounds, ps.world.Add(spec))
	}
	ps.boundsW, ps.boundsH = lb.Width, lb.Height
}

func (ps *PhysicsSystem) removeBounds() {
	for _, b := range ps.bounds {
		ps.world.Remove(b)
	}
	ps.bounds = nil
	ps.boundsW, ps.boundsH = 0, 0
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Body == nil || !bodyComp.Body.Active() {
			return
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.ScaleX, transform.ScaleY = bodyComp.Body.ScaleXY()
		transform.Rotation = bodyComp.Body.Angle()
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, body := range ps.entities {
		if bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && bodyComp.Body == body {
			continue
		}
		ps.world.Remove(body)
		delete(ps.entities, e)
	}
}

// BodyOf returns the body created for e, if any.
func (ps *PhysicsSystem) BodyOf(e ecs.Entity) (*physics.Body, bool) {
	if ps == nil {
		return nil, false
	}
	b, ok := ps.entities[e]
	return b, ok
}

// Teleport moves an entity's body without a physics step, e.g. to respawn.
func (ps *PhysicsSystem) Teleport(e ecs.Entity, p cp.Vector) bool {
	b, ok := ps.BodyOf(e)
	if !ok || !b.Active() {
		return false
	}
	b.SetPosition(p)
	b.SetVelocity(cp.Vector{})
	return true
}
