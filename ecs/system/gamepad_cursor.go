package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/physics"
)

const boostTrigger = -0.1

// GamepadCursorSystem moves the on-screen cursor with the right stick and
// grabs whatever manipulable sits under it.
type GamepadCursorSystem struct {
	world *physics.World
}

func NewGamepadCursorSystem(world *physics.World) *GamepadCursorSystem {
	return &GamepadCursorSystem{world: world}
}

func (g *GamepadCursorSystem) Update(w *ecs.World) {
	if g == nil || w == nil || g.world == nil {
		return
	}
	state, ok := currentInput(w)
	if !ok {
		return
	}

	var bounds *component.LevelBounds
	if e, ok := ecs.First(w, component.LevelBoundsComponent.Kind()); ok {
		bounds, _ = ecs.Get(w, e, component.LevelBoundsComponent.Kind())
	}

	dt := w.Delta()
	ecs.ForEach(w, component.GamepadCursorComponent.Kind(), func(e ecs.Entity, cursor *component.GamepadCursor) {
		if cursor.Held != nil && cursor.Held.State() != grab.HeldByGamepad {
			cursor.Held = nil
		}

		cursor.Visible = state.Mode == input.ModeGamepad
		if !cursor.Visible {
			return
		}

		pad := state.Sample.Gamepad
		speed := cursor.Speed
		if pad.Triggers < boostTrigger {
			speed = cursor.BoostedSpeed
		}
		cursor.X += pad.RightX * speed * dt
		cursor.Y += pad.RightY * speed * dt
		if bounds != nil && bounds.Width > 0 && bounds.Height > 0 {
			cursor.X = common.Clamp(cursor.X, 0, bounds.Width)
			cursor.Y = common.Clamp(cursor.Y, 0, bounds.Height)
		}

		if pad.GrabPressed {
			if cursor.Held != nil {
				cursor.Held.Release()
				cursor.Held = nil
			} else if ctrl := g.nearest(w, cursor); ctrl != nil && ctrl.GrabByGamepad(cursor) {
				cursor.Held = ctrl
			}
		}

		if cursor.Held != nil && pad.ScaleAxis != 0 {
			cursor.Held.AdjustScaleFactor(pad.ScaleAxis * cursor.ScaleRate * dt)
		}
	})
}

// nearest returns the controller of the closest manipulable body within the
// cursor's grab distance.
func (g *GamepadCursorSystem) nearest(w *ecs.World, cursor *component.GamepadCursor) *grab.Controller {
	for _, b := range g.world.BodiesNear(cp.Vector{X: cursor.X, Y: cursor.Y}, cursor.GrabDistance) {
		if ctrl := controllerOf(w, b); ctrl != nil {
			return ctrl
		}
	}
	return nil
}

// Hovered returns the controller that a grab press would pick up right now.
func (g *GamepadCursorSystem) Hovered(w *ecs.World, cursor *component.GamepadCursor) *grab.Controller {
	if g == nil || g.world == nil || cursor == nil || !cursor.Visible {
		return nil
	}
	return g.nearest(w, cursor)
}
