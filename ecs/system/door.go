package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const defaultDoorDuration = 0.5

// DoorSystem eases doors between their closed and open poses whenever their
// Open flag changes.
type DoorSystem struct{}

func NewDoorSystem() *DoorSystem {
	return &DoorSystem{}
}

func (d *DoorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Delta()
	ecs.ForEach2(w, component.DoorComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, door *component.Door, pb *component.PhysicsBody) {
		body := pb.Body
		if body == nil || !body.Active() {
			return
		}

		if !door.Initialized {
			pos := body.Position()
			door.ClosedX, door.ClosedY = pos.X, pos.Y
			door.ClosedW, door.ClosedH = body.ScaleXY()
			door.Progress = doorGoal(door)
			door.Target = door.Progress
			door.Initialized = true
			applyDoor(door, pb)
			return
		}

		if goal := doorGoal(door); goal != door.Target {
			duration := door.Duration
			if duration <= 0 {
				duration = defaultDoorDuration
			}
			door.Tween = gween.New(float32(door.Progress), float32(goal), float32(duration), ease.OutQuad)
			door.Target = goal
		}

		if door.Tween == nil {
			return
		}
		v, finished := door.Tween.Update(float32(dt))
		door.Progress = float64(v)
		if finished {
			door.Progress = door.Target
			door.Tween = nil
		}
		applyDoor(door, pb)
	})
}

func doorGoal(door *component.Door) float64 {
	if door.Open {
		return 1
	}
	return 0
}

// applyDoor poses the door body for its current progress. Move doors slide up
// or right; scale doors collapse along their axis.
func applyDoor(door *component.Door, pb *component.PhysicsBody) {
	switch door.Mode {
	case component.DoorScale:
		sx, sy := door.ClosedW, door.ClosedH
		if door.Axis == component.DoorHorizontal {
			sx = common.Lerp(door.ClosedW, 0, door.Progress)
		} else {
			sy = common.Lerp(door.ClosedH, 0, door.Progress)
		}
		pb.Body.SetScaleXY(sx, sy)
	default:
		dir := cp.Vector{X: 0, Y: -1}
		if door.Axis == component.DoorHorizontal {
			dir = cp.Vector{X: 1, Y: 0}
		}
		closed := cp.Vector{X: door.ClosedX, Y: door.ClosedY}
		pb.Body.SetPosition(closed.Add(dir.Mult(door.Distance * door.Progress)))
	}
}
