package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/physics"
)

// A wheel step moves the target scale factor by wheel*ScaleSpeed*sensitivity.
const (
	wheelSensitivity = 0.2
	wheelDeadzone    = 0.01
)

// PointerGrabSystem drives controllers from the mouse: press to grab, drag to
// move, release to let go, wheel to resize.
type PointerGrabSystem struct {
	world  *physics.World
	camera grab.Projector

	held *grab.Controller
}

func NewPointerGrabSystem(world *physics.World, camera grab.Projector) *PointerGrabSystem {
	if camera == nil {
		camera = grab.IdentityProjector{}
	}
	return &PointerGrabSystem{world: world, camera: camera}
}

// Held is the controller the pointer is dragging, if any.
func (p *PointerGrabSystem) Held() *grab.Controller {
	if p == nil {
		return nil
	}
	return p.held
}

func (p *PointerGrabSystem) Update(w *ecs.World) {
	if p == nil || w == nil || p.world == nil {
		return
	}
	state, ok := currentInput(w)
	if !ok {
		return
	}

	if p.held != nil && p.held.State() != grab.HeldByPointer {
		// released elsewhere, usually the mode grace timer
		p.held = nil
	}

	ptr := state.Sample.Pointer
	screen := cp.Vector{X: ptr.X, Y: ptr.Y}

	if state.Mode != input.ModePointer {
		return
	}

	if ptr.Released && p.held != nil {
		p.held.ReleaseByPointer()
		p.held = nil
		return
	}

	if ptr.Pressed && p.held == nil {
		ctrl := controllerOf(w, p.world.BodyAt(p.camera.ScreenToWorld(screen)))
		if ctrl != nil && ctrl.TryGrabByPointer(screen) {
			p.held = ctrl
		}
	}

	if p.held == nil {
		return
	}
	p.held.UpdatePointerTarget(screen)

	if math.Abs(ptr.Wheel) > wheelDeadzone {
		cfg := p.held.Config()
		step := ptr.Wheel * cfg.ScaleSpeed * wheelSensitivity
		if state.Sample.FineTune {
			step *= cfg.FineTuneMultiplier
		}
		p.held.AdjustScaleFactor(step)
	}
}
