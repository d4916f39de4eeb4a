package grab

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/physics"
)

type HoldState int

const (
	Free HoldState = iota
	HeldByPointer
	HeldByGamepad
)

func (s HoldState) String() string {
	switch s {
	case HeldByPointer:
		return "held_by_pointer"
	case HeldByGamepad:
		return "held_by_gamepad"
	default:
		return "free"
	}
}

// Hold is the exclusive owner of a grabbed object. A nil Hold means the
// object is free.
type Hold interface {
	State() HoldState
}

// PointerHold drags the object rigidly through a target joint.
type PointerHold struct {
	Joint *physics.TargetJoint
}

func (PointerHold) State() HoldState { return HeldByPointer }

// GamepadHold steers the object's velocity toward a follow target. No joint
// is involved.
type GamepadHold struct {
	Target FollowTarget
}

func (GamepadHold) State() HoldState { return HeldByGamepad }

// FollowTarget is anything with a world position, usually the gamepad cursor.
type FollowTarget interface {
	Position() cp.Vector
}

// FollowPoint is a fixed FollowTarget.
type FollowPoint cp.Vector

func (p FollowPoint) Position() cp.Vector { return cp.Vector(p) }

// Projector maps screen coordinates into the physics world.
type Projector interface {
	ScreenToWorld(screen cp.Vector) cp.Vector
}

// IdentityProjector is the static camera: screen and world coincide.
type IdentityProjector struct{}

func (IdentityProjector) ScreenToWorld(screen cp.Vector) cp.Vector { return screen }

type CollisionPolicy int

const (
	DisableWhenHeld CollisionPolicy = iota
	NeverDisable
	AlwaysDisable
)

func (p CollisionPolicy) String() string {
	switch p {
	case NeverDisable:
		return "never_disable"
	case AlwaysDisable:
		return "always_disable"
	default:
		return "disable_when_held"
	}
}

func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "disable_when_held":
		return DisableWhenHeld, nil
	case "never_disable":
		return NeverDisable, nil
	case "always_disable":
		return AlwaysDisable, nil
	default:
		return DisableWhenHeld, fmt.Errorf("grab: unknown collision policy %q", s)
	}
}

func (p *CollisionPolicy) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseCollisionPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
