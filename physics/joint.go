package physics

import "github.com/jakecoffman/cp"

// TargetJoint drags a body toward a movable world point through a pivot on a
// kinematic control body.
type TargetJoint struct {
	world   *World
	body    *Body
	control *cp.Body
	pivot   *cp.Constraint
	target  cp.Vector
}

func (j *TargetJoint) SetTarget(p cp.Vector) {
	if j == nil {
		return
	}
	j.target = p
}

func (j *TargetJoint) Target() cp.Vector {
	if j == nil {
		return cp.Vector{}
	}
	return j.target
}

func (j *TargetJoint) Body() *Body {
	if j == nil {
		return nil
	}
	return j.body
}

// Active is false once Destroy has run.
func (j *TargetJoint) Active() bool {
	return j != nil && j.pivot != nil
}

// drive moves the control body onto the target, giving it the velocity that
// covers the distance in one step so the pivot sees a smooth motion.
func (j *TargetJoint) drive(dt float64) {
	if j.pivot == nil || dt <= 0 {
		return
	}
	pos := j.control.Position()
	j.control.SetVelocityVector(j.target.Sub(pos).Mult(1 / dt))
	j.control.SetPosition(j.target)
}

// Destroy removes the joint from the space. Safe to call more than once.
func (j *TargetJoint) Destroy() {
	if j == nil || j.pivot == nil {
		return
	}
	if j.world != nil && j.world.space != nil {
		j.world.space.RemoveConstraint(j.pivot)
		delete(j.world.joints, j)
	}
	j.pivot = nil
}
