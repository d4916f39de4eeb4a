// Package physics adapts a Chipmunk2D space into the small surface the
// interaction core needs: bodies with mutable scale, mass and gravity scale, a
// movable target joint, point/radius queries, sensor overlap notifications
// and pairwise collision-ignore toggles.
package physics

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
)

const (
	collisionTypeBody cp.CollisionType = iota + 1
	collisionTypeSensor
)

const defaultIterations = 20

type bodyPair struct {
	a, b uint64
}

func makePair(a, b *Body) bodyPair {
	if a.id > b.id {
		a, b = b, a
	}
	return bodyPair{a: a.id, b: b.id}
}

// World owns the Chipmunk space and every body added through it.
type World struct {
	space *cp.Space

	nextID  uint64
	bodies  map[uint64]*Body
	shapes  map[*cp.Shape]*Body
	ignored map[bodyPair]struct{}
	joints  map[*TargetJoint]struct{}
}

// NewWorld creates a space with downward gravity in pixels per second squared.
func NewWorld(gravity float64) *World {
	space := cp.NewSpace()
	space.Iterations = defaultIterations
	space.SetGravity(cp.Vector{X: 0, Y: gravity})

	w := &World{
		space:   space,
		bodies:  make(map[uint64]*Body),
		shapes:  make(map[*cp.Shape]*Body),
		ignored: make(map[bodyPair]struct{}),
		joints:  make(map[*TargetJoint]struct{}),
	}
	w.setupHandlers()
	return w
}

func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// Add creates a body from spec and inserts it into the space.
func (w *World) Add(spec BodySpec) *Body {
	if w == nil || w.space == nil {
		return nil
	}
	spec = spec.normalized()

	w.nextID++
	b := &Body{
		id:           w.nextID,
		world:        w,
		spec:         spec,
		scaleX:       1,
		scaleY:       1,
		gravityScale: 1,
		active:       true,
	}

	switch spec.Kind {
	case KindStatic:
		b.body = w.space.StaticBody
	case KindKinematic:
		b.body = cp.NewKinematicBody()
		b.body.SetPosition(cp.Vector{X: spec.X, Y: spec.Y})
		w.space.AddBody(b.body)
	default:
		b.body = cp.NewBody(spec.Mass, b.moment(spec.Mass))
		b.body.SetPosition(cp.Vector{X: spec.X, Y: spec.Y})
		b.body.SetAngle(0)
		b.body.SetAngularVelocity(0)
		b.body.SetVelocityUpdateFunc(b.updateVelocity)
		w.space.AddBody(b.body)
	}

	b.shape = b.newShape()
	w.space.AddShape(b.shape)
	w.shapes[b.shape] = b
	w.bodies[b.id] = b
	return b
}

// Remove takes a body out of the space and marks it inactive. Joints on the
// body are destroyed and its ignore pairs are forgotten.
func (w *World) Remove(b *Body) {
	if w == nil || b == nil || b.world != w || !b.active {
		return
	}
	for j := range w.joints {
		if j.body == b {
			j.Destroy()
		}
	}
	if b.shape != nil {
		w.space.RemoveShape(b.shape)
		delete(w.shapes, b.shape)
	}
	if b.spec.Kind != KindStatic && b.body != nil {
		w.space.RemoveBody(b.body)
	}
	for pair := range w.ignored {
		if pair.a == b.id || pair.b == b.id {
			delete(w.ignored, pair)
		}
	}
	delete(w.bodies, b.id)
	b.active = false
}

// Step advances the simulation by dt seconds. Target joints move their
// control bodies first so the pivot pulls toward the latest target.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil || dt <= 0 {
		return
	}
	for j := range w.joints {
		j.drive(dt)
	}
	w.space.Step(dt)
}

// Bodies returns all live bodies in creation order.
func (w *World) Bodies() []*Body {
	if w == nil {
		return nil
	}
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Tagged returns live bodies carrying tag, in creation order.
func (w *World) Tagged(tag string) []*Body {
	var out []*Body
	for _, b := range w.Bodies() {
		if b.spec.Tag == tag {
			out = append(out, b)
		}
	}
	return out
}

// BodyAt returns the newest dynamic, non-sensor body containing p, or nil.
func (w *World) BodyAt(p cp.Vector) *Body {
	bodies := w.queryPoint(p, 0)
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

// BodiesNear returns dynamic, non-sensor bodies within radius of p, nearest
// first.
func (w *World) BodiesNear(p cp.Vector, radius float64) []*Body {
	if radius < 0 {
		radius = 0
	}
	bodies := w.queryPoint(p, radius)
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].shape.PointQuery(p).Distance < bodies[j].shape.PointQuery(p).Distance
	})
	return bodies
}

func (w *World) queryPoint(p cp.Vector, radius float64) []*Body {
	var out []*Body
	for _, b := range w.Bodies() {
		if b.spec.Kind != KindDynamic || b.spec.Sensor || b.shape == nil {
			continue
		}
		info := b.shape.PointQuery(p)
		if info.Distance <= radius {
			out = append(out, b)
		}
	}
	return out
}

// Overlapping returns the non-sensor bodies whose shapes currently touch b, in
// creation order. Pairs the space never collides, such as two statics, are
// left out.
func (w *World) Overlapping(b *Body) []*Body {
	if w == nil || b == nil || b.world != w || !b.active || b.shape == nil {
		return nil
	}
	var out []*Body
	w.space.ShapeQuery(b.shape, func(shape *cp.Shape, _ *cp.ContactPointSet) {
		other, ok := w.shapes[shape]
		if !ok || other == b || !other.active || other.spec.Sensor {
			return
		}
		if b.spec.Kind == KindStatic && other.spec.Kind == KindStatic {
			return
		}
		out = append(out, other)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// IgnoreCollision toggles contact response between a and b. Sensor overlap
// notifications are unaffected.
func (w *World) IgnoreCollision(a, b *Body, ignore bool) {
	if w == nil || a == nil || b == nil || a == b {
		return
	}
	key := makePair(a, b)
	if ignore {
		w.ignored[key] = struct{}{}
		return
	}
	delete(w.ignored, key)
}

func (w *World) CollisionIgnored(a, b *Body) bool {
	if w == nil || a == nil || b == nil {
		return false
	}
	_, ok := w.ignored[makePair(a, b)]
	return ok
}

// NewTargetJoint pins b at the world point anchor to a control body that can
// be moved with SetTarget. maxForce caps how hard the joint pulls; values
// <= 0 mean unlimited.
func (w *World) NewTargetJoint(b *Body, anchor cp.Vector, maxForce float64) *TargetJoint {
	if w == nil || b == nil || !b.active || b.spec.Kind != KindDynamic {
		return nil
	}
	control := cp.NewKinematicBody()
	control.SetPosition(anchor)

	pivot := cp.NewPivotJoint2(control, b.body, cp.Vector{}, b.body.WorldToLocal(anchor))
	if maxForce > 0 {
		pivot.SetMaxForce(maxForce)
	} else {
		pivot.SetMaxForce(math.Inf(1))
	}
	pivot.SetErrorBias(math.Pow(1.0-0.15, 60.0))
	w.space.AddConstraint(pivot)

	j := &TargetJoint{world: w, body: b, control: control, pivot: pivot, target: anchor}
	w.joints[j] = struct{}{}
	return j
}

// Joints returns the number of live target joints.
func (w *World) Joints() int {
	if w == nil {
		return 0
	}
	return len(w.joints)
}

func (w *World) setupHandlers() {
	bodyHandler := w.space.NewCollisionHandler(collisionTypeBody, collisionTypeBody)
	bodyHandler.UserData = w
	bodyHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		a, okA := world.shapes[shapeA]
		b, okB := world.shapes[shapeB]
		if !okA || !okB {
			return true
		}
		return !world.CollisionIgnored(a, b)
	}

	sensorHandler := w.space.NewCollisionHandler(collisionTypeSensor, collisionTypeBody)
	sensorHandler.UserData = w
	sensorHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if world, ok := userData.(*World); ok && world != nil {
			world.dispatchOverlap(arb, true)
		}
		return true
	}
	sensorHandler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		if world, ok := userData.(*World); ok && world != nil {
			world.dispatchOverlap(arb, false)
		}
	}
}

func (w *World) dispatchOverlap(arb *cp.Arbiter, overlapping bool) {
	shapeA, shapeB := arb.Shapes()
	a, okA := w.shapes[shapeA]
	b, okB := w.shapes[shapeB]
	if !okA || !okB {
		return
	}
	// Handler order is not relied on; the sensor is whichever side says so.
	sensor, other := a, b
	if !sensor.spec.Sensor {
		sensor, other = b, a
	}
	if !sensor.spec.Sensor || other.spec.Sensor {
		return
	}
	sensor.emitOverlap(other, overlapping)
}
