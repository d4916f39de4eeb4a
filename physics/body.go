package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/common"
)

type Kind int

const (
	KindDynamic Kind = iota
	KindStatic
	KindKinematic
)

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
)

const (
	defaultSize = 32.0
	minMass     = 1e-3
	// Shapes are rebuilt only when the scale moves by more than this, so a
	// converged interpolation stops churning the space.
	scaleEpsilon = 1e-3
)

// BodySpec describes a body before it is added to a World. Width, Height and
// Radius are the unscaled size; X and Y are the centre.
type BodySpec struct {
	Kind          Kind
	Shape         ShapeKind
	X, Y          float64
	Width, Height float64
	Radius        float64
	Mass          float64
	Friction      float64
	Elasticity    float64
	Sensor        bool
	FixedRotation bool
	Tag           string
	// Layer is a bit index in [0,31] used by layer masks.
	Layer    int
	Color    common.ObjColor
	UserData any
}

func (s BodySpec) normalized() BodySpec {
	if s.Shape == ShapeCircle {
		if s.Radius <= 0 {
			s.Radius = defaultSize / 2
		}
	} else if s.Width <= 0 || s.Height <= 0 {
		s.Width = defaultSize
		s.Height = defaultSize
	}
	if s.Mass < minMass {
		s.Mass = 1
	}
	if s.Layer < 0 || s.Layer > 31 {
		s.Layer = 0
	}
	return s
}

// Body is a handle to one rigid body and its single collision shape.
type Body struct {
	id    uint64
	world *World
	spec  BodySpec

	body  *cp.Body
	shape *cp.Shape

	scaleX, scaleY float64
	// shapeScaleX/Y is the scale the current shape was built at.
	shapeScaleX, shapeScaleY float64
	gravityScale             float64
	active         bool

	listeners []func(other *Body, overlapping bool)
}

func (b *Body) ID() uint64 {
	if b == nil {
		return 0
	}
	return b.id
}

func (b *Body) Spec() BodySpec {
	if b == nil {
		return BodySpec{}
	}
	return b.spec
}

func (b *Body) Kind() Kind         { return b.spec.Kind }
func (b *Body) Tag() string        { return b.spec.Tag }
func (b *Body) Layer() int         { return b.spec.Layer }
func (b *Body) Sensor() bool       { return b.spec.Sensor }
func (b *Body) UserData() any      { return b.spec.UserData }
func (b *Body) CP() *cp.Body       { return b.body }
func (b *Body) CPShape() *cp.Shape { return b.shape }
func (b *Body) World() *World      { return b.world }

// Color returns the colour tag and whether the body carries one at all.
func (b *Body) Color() (common.ObjColor, bool) {
	if b == nil || b.spec.Color == common.ColorNone {
		return common.ColorNone, false
	}
	return b.spec.Color, true
}

// Active is false once the body has been removed from its world.
func (b *Body) Active() bool {
	return b != nil && b.active
}

func (b *Body) Position() cp.Vector {
	if b == nil || b.body == nil {
		return cp.Vector{}
	}
	if b.spec.Kind == KindStatic {
		return cp.Vector{X: b.spec.X, Y: b.spec.Y}
	}
	return b.body.Position()
}

// SetPosition teleports a dynamic or kinematic body; the space refreshes its
// bounding box on the next step. Static bodies have their shape rebuilt at the
// new centre.
func (b *Body) SetPosition(p cp.Vector) {
	if b == nil || b.body == nil || !b.active {
		return
	}
	if b.spec.Kind == KindStatic {
		b.spec.X, b.spec.Y = p.X, p.Y
		b.rebuildShape()
		return
	}
	b.body.SetPosition(p)
}

func (b *Body) Angle() float64 {
	if b == nil || b.body == nil || b.spec.Kind == KindStatic {
		return 0
	}
	return b.body.Angle()
}

func (b *Body) Velocity() cp.Vector {
	if b == nil || b.body == nil || b.spec.Kind == KindStatic {
		return cp.Vector{}
	}
	return b.body.Velocity()
}

func (b *Body) SetVelocity(v cp.Vector) {
	if b == nil || b.body == nil || b.spec.Kind == KindStatic {
		return
	}
	b.body.SetVelocityVector(v)
}

func (b *Body) Mass() float64 {
	if b == nil {
		return 0
	}
	if b.spec.Kind == KindDynamic && b.body != nil {
		return b.body.Mass()
	}
	return b.spec.Mass
}

// SetMass updates mass and the matching moment of inertia.
func (b *Body) SetMass(m float64) {
	if b == nil || math.IsNaN(m) {
		return
	}
	if m < minMass {
		m = minMass
	}
	b.spec.Mass = m
	if b.spec.Kind != KindDynamic || b.body == nil {
		return
	}
	b.body.SetMass(m)
	b.body.SetMoment(b.moment(m))
}

// Scale returns the horizontal scale; uniform scaling keeps both axes equal.
func (b *Body) Scale() float64 {
	if b == nil {
		return 1
	}
	return b.scaleX
}

func (b *Body) ScaleXY() (float64, float64) {
	if b == nil {
		return 1, 1
	}
	return b.scaleX, b.scaleY
}

func (b *Body) SetScale(s float64) {
	b.SetScaleXY(s, s)
}

// SetScaleXY resizes the collision shape. The shape is swapped for a new one
// once the scale drifts more than scaleEpsilon from the scale it was built at.
func (b *Body) SetScaleXY(sx, sy float64) {
	if b == nil || math.IsNaN(sx) || math.IsNaN(sy) {
		return
	}
	if sx < 0 {
		sx = 0
	}
	if sy < 0 {
		sy = 0
	}
	changed := math.Abs(sx-b.shapeScaleX) > scaleEpsilon || math.Abs(sy-b.shapeScaleY) > scaleEpsilon
	b.scaleX, b.scaleY = sx, sy
	if changed && b.active {
		b.rebuildShape()
		if b.spec.Kind == KindDynamic {
			b.body.SetMoment(b.moment(b.Mass()))
		}
	}
}

// Size returns the current scaled width and height.
func (b *Body) Size() (float64, float64) {
	if b == nil {
		return 0, 0
	}
	if b.spec.Shape == ShapeCircle {
		d := b.spec.Radius * 2 * b.scaleX
		return d, d
	}
	return b.spec.Width * b.scaleX, b.spec.Height * b.scaleY
}

func (b *Body) GravityScale() float64 {
	if b == nil {
		return 0
	}
	return b.gravityScale
}

// SetGravityScale scales world gravity for this body only. 1 is normal, 0 is
// weightless.
func (b *Body) SetGravityScale(s float64) {
	if b == nil {
		return
	}
	b.gravityScale = s
}

// Listen registers fn for overlap begin/end against this sensor body.
func (b *Body) Listen(fn func(other *Body, overlapping bool)) {
	if b == nil || fn == nil {
		return
	}
	b.listeners = append(b.listeners, fn)
}

// Grounded reports whether the body rests on something below it.
func (b *Body) Grounded() bool {
	if b == nil || b.body == nil || b.spec.Kind != KindDynamic {
		return false
	}
	grounded := false
	b.body.EachArbiter(func(arb *cp.Arbiter) {
		shapeA, shapeB := arb.Shapes()
		if shapeA.Sensor() || shapeB.Sensor() {
			return
		}
		// The body is always the first shape here and normals point from it
		// toward the other shape; screen-down Y means ground has n.Y > 0.
		if arb.Normal().Y > 0.5 {
			grounded = true
		}
	})
	return grounded
}

func (b *Body) emitOverlap(other *Body, overlapping bool) {
	for _, fn := range b.listeners {
		fn(other, overlapping)
	}
}

func (b *Body) updateVelocity(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
	cp.BodyUpdateVelocity(body, gravity.Mult(b.gravityScale), damping, dt)
}

func (b *Body) moment(mass float64) float64 {
	if b.spec.FixedRotation {
		return math.Inf(1)
	}
	w, h := b.Size()
	if b.spec.Shape == ShapeCircle {
		return cp.MomentForCircle(mass, 0, w/2, cp.Vector{})
	}
	return cp.MomentForBox(mass, w, h)
}

func (b *Body) newShape() *cp.Shape {
	b.shapeScaleX, b.shapeScaleY = b.scaleX, b.scaleY
	w, h := b.Size()
	// keep a sliver of area so Chipmunk never sees a degenerate shape
	w = math.Max(w, 0.5)
	h = math.Max(h, 0.5)

	var shape *cp.Shape
	switch {
	case b.spec.Kind == KindStatic && b.spec.Shape == ShapeCircle:
		shape = cp.NewCircle(b.body, w/2, cp.Vector{X: b.spec.X, Y: b.spec.Y})
	case b.spec.Kind == KindStatic:
		bb := cp.BB{L: b.spec.X - w/2, B: b.spec.Y - h/2, R: b.spec.X + w/2, T: b.spec.Y + h/2}
		shape = cp.NewBox2(b.body, bb, 0)
	case b.spec.Shape == ShapeCircle:
		shape = cp.NewCircle(b.body, w/2, cp.Vector{})
	default:
		shape = cp.NewBox(b.body, w, h, 0)
	}

	shape.SetFriction(b.spec.Friction)
	shape.SetElasticity(b.spec.Elasticity)
	shape.SetSensor(b.spec.Sensor)
	if b.spec.Sensor {
		shape.SetCollisionType(collisionTypeSensor)
	} else {
		shape.SetCollisionType(collisionTypeBody)
	}
	return shape
}

func (b *Body) rebuildShape() {
	if b.world == nil || b.world.space == nil {
		return
	}
	old := b.shape
	if old != nil {
		// Remove before forgetting the mapping so separate callbacks can
		// still resolve the body.
		b.world.space.RemoveShape(old)
		delete(b.world.shapes, old)
	}
	b.shape = b.newShape()
	b.world.space.AddShape(b.shape)
	b.world.shapes[b.shape] = b
}
