// Package grab implements pick-up, drag and proportional resize of a single
// physics body by whichever input device is active.
package grab

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/task"
)

const (
	DefaultFollowSpeed        = 15.0
	DefaultScaleSpeed         = 5.0
	DefaultMinScale           = 1.0
	DefaultMaxScale           = 2.0
	DefaultMinMass            = 5.0
	DefaultMaxMass            = 15.0
	DefaultFineTuneMultiplier = 0.2
	DefaultGraceDelay         = 0.1
	DefaultJointMaxForce      = 100000.0 // 0 means unlimited
	DefaultPlayerTag          = "player"
)

type Config struct {
	FollowSpeed        float64         `yaml:"follow_speed"`
	ScaleSpeed         float64         `yaml:"scale_speed"`
	MinScale           float64         `yaml:"min_scale"`
	MaxScale           float64         `yaml:"max_scale"`
	MinMass            float64         `yaml:"min_mass"`
	MaxMass            float64         `yaml:"max_mass"`
	FineTuneMultiplier float64         `yaml:"fine_tune_multiplier"`
	GraceDelay         float64         `yaml:"grace_delay"`
	JointMaxForce      float64         `yaml:"joint_max_force"`
	CollisionPolicy    CollisionPolicy `yaml:"collision_policy"`
	PlayerTag          string          `yaml:"player_tag"`
	// Color is the object's colour tag. When set it replaces the colour of
	// the entity's physics body, which is what switches filter on.
	Color              common.ObjColor `yaml:"color"`
}

func DefaultConfig() Config {
	return Config{
		FollowSpeed:        DefaultFollowSpeed,
		ScaleSpeed:         DefaultScaleSpeed,
		MinScale:           DefaultMinScale,
		MaxScale:           DefaultMaxScale,
		MinMass:            DefaultMinMass,
		MaxMass:            DefaultMaxMass,
		FineTuneMultiplier: DefaultFineTuneMultiplier,
		GraceDelay:         DefaultGraceDelay,
		JointMaxForce:      DefaultJointMaxForce,
		CollisionPolicy:    DisableWhenHeld,
		PlayerTag:          DefaultPlayerTag,
	}
}

// normalized fills unset values with defaults and orders the ranges.
func (c Config) normalized() Config {
	if c.FollowSpeed <= 0 {
		c.FollowSpeed = DefaultFollowSpeed
	}
	if c.ScaleSpeed <= 0 {
		c.ScaleSpeed = DefaultScaleSpeed
	}
	if c.MinScale <= 0 && c.MaxScale <= 0 {
		c.MinScale, c.MaxScale = DefaultMinScale, DefaultMaxScale
	}
	if c.MaxScale < c.MinScale {
		c.MinScale, c.MaxScale = c.MaxScale, c.MinScale
	}
	if c.MinMass <= 0 && c.MaxMass <= 0 {
		c.MinMass, c.MaxMass = DefaultMinMass, DefaultMaxMass
	}
	if c.MaxMass < c.MinMass {
		c.MinMass, c.MaxMass = c.MaxMass, c.MinMass
	}
	if c.FineTuneMultiplier <= 0 {
		c.FineTuneMultiplier = DefaultFineTuneMultiplier
	}
	if c.GraceDelay < 0 {
		c.GraceDelay = DefaultGraceDelay
	}
	if c.JointMaxForce < 0 {
		c.JointMaxForce = 0
	}
	if c.PlayerTag == "" {
		c.PlayerTag = DefaultPlayerTag
	}
	return c
}

// Deps are the collaborators a controller needs. Tasks may be nil, in which
// case the controller keeps a private queue and advances it from Step.
type Deps struct {
	World   *physics.World
	Body    *physics.Body
	Arbiter *input.Arbiter
	Camera  Projector
	Tasks   *task.Queue
}

// Controller owns the hold state of one manipulable body. Scale and mass are
// both derived from a single scale factor in [0,1] every step.
type Controller struct {
	cfg Config

	world   *physics.World
	body    *physics.Body
	arbiter *input.Arbiter
	camera  Projector
	tasks   *task.Queue

	ownsTasks bool
	disabled  bool
	closed    bool

	sub  *input.Subscription
	hold Hold

	current      float64
	target       float64
	proportional bool

	suppressed     bool
	restoreGravity float64
}

// NewController wires a controller to its body. When a required collaborator
// is missing the returned controller is disabled and every call is a no-op.
func NewController(cfg Config, deps Deps) *Controller {
	c := &Controller{
		cfg:     cfg.normalized(),
		world:   deps.World,
		body:    deps.Body,
		arbiter: deps.Arbiter,
		camera:  deps.Camera,
		tasks:   deps.Tasks,
	}
	if c.world == nil || c.body == nil || !c.body.Active() || c.arbiter == nil || c.camera == nil {
		c.disabled = true
		return c
	}
	if c.tasks == nil {
		c.tasks = task.NewQueue()
		c.ownsTasks = true
	}

	c.current = common.InverseLerp(c.cfg.MinScale, c.cfg.MaxScale, c.body.Scale())
	c.target = c.current
	c.apply()

	if c.cfg.CollisionPolicy == AlwaysDisable {
		c.setSuppressed(true)
	}

	c.sub = c.arbiter.Subscribe(c.onModeChange)
	return c
}

func (c *Controller) Config() Config {
	if c == nil {
		return DefaultConfig()
	}
	return c.cfg
}

func (c *Controller) Body() *physics.Body {
	if c == nil {
		return nil
	}
	return c.body
}

// Enabled is false when a collaborator was missing or the controller was
// closed.
func (c *Controller) Enabled() bool {
	return c != nil && !c.disabled && !c.closed
}

func (c *Controller) State() HoldState {
	if c == nil || c.hold == nil {
		return Free
	}
	return c.hold.State()
}

func (c *Controller) Hold() Hold {
	if c == nil {
		return nil
	}
	return c.hold
}

func (c *Controller) Held() bool {
	return c.State() != Free
}

func (c *Controller) ScaleFactor() float64 {
	if c == nil {
		return 0
	}
	return c.current
}

func (c *Controller) TargetScaleFactor() float64 {
	if c == nil {
		return 0
	}
	return c.target
}

func (c *Controller) Scale() float64 {
	if c == nil {
		return 0
	}
	return common.Lerp(c.cfg.MinScale, c.cfg.MaxScale, c.current)
}

func (c *Controller) Mass() float64 {
	if c == nil {
		return 0
	}
	return common.Lerp(c.cfg.MinMass, c.cfg.MaxMass, c.current)
}

func (c *Controller) CollisionSuppressed() bool {
	return c != nil && c.suppressed
}

// ReleasePending reports whether a forced release is waiting on the grace
// delay.
func (c *Controller) ReleasePending() bool {
	return c.Enabled() && c.tasks.Pending(c)
}

// TryGrabByPointer anchors a target joint at the world point under screen.
// The caller is expected to have hit-tested the body already.
func (c *Controller) TryGrabByPointer(screen cp.Vector) bool {
	if !c.Enabled() || c.hold != nil || c.arbiter.Mode() != input.ModePointer {
		return false
	}
	anchor := c.camera.ScreenToWorld(screen)
	joint := c.world.NewTargetJoint(c.body, anchor, c.cfg.JointMaxForce)
	if joint == nil {
		return false
	}
	c.hold = PointerHold{Joint: joint}
	c.beginHold()
	return true
}

// UpdatePointerTarget moves the joint target to the projected screen point.
func (c *Controller) UpdatePointerTarget(screen cp.Vector) {
	if !c.Enabled() {
		return
	}
	h, ok := c.hold.(PointerHold)
	if !ok {
		return
	}
	h.Joint.SetTarget(c.camera.ScreenToWorld(screen))
}

// ReleaseByPointer ends a pointer hold. Anything else is a no-op.
func (c *Controller) ReleaseByPointer() {
	if !c.Enabled() || c.State() != HeldByPointer {
		return
	}
	c.tasks.Cancel(c)
	c.releaseHold()
}

// GrabByGamepad starts steering the body toward target.
func (c *Controller) GrabByGamepad(target FollowTarget) bool {
	if !c.Enabled() || c.hold != nil || target == nil || c.arbiter.Mode() != input.ModeGamepad {
		return false
	}
	c.hold = GamepadHold{Target: target}
	c.beginHold()
	return true
}

// Release ends a gamepad hold. Anything else is a no-op.
func (c *Controller) Release() {
	if !c.Enabled() || c.State() != HeldByGamepad {
		return
	}
	c.tasks.Cancel(c)
	c.releaseHold()
}

// AdjustScaleFactor nudges the target scale factor while held. The first call
// of each hold reseeds the factor from the body's present size.
func (c *Controller) AdjustScaleFactor(delta float64) {
	if !c.Enabled() || c.hold == nil || math.IsNaN(delta) {
		return
	}
	if !c.proportional {
		c.current = common.InverseLerp(c.cfg.MinScale, c.cfg.MaxScale, c.body.Scale())
		c.target = c.current
		c.proportional = true
	}
	c.target = common.Clamp01(c.target + delta)
}

// Step runs once per physics step regardless of hold state.
func (c *Controller) Step(dt float64) {
	if !c.Enabled() || dt <= 0 {
		return
	}
	if !c.body.Active() {
		// the scene removed the body out from under us
		c.tasks.Cancel(c)
		c.hold = nil
		c.disabled = true
		return
	}
	if c.ownsTasks {
		c.tasks.Advance(dt)
		if !c.Enabled() {
			return
		}
	}

	if h, ok := c.hold.(GamepadHold); ok {
		delta := h.Target.Position().Sub(c.body.Position())
		c.body.SetVelocity(delta.Mult(c.cfg.FollowSpeed))
	}

	c.current = common.Lerp(c.current, c.target, common.Clamp01(c.cfg.ScaleSpeed*dt))
	c.apply()

	if c.suppressed {
		// players spawned after the grab still need the ignore pair
		c.applyCollisionPolicy(true)
	}
}

// Close cancels the mode subscription and any pending release, and lets go of
// the body. The controller is unusable afterwards.
func (c *Controller) Close() {
	if c == nil || c.closed {
		return
	}
	if !c.disabled {
		c.tasks.Cancel(c)
		if c.hold != nil {
			c.releaseHold()
		}
		if c.suppressed {
			c.setSuppressed(false)
		}
	}
	c.sub.Cancel()
	c.closed = true
}

func (c *Controller) onModeChange(input.ModeChange) {
	if !c.Enabled() || c.hold == nil {
		return
	}
	c.tasks.Schedule(c, c.cfg.GraceDelay, c.forceRelease)
}

// forceRelease ends whatever hold is current when the grace delay expires.
func (c *Controller) forceRelease() {
	if !c.Enabled() || c.hold == nil {
		return
	}
	c.releaseHold()
}

func (c *Controller) beginHold() {
	c.proportional = false
	c.restoreGravity = c.body.GravityScale()
	c.body.SetGravityScale(0)
	if c.cfg.CollisionPolicy == DisableWhenHeld {
		c.setSuppressed(true)
	}
}

func (c *Controller) releaseHold() {
	if h, ok := c.hold.(PointerHold); ok {
		h.Joint.Destroy()
	}
	c.hold = nil
	c.body.SetGravityScale(c.restoreGravity)
	if c.cfg.CollisionPolicy == DisableWhenHeld {
		c.setSuppressed(false)
	}
}

func (c *Controller) apply() {
	c.body.SetScale(c.Scale())
	c.body.SetMass(c.Mass())
}

func (c *Controller) setSuppressed(on bool) {
	c.suppressed = on
	c.applyCollisionPolicy(on)
}

func (c *Controller) applyCollisionPolicy(ignore bool) {
	for _, p := range c.world.Tagged(c.cfg.PlayerTag) {
		if p == c.body {
			continue
		}
		c.world.IgnoreCollision(c.body, p, ignore)
	}
}
