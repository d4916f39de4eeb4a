package system

import (
	"math"
	"testing"

	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/task"
	"github.com/milk9111/heft/trigger"
)

type scene struct {
	w       *ecs.World
	phys    *physics.World
	arb     *input.Arbiter
	tasks   *task.Queue
	physSys *PhysicsSystem
	pointer *PointerGrabSystem
	sched   *ecs.Scheduler

	sample input.Sample
}

func newScene(t *testing.T, gamepad bool) *scene {
	t.Helper()
	s := &scene{
		w:     ecs.NewWorld(),
		phys:  physics.NewWorld(common.Gravity),
		arb:   input.NewArbiter(input.DefaultConfig(), gamepad),
		tasks: task.NewQueue(),
	}
	s.sample.Gamepad.Connected = gamepad
	source := input.SourceFunc(func() input.Sample { return s.sample })

	s.physSys = NewPhysicsSystem(s.phys)
	s.pointer = NewPointerGrabSystem(s.phys, nil)
	s.sched = ecs.NewScheduler(
		NewInputSystem(source, s.arb),
		s.pointer,
		NewGamepadCursorSystem(s.phys),
		NewManipulationSystem(s.phys, s.arb, s.tasks, nil),
		NewPlayerControllerSystem(),
		s.physSys,
		NewSwitchSystem(),
		NewDoorSystem(),
	)
	return s
}

func (s *scene) spawn(t *testing.T, x, y float64, spec physics.BodySpec) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(s.w)
	if err := ecs.Add(s.w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(s.w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Spec: spec}); err != nil {
		t.Fatalf("add body: %v", err)
	}
	return e
}

func (s *scene) box(t *testing.T, x, y float64) ecs.Entity {
	t.Helper()
	e := s.spawn(t, x, y, physics.BodySpec{Width: 32, Height: 32, Mass: 1, Friction: 0.8})
	if err := ecs.Add(s.w, e, component.ManipulableComponent.Kind(), &component.Manipulable{Config: grab.DefaultConfig()}); err != nil {
		t.Fatalf("add manipulable: %v", err)
	}
	return e
}

func (s *scene) floor(t *testing.T) {
	t.Helper()
	s.spawn(t, 320, 340, physics.BodySpec{Kind: physics.KindStatic, Width: 640, Height: 40, Friction: 0.8})
}

// ready creates pending bodies and runs one tick so controllers exist.
func (s *scene) ready() {
	s.physSys.Sync(s.w)
	s.tick(1)
}

func (s *scene) tick(n int) {
	for i := 0; i < n; i++ {
		s.sched.Update(s.w)
	}
}

func (s *scene) body(t *testing.T, e ecs.Entity) *physics.Body {
	t.Helper()
	pb, ok := ecs.Get(s.w, e, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		t.Fatalf("entity %v has no body", e)
	}
	return pb.Body
}

func (s *scene) controller(t *testing.T, e ecs.Entity) *grab.Controller {
	t.Helper()
	man, ok := ecs.Get(s.w, e, component.ManipulableComponent.Kind())
	if !ok || man.Controller == nil {
		t.Fatalf("entity %v has no controller", e)
	}
	return man.Controller
}

func TestPointerGrabDragRelease(t *testing.T) {
	s := newScene(t, false)
	e := s.box(t, 100, 100)
	s.ready()
	ctrl := s.controller(t, e)
	start := s.body(t, e).Position()

	s.sample.Pointer = input.PointerSample{X: start.X, Y: start.Y, Pressed: true, Buttons: [3]bool{true}}
	s.tick(1)
	if ctrl.State() != grab.HeldByPointer {
		t.Fatalf("state = %v, want held by pointer", ctrl.State())
	}
	if s.pointer.Held() != ctrl {
		t.Fatalf("pointer system not tracking the held controller")
	}

	s.sample.Pointer = input.PointerSample{X: 200, Y: 120, DX: 1, Buttons: [3]bool{true}}
	s.tick(90)
	pos := s.body(t, e).Position()
	if math.Abs(pos.X-200) > 4 || math.Abs(pos.Y-120) > 4 {
		t.Fatalf("dragged body at %v, want near (200,120)", pos)
	}

	s.sample.Pointer = input.PointerSample{X: 200, Y: 120, Released: true}
	s.tick(1)
	if ctrl.State() != grab.Free || s.pointer.Held() != nil {
		t.Fatalf("state = %v after release, want free", ctrl.State())
	}
	if got := s.body(t, e).GravityScale(); got != 1 {
		t.Fatalf("gravity scale = %v after release, want 1", got)
	}
}

func TestPointerPressOnEmptySpace(t *testing.T) {
	s := newScene(t, false)
	e := s.box(t, 100, 100)
	s.ready()

	s.sample.Pointer = input.PointerSample{X: 400, Y: 300, Pressed: true, Buttons: [3]bool{true}}
	s.tick(1)
	if s.controller(t, e).Held() || s.pointer.Held() != nil {
		t.Fatalf("grabbed without a body under the pointer")
	}
}

func TestPointerWheelScaling(t *testing.T) {
	tests := []struct {
		name     string
		wheel    float64
		fineTune bool
		want     float64
	}{
		{name: "notch", wheel: 0.1, want: 0.1},
		{name: "fine tune", wheel: 0.1, fineTune: true, want: 0.02},
		{name: "below deadzone", wheel: 0.005, want: 0},
		{name: "clamped", wheel: 5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, false)
			e := s.box(t, 100, 100)
			s.ready()
			ctrl := s.controller(t, e)
			pos := s.body(t, e).Position()

			s.sample.Pointer = input.PointerSample{X: pos.X, Y: pos.Y, Pressed: true, Buttons: [3]bool{true}}
			s.tick(1)
			if !ctrl.Held() {
				t.Fatalf("grab failed")
			}

			s.sample.Pointer = input.PointerSample{X: pos.X, Y: pos.Y, Buttons: [3]bool{true}, Wheel: tt.wheel}
			s.sample.FineTune = tt.fineTune
			s.tick(1)
			if got := ctrl.TargetScaleFactor(); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("target factor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGamepadCursorGrabFollowRelease(t *testing.T) {
	s := newScene(t, true)
	s.spawnBounds(t, 640, 360)
	e := s.box(t, 100, 100)
	cursor := s.cursor(t, 100, 100)
	s.ready()
	ctrl := s.controller(t, e)

	if !cursor.Visible {
		t.Fatalf("cursor hidden in gamepad mode")
	}

	s.sample.Gamepad = input.GamepadSample{Connected: true, AnyButton: true, GrabPressed: true}
	s.tick(1)
	if ctrl.State() != grab.HeldByGamepad || cursor.Held != ctrl {
		t.Fatalf("state = %v, want held by gamepad", ctrl.State())
	}

	s.sample.Gamepad = input.GamepadSample{Connected: true, RightX: 1}
	s.tick(30)
	if math.Abs(cursor.X-250) > 1e-6 {
		t.Fatalf("cursor x = %v, want 250", cursor.X)
	}
	s.sample.Gamepad = input.GamepadSample{Connected: true, AnyButton: true}
	s.tick(60)
	if pos := s.body(t, e).Position(); math.Abs(pos.X-250) > 4 {
		t.Fatalf("body x = %v, want near 250", pos.X)
	}

	s.sample.Gamepad = input.GamepadSample{Connected: true, AnyButton: true, GrabPressed: true}
	s.tick(1)
	if ctrl.Held() || cursor.Held != nil {
		t.Fatalf("second press did not release")
	}
}

func TestGamepadCursorBoostAndClamp(t *testing.T) {
	s := newScene(t, true)
	s.spawnBounds(t, 640, 360)
	cursor := s.cursor(t, 600, 100)

	s.sample.Gamepad = input.GamepadSample{Connected: true, RightX: 1, Triggers: -1}
	s.tick(1)
	if want := 600 + 1500*common.TickSeconds; math.Abs(cursor.X-want) > 1e-6 {
		t.Fatalf("boosted x = %v, want %v", cursor.X, want)
	}
	s.tick(60)
	if cursor.X != 640 {
		t.Fatalf("cursor x = %v, want clamped to 640", cursor.X)
	}
}

func TestGamepadCursorScaleButtons(t *testing.T) {
	s := newScene(t, true)
	e := s.box(t, 100, 100)
	cursor := s.cursor(t, 100, 100)
	s.ready()
	ctrl := s.controller(t, e)

	s.sample.Gamepad = input.GamepadSample{Connected: true, AnyButton: true, GrabPressed: true}
	s.tick(1)
	s.sample.Gamepad = input.GamepadSample{Connected: true, AnyButton: true, ScaleAxis: 1}
	s.tick(10)
	if cursor.Held != ctrl {
		t.Fatalf("cursor lost the hold")
	}
	want := 10 * cursor.ScaleRate * common.TickSeconds
	if got := ctrl.TargetScaleFactor(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("target factor = %v, want %v", got, want)
	}
}

func TestCursorHiddenAndIdleInPointerMode(t *testing.T) {
	s := newScene(t, false)
	cursor := s.cursor(t, 100, 100)
	s.sample.Gamepad = input.GamepadSample{RightX: 1, GrabPressed: true}
	s.tick(10)
	if cursor.Visible || cursor.X != 100 {
		t.Fatalf("cursor visible=%v x=%v in pointer mode", cursor.Visible, cursor.X)
	}
}

func TestForcedReleaseClearsCursorHold(t *testing.T) {
	s := newScene(t, true)
	e := s.box(t, 100, 100)
	cursor := s.cursor(t, 100, 100)
	s.ready()
	ctrl := s.controller(t, e)

	s.sample.Gamepad = input.GamepadSample{Connected: true, AnyButton: true, GrabPressed: true}
	s.tick(1)
	if cursor.Held == nil {
		t.Fatalf("grab failed")
	}

	s.sample.Gamepad = input.GamepadSample{Connected: true}
	s.sample.Pointer = input.PointerSample{X: 10, Y: 10, DX: 3}
	for i := 0; i < 120 && cursor.Held != nil; i++ {
		s.tick(1)
	}
	if s.arb.Mode() != input.ModePointer {
		t.Fatalf("mode = %v, want pointer", s.arb.Mode())
	}
	if ctrl.Held() || cursor.Held != nil {
		t.Fatalf("hold survived the mode switch")
	}
}

func TestInputSystemPublishesModeChange(t *testing.T) {
	s := newScene(t, true)
	s.tick(1)
	state, ok := currentInput(s.w)
	if !ok || state.Mode != input.ModeGamepad {
		t.Fatalf("initial state = %+v", state)
	}

	s.sample.Pointer = input.PointerSample{DX: 2}
	changed := false
	for i := 0; i < 60 && !changed; i++ {
		s.tick(1)
		changed = state.Changed
	}
	if !changed || state.Change.From != input.ModeGamepad || state.Change.To != input.ModePointer {
		t.Fatalf("change = %+v changed=%v", state.Change, changed)
	}
	s.tick(1)
	if state.Changed {
		t.Fatalf("Changed stuck on after the transition tick")
	}
}

func TestSwitchOpensAndClosesDoor(t *testing.T) {
	s := newScene(t, false)
	s.floor(t)
	door := s.door(t, "d1", component.DoorMove, component.DoorVertical)
	sw := s.pressurePlate(t, trigger.Config{Name: "plate", MinMass: 5}, "d1")
	weight := s.spawn(t, 200, 250, physics.BodySpec{Width: 32, Height: 32, Mass: 10})
	doorStart := 200.0

	s.tick(120)
	if !sw.Switch.Pressed() {
		t.Fatalf("switch state = %v, want pressed", sw.Switch.State())
	}
	if sw.Plunger <= 0 {
		t.Fatalf("plunger did not move")
	}
	s.tick(60)
	d, _ := ecs.Get(s.w, door, component.DoorComponent.Kind())
	if !d.Open || d.Progress != 1 {
		t.Fatalf("door open=%v progress=%v", d.Open, d.Progress)
	}
	if y := s.body(t, door).Position().Y; math.Abs(y-(doorStart-100)) > 1e-6 {
		t.Fatalf("door y = %v, want %v", y, doorStart-100)
	}

	ecs.DestroyEntity(s.w, weight)
	s.tick(60)
	if sw.Switch.State() != trigger.Released {
		t.Fatalf("switch state = %v after removal, want released", sw.Switch.State())
	}
	if d.Open || d.Progress != 0 {
		t.Fatalf("door open=%v progress=%v after release", d.Open, d.Progress)
	}
	if y := s.body(t, door).Position().Y; math.Abs(y-doorStart) > 1e-6 {
		t.Fatalf("door y = %v, want %v", y, doorStart)
	}
}

func TestSwitchSeesBodyRestingAtStart(t *testing.T) {
	s := newScene(t, false)
	s.floor(t)
	door := s.door(t, "d1", component.DoorMove, component.DoorVertical)
	sw := s.pressurePlate(t, trigger.Config{Name: "plate", MinMass: 5}, "d1")
	// Already on the floor and inside the plate, so the sensor never sees a
	// fresh touch after the switch is bound.
	s.spawn(t, 200, 304, physics.BodySpec{Width: 32, Height: 32, Mass: 10})
	s.ready()

	s.tick(60)
	if !sw.Switch.Pressed() {
		t.Fatalf("switch state = %v, want pressed", sw.Switch.State())
	}
	if d, _ := ecs.Get(s.w, door, component.DoorComponent.Kind()); !d.Open {
		t.Fatalf("door stayed closed")
	}
}

func TestSwitchOverloadBreaks(t *testing.T) {
	s := newScene(t, false)
	s.floor(t)
	door := s.door(t, "d1", component.DoorMove, component.DoorVertical)
	sw := s.pressurePlate(t, trigger.Config{Name: "plate", MinMass: 2, MaxMass: 8}, "d1")
	s.spawn(t, 200, 250, physics.BodySpec{Width: 32, Height: 32, Mass: 10})

	s.tick(120)
	if !sw.Switch.Broken() {
		t.Fatalf("switch state = %v, want broken", sw.Switch.State())
	}
	if d, _ := ecs.Get(s.w, door, component.DoorComponent.Kind()); d.Open {
		t.Fatalf("broken switch opened the door")
	}
}

func TestSwitchUnknownDoorDoesNotBlockOthers(t *testing.T) {
	s := newScene(t, false)
	s.floor(t)
	door := s.door(t, "d1", component.DoorMove, component.DoorVertical)
	sw := s.pressurePlate(t, trigger.Config{Name: "plate", MinMass: 5}, "missing", "d1")
	s.spawn(t, 200, 250, physics.BodySpec{Width: 32, Height: 32, Mass: 10})

	s.tick(120)
	if !sw.Switch.Pressed() {
		t.Fatalf("switch state = %v, want pressed", sw.Switch.State())
	}
	if d, _ := ecs.Get(s.w, door, component.DoorComponent.Kind()); !d.Open {
		t.Fatalf("known door stayed closed")
	}
}

func TestDoorScaleMode(t *testing.T) {
	s := newScene(t, false)
	door := s.door(t, "d1", component.DoorScale, component.DoorHorizontal)
	s.tick(1)
	d, _ := ecs.Get(s.w, door, component.DoorComponent.Kind())

	d.Open = true
	s.tick(60)
	sx, sy := s.body(t, door).ScaleXY()
	if sx != 0 || sy != 1 {
		t.Fatalf("scale = (%v,%v), want (0,1)", sx, sy)
	}
}

func TestDoorRetargetStartsFromCurrentProgress(t *testing.T) {
	s := newScene(t, false)
	door := s.door(t, "d1", component.DoorMove, component.DoorHorizontal)
	s.tick(1)
	d, _ := ecs.Get(s.w, door, component.DoorComponent.Kind())

	d.Open = true
	s.tick(10)
	mid := d.Progress
	if mid <= 0 || mid >= 1 {
		t.Fatalf("progress = %v, want mid-animation", mid)
	}

	d.Open = false
	s.tick(1)
	if d.Progress >= mid || d.Progress < mid-0.2 {
		t.Fatalf("progress jumped from %v to %v", mid, d.Progress)
	}
}

func TestPhysicsSystemTracksEntities(t *testing.T) {
	s := newScene(t, false)
	e := s.spawn(t, 100, 100, physics.BodySpec{Width: 16, Height: 16, Mass: 1})
	s.tick(1)
	b := s.body(t, e)
	if got, ok := s.physSys.BodyOf(e); !ok || got != b {
		t.Fatalf("BodyOf = %v, %v", got, ok)
	}
	tr, _ := ecs.Get(s.w, e, component.TransformComponent.Kind())
	if tr.Y <= 100 {
		t.Fatalf("transform y = %v, want falling", tr.Y)
	}
	if ud, ok := b.UserData().(ecs.Entity); !ok || ud != e {
		t.Fatalf("user data = %v, want %v", b.UserData(), e)
	}

	ecs.DestroyEntity(s.w, e)
	s.tick(1)
	if b.Active() {
		t.Fatalf("body still active after entity destroyed")
	}
	if _, ok := s.physSys.BodyOf(e); ok {
		t.Fatalf("BodyOf still reports destroyed entity")
	}
}

func TestPhysicsSystemBoundsWalls(t *testing.T) {
	s := newScene(t, false)
	s.spawnBounds(t, 640, 360)
	s.tick(1)
	if got := len(s.phys.Tagged("bounds")); got != 4 {
		t.Fatalf("bounds walls = %d, want 4", got)
	}
	e, _ := ecs.First(s.w, component.LevelBoundsComponent.Kind())
	ecs.DestroyEntity(s.w, e)
	s.tick(1)
	if got := len(s.phys.Tagged("bounds")); got != 0 {
		t.Fatalf("bounds walls = %d after removal, want 0", got)
	}
}

func TestManipulationClosesControllerOfDestroyedEntity(t *testing.T) {
	s := newScene(t, false)
	e := s.box(t, 100, 100)
	s.ready()
	ctrl := s.controller(t, e)
	if s.arb.Observers() != 1 {
		t.Fatalf("observers = %d, want 1", s.arb.Observers())
	}

	ecs.DestroyEntity(s.w, e)
	s.tick(1)
	if ctrl.Enabled() || s.arb.Observers() != 0 {
		t.Fatalf("controller still live: enabled=%v observers=%d", ctrl.Enabled(), s.arb.Observers())
	}
}

func TestPlayerMovesAndJumps(t *testing.T) {
	s := newScene(t, false)
	s.floor(t)
	e := s.spawn(t, 100, 290, physics.BodySpec{Width: 16, Height: 32, Mass: 1, FixedRotation: true})
	_ = ecs.Add(s.w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	_ = ecs.Add(s.w, e, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: 200, JumpSpeed: 400})

	s.tick(60)
	b := s.body(t, e)
	if b.Tag() != "player" {
		t.Fatalf("player body tag = %q", b.Tag())
	}
	if !b.Grounded() {
		t.Fatalf("player not grounded after settling")
	}

	s.sample.Keys = []input.Key{input.KeyD}
	s.tick(1)
	if v := b.Velocity(); v.X <= 0 {
		t.Fatalf("velocity x = %v, want moving right", v.X)
	}

	s.sample.Keys = nil
	s.sample.JumpPressed = true
	s.tick(1)
	if v := b.Velocity(); v.Y >= 0 {
		t.Fatalf("velocity y = %v, want upward", v.Y)
	}
}

func (s *scene) spawnBounds(t *testing.T, width, height float64) {
	t.Helper()
	e := ecs.CreateEntity(s.w)
	if err := ecs.Add(s.w, e, component.LevelBoundsComponent.Kind(), &component.LevelBounds{Width: width, Height: height}); err != nil {
		t.Fatalf("add bounds: %v", err)
	}
}

func (s *scene) cursor(t *testing.T, x, y float64) *component.GamepadCursor {
	t.Helper()
	c := &component.GamepadCursor{Speed: 300, BoostedSpeed: 1500, GrabDistance: 32, ScaleRate: 0.5, X: x, Y: y}
	if err := ecs.Add(s.w, ecs.CreateEntity(s.w), component.GamepadCursorComponent.Kind(), c); err != nil {
		t.Fatalf("add cursor: %v", err)
	}
	return c
}

func (s *scene) door(t *testing.T, name string, mode component.DoorMode, axis component.DoorAxis) ecs.Entity {
	t.Helper()
	e := s.spawn(t, 400, 200, physics.BodySpec{Kind: physics.KindKinematic, Width: 32, Height: 96})
	_ = ecs.Add(s.w, e, component.NameComponent.Kind(), &component.Name{Value: name})
	if err := ecs.Add(s.w, e, component.DoorComponent.Kind(), &component.Door{Mode: mode, Axis: axis, Distance: 100, Duration: 0.5}); err != nil {
		t.Fatalf("add door: %v", err)
	}
	return e
}

func (s *scene) pressurePlate(t *testing.T, cfg trigger.Config, doors ...string) *component.ActivationSwitch {
	t.Helper()
	e := s.spawn(t, 200, 312, physics.BodySpec{Kind: physics.KindStatic, Width: 64, Height: 16, Sensor: true})
	sw := &component.ActivationSwitch{Config: cfg, Doors: doors, PressDepth: 6, PressSpeed: 5}
	if err := ecs.Add(s.w, e, component.ActivationSwitchComponent.Kind(), sw); err != nil {
		t.Fatalf("add switch: %v", err)
	}
	return sw
}

var _ grab.FollowTarget = (*component.GamepadCursor)(nil)
