package input

import (
	"log"
	"math"
	"sort"
)

const (
	DefaultSwitchDelay     = 0.5
	DefaultGamepadDeadzone = 0.2

	pointerMoveThreshold = 0.01
	// lastGamepad starts far in the past when no pad is present so the
	// gamepad class begins idle.
	idleTimestamp = -1000.0
)

// Config tunes the arbiter's debounce.
type Config struct {
	SwitchDelay     float64 `yaml:"switch_delay"`
	GamepadDeadzone float64 `yaml:"gamepad_deadzone"`
	MonitoredKeys   []Key   `yaml:"monitored_keys"`
}

func DefaultConfig() Config {
	return Config{
		SwitchDelay:     DefaultSwitchDelay,
		GamepadDeadzone: DefaultGamepadDeadzone,
		MonitoredKeys:   append([]Key(nil), DefaultMonitoredKeys...),
	}
}

func (c Config) normalized() Config {
	if c.SwitchDelay <= 0 {
		c.SwitchDelay = DefaultSwitchDelay
	}
	if c.GamepadDeadzone <= 0 {
		c.GamepadDeadzone = DefaultGamepadDeadzone
	}
	if len(c.MonitoredKeys) == 0 {
		c.MonitoredKeys = append([]Key(nil), DefaultMonitoredKeys...)
	}
	return c
}

// Activity holds the last time each device class produced input.
type Activity struct {
	Pointer  float64
	Keyboard float64
	Gamepad  float64
}

// Arbiter decides once per tick whether pointer/keyboard or gamepad is the
// active device. A switch needs the entering class active and the leaving
// class idle in the same tick, which keeps a hand grazing both devices from
// flipping the mode back and forth.
//
// The arbiter is the only writer of the mode. Everything else reads it via
// Mode or learns about changes through Subscribe.
type Arbiter struct {
	cfg       Config
	monitored map[Key]struct{}

	now       float64
	mode      Mode
	activity  Activity
	connected bool

	nextID    uint64
	observers map[uint64]func(ModeChange)
}

// NewArbiter probes device presence once: a connected gamepad starts the
// arbiter in gamepad mode.
func NewArbiter(cfg Config, gamepadConnected bool) *Arbiter {
	cfg = cfg.normalized()
	a := &Arbiter{
		cfg:       cfg,
		monitored: make(map[Key]struct{}, len(cfg.MonitoredKeys)),
		connected: gamepadConnected,
		observers: make(map[uint64]func(ModeChange)),
		activity: Activity{
			Pointer:  0,
			Keyboard: 0,
			Gamepad:  idleTimestamp,
		},
	}
	for _, k := range cfg.MonitoredKeys {
		a.monitored[k] = struct{}{}
	}
	if gamepadConnected {
		a.mode = ModeGamepad
		a.activity.Gamepad = 0
	}
	return a
}

func (a *Arbiter) Mode() Mode {
	if a == nil {
		return ModePointer
	}
	return a.mode
}

func (a *Arbiter) Config() Config {
	if a == nil {
		return DefaultConfig()
	}
	return a.cfg
}

// Now returns the arbiter clock in seconds.
func (a *Arbiter) Now() float64 {
	if a == nil {
		return 0
	}
	return a.now
}

func (a *Arbiter) Activity() Activity {
	if a == nil {
		return Activity{}
	}
	return a.activity
}

// GamepadConnected reports the presence flag from the latest sample.
func (a *Arbiter) GamepadConnected() bool {
	if a == nil {
		return false
	}
	return a.connected
}

// Update advances the clock by dt, records device activity from s and applies
// the switching rule. It returns the transition made this tick, if any.
func (a *Arbiter) Update(dt float64, s Sample) (ModeChange, bool) {
	if a == nil {
		return ModeChange{}, false
	}
	if dt > 0 {
		a.now += dt
	}
	a.connected = s.Gamepad.Connected

	if a.pointerInput(s.Pointer) {
		a.activity.Pointer = a.now
	}
	if a.keyboardInput(s.Keys) {
		a.activity.Keyboard = a.now
	}
	if a.gamepadInput(s.Gamepad) {
		a.activity.Gamepad = a.now
	}

	pointerActive := a.now-a.activity.Pointer < a.cfg.SwitchDelay ||
		a.now-a.activity.Keyboard < a.cfg.SwitchDelay
	gamepadActive := a.now-a.activity.Gamepad < a.cfg.SwitchDelay

	switch a.mode {
	case ModeGamepad:
		// Connection is deliberately not re-checked here: unplugging the pad
		// leaves gamepad mode in place until pointer activity arrives.
		if pointerActive && !gamepadActive {
			return a.setMode(ModePointer), true
		}
	case ModePointer:
		if gamepadActive && !pointerActive && a.connected {
			return a.setMode(ModeGamepad), true
		}
	}
	return ModeChange{}, false
}

func (a *Arbiter) setMode(m Mode) ModeChange {
	change := ModeChange{From: a.mode, To: m, At: a.now}
	a.mode = m
	a.notify(change)
	return change
}

func (a *Arbiter) notify(change ModeChange) {
	if len(a.observers) == 0 {
		return
	}
	ids := make([]uint64, 0, len(a.observers))
	for id := range a.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn, ok := a.observers[id]
		if !ok {
			// cancelled by an earlier observer
			continue
		}
		a.call(fn, change)
	}
}

func (a *Arbiter) call(fn func(ModeChange), change ModeChange) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("input: mode observer panicked: %v", r)
		}
	}()
	fn(change)
}

// Subscribe registers fn for mode changes. Observers run synchronously inside
// Update, in registration order, and must not block.
func (a *Arbiter) Subscribe(fn func(ModeChange)) *Subscription {
	if a == nil || fn == nil {
		return &Subscription{}
	}
	if a.observers == nil {
		a.observers = make(map[uint64]func(ModeChange))
	}
	a.nextID++
	id := a.nextID
	a.observers[id] = fn
	return &Subscription{arbiter: a, id: id}
}

// Observers returns the number of live subscriptions.
func (a *Arbiter) Observers() int {
	if a == nil {
		return 0
	}
	return len(a.observers)
}

func (a *Arbiter) pointerInput(p PointerSample) bool {
	if math.Abs(p.DX) > pointerMoveThreshold || math.Abs(p.DY) > pointerMoveThreshold {
		return true
	}
	for _, down := range p.Buttons {
		if down {
			return true
		}
	}
	return false
}

func (a *Arbiter) keyboardInput(keys []Key) bool {
	for _, k := range keys {
		if _, ok := a.monitored[k]; ok {
			return true
		}
	}
	return false
}

func (a *Arbiter) gamepadInput(g GamepadSample) bool {
	if !g.Connected {
		return false
	}
	if g.AnyButton {
		return true
	}
	dz := a.cfg.GamepadDeadzone
	return math.Hypot(g.LeftX, g.LeftY) > dz ||
		math.Hypot(g.RightX, g.RightY) > dz ||
		math.Abs(g.Triggers) > dz
}

// Subscription is the cancellation token returned by Subscribe.
type Subscription struct {
	arbiter *Arbiter
	id      uint64
}

// Cancel removes the observer. Calling it more than once is harmless.
func (s *Subscription) Cancel() {
	if s == nil || s.arbiter == nil {
		return
	}
	delete(s.arbiter.observers, s.id)
	s.arbiter = nil
}

// Active reports whether the subscription still receives changes.
func (s *Subscription) Active() bool {
	return s != nil && s.arbiter != nil
}
