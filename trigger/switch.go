// Package trigger implements a mass-gated activation switch: a trigger volume
// that presses, releases or breaks depending on the mass of what rests on it.
package trigger

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/milk9111/heft/common"
)

const DefaultPollInterval = 0.1

type State int

const (
	Released State = iota
	Pressed
	// Broken is terminal.
	Broken
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Broken:
		return "broken"
	default:
		return "released"
	}
}

// Contact is a collider overlapping the switch. *physics.Body satisfies it.
type Contact interface {
	ID() uint64
	Mass() float64
	Active() bool
	Layer() int
	Tag() string
	Color() (common.ObjColor, bool)
}

type Config struct {
	Name string `yaml:"name"`
	// 0 on either side means unbounded.
	MinMass      float64 `yaml:"min_mass"`
	MaxMass      float64 `yaml:"max_mass"`
	PollInterval float64 `yaml:"poll_interval"`
	// Bit mask over contact layers; 0 accepts every layer.
	LayerMask     uint32            `yaml:"layer_mask"`
	AllowedTags   []string          `yaml:"allowed_tags"`
	AllowedColors []common.ObjColor `yaml:"allowed_colors"`
}

// Normalized clamps negative bounds to 0, swaps an inverted range and falls
// back to the default poll interval.
func (c Config) Normalized() Config {
	if c.MinMass < 0 {
		c.MinMass = 0
	}
	if c.MaxMass < 0 {
		c.MaxMass = 0
	}
	if c.MinMass > 0 && c.MaxMass > 0 && c.MaxMass < c.MinMass {
		c.MinMass, c.MaxMass = c.MaxMass, c.MinMass
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Label renders the mass range the way it is shown in game, e.g.
// "min: 5, max: any".
func (c Config) Label() string {
	return fmt.Sprintf("min: %s, max: %s", boundText(c.MinMass), boundText(c.MaxMass))
}

func boundText(v float64) string {
	if v <= 0 {
		return "any"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Callback runs on a press or release transition.
type Callback func() error

type Switch struct {
	cfg   Config
	state State

	contacts map[Contact]struct{}
	elapsed  float64

	nextID     uint64
	onPressed  map[uint64]Callback
	onReleased map[uint64]Callback
}

func New(cfg Config) *Switch {
	return &Switch{
		cfg:        cfg.Normalized(),
		contacts:   make(map[Contact]struct{}),
		onPressed:  make(map[uint64]Callback),
		onReleased: make(map[uint64]Callback),
	}
}

func (s *Switch) Config() Config {
	if s == nil {
		return Config{}.Normalized()
	}
	return s.cfg
}

func (s *Switch) State() State {
	if s == nil {
		return Released
	}
	return s.state
}

func (s *Switch) Pressed() bool { return s.State() == Pressed }
func (s *Switch) Broken() bool  { return s.State() == Broken }

// Contacts returns the tracked contacts ordered by ID.
func (s *Switch) Contacts() []Contact {
	if s == nil {
		return nil
	}
	out := make([]Contact, 0, len(s.contacts))
	for c := range s.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *Switch) Tracking(c Contact) bool {
	if s == nil || c == nil {
		return false
	}
	_, ok := s.contacts[c]
	return ok
}

// Accepts reports whether c passes the layer, tag and colour filters.
func (s *Switch) Accepts(c Contact) bool {
	if s == nil || c == nil {
		return false
	}
	if s.cfg.LayerMask != 0 {
		layer := c.Layer()
		if layer < 0 || layer > 31 || s.cfg.LayerMask&(1<<uint(layer)) == 0 {
			return false
		}
	}
	if len(s.cfg.AllowedTags) > 0 && !slices.Contains(s.cfg.AllowedTags, c.Tag()) {
		return false
	}
	if color, ok := c.Color(); ok && len(s.cfg.AllowedColors) > 0 && !slices.Contains(s.cfg.AllowedColors, color) {
		return false
	}
	return true
}

// Enter starts tracking c. Broken switches ignore new contacts.
func (s *Switch) Enter(c Contact) bool {
	if s == nil || c == nil || s.state == Broken || !s.Accepts(c) {
		return false
	}
	s.contacts[c] = struct{}{}
	return true
}

// Exit stops tracking c.
func (s *Switch) Exit(c Contact) {
	if s == nil || c == nil {
		return
	}
	delete(s.contacts, c)
}

// Update accumulates dt and evaluates once per poll interval.
func (s *Switch) Update(dt float64) error {
	if s == nil || dt <= 0 {
		return nil
	}
	s.elapsed += dt
	if s.elapsed < s.cfg.PollInterval {
		return nil
	}
	s.elapsed = 0
	return s.Evaluate()
}

// Evaluate drops inactive contacts and applies the mass gate. Errors from
// callbacks are joined and returned; every callback still runs.
func (s *Switch) Evaluate() error {
	if s == nil || s.state == Broken {
		return nil
	}
	for c := range s.contacts {
		if !c.Active() {
			delete(s.contacts, c)
		}
	}

	satisfied := false
	for c := range s.contacts {
		m := c.Mass()
		if s.cfg.MaxMass > 0 && m > s.cfg.MaxMass {
			wasPressed := s.state == Pressed
			s.state = Broken
			if wasPressed {
				return s.fire(s.onReleased)
			}
			return nil
		}
		if s.meetsGate(m) {
			satisfied = true
		}
	}

	switch {
	case satisfied && s.state == Released:
		s.state = Pressed
		return s.fire(s.onPressed)
	case !satisfied && s.state == Pressed:
		s.state = Released
		return s.fire(s.onReleased)
	}
	return nil
}

func (s *Switch) meetsGate(m float64) bool {
	meetsMin := s.cfg.MinMass <= 0 || m >= s.cfg.MinMass
	meetsMax := s.cfg.MaxMass <= 0 || m <= s.cfg.MaxMass
	return meetsMin && meetsMax
}

func (s *Switch) OnPressed(fn Callback) *Registration {
	if s == nil {
		return &Registration{}
	}
	return s.register(s.onPressed, fn)
}

func (s *Switch) OnReleased(fn Callback) *Registration {
	if s == nil {
		return &Registration{}
	}
	return s.register(s.onReleased, fn)
}

func (s *Switch) register(into map[uint64]Callback, fn Callback) *Registration {
	if into == nil || fn == nil {
		return &Registration{}
	}
	s.nextID++
	into[s.nextID] = fn
	return &Registration{callbacks: into, id: s.nextID}
}

func (s *Switch) fire(callbacks map[uint64]Callback) error {
	ids := make([]uint64, 0, len(callbacks))
	for id := range callbacks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var errs []error
	for _, id := range ids {
		fn, ok := callbacks[id]
		if !ok {
			continue
		}
		if err := call(fn); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("trigger %s: %w", s.name(), errors.Join(errs...))
}

func (s *Switch) name() string {
	if s.cfg.Name == "" {
		return "switch"
	}
	return s.cfg.Name
}

func call(fn Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()
	return fn()
}

// Registration is returned by OnPressed and OnReleased.
type Registration struct {
	callbacks map[uint64]Callback
	id        uint64
}

// Cancel removes the callback. Calling it more than once is harmless.
func (r *Registration) Cancel() {
	if r == nil || r.callbacks == nil {
		return
	}
	delete(r.callbacks, r.id)
	r.callbacks = nil
}

func (r *Registration) Active() bool {
	return r != nil && r.callbacks != nil
}
