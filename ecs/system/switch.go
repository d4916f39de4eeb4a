package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/trigger"
)

// SwitchSystem feeds sensor overlaps into mass-gated switches, polls them and
// opens or closes the doors they name.
type SwitchSystem struct {
	world *ecs.World

	bound map[ecs.Entity]*physics.Body
	last  map[ecs.Entity]trigger.State
}

func NewSwitchSystem() *SwitchSystem {
	return &SwitchSystem{
		bound: make(map[ecs.Entity]*physics.Body),
		last:  make(map[ecs.Entity]trigger.State),
	}
}

func (s *SwitchSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.world = w

	for e := range s.bound {
		if !ecs.Has(w, e, component.ActivationSwitchComponent.Kind()) {
			delete(s.bound, e)
			delete(s.last, e)
		}
	}

	dt := w.Delta()
	ecs.ForEach2(w, component.ActivationSwitchComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, sw *component.ActivationSwitch, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		if sw.Switch == nil || s.bound[e] != pb.Body {
			s.bind(e, sw, pb.Body)
		}

		if err := sw.Switch.Update(dt); err != nil {
			log.Printf("switch %s: %v", sw.Switch.Config().Name, err)
		}

		state := sw.Switch.State()
		if state != s.last[e] {
			if state == trigger.Broken {
				log.Printf("switch %s: broken", sw.Switch.Config().Name)
			}
			s.last[e] = state
		}

		target := 0.0
		if state == trigger.Pressed {
			target = sw.PressDepth
		}
		sw.Plunger = common.Lerp(sw.Plunger, target, common.Clamp01(sw.PressSpeed*dt))
	})
}

// bind builds a fresh switch for the entity's sensor body and wires its
// callbacks to the named doors.
func (s *SwitchSystem) bind(e ecs.Entity, sw *component.ActivationSwitch, body *physics.Body) {
	for _, r := range sw.Registrations {
		r.Cancel()
	}
	sw.Registrations = nil

	ts := trigger.New(sw.Config)
	body.Listen(func(other *physics.Body, overlapping bool) {
		if s.bound[e] != body {
			return
		}
		if overlapping {
			ts.Enter(other)
		} else {
			ts.Exit(other)
		}
	})
	// Bodies already resting on the sensor began touching before the
	// listener existed and will not be announced again.
	for _, other := range body.World().Overlapping(body) {
		ts.Enter(other)
	}

	doors := append([]string(nil), sw.Doors...)
	sw.Registrations = append(sw.Registrations,
		ts.OnPressed(func() error { return s.setDoors(doors, true) }),
		ts.OnReleased(func() error { return s.setDoors(doors, false) }),
	)
	sw.Switch = ts
	s.bound[e] = body
	s.last[e] = ts.State()
}

func (s *SwitchSystem) setDoors(names []string, open bool) error {
	if s.world == nil {
		return nil
	}
	var errs []error
	for _, name := range names {
		found := false
		ecs.ForEach2(s.world, component.DoorComponent.Kind(), component.NameComponent.Kind(), func(e ecs.Entity, door *component.Door, n *component.Name) {
			if n.Value != name {
				return
			}
			door.Open = open
			found = true
		})
		if !found {
			errs = append(errs, fmt.Errorf("door %q not found", name))
		}
	}
	return errors.Join(errs...)
}
