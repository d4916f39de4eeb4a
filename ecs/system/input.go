package system

import (
	"log"

	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/input"
)

// InputSystem samples the device source once per tick, feeds the arbiter and
// publishes the result on the InputState singleton.
type InputSystem struct {
	source  input.Source
	arbiter *input.Arbiter
}

func NewInputSystem(source input.Source, arbiter *input.Arbiter) *InputSystem {
	return &InputSystem{source: source, arbiter: arbiter}
}

func (i *InputSystem) Arbiter() *input.Arbiter {
	if i == nil {
		return nil
	}
	return i.arbiter
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil {
		return
	}

	var sample input.Sample
	if i.source != nil {
		sample = i.source.Sample()
	}

	state := inputState(w)
	if state == nil {
		return
	}
	state.Sample = sample
	state.Changed = false

	if i.arbiter == nil {
		return
	}
	change, changed := i.arbiter.Update(w.Delta(), sample)
	state.Mode = i.arbiter.Mode()
	if changed {
		state.Changed = true
		state.Change = change
		log.Printf("input: mode %s -> %s", change.From, change.To)
	}
}

// inputState returns the singleton, creating it on first use.
func inputState(w *ecs.World) *component.InputState {
	if e, ok := ecs.First(w, component.InputStateComponent.Kind()); ok {
		state, _ := ecs.Get(w, e, component.InputStateComponent.Kind())
		return state
	}
	e := ecs.CreateEntity(w)
	state := &component.InputState{}
	if err := ecs.Add(w, e, component.InputStateComponent.Kind(), state); err != nil {
		panic("input system: add input state: " + err.Error())
	}
	return state
}

// currentInput reads the singleton without creating it.
func currentInput(w *ecs.World) (*component.InputState, bool) {
	e, ok := ecs.First(w, component.InputStateComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(w, e, component.InputStateComponent.Kind())
}
