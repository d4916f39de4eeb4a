package component

import "github.com/milk9111/heft/input"

// InputState is the singleton published by InputSystem every tick.
type InputState struct {
	Sample input.Sample
	Mode   input.Mode
	// Changed is true on the tick the arbiter switched modes.
	Changed bool
	Change  input.ModeChange
}

var InputStateComponent = NewComponent[InputState]()
