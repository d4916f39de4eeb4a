package component

import "github.com/milk9111/heft/grab"

// Manipulable marks a body the player can pick up and resize. Controller is
// built lazily by ManipulationSystem.
type Manipulable struct {
	Config     grab.Config
	Controller *grab.Controller
}

var ManipulableComponent = NewComponent[Manipulable]()
