package component

import "github.com/milk9111/heft/trigger"

type ActivationSwitch struct {
	Config trigger.Config
	// Doors are the Name values of the doors this switch opens.
	Doors []string

	PressDepth float64
	PressSpeed float64
	// Plunger is the current visual press offset in pixels.
	Plunger float64

	Switch        *trigger.Switch
	Registrations []*trigger.Registration
}

var ActivationSwitchComponent = NewComponent[ActivationSwitch]()
