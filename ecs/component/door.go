package component

import "github.com/tanema/gween"

type DoorMode string

const (
	DoorMove  DoorMode = "move"
	DoorScale DoorMode = "scale"
)

type DoorAxis string

const (
	DoorVertical   DoorAxis = "vertical"
	DoorHorizontal DoorAxis = "horizontal"
)

type Door struct {
	Mode DoorMode
	Axis DoorAxis
	// Distance is how far a move-mode door slides when fully open. Scale
	// mode shrinks the door along Axis to nothing.
	Distance float64
	Duration float64
	Open     bool

	Initialized bool
	ClosedX     float64
	ClosedY     float64
	ClosedW     float64
	ClosedH     float64

	// Progress is 0 closed, 1 open.
	Progress float64
	Tween    *gween.Tween
	Target   float64
}

var DoorComponent = NewComponent[Door]()
