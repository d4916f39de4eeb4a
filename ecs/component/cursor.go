package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/grab"
)

type GamepadCursor struct {
	Speed        float64
	BoostedSpeed float64
	GrabDistance float64
	ScaleRate    float64

	X, Y    float64
	Visible bool
	Held    *grab.Controller
}

// Position makes the cursor a follow target for gamepad holds.
func (c *GamepadCursor) Position() cp.Vector {
	if c == nil {
		return cp.Vector{}
	}
	return cp.Vector{X: c.X, Y: c.Y}
}

var GamepadCursorComponent = NewComponent[GamepadCursor]()
