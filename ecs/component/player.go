package component

type Player struct {
	MoveSpeed float64
	JumpSpeed float64
	// Accel is how fast horizontal velocity approaches the input target,
	// in pixels per second squared.
	Accel float64
}

var PlayerComponent = NewComponent[Player]()
