package input

// Mode is the device class currently driving manipulation input.
type Mode int

const (
	ModePointer Mode = iota
	ModeGamepad
)

func (m Mode) String() string {
	switch m {
	case ModePointer:
		return "pointer"
	case ModeGamepad:
		return "gamepad"
	default:
		return "unknown"
	}
}

// ModeChange describes one transition. At most one is emitted per tick.
type ModeChange struct {
	From Mode
	To   Mode
	// At is the arbiter clock, in seconds, when the switch happened.
	At float64
}
