package input

// Key names the keyboard keys the arbiter watches. Sources translate their
// native key codes into these names.
type Key string

const (
	KeyW         Key = "W"
	KeyA         Key = "A"
	KeyS         Key = "S"
	KeyD         Key = "D"
	KeyUp        Key = "Up"
	KeyDown      Key = "Down"
	KeyLeft      Key = "Left"
	KeyRight     Key = "Right"
	KeySpace     Key = "Space"
	KeyLeftShift Key = "LeftShift"
	KeyE         Key = "E"
	KeyQ         Key = "Q"
)

// DefaultMonitoredKeys is the fixed set of keys that count as keyboard
// activity.
var DefaultMonitoredKeys = []Key{
	KeyW, KeyA, KeyS, KeyD,
	KeyUp, KeyDown, KeyLeft, KeyRight,
	KeySpace, KeyLeftShift, KeyE, KeyQ,
}

// PointerSample is one tick of mouse state in screen pixels.
type PointerSample struct {
	X, Y   float64
	DX, DY float64
	// Buttons holds left, right and middle.
	Buttons [3]bool
	// Pressed and Released are edges of the left button.
	Pressed  bool
	Released bool
	Wheel    float64
}

// GamepadSample is one tick of the first connected gamepad.
type GamepadSample struct {
	Connected bool
	// AnyButton is true while any face, shoulder or stick button is held.
	AnyButton bool

	LeftX, LeftY   float64
	RightX, RightY float64
	// Triggers is the combined trigger axis: negative for left, positive
	// for right.
	Triggers float64

	GrabPressed bool
	JumpPressed bool
	// ScaleAxis is -1, 0 or +1 from the shoulder buttons.
	ScaleAxis float64
}

// Sample is everything a Source observed in one tick.
type Sample struct {
	Pointer PointerSample
	// Keys lists every key currently held that the source knows a name for.
	Keys []Key
	// FineTune is true while either Ctrl key is held.
	FineTune    bool
	JumpPressed bool
	Gamepad     GamepadSample
}

// Held reports whether k is in the sample's held keys.
func (s Sample) Held(k Key) bool {
	for _, key := range s.Keys {
		if key == k {
			return true
		}
	}
	return false
}

// Source produces one Sample per tick.
type Source interface {
	Sample() Sample
}

// SourceFunc adapts a function to a Source.
type SourceFunc func() Sample

func (f SourceFunc) Sample() Sample {
	return f()
}
