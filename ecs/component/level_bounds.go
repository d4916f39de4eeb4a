package component

// LevelBounds stores the world-space size of the current level. The camera is
// static, so it is also the view.
type LevelBounds struct {
	Width  float64
	Height float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
