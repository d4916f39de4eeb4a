package component

// Transform is the rendered pose of an entity. PhysicsSystem overwrites it
// from the body after every step.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
