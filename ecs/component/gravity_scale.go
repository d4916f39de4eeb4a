package component

// GravityScale is the authored gravity multiplier applied when the body is
// created. 1.0 = normal gravity, 0.0 = no gravity.
type GravityScale struct {
	Scale float64
}

var GravityScaleComponent = NewComponent[GravityScale]()
