package component

import "image/color"

// Appearance is how the renderer draws an entity's body. Manipulables tint by
// their colour tag instead of Fill.
type Appearance struct {
	Layer int
	Fill  color.Color
}

var AppearanceComponent = NewComponent[Appearance]()
