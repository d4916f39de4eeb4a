package component

import "github.com/milk9111/heft/physics"

// PhysicsBody is authored as a Spec; PhysicsSystem creates Body on first sight
// and removes it when the component or entity goes away.
type PhysicsBody struct {
	Spec physics.BodySpec
	Body *physics.Body
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
