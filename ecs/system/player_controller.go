package system

import (
	"math"

	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/input"
)

const (
	playerMoveSpeed = 260.0
	playerJumpSpeed = 600.0
	stickDeadzone   = 0.2
)

type PlayerControllerSystem struct{}

func NewPlayerControllerSystem() *PlayerControllerSystem {
	return &PlayerControllerSystem{}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	state, ok := currentInput(w)
	if !ok {
		return
	}
	moveX := moveAxis(state.Sample)
	jump := state.Sample.JumpPressed || state.Sample.Gamepad.JumpPressed
	dt := w.Delta()

	ecs.ForEach3(w, component.PlayerTagComponent.Kind(), component.PlayerComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, _ *component.PlayerTag, player *component.Player, bodyComp *component.PhysicsBody) {
		body := bodyComp.Body
		if body == nil || !body.Active() {
			return
		}

		speed := player.MoveSpeed
		if speed <= 0 {
			speed = playerMoveSpeed
		}
		jumpSpeed := player.JumpSpeed
		if jumpSpeed <= 0 {
			jumpSpeed = playerJumpSpeed
		}

		vel := body.Velocity()
		target := moveX * speed
		if player.Accel > 0 {
			step := player.Accel * dt
			diff := target - vel.X
			if math.Abs(diff) > step {
				target = vel.X + math.Copysign(step, diff)
			}
		}
		vel.X = target

		if jump && body.Grounded() {
			vel.Y = -jumpSpeed
		}
		body.SetVelocity(vel)
	})
}

func moveAxis(s input.Sample) float64 {
	moveX := 0.0
	if s.Held(input.KeyA) || s.Held(input.KeyLeft) {
		moveX -= 1
	}
	if s.Held(input.KeyD) || s.Held(input.KeyRight) {
		moveX += 1
	}
	if s.Gamepad.Connected && math.Abs(s.Gamepad.LeftX) > stickDeadzone {
		moveX = s.Gamepad.LeftX
	}
	return moveX
}
