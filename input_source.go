package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/heft/input"
)

var keyNames = map[ebiten.Key]input.Key{
	ebiten.KeyW:          input.KeyW,
	ebiten.KeyA:          input.KeyA,
	ebiten.KeyS:          input.KeyS,
	ebiten.KeyD:          input.KeyD,
	ebiten.KeyArrowUp:    input.KeyUp,
	ebiten.KeyArrowDown:  input.KeyDown,
	ebiten.KeyArrowLeft:  input.KeyLeft,
	ebiten.KeyArrowRight: input.KeyRight,
	ebiten.KeySpace:      input.KeySpace,
	ebiten.KeyShiftLeft:  input.KeyLeftShift,
	ebiten.KeyE:          input.KeyE,
	ebiten.KeyQ:          input.KeyQ,
}

// ebitenSource polls ebiten once per tick and translates the result into an
// input.Sample.
type ebitenSource struct {
	keys       map[ebiten.Key]input.Key
	wheelScale float64

	lastX, lastY int
	havePos      bool
}

func newEbitenSource(monitored []input.Key, wheelScale float64) *ebitenSource {
	want := make(map[input.Key]struct{}, len(monitored))
	for _, k := range monitored {
		want[k] = struct{}{}
	}
	keys := make(map[ebiten.Key]input.Key, len(keyNames))
	for ek, k := range keyNames {
		if _, ok := want[k]; ok || len(want) == 0 {
			keys[ek] = k
		}
	}
	if wheelScale <= 0 {
		wheelScale = 0.1
	}
	return &ebitenSource{keys: keys, wheelScale: wheelScale}
}

func (s *ebitenSource) Sample() input.Sample {
	var out input.Sample

	x, y := ebiten.CursorPosition()
	if s.havePos {
		out.Pointer.DX = float64(x - s.lastX)
		out.Pointer.DY = float64(y - s.lastY)
	}
	s.lastX, s.lastY, s.havePos = x, y, true
	out.Pointer.X = float64(x)
	out.Pointer.Y = float64(y)
	out.Pointer.Buttons = [3]bool{
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle),
	}
	out.Pointer.Pressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	out.Pointer.Released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	_, wheelY := ebiten.Wheel()
	out.Pointer.Wheel = wheelY * s.wheelScale

	for ek, k := range s.keys {
		if ebiten.IsKeyPressed(ek) {
			out.Keys = append(out.Keys, k)
		}
	}
	out.FineTune = ebiten.IsKeyPressed(ebiten.KeyControl)
	out.JumpPressed = inpututil.IsKeyJustPressed(ebiten.KeySpace)

	out.Gamepad = sampleGamepad()
	return out
}

const (
	triggerThreshold = 0.1
	analogAxisCount  = 4
)

func sampleGamepad() input.GamepadSample {
	var pad input.GamepadSample
	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return pad
	}
	id := ids[0]
	pad.Connected = true

	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		for b := ebiten.GamepadButton(0); b < ebiten.GamepadButton(ebiten.GamepadButtonCount(id)); b++ {
			if ebiten.IsGamepadButtonPressed(id, b) {
				pad.AnyButton = true
				break
			}
		}
		axes := [analogAxisCount]float64{}
		for i := 0; i < analogAxisCount && i < ebiten.GamepadAxisCount(id); i++ {
			axes[i] = ebiten.GamepadAxisValue(id, ebiten.GamepadAxisType(i))
		}
		pad.LeftX, pad.LeftY, pad.RightX, pad.RightY = axes[0], axes[1], axes[2], axes[3]
		return pad
	}

	for b := ebiten.StandardGamepadButton(0); b <= ebiten.StandardGamepadButtonMax; b++ {
		if ebiten.IsStandardGamepadButtonPressed(id, b) {
			pad.AnyButton = true
			break
		}
	}
	pad.LeftX = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	pad.LeftY = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	pad.RightX = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
	pad.RightY = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)

	left := ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomLeft)
	right := ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight)
	if left > triggerThreshold || right > triggerThreshold {
		pad.Triggers = right - left
	}

	pad.GrabPressed = inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
	pad.JumpPressed = inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
	if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontTopRight) {
		pad.ScaleAxis++
	}
	if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontTopLeft) {
		pad.ScaleAxis--
	}
	return pad
}
