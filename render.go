package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/trigger"
	"golang.org/x/image/colornames"
)

var (
	backgroundColor = color.RGBA{R: 0x1c, G: 0x1f, B: 0x26, A: 0xff}
	heldOutline     = colornames.Gold
	hoverOutline    = colornames.Lightgoldenrodyellow
	brokenColor     = colornames.Gray
	pressedColor    = colornames.Limegreen
	cursorColor     = colornames.White
)

var whitePixel *ebiten.Image

func objColor(c common.ObjColor) color.Color {
	switch c {
	case common.ColorRed:
		return colornames.Crimson
	case common.ColorGreen:
		return colornames.Mediumseagreen
	case common.ColorBlue:
		return colornames.Royalblue
	default:
		return colornames.Lightgray
	}
}

type drawItem struct {
	e     ecs.Entity
	layer int
	body  *physics.Body
	fill  color.Color
}

func (g *Game) render(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	w := g.world
	if w == nil {
		return
	}

	var items []drawItem
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.AppearanceComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, ap *component.Appearance) {
		if pb.Body == nil || !pb.Body.Active() {
			return
		}
		fill := ap.Fill
		if fill == nil {
			fill = colornames.Lightgray
		}
		items = append(items, drawItem{e: e, layer: ap.Layer, body: pb.Body, fill: fill})
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].layer != items[j].layer {
			return items[i].layer < items[j].layer
		}
		return items[i].e < items[j].e
	})

	var hovered *grab.Controller
	var cursors []*component.GamepadCursor
	ecs.ForEach(w, component.GamepadCursorComponent.Kind(), func(_ ecs.Entity, c *component.GamepadCursor) {
		cursors = append(cursors, c)
		if c.Held == nil && hovered == nil {
			hovered = g.cursor.Hovered(w, c)
		}
	})

	for _, it := range items {
		switch {
		case ecs.Has(w, it.e, component.ActivationSwitchComponent.Kind()):
			sw, _ := ecs.Get(w, it.e, component.ActivationSwitchComponent.Kind())
			drawSwitch(screen, it.body, sw, it.fill)
		case ecs.Has(w, it.e, component.ManipulableComponent.Kind()):
			man, _ := ecs.Get(w, it.e, component.ManipulableComponent.Kind())
			fill := it.fill
			if c, ok := it.body.Color(); ok {
				fill = objColor(c)
			}
			drawBody(screen, it.body, fill)
			switch {
			case man.Controller.Held():
				strokeBody(screen, it.body, 2, heldOutline)
				drawMassLabel(screen, it.body, man.Controller)
			case man.Controller != nil && man.Controller == hovered:
				strokeBody(screen, it.body, 1, hoverOutline)
			}
		default:
			drawBody(screen, it.body, it.fill)
		}
	}

	for _, c := range cursors {
		if !c.Visible {
			continue
		}
		vector.StrokeCircle(screen, float32(c.X), float32(c.Y), float32(c.GrabDistance), 1, cursorColor, true)
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), 3, cursorColor, true)
	}

	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s    FPS: %.0f    tick: %d\n", g.arbiter.Mode(), ebiten.ActualFPS(), g.world.Tick())

	var lines []string
	ecs.ForEach(g.world, component.ActivationSwitchComponent.Kind(), func(_ ecs.Entity, sw *component.ActivationSwitch) {
		if sw.Switch == nil {
			return
		}
		cfg := sw.Switch.Config()
		lines = append(lines, fmt.Sprintf("%s [%s] %s", cfg.Name, sw.Switch.State(), cfg.Label()))
	})
	sort.Strings(lines)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func drawMassLabel(screen *ebiten.Image, body *physics.Body, ctrl *grab.Controller) {
	pos := body.Position()
	_, h := body.Size()
	label := fmt.Sprintf("%.1f kg", ctrl.Mass())
	ebitenutil.DebugPrintAt(screen, label, int(pos.X)-len(label)*3, int(pos.Y-h/2)-18)
}

// drawSwitch draws the plate sunk by the plunger offset, grey once broken.
func drawSwitch(screen *ebiten.Image, body *physics.Body, sw *component.ActivationSwitch, fill color.Color) {
	pos := body.Position()
	w, h := body.Size()
	if sw.Switch != nil {
		switch sw.Switch.State() {
		case trigger.Pressed:
			fill = pressedColor
		case trigger.Broken:
			fill = brokenColor
		}
	}
	depth := math.Min(sw.Plunger, h)
	x := pos.X - w/2
	y := pos.Y - h/2 + depth
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h-depth), fill, false)
	vector.StrokeRect(screen, float32(x), float32(pos.Y-h/2), float32(w), float32(h), 1, colornames.Black, false)
}

func drawBody(screen *ebiten.Image, body *physics.Body, fill color.Color) {
	if body.Spec().Shape == physics.ShapeCircle {
		pos := body.Position()
		w, _ := body.Size()
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), float32(w/2), fill, true)
		return
	}
	fillQuad(screen, bodyCorners(body), fill)
}

func strokeBody(screen *ebiten.Image, body *physics.Body, width float32, clr color.Color) {
	if body.Spec().Shape == physics.ShapeCircle {
		pos := body.Position()
		w, _ := body.Size()
		vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), float32(w/2), width, clr, true)
		return
	}
	corners := bodyCorners(body)
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
	}
}

func bodyCorners(body *physics.Body) [4]cp.Vector {
	pos := body.Position()
	w, h := body.Size()
	rot := cp.ForAngle(body.Angle())
	local := [4]cp.Vector{{X: -w / 2, Y: -h / 2}, {X: w / 2, Y: -h / 2}, {X: w / 2, Y: h / 2}, {X: -w / 2, Y: h / 2}}
	var out [4]cp.Vector
	for i, v := range local {
		out[i] = pos.Add(v.Rotate(rot))
	}
	return out
}

func fillQuad(screen *ebiten.Image, corners [4]cp.Vector, clr color.Color) {
	if whitePixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	r, g, b, a := clr.RGBA()
	vs := make([]ebiten.Vertex, 0, 4)
	for _, c := range corners {
		vs = append(vs, ebiten.Vertex{
			DstX:   float32(c.X),
			DstY:   float32(c.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: float32(r) / 0xffff,
			ColorG: float32(g) / 0xffff,
			ColorB: float32(b) / 0xffff,
			ColorA: float32(a) / 0xffff,
		})
	}
	screen.DrawTriangles(vs, []uint16{0, 1, 2, 0, 2, 3}, whitePixel, &ebiten.DrawTrianglesOptions{})
}
