package entity

import (
	"fmt"
	"sort"

	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":        addPlayerTag,
	"wall_tag":          addWallTag,
	"name":              addName,
	"transform":         addTransform,
	"appearance":        addAppearance,
	"player":            addPlayer,
	"physics_body":      addPhysicsBody,
	"gravity_scale":     addGravityScale,
	"manipulable":       addManipulable,
	"activation_switch": addActivationSwitch,
	"door":              addDoor,
	"gamepad_cursor":    addGamepadCursor,
}

var componentBuildOrder = []string{
	"player_tag",
	"wall_tag",
	"name",
	"transform",
	"appearance",
	"player",
	"physics_body",
	"gravity_scale",
	"manipulable",
	"activation_switch",
	"door",
	"gamepad_cursor",
}

// BuildEntity creates an entity from a prefab with overrides merged over its
// components.
func BuildEntity(w *ecs.World, prefabPath string, overrides map[string]any) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	components := prefabs.MergeComponents(spec.Components, overrides)
	if len(components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(components))
	for k, v := range components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, names[0])
	}

	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addWallTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.WallTagComponent.Kind(), &component.WallTag{})
}

func addName(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	name, err := prefabs.DecodeComponentSpec[string](raw)
	if err != nil {
		return fmt.Errorf("decode name: %w", err)
	}
	if name == "" {
		return nil
	}
	return ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	})
}

func addAppearance(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AppearanceComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode appearance spec: %w", err)
	}
	return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{
		Layer: spec.Layer,
		Fill:  spec.Fill.Color,
	})
}

func addPlayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PlayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode player spec: %w", err)
	}
	return ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{
		MoveSpeed: spec.MoveSpeed,
		JumpSpeed: spec.JumpSpeed,
		Accel:     spec.Accel,
	})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics_body spec: %w", err)
	}

	var kind physics.Kind
	switch spec.Kind {
	case "", "dynamic":
		kind = physics.KindDynamic
	case "static":
		kind = physics.KindStatic
	case "kinematic":
		kind = physics.KindKinematic
	default:
		return fmt.Errorf("unknown body kind %q", spec.Kind)
	}

	var shape physics.ShapeKind
	switch spec.Shape {
	case "", "box":
		shape = physics.ShapeBox
	case "circle":
		shape = physics.ShapeCircle
	default:
		return fmt.Errorf("unknown body shape %q", spec.Shape)
	}

	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Spec: physics.BodySpec{
			Kind:          kind,
			Shape:         shape,
			Width:         spec.Width,
			Height:        spec.Height,
			Radius:        spec.Radius,
			Mass:          spec.Mass,
			Friction:      spec.Friction,
			Elasticity:    spec.Elasticity,
			Sensor:        spec.Sensor,
			FixedRotation: spec.FixedRotation,
			Tag:           spec.Tag,
			Layer:         spec.Layer,
			Color:         spec.Color,
		},
	})
}

func addGravityScale(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.GravityScaleComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gravity_scale spec: %w", err)
	}
	return ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: spec.Scale})
}

func addManipulable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	cfg, err := prefabs.DecodeComponentSpec[grab.Config](raw)
	if err != nil {
		return fmt.Errorf("decode manipulable spec: %w", err)
	}
	// physics_body is built first, so the body spec is already in place.
	if cfg.Color != common.ColorNone {
		if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			pb.Spec.Color = cfg.Color
		}
	}
	return ecs.Add(w, e, component.ManipulableComponent.Kind(), &component.Manipulable{Config: cfg})
}

func addActivationSwitch(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ActivationSwitchComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode activation_switch spec: %w", err)
	}
	cfg := spec.Config
	if cfg.Name == "" {
		if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
			cfg.Name = n.Value
		}
	}
	return ecs.Add(w, e, component.ActivationSwitchComponent.Kind(), &component.ActivationSwitch{
		Config:     cfg,
		Doors:      spec.Doors,
		PressDepth: spec.PressDepth,
		PressSpeed: spec.PressSpeed,
	})
}

func addDoor(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.DoorComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode door spec: %w", err)
	}

	mode := component.DoorMode(spec.Mode)
	switch mode {
	case "":
		mode = component.DoorMove
	case component.DoorMove, component.DoorScale:
	default:
		return fmt.Errorf("unknown door mode %q", spec.Mode)
	}
	axis := component.DoorAxis(spec.Axis)
	switch axis {
	case "":
		axis = component.DoorVertical
	case component.DoorVertical, component.DoorHorizontal:
	default:
		return fmt.Errorf("unknown door axis %q", spec.Axis)
	}

	return ecs.Add(w, e, component.DoorComponent.Kind(), &component.Door{
		Mode:     mode,
		Axis:     axis,
		Distance: spec.Distance,
		Duration: spec.Duration,
		Open:     spec.Open,
	})
}

func addGamepadCursor(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.GamepadCursorComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gamepad_cursor spec: %w", err)
	}
	x, y := 0.0, 0.0
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		x, y = t.X, t.Y
	}
	return ecs.Add(w, e, component.GamepadCursorComponent.Kind(), &component.GamepadCursor{
		Speed:        spec.Speed,
		BoostedSpeed: spec.BoostedSpeed,
		GrabDistance: spec.GrabDistance,
		ScaleRate:    spec.ScaleRate,
		X:            x,
		Y:            y,
	})
}
