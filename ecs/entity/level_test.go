package entity

import (
	"strings"
	"testing"

	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/levels"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/trigger"
)

func TestLoadIntroLevel(t *testing.T) {
	lvl, err := levels.LoadLevelFromFS("intro")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	w := ecs.NewWorld()
	if err := LoadLevelToWorld(w, lvl); err != nil {
		t.Fatalf("build level: %v", err)
	}

	counts := map[string]int{
		"player":  ecs.Count(w, component.PlayerTagComponent.Kind()),
		"box":     ecs.Count(w, component.ManipulableComponent.Kind()),
		"switch":  ecs.Count(w, component.ActivationSwitchComponent.Kind()),
		"door":    ecs.Count(w, component.DoorComponent.Kind()),
		"cursor":  ecs.Count(w, component.GamepadCursorComponent.Kind()),
		"wall":    ecs.Count(w, component.WallTagComponent.Kind()),
		"bounds":  ecs.Count(w, component.LevelBoundsComponent.Kind()),
		"bodies":  ecs.Count(w, component.PhysicsBodyComponent.Kind()),
		"visible": ecs.Count(w, component.AppearanceComponent.Kind()),
	}
	want := map[string]int{"player": 1, "box": 2, "switch": 2, "door": 2, "cursor": 1, "wall": 2, "bounds": 1, "bodies": 9, "visible": 9}
	for k, v := range want {
		if counts[k] != v {
			t.Fatalf("%s count = %d, want %d", k, counts[k], v)
		}
	}
}

func TestLevelOverridesMergeOverPrefab(t *testing.T) {
	lvl := &levels.Level{
		Name:   "t",
		Width:  100,
		Height: 100,
		Objects: []levels.Object{{
			Type: "box",
			Name: "heavy",
			X:    40,
			Y:    50,
			Props: map[string]any{
				"manipulable":  map[string]any{"max_mass": 30, "collision_policy": "never_disable"},
				"physics_body": map[string]any{"friction": 0.2},
			},
		}},
	}
	w := ecs.NewWorld()
	if err := LoadLevelToWorld(w, lvl); err != nil {
		t.Fatalf("build: %v", err)
	}

	var found bool
	ecs.ForEach3(w, component.ManipulableComponent.Kind(), component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, m *component.Manipulable, pb *component.PhysicsBody, tr *component.Transform) {
		found = true
		if m.Config.MaxMass != 30 || m.Config.MinMass != 5 {
			t.Fatalf("mass range = %v..%v, want 5..30", m.Config.MinMass, m.Config.MaxMass)
		}
		if m.Config.CollisionPolicy != grab.NeverDisable {
			t.Fatalf("policy = %v", m.Config.CollisionPolicy)
		}
		if pb.Spec.Color != common.ColorGreen || pb.Spec.Friction != 0.2 || pb.Spec.Width != 40 {
			t.Fatalf("body spec = %+v", pb.Spec)
		}
		if tr.X != 40 || tr.Y != 50 || tr.ScaleX != 1 {
			t.Fatalf("transform = %+v", tr)
		}
		n, ok := ecs.Get(w, e, component.NameComponent.Kind())
		if !ok || n.Value != "heavy" {
			t.Fatalf("name = %v", n)
		}
	})
	if !found {
		t.Fatalf("box not built")
	}
}

func TestManipulableColorTagsBody(t *testing.T) {
	tests := []struct {
		name    string
		allowed []common.ObjColor
		want    bool
	}{
		{name: "allowed", allowed: []common.ObjColor{common.ColorGreen, common.ColorRed}, want: true},
		{name: "filtered", allowed: []common.ObjColor{common.ColorBlue}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e, err := BuildEntity(w, "box.yaml", map[string]any{
				"manipulable": map[string]any{"color": "red"},
			})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
			if pb.Spec.Color != common.ColorRed {
				t.Fatalf("body colour = %v, want red", pb.Spec.Color)
			}

			body := physics.NewWorld(0).Add(pb.Spec)
			sw := trigger.New(trigger.Config{Name: "plate", MinMass: 1, AllowedColors: tt.allowed})
			if got := sw.Enter(body); got != tt.want {
				t.Fatalf("Enter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSwitchTakesObjectNameWhenUnset(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "switch.yaml", map[string]any{
		"name":              "west",
		"activation_switch": map[string]any{"name": ""},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sw, _ := ecs.Get(w, e, component.ActivationSwitchComponent.Kind())
	if sw.Config.Name != "west" {
		t.Fatalf("switch name = %q, want west", sw.Config.Name)
	}
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if pb.Spec.Kind != physics.KindStatic || !pb.Spec.Sensor {
		t.Fatalf("switch body = %+v, want static sensor", pb.Spec)
	}
}

func TestBuildEntityErrors(t *testing.T) {
	tests := []struct {
		name      string
		prefab    string
		overrides map[string]any
		want      string
	}{
		{name: "missing prefab", prefab: "ghost.yaml", want: "load"},
		{name: "unknown component", prefab: "wall.yaml", overrides: map[string]any{"sprite": map[string]any{}}, want: `no builder for component "sprite"`},
		{name: "bad body kind", prefab: "wall.yaml", overrides: map[string]any{"physics_body": map[string]any{"kind": "ghostly"}}, want: "unknown body kind"},
		{name: "bad door mode", prefab: "door.yaml", overrides: map[string]any{"door": map[string]any{"mode": "swing"}}, want: "unknown door mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			_, err := BuildEntity(w, tt.prefab, tt.overrides)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("%d entities left behind", n)
			}
		})
	}
}

func TestLoadLevelUnknownType(t *testing.T) {
	lvl := &levels.Level{Name: "t", Width: 10, Height: 10, Objects: []levels.Object{{Type: "dragon"}}}
	err := LoadLevelToWorld(ecs.NewWorld(), lvl)
	if err == nil || !strings.Contains(err.Error(), `unknown type "dragon"`) || !strings.Contains(err.Error(), "box") {
		t.Fatalf("err = %v", err)
	}
}
