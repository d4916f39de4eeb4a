package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/grab"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedEntitySpecsLoad(t *testing.T) {
	for _, name := range []string{"box.yaml", "switch.yaml", "door.yaml", "player.yaml", "cursor.yaml", "wall.yaml"} {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadEntityBuildSpec(name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if spec.Name == "" || len(spec.Components) == 0 {
				t.Fatalf("spec = %+v, want a name and components", spec)
			}
		})
	}
}

func TestLoadSpecMissingFile(t *testing.T) {
	if _, err := LoadEntityBuildSpec("nope.yaml"); err == nil {
		t.Fatalf("expected error for missing prefab")
	}
}

func TestInputSpec(t *testing.T) {
	spec, err := LoadInputSpec()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Arbiter.SwitchDelay != 0.5 || spec.Arbiter.GamepadDeadzone != 0.2 {
		t.Fatalf("arbiter = %+v", spec.Arbiter)
	}
	if len(spec.Arbiter.MonitoredKeys) != 12 {
		t.Fatalf("monitored keys = %v", spec.Arbiter.MonitoredKeys)
	}
	if spec.Pointer.WheelScale != 0.1 {
		t.Fatalf("wheel scale = %v", spec.Pointer.WheelScale)
	}
}

func TestDecodeBoxComponents(t *testing.T) {
	spec, err := LoadEntityBuildSpec("box.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	body, err := DecodeComponentSpec[PhysicsBodyComponentSpec](spec.Components["physics_body"])
	if err != nil {
		t.Fatalf("decode physics_body: %v", err)
	}
	if body.Kind != "dynamic" || body.Color != common.ColorNone {
		t.Fatalf("physics_body = %+v", body)
	}

	cfg, err := DecodeComponentSpec[grab.Config](spec.Components["manipulable"])
	if err != nil {
		t.Fatalf("decode manipulable: %v", err)
	}
	if cfg.MinMass != 5 || cfg.MaxMass != 15 || cfg.CollisionPolicy != grab.DisableWhenHeld || cfg.Color != common.ColorGreen {
		t.Fatalf("manipulable = %+v", cfg)
	}
}

func TestDecodeSwitchInlinesTriggerConfig(t *testing.T) {
	raw := map[string]any{
		"name":           "plate",
		"min_mass":       5,
		"allowed_colors": []any{"red", "blue"},
		"doors":          []any{"d1"},
		"press_depth":    4,
	}
	sw, err := DecodeComponentSpec[ActivationSwitchComponentSpec](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sw.Name != "plate" || sw.MinMass != 5 || len(sw.Doors) != 1 || sw.PressDepth != 4 {
		t.Fatalf("switch = %+v", sw)
	}
	if len(sw.AllowedColors) != 2 || sw.AllowedColors[0] != common.ColorRed || sw.AllowedColors[1] != common.ColorBlue {
		t.Fatalf("allowed colors = %v", sw.AllowedColors)
	}
}

func TestDecodeRejectsUnknownColor(t *testing.T) {
	if _, err := DecodeComponentSpec[PhysicsBodyComponentSpec](map[string]any{"color": "mauve"}); err == nil {
		t.Fatalf("expected error for unknown colour tag")
	}
}

func TestMergeComponents(t *testing.T) {
	base := map[string]any{
		"transform":    map[string]any{"x": 0, "scale_x": 1},
		"physics_body": map[string]any{"width": 40, "mass": 5},
		"player_tag":   map[string]any{},
	}
	overrides := map[string]any{
		"transform":   map[string]any{"x": 120},
		"manipulable": map[string]any{"max_scale": 3},
		"player_tag":  nil,
	}

	got := MergeComponents(base, overrides)

	tr := got["transform"].(map[string]any)
	if tr["x"] != 120 || tr["scale_x"] != 1 {
		t.Fatalf("transform = %v", tr)
	}
	if got["physics_body"].(map[string]any)["mass"] != 5 {
		t.Fatalf("physics_body lost base keys: %v", got["physics_body"])
	}
	if _, ok := got["manipulable"]; !ok {
		t.Fatalf("override-only component missing")
	}
	if got["player_tag"] != nil {
		t.Fatalf("scalar override did not replace base")
	}
	if base["transform"].(map[string]any)["x"] != 0 {
		t.Fatalf("base mutated")
	}
}

func TestYAMLColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: `"#ff8000"`, want: color.NRGBA{R: 0xff, G: 0x80, A: 0xff}},
		{in: `"#10203040"`, want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{in: `crimson`, want: color.NRGBA{R: 0xdc, G: 0x14, B: 0x3c, A: 0xff}},
		{in: `"#12"`, wantErr: true},
		{in: `[1, 2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c YAMLColor
			err := yaml.Unmarshal([]byte(tt.in), &c)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := color.NRGBAModel.Convert(c.Color).(color.NRGBA); got != tt.want {
				t.Fatalf("color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamesAndExists(t *testing.T) {
	names := Names()
	for _, want := range []string{"box", "cursor", "door", "input", "player", "switch", "wall"} {
		if !slices.Contains(names, want) {
			t.Fatalf("Names() = %v, missing %s", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Fatalf("Names() not sorted: %v", names)
	}

	for _, name := range []string{"box", "box.yaml", "prefabs/box.yaml"} {
		if !Exists(name) {
			t.Fatalf("Exists(%q) = false", name)
		}
	}
	for _, name := range []string{"", "ghost", "box.yml"} {
		if Exists(name) {
			t.Fatalf("Exists(%q) = true", name)
		}
	}
}

func TestWatcherReportsYAMLChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "box.yaml"), []byte("name: box\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if !strings.HasSuffix(name, "/box.yaml") {
			t.Fatalf("event for %s, want box.yaml", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for box.yaml")
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Fatalf("events channel still open")
	}
	_ = w.Close()
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
