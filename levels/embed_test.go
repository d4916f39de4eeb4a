package levels

import (
	"strings"
	"testing"
)

func TestLoadEmbeddedIntro(t *testing.T) {
	for _, name := range []string{"intro", "intro.yaml", "levels/intro.yaml"} {
		lvl, err := LoadLevelFromFS(name)
		if err != nil {
			t.Fatalf("load %q: %v", name, err)
		}
		if lvl.Name != "intro" || lvl.Width != 960 || len(lvl.Objects) == 0 {
			t.Fatalf("level = %+v", lvl)
		}
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "ok", src: "name: a\nwidth: 10\nheight: 10\nobjects:\n  - type: box\n"},
		{name: "no size", src: "name: a\n", wantErr: "must be positive"},
		{name: "untyped object", src: "name: a\nwidth: 10\nheight: 10\nobjects:\n  - x: 1\n", wantErr: "has no type"},
		{name: "bad yaml", src: "width: [", wantErr: "unmarshal level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestObjectProps(t *testing.T) {
	lvl, err := LoadLevelFromFS("intro")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, obj := range lvl.Objects {
		if obj.Name != "plate" {
			continue
		}
		sw, ok := obj.Props["activation_switch"].(map[string]any)
		if !ok {
			t.Fatalf("activation_switch props = %T", obj.Props["activation_switch"])
		}
		if sw["min_mass"] != 10 {
			t.Fatalf("min_mass = %v", sw["min_mass"])
		}
		return
	}
	t.Fatalf("plate not found")
}
