package prefabs

import (
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/trigger"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// MergeComponents returns base with overrides laid over it. Nested maps merge
// key by key; anything else in overrides replaces the base value. Neither
// input is modified.
func MergeComponents(base, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		baseMap, okBase := asMap(out[k])
		overMap, okOver := asMap(v)
		if okBase && okOver {
			out[k] = MergeComponents(baseMap, overMap)
			continue
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type AppearanceComponentSpec struct {
	Layer int       `yaml:"layer"`
	Fill  YAMLColor `yaml:"fill"`
}

type PhysicsBodyComponentSpec struct {
	// Kind is dynamic, static or kinematic.
	Kind string `yaml:"kind"`
	// Shape is box or circle.
	Shape         string          `yaml:"shape"`
	Width         float64         `yaml:"width"`
	Height        float64         `yaml:"height"`
	Radius        float64         `yaml:"radius"`
	Mass          float64         `yaml:"mass"`
	Friction      float64         `yaml:"friction"`
	Elasticity    float64         `yaml:"elasticity"`
	Sensor        bool            `yaml:"sensor"`
	FixedRotation bool            `yaml:"fixed_rotation"`
	Tag           string          `yaml:"tag"`
	Layer         int             `yaml:"layer"`
	Color         common.ObjColor `yaml:"color"`
}

type GravityScaleComponentSpec struct {
	Scale float64 `yaml:"scale"`
}

type PlayerComponentSpec struct {
	MoveSpeed float64 `yaml:"move_speed"`
	JumpSpeed float64 `yaml:"jump_speed"`
	Accel     float64 `yaml:"accel"`
}

type ActivationSwitchComponentSpec struct {
	trigger.Config `yaml:",inline"`
	Doors          []string `yaml:"doors"`
	PressDepth     float64  `yaml:"press_depth"`
	PressSpeed     float64  `yaml:"press_speed"`
}

type DoorComponentSpec struct {
	// Mode is move or scale; Axis is vertical or horizontal.
	Mode     string  `yaml:"mode"`
	Axis     string  `yaml:"axis"`
	Distance float64 `yaml:"distance"`
	Duration float64 `yaml:"duration"`
	Open     bool    `yaml:"open"`
}

type GamepadCursorComponentSpec struct {
	Speed        float64 `yaml:"speed"`
	BoostedSpeed float64 `yaml:"boosted_speed"`
	GrabDistance float64 `yaml:"grab_distance"`
	ScaleRate    float64 `yaml:"scale_rate"`
}
