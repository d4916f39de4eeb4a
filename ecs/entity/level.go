package entity

import (
	"fmt"
	"log"
	"strings"

	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/component"
	"github.com/milk9111/heft/levels"
	"github.com/milk9111/heft/prefabs"
)

// LoadLevelToWorld creates the level bounds and one entity per placed object.
// Each object's type names its prefab.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level) error {
	if world == nil || lvl == nil {
		return fmt.Errorf("load level: nil world or level")
	}

	boundsEntity := ecs.CreateEntity(world)
	if err := ecs.Add(world, boundsEntity, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  lvl.Width,
		Height: lvl.Height,
	}); err != nil {
		return err
	}

	for i, obj := range lvl.Objects {
		if !prefabs.Exists(obj.Type) {
			return fmt.Errorf("load level %s: object %d: unknown type %q (have %s)", lvl.Name, i, obj.Type, strings.Join(prefabs.Names(), ", "))
		}
		placement := map[string]any{
			"transform": map[string]any{"x": obj.X, "y": obj.Y},
		}
		if obj.Name != "" {
			placement["name"] = obj.Name
		}
		overrides := prefabs.MergeComponents(obj.Props, placement)

		if _, err := BuildEntity(world, obj.Type+".yaml", overrides); err != nil {
			return fmt.Errorf("load level %s: object %d (%s): %w", lvl.Name, i, obj.Type, err)
		}
	}

	warnDanglingDoors(world)
	return nil
}

// warnDanglingDoors logs switch targets that match no door.
func warnDanglingDoors(w *ecs.World) {
	doors := make(map[string]struct{})
	ecs.ForEach2(w, component.DoorComponent.Kind(), component.NameComponent.Kind(), func(_ ecs.Entity, _ *component.Door, n *component.Name) {
		doors[n.Value] = struct{}{}
	})
	ecs.ForEach(w, component.ActivationSwitchComponent.Kind(), func(_ ecs.Entity, sw *component.ActivationSwitch) {
		for _, name := range sw.Doors {
			if _, ok := doors[name]; !ok {
				log.Printf("level: switch %s targets unknown door %q", sw.Config.Name, name)
			}
		}
	})
}
