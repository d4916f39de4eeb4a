package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/ecs"
	"github.com/milk9111/heft/ecs/entity"
	"github.com/milk9111/heft/ecs/system"
	"github.com/milk9111/heft/grab"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/levels"
	"github.com/milk9111/heft/physics"
	"github.com/milk9111/heft/prefabs"
	"github.com/milk9111/heft/task"
)

const (
	baseWidth  = 960
	baseHeight = 540
)

type Game struct {
	levelName string
	debug     bool
	frames    int

	source  *ebitenSource
	arbiter *input.Arbiter
	modeSub *input.Subscription
	camera  grab.Projector

	world        *ecs.World
	phys         *physics.World
	tasks        *task.Queue
	scheduler    *ecs.Scheduler
	physics      *system.PhysicsSystem
	pointer      *system.PointerGrabSystem
	cursor       *system.GamepadCursorSystem
	manipulation *system.ManipulationSystem

	watcher *prefabs.Watcher
}

func NewGame(levelName string, debug bool) (*Game, error) {
	spec, err := prefabs.LoadInputSpec()
	if err != nil {
		return nil, err
	}

	g := &Game{
		levelName: levelName,
		debug:     debug,
		source:    newEbitenSource(spec.Arbiter.MonitoredKeys, spec.Pointer.WheelScale),
		arbiter:   input.NewArbiter(spec.Arbiter, len(ebiten.AppendGamepadIDs(nil)) > 0),
		camera:    grab.IdentityProjector{},
	}
	g.modeSub = g.arbiter.Subscribe(applyCursorMode)
	applyCursorMode(input.ModeChange{To: g.arbiter.Mode()})

	if err := g.load(); err != nil {
		return nil, err
	}

	if debug {
		w, err := prefabs.NewWatcher("prefabs", "levels")
		if err != nil {
			log.Printf("hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// load builds a fresh world for the current level. The arbiter survives
// reloads so the input mode does not flicker.
func (g *Game) load() error {
	lvl, err := levels.Load(g.levelName)
	if err != nil {
		return fmt.Errorf("load level %s: %w", g.levelName, err)
	}

	world := ecs.NewWorld()
	world.SetDelta(common.TickSeconds)
	if err := entity.LoadLevelToWorld(world, lvl); err != nil {
		return err
	}

	if g.manipulation != nil {
		g.manipulation.Close()
	}

	g.world = world
	g.phys = physics.NewWorld(common.Gravity)
	g.tasks = task.NewQueue()
	g.physics = system.NewPhysicsSystem(g.phys)
	g.pointer = system.NewPointerGrabSystem(g.phys, g.camera)
	g.cursor = system.NewGamepadCursorSystem(g.phys)
	g.manipulation = system.NewManipulationSystem(g.phys, g.arbiter, g.tasks, g.camera)
	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(g.source, g.arbiter),
		g.pointer,
		g.cursor,
		g.manipulation,
		system.NewPlayerControllerSystem(),
		g.physics,
		system.NewSwitchSystem(),
		system.NewDoorSystem(),
	)
	g.physics.Sync(g.world)
	return nil
}

func (g *Game) Update() error {
	g.frames++
	g.pollReload()
	g.scheduler.Update(g.world)
	return nil
}

// pollReload rebuilds the world when a watched prefab or level changes. A
// broken edit keeps the previous world running.
func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	changed := ""
drain:
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				break drain
			}
			changed = name
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				break drain
			}
			log.Printf("hot reload: %v", err)
		default:
			break drain
		}
	}
	if changed == "" {
		return
	}
	log.Printf("hot reload: %s changed, rebuilding", changed)
	if err := g.load(); err != nil {
		log.Printf("hot reload: %v", err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render(screen)
	if g.debug {
		system.DrawPhysicsDebug(g.phys, screen)
		system.DrawManipulationDebug(g.world, screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.manipulation != nil {
		g.manipulation.Close()
	}
	g.modeSub.Cancel()
}

// applyCursorMode shows the OS cursor for pointer play and hides it while the
// gamepad cursor is in charge.
func applyCursorMode(change input.ModeChange) {
	switch change.To {
	case input.ModeGamepad:
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	default:
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
}
