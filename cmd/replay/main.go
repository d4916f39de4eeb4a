// Command replay feeds a recorded input and contact trace through the device
// arbiter and a mass-gated switch without opening a window, printing every
// mode change and switch transition.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/heft/common"
	"github.com/milk9111/heft/input"
	"github.com/milk9111/heft/trigger"
	"gopkg.in/yaml.v3"
)

type Trace struct {
	GamepadConnected bool            `yaml:"gamepad_connected"`
	Arbiter          input.Config    `yaml:"arbiter"`
	Switch           *trigger.Config `yaml:"switch"`
	Steps            []Step          `yaml:"steps"`
}

// Step is one or more identical ticks. Contact changes apply on the first
// repetition only.
type Step struct {
	DT     float64 `yaml:"dt"`
	Repeat int     `yaml:"repeat"`

	Pointer PointerStep `yaml:"pointer"`
	Keys    []input.Key `yaml:"keys"`
	Gamepad GamepadStep `yaml:"gamepad"`

	Enter []ContactStep      `yaml:"enter"`
	Exit  []uint64           `yaml:"exit"`
	Mass  map[uint64]float64 `yaml:"mass"`
	// Disable marks contacts inactive without an exit event.
	Disable []uint64 `yaml:"disable"`
}

type PointerStep struct {
	DX      float64 `yaml:"dx"`
	DY      float64 `yaml:"dy"`
	Pressed bool    `yaml:"pressed"`
	Wheel   float64 `yaml:"wheel"`
}

type GamepadStep struct {
	AnyButton bool    `yaml:"any_button"`
	LeftX     float64 `yaml:"left_x"`
	LeftY     float64 `yaml:"left_y"`
	RightX    float64 `yaml:"right_x"`
	RightY    float64 `yaml:"right_y"`
	Triggers  float64 `yaml:"triggers"`
}

type ContactStep struct {
	ID    uint64          `yaml:"id"`
	Mass  float64         `yaml:"mass"`
	Layer int             `yaml:"layer"`
	Tag   string          `yaml:"tag"`
	Color common.ObjColor `yaml:"color"`
}

// contact stands in for a physics body resting on the switch.
type contact struct {
	spec     ContactStep
	inactive bool
}

func (c *contact) ID() uint64    { return c.spec.ID }
func (c *contact) Mass() float64 { return c.spec.Mass }
func (c *contact) Active() bool  { return !c.inactive }
func (c *contact) Layer() int    { return c.spec.Layer }
func (c *contact) Tag() string   { return c.spec.Tag }

func (c *contact) Color() (common.ObjColor, bool) {
	return c.spec.Color, c.spec.Color != common.ColorNone
}

func (s Step) sample() input.Sample {
	return input.Sample{
		Pointer: input.PointerSample{
			DX:      s.Pointer.DX,
			DY:      s.Pointer.DY,
			Pressed: s.Pointer.Pressed,
			Wheel:   s.Pointer.Wheel,
		},
		Keys: s.Keys,
		Gamepad: input.GamepadSample{
			Connected: true,
			AnyButton: s.Gamepad.AnyButton,
			LeftX:     s.Gamepad.LeftX,
			LeftY:     s.Gamepad.LeftY,
			RightX:    s.Gamepad.RightX,
			RightY:    s.Gamepad.RightY,
			Triggers:  s.Gamepad.Triggers,
		},
	}
}

func LoadTrace(path string) (*Trace, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	return ParseTrace(b)
}

func ParseTrace(b []byte) (*Trace, error) {
	var t Trace
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	for i, s := range t.Steps {
		if s.DT < 0 {
			return nil, fmt.Errorf("step %d: negative dt", i)
		}
	}
	return &t, nil
}

// Run replays t and writes one line per transition to out.
func Run(t *Trace, out io.Writer) error {
	arb := input.NewArbiter(t.Arbiter, t.GamepadConnected)
	fmt.Fprintf(out, "%7.3f mode %s\n", 0.0, arb.Mode())

	var sw *trigger.Switch
	contacts := make(map[uint64]*contact)
	if t.Switch != nil {
		sw = trigger.New(*t.Switch)
		name := sw.Config().Name
		sw.OnPressed(func() error {
			fmt.Fprintf(out, "%7.3f switch %s pressed\n", arb.Now(), name)
			return nil
		})
		sw.OnReleased(func() error {
			fmt.Fprintf(out, "%7.3f switch %s released\n", arb.Now(), name)
			return nil
		})
	}

	for i, step := range t.Steps {
		dt := step.DT
		if dt == 0 {
			dt = common.TickSeconds
		}
		repeat := max(step.Repeat, 1)
		sample := step.sample()
		if !t.GamepadConnected {
			sample.Gamepad = input.GamepadSample{}
		}

		if sw != nil {
			for _, cs := range step.Enter {
				c := &contact{spec: cs}
				contacts[cs.ID] = c
				if !sw.Enter(c) {
					fmt.Fprintf(out, "%7.3f contact %d rejected\n", arb.Now(), cs.ID)
				}
			}
			for _, id := range step.Exit {
				if c, ok := contacts[id]; ok {
					sw.Exit(c)
					delete(contacts, id)
				}
			}
			for id, m := range step.Mass {
				if c, ok := contacts[id]; ok {
					c.spec.Mass = m
				}
			}
			for _, id := range step.Disable {
				if c, ok := contacts[id]; ok {
					c.inactive = true
				}
			}
		}

		for r := 0; r < repeat; r++ {
			if change, ok := arb.Update(dt, sample); ok {
				fmt.Fprintf(out, "%7.3f mode %s -> %s\n", change.At, change.From, change.To)
			}
			if sw == nil {
				continue
			}
			wasBroken := sw.Broken()
			if err := sw.Update(dt); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			if !wasBroken && sw.Broken() {
				fmt.Fprintf(out, "%7.3f switch %s broken\n", arb.Now(), sw.Config().Name)
			}
		}
	}
	return nil
}

func main() {
	tracePath := flag.String("trace", "", "path to a YAML input/contact trace")
	flag.Parse()

	if *tracePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	t, err := LoadTrace(*tracePath)
	if err != nil {
		log.Fatal(err)
	}
	if err := Run(t, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
